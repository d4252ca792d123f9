package main

import "github.com/zjrosen/libwatch/cmd"

func main() {
	cmd.Execute()
}
