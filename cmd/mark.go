package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var markCmd = &cobra.Command{
	Use:   "mark <library> <version>",
	Short: "Set a library's last-known version manually",
	Long: `Override the stored last-known version without consulting the registry.
Use it to acknowledge an update you've already handled, or to correct a
spurious observation. The override is recorded as an audit event.`,
	Args: cobra.ExactArgs(2),
	RunE: runMark,
}

func init() {
	rootCmd.AddCommand(markCmd)
}

func runMark(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	library, version := args[0], args[1]
	event, err := store.Mark(library, version, time.Now().UTC())
	if err != nil {
		return err
	}

	fmt.Printf("Marked %s at %s", headerStyle.Render(library), version)
	if event.FromRaw != "" && event.FromRaw != version {
		fmt.Printf(" %s", mutedStyle.Render("(was "+event.FromRaw+")"))
	}
	fmt.Println()
	return nil
}
