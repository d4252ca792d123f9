package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var librariesCmd = &cobra.Command{
	Use:   "libraries",
	Short: "Show the configured tracking set",
	RunE:  runLibraries,
}

func init() {
	rootCmd.AddCommand(librariesCmd)
}

func runLibraries(cmd *cobra.Command, args []string) error {
	if len(cfg.Libraries) == 0 {
		fmt.Println("No libraries configured. Run 'libwatch init' to create a starter config.")
		return nil
	}

	for _, lib := range cfg.Libraries {
		name := lib.Name
		if lib.DisplayName != "" {
			name = fmt.Sprintf("%s (%s)", lib.DisplayName, lib.Name)
		}
		fmt.Printf("  %s\n", headerStyle.Render(name))
		if lib.Category != "" {
			fmt.Printf("    category: %s\n", lib.Category)
		}
		if len(lib.Tags) > 0 {
			fmt.Printf("    tags: %s\n", mutedStyle.Render(strings.Join(lib.Tags, ", ")))
		}
	}
	fmt.Printf("\n%d libraries tracked\n", len(cfg.Libraries))
	return nil
}
