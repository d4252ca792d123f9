package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List libraries with an unacknowledged change",
	Long: `Show only the libraries whose most recent change has not been superseded
or marked: anything whose latest event is a patch, minor, major, or
unrecognized-format transition.`,
	RunE: runOutdated,
}

func init() {
	rootCmd.AddCommand(outdatedCmd)
}

func runOutdated(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}

	pending := store.Pending()
	if len(pending) == 0 {
		fmt.Println("Everything up to date.")
		return nil
	}

	for _, rec := range pending {
		event, _ := rec.LastEvent()
		from := event.FromRaw
		if from == "" {
			from = "(new)"
		}
		fmt.Printf("  %s  %s -> %s  %s\n",
			headerStyle.Render(rec.Display()), from, event.ToRaw,
			renderClassification(event.Classification, event.Breaking))
	}
	fmt.Printf("\n%d libraries need attention\n", len(pending))
	return nil
}
