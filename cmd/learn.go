package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/libwatch/internal/learning"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

var learnLevel string

var learnCmd = &cobra.Command{
	Use:   "learn [library]",
	Short: "Map pending changes to study material",
	Long: `For every library with an unacknowledged change that needs attention,
list the catalog concepts worth studying before upgrading, filtered to your
skill level. Pass a library name to narrow to one library.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLearn,
}

func init() {
	learnCmd.Flags().StringVar(&learnLevel, "level", "", "skill level: beginner, intermediate, or advanced (default from config)")
	rootCmd.AddCommand(learnCmd)
}

func runLearn(cmd *cobra.Command, args []string) error {
	levelStr := learnLevel
	if levelStr == "" {
		levelStr = cfg.SkillLevel
	}
	level, err := learning.ParseLevel(levelStr)
	if err != nil {
		return err
	}

	catalog, err := learning.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}

	// Only the current pending state generates opportunities; resolved
	// history does not resurface.
	var events []domain.ChangeEvent
	for _, rec := range store.Pending() {
		if len(args) == 1 && rec.Name != args[0] {
			continue
		}
		if event, ok := rec.LastEvent(); ok {
			events = append(events, event)
		}
	}
	if len(args) == 1 && len(events) == 0 {
		if _, ok := store.Record(args[0]); !ok {
			return &domain.LibraryNotFoundError{Name: args[0]}
		}
	}

	opportunities := learning.NewMapper(catalog).Opportunities(events, libraryMetas(), level)
	if len(opportunities) == 0 {
		fmt.Printf("Nothing to study at the %s level right now.\n", level)
		return nil
	}

	for _, opp := range opportunities {
		fmt.Printf("%s  %s -> %s  %s\n",
			headerStyle.Render(opp.Library.Display()),
			opp.Event.FromRaw, opp.Event.ToRaw,
			renderClassification(opp.Event.Classification, opp.Event.Breaking))
		fmt.Printf("  Recommended: %s\n", renderAction(opp.Event.RecommendedAction(opp.Library.Tags)))
		for _, concept := range opp.Concepts {
			title := concept.Title
			if title == "" {
				title = concept.ID
			}
			fmt.Printf("    [%s] %s\n", mutedStyle.Render(concept.Level.String()), title)
			if concept.Summary != "" {
				fmt.Printf("      %s\n", mutedStyle.Render(concept.Summary))
			}
		}
		fmt.Println()
	}
	return nil
}
