package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/libwatch/internal/infrastructure/sqlite"
	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

var historyDays int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show change events from the last N days",
	Long: `List every detected change event inside the window, newest first. Reads
the SQLite event archive when one is configured and reachable, otherwise
falls back to scanning the state file.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "window size in days")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyDays <= 0 {
		return fmt.Errorf("--days must be positive, got %d", historyDays)
	}

	now := time.Now().UTC()
	since := now.Add(-time.Duration(historyDays) * 24 * time.Hour)

	events, err := windowEvents(since, now)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		fmt.Printf("No changes in the last %d days.\n", historyDays)
		return nil
	}

	for _, event := range events {
		from := event.FromRaw
		if from == "" {
			from = "(new)"
		}
		fmt.Printf("  %s  %s  %s -> %s  %s\n",
			mutedStyle.Render(event.DetectedAt.Local().Format("2006-01-02 15:04")),
			headerStyle.Render(event.Library), from, event.ToRaw,
			renderClassification(event.Classification, event.Breaking))
	}
	fmt.Printf("\n%d events in the last %d days\n", len(events), historyDays)
	return nil
}

// windowEvents prefers the indexed archive and degrades to the state file.
// None-classified events (acknowledgements) are not changes and are kept
// out of the listing.
func windowEvents(since, now time.Time) ([]domain.ChangeEvent, error) {
	if cfg.ArchivePath != "" {
		db, err := sqlite.NewDB(cfg.ArchivePath)
		if err == nil {
			defer func() { _ = db.Close() }()
			events, err := db.EventArchive().EventsBetween(since, now)
			if err == nil {
				return dropNoProgress(events), nil
			}
			log.Warn(log.CatDB, "Archive query failed, falling back to state file", "error", err)
		} else {
			log.Warn(log.CatDB, "Event archive unavailable, falling back to state file", "error", err)
		}
	}

	store, err := openStore()
	if err != nil {
		return nil, err
	}
	return dropNoProgress(store.EventsSince(since)), nil
}

func dropNoProgress(events []domain.ChangeEvent) []domain.ChangeEvent {
	kept := events[:0]
	for _, event := range events {
		if event.Classification != domain.ClassNone {
			kept = append(kept, event)
		}
	}
	return kept
}
