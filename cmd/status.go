package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/zjrosen/libwatch/internal/infrastructure/statefile"
	"github.com/zjrosen/libwatch/internal/log"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the tracked libraries and their current state",
	Long: `Display every tracked library with its last known version, when it was
last checked, and any pending change. With --watch, the table re-renders
whenever the state file changes (e.g. a check running in another terminal).`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "re-render when the state file changes")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if !statusWatch {
		store, err := openStore()
		if err != nil {
			return err
		}
		printStatus(store)
		return nil
	}
	return watchStatus()
}

func printStatus(store *statefile.Store) {
	records := store.Records()
	if len(records) == 0 {
		fmt.Println("No libraries tracked yet. Run 'libwatch check' first.")
		return
	}

	nameWidth := len("LIBRARY")
	versionWidth := len("VERSION")
	for _, rec := range records {
		if len(rec.Display()) > nameWidth {
			nameWidth = len(rec.Display())
		}
		if len(rec.LastKnown) > versionWidth {
			versionWidth = len(rec.LastKnown)
		}
	}

	// Pad before styling: ANSI escapes would throw off %-*s widths.
	fmt.Println(headerStyle.Render(fmt.Sprintf("%-*s  %-*s  %-19s  %s",
		nameWidth, "LIBRARY", versionWidth, "VERSION", "LAST CHECKED", "PENDING")))
	for _, rec := range records {
		pending := mutedStyle.Render("-")
		if event, ok := rec.LastEvent(); ok && rec.Pending() {
			pending = renderClassification(event.Classification, event.Breaking)
		}
		fmt.Printf("%-*s  %-*s  %-19s  %s\n",
			nameWidth, rec.Display(),
			versionWidth, rec.LastKnown,
			rec.LastChecked.Local().Format("2006-01-02 15:04:05"),
			pending)
	}

	if last := store.LastFullCheck(); !last.IsZero() {
		fmt.Printf("\nLast full check: %s\n", mutedStyle.Render(last.Local().Format(time.RFC1123)))
	}
}

// watchStatus re-renders on state-file changes until interrupted. The
// watcher is on the parent directory because the store replaces the file by
// rename, which drops a watch placed on the file itself.
func watchStatus() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(cfg.StatePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	render := func() {
		fmt.Print("\033[2J\033[H")
		store, err := openStore()
		if err != nil {
			fmt.Println(errorStyle.Render("Error: ") + err.Error())
			return
		}
		printStatus(store)
		fmt.Println(mutedStyle.Render("\nWatching for changes. Ctrl+C to exit."))
	}
	render()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	// Renames and writes arrive in bursts; debounce so one commit paints
	// the table once.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(cfg.StatePath) {
				continue
			}
			pending = time.After(100 * time.Millisecond)
		case <-pending:
			pending = nil
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn(log.CatStore, "File watcher error", "error", err)
		case <-interrupt:
			fmt.Println()
			return nil
		}
	}
}
