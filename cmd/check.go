package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/libwatch/internal/infrastructure/sqlite"
	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/application"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
	"github.com/zjrosen/libwatch/internal/monitor/infrastructure"
	"github.com/zjrosen/libwatch/internal/tracing"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every tracked library for a new release",
	Long: `Fetch the current version of every configured library from the registry,
classify each change against the last known version, and persist the result.
A library that fails to fetch is reported and skipped; the rest of the cycle
proceeds.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	shutdown, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Warn(log.CatConfig, "Trace shutdown failed", "error", err)
		}
	}()

	store, err := openStore()
	if err != nil {
		return err
	}

	// The archive is a derived index; failing to open it degrades history
	// queries but never blocks a check.
	var archive application.EventArchiver
	if cfg.ArchivePath != "" {
		db, err := sqlite.NewDB(cfg.ArchivePath)
		if err != nil {
			log.Warn(log.CatDB, "Event archive unavailable", "path", cfg.ArchivePath, "error", err)
			fmt.Println(mutedStyle.Render("warning: event archive unavailable, history will fall back to the state file"))
		} else {
			defer func() { _ = db.Close() }()
			archive = db.EventArchive()
		}
	}

	metas := libraryMetas()
	detector := application.NewDetector(application.DetectorConfig{
		Client: infrastructure.NewPyPIClient(infrastructure.PyPIConfig{
			BaseURL:  cfg.Registry.BaseURL,
			Timeout:  cfg.Registry.Timeout,
			CacheTTL: cfg.Registry.CacheTTL,
		}),
		Store:        store,
		Archive:      archive,
		Metas:        metas,
		Workers:      cfg.Registry.Workers,
		FetchTimeout: cfg.Registry.Timeout,
	})

	ids := cfg.LibraryNames()
	if len(ids) == 0 {
		fmt.Println("No libraries configured. Run 'libwatch init' to create a starter config.")
		return nil
	}

	fmt.Printf("Checking %d libraries...\n\n", len(ids))
	result := detector.RunCycle(ctx, ids)

	changed := 0
	for _, event := range result.Events {
		if event.Classification == domain.ClassNone {
			continue
		}
		changed++
		from := event.FromRaw
		if from == "" {
			from = mutedStyle.Render("(new)")
		}
		action := event.RecommendedAction(metas[event.Library].Tags)
		fmt.Printf("  %s  %s -> %s  %s  %s\n",
			headerStyle.Render(event.Library), from, event.ToRaw,
			renderClassification(event.Classification, event.Breaking),
			renderAction(action))
	}
	if changed == 0 {
		fmt.Println("  Everything up to date.")
	}

	if len(result.Failures) > 0 {
		fmt.Println()
		for _, failure := range result.Failures {
			fmt.Printf("  %s %s: %v\n", errorStyle.Render("!"), failure.Library, failure.Err)
		}
	}

	fmt.Printf("\n%d checked, %d changed, %d failed\n",
		len(ids), changed, len(result.Failures))

	if len(result.Failures) == len(ids) {
		return fmt.Errorf("all %d libraries failed to check", len(ids))
	}
	return nil
}
