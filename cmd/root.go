// Package cmd implements the libwatch command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/libwatch/internal/config"
	"github.com/zjrosen/libwatch/internal/infrastructure/statefile"
	"github.com/zjrosen/libwatch/internal/log"
	"github.com/zjrosen/libwatch/internal/monitor/domain"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "libwatch",
	Short: "Track library releases and grade what changed",
	Long: `libwatch watches a configured set of libraries on their package registry,
detects version changes, classifies each change (patch, minor, major, or
unrecognized format), and maps changes that need attention to study material
matched to your skill level.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := log.Init(cfg.LogPath, verbose); err != nil {
			return fmt.Errorf("initializing log: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		log.Close()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.libwatch/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// openStore opens the durable state store with the configured policy.
func openStore() (*statefile.Store, error) {
	policy := domain.Policy{ZeroMajorMinorBreaking: cfg.ZeroMajorMinorBreaking}
	return statefile.Open(cfg.StatePath, policy)
}

// libraryMetas builds the configured identity map keyed by library name.
func libraryMetas() map[string]domain.LibraryMeta {
	metas := make(map[string]domain.LibraryMeta, len(cfg.Libraries))
	for _, lib := range cfg.Libraries {
		metas[lib.Name] = domain.LibraryMeta{
			Name:        lib.Name,
			DisplayName: lib.DisplayName,
			Category:    lib.Category,
			Tags:        lib.Tags,
		}
	}
	return metas
}
