package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:     "buildsite",
	Short:   "Website API, bundle host and admin console for a construction company",
	Version: version,
	Long: `buildsite runs the REST API behind the company website (blog, careers,
contact), hosts the built client bundle, and manages content from the terminal.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment from this file instead of .env")
}

func envFiles() []string {
	if envFile == "" {
		return nil
	}
	return []string{envFile}
}
