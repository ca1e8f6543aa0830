// Package cmd wires the termlens subcommands. Flags and I/O live here;
// the analysis packages stay unaware of the CLI.
package cmd

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/config"
)

var (
	settingsFile string
	jsonOut      bool
	verbose      bool

	logger zerolog.Logger
	tool   config.Tool
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "termlens",
	Short: "Self-service terminal diagnostic log analyzer",
	Long: `termlens unpacks terminal diagnostic archives, classifies the extracted
files and reconstructs what happened at the machine: customer transactions,
UI screen flows, hardware counter snapshots and registry changes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			Level(level).
			With().
			Timestamp().
			Logger()

		var err error
		tool, err = config.Load(settingsFile)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (default: ./termlens.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "machine-readable output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// printJSON writes v to stdout for --json mode.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
