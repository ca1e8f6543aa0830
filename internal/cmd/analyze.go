package cmd

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/config"
	"github.com/termlens/termlens/internal/pipeline"
	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/report"
	"github.com/termlens/termlens/internal/store"
)

var (
	analyzeMapping string
	analyzeOut     string
	analyzeDB      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <archive>",
	Short: "Run the full pipeline over a diagnostic archive",
	Long: `Extract an archive in memory, classify every file and parse each
category: customer journals into transactions, UI journals into screen
flows, traces into counter snapshots, registry export pairs into diffs.
The result is one report bundle; --out persists it as JSON (zstd
compressed with a .zst suffix) and --db records it in a SQLite
database for cross-run queries.

Examples:
  termlens analyze diag_20240115.zip --config tx.xml
  termlens analyze diag_20240115.zip --config tx.xml --out run.json.zst --db runs.db`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeMapping, "config", "", "vendor transaction mapping XML (required)")
	analyzeCmd.MarkFlagRequired("config")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "bundle destination (.json or .json.zst)")
	analyzeCmd.Flags().StringVar(&analyzeDB, "db", "", "SQLite database to record the run in")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rules, err := config.LoadMapping(analyzeMapping)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	a := pipeline.NewAnalyzer(logger, tool, rules)
	bundle, err := a.AnalyzeArchive(ctx, filepath.Base(args[0]), data)
	if err != nil {
		return err
	}

	if analyzeOut != "" {
		w, err := report.NewWriter()
		if err != nil {
			return err
		}
		if err := w.Write(analyzeOut, bundle); err != nil {
			return err
		}
		logger.Info().Str("path", analyzeOut).Msg("bundle written")
	}

	if analyzeDB != "" {
		st, err := store.Open(analyzeDB)
		if err != nil {
			return err
		}
		defer st.Close()
		runID, err := st.SaveRun(bundle)
		if err != nil {
			return err
		}
		logger.Info().Str("run", runID).Str("db", analyzeDB).Msg("run recorded")
	}

	if jsonOut {
		return printJSON(bundle)
	}
	render.New(os.Stdout).Summary(bundle)
	return nil
}
