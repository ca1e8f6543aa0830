package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/store"
)

var (
	runsDB    string
	runsLimit int
	runsShow  string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List analysis runs recorded in a database",
	Long: `List the runs an earlier analyze --db recorded, newest first.
--show prints one run's reconstructed transactions grouped by source
journal.

Examples:
  termlens runs --db runs.db
  termlens runs --db runs.db --show 2f1c...`,
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().StringVar(&runsDB, "db", "", "SQLite database written by analyze (required)")
	runsCmd.MarkFlagRequired("db")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 0, "maximum runs to list (default 50)")
	runsCmd.Flags().StringVar(&runsShow, "show", "", "run ID whose transactions to print")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	st, err := store.Open(runsDB)
	if err != nil {
		return err
	}
	defer st.Close()

	if runsShow != "" {
		return showRun(st, runsShow)
	}

	runs, err := st.Runs(runsLimit)
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(runs)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %s  discarded %d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.Archive, r.Discarded)
	}
	return nil
}

func showRun(st *store.Store, runID string) error {
	byFile, err := st.Transactions(runID)
	if err != nil {
		return err
	}
	if len(byFile) == 0 {
		return fmt.Errorf("run %s has no transactions", runID)
	}

	if jsonOut {
		return printJSON(byFile)
	}

	sources := make([]string, 0, len(byFile))
	for src := range byFile {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	r := render.New(os.Stdout)
	for _, src := range sources {
		fmt.Printf("%s\n", src)
		r.Transactions(byFile[src])
	}
	return nil
}
