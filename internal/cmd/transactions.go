package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/config"
	"github.com/termlens/termlens/internal/journal"
	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/report"
	"github.com/termlens/termlens/internal/textenc"
)

var transactionsMapping string

var transactionsCmd = &cobra.Command{
	Use:   "transactions <journal>",
	Short: "Reconstruct the transactions in a customer journal",
	Long: `Segment a customer journal into discrete transactions using the
vendor's transaction mapping: which event IDs open, chain and close a
transaction, and how raw function codes map to display names.

Example:
  termlens transactions CustomerJournal20240115.jrn --config tx.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runTransactions,
}

func init() {
	transactionsCmd.Flags().StringVar(&transactionsMapping, "config", "", "vendor transaction mapping XML (required)")
	transactionsCmd.MarkFlagRequired("config")
	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, args []string) error {
	rules, err := config.LoadMapping(transactionsMapping)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	text, _ := textenc.DecodeChain(data, textenc.JournalChain)
	seg := journal.NewSegmenter(logger, rules)
	recs := report.TransactionRecords(seg.Segment(journal.ParseLines(text), fileStem(args[0])))

	if n := seg.Discarded(); n > 0 {
		logger.Warn().Int64("count", n).Msg("start markers without a matching end")
	}

	if jsonOut {
		return printJSON(recs)
	}
	render.New(os.Stdout).Transactions(recs)
	return nil
}

// fileStem is the base name without its extension, the identity under
// which a journal's transactions are reported.
func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
