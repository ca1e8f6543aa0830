package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/counters"
	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/report"
	"github.com/termlens/termlens/internal/textenc"
)

var countersCmd = &cobra.Command{
	Use:   "counters <trace>",
	Short: "Extract hardware counter snapshots from a trace log",
	Long: `Scan a trace or error log for the counter dumps the terminal firmware
prints behind its marker token, and show each snapshot's per-cassette
rows. The marker defaults to CUINFO and can be changed in the settings
file.

Example:
  termlens counters SysTrace20240115.prn`,
	Args: cobra.ExactArgs(1),
	RunE: runCounters,
}

func init() {
	rootCmd.AddCommand(countersCmd)
}

func runCounters(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	text, _ := textenc.DecodeChain(data, textenc.JournalChain)
	blocks := counters.NewExtractor(logger, tool.CounterMarker).Extract(text)
	recs := report.CounterRecords(blocks)

	if jsonOut {
		return printJSON(recs)
	}
	render.New(os.Stdout).CounterBlocks(recs)
	return nil
}
