package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/report"
	"github.com/termlens/termlens/internal/uiflow"
)

var (
	flowFrom    string
	flowTo      string
	flowCompare string
)

var flowCmd = &cobra.Command{
	Use:   "flow <uijournal>",
	Short: "Show the screen flow recorded in a UI journal",
	Long: `Reduce a UI journal to its screen flow: the ordered sequence of
distinct screens with the seconds spent on each. --from/--to narrow the
window to one transaction's clock span; --compare diffs the flow against
a second journal and marks the screens the two runs share.

Examples:
  termlens flow UIJournal20240115.jrn
  termlens flow UIJournal20240115.jrn --from 10:00:00 --to 10:04:30
  termlens flow UIJournal20240115.jrn --compare UIJournal20240116.jrn`,
	Args: cobra.ExactArgs(1),
	RunE: runFlow,
}

func init() {
	flowCmd.Flags().StringVar(&flowFrom, "from", "", "window start (HH:MM:SS, default: first event)")
	flowCmd.Flags().StringVar(&flowTo, "to", "", "window end (HH:MM:SS, default: last event)")
	flowCmd.Flags().StringVar(&flowCompare, "compare", "", "second UI journal to diff against")
	rootCmd.AddCommand(flowCmd)
}

func runFlow(cmd *cobra.Command, args []string) error {
	flow, err := loadFlow(args[0])
	if err != nil {
		return err
	}

	if flowCompare != "" {
		other, err := loadFlow(flowCompare)
		if err != nil {
			return err
		}
		a, b := uiflow.Screens(flow), uiflow.Screens(other)
		maskA, maskB := uiflow.LCSMasks(a, b)

		if jsonOut {
			return printJSON(map[string]any{
				"screens_a": a,
				"screens_b": b,
				"shared_a":  maskA,
				"shared_b":  maskB,
			})
		}
		render.New(os.Stdout).FlowComparison(a, b, maskA, maskB)
		return nil
	}

	recs := report.FlowRecords(flow)
	if jsonOut {
		return printJSON(recs)
	}
	render.New(os.Stdout).Flow(recs)
	return nil
}

func loadFlow(path string) ([]uiflow.FlowEntry, error) {
	events, err := uiflow.NewParser(logger).ParseFile(path)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("%s: no parsable UI events", path)
	}

	start, end := events[0].Time, events[0].Time
	for _, ev := range events[1:] {
		if ev.Time.Before(start) {
			start = ev.Time
		}
		if ev.Time.After(end) {
			end = ev.Time
		}
	}
	if flowFrom != "" {
		if start, err = time.Parse("15:04:05", flowFrom); err != nil {
			return nil, fmt.Errorf("bad --from value: %w", err)
		}
	}
	if flowTo != "" {
		if end, err = time.Parse("15:04:05", flowTo); err != nil {
			return nil, fmt.Errorf("bad --to value: %w", err)
		}
	}
	return uiflow.ScreenFlow(events, start, end), nil
}
