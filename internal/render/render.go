// Package render prints human-facing summaries of analysis results.
// Machine consumers should ask for JSON instead; rendering is lossy.
package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/termlens/termlens/internal/report"
)

var (
	styleHeading = lipgloss.NewStyle().Bold(true)
	styleLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
	styleGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))  // green
	styleBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	styleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("220")) // yellow
	styleFaint   = lipgloss.NewStyle().Faint(true)
)

// Renderer writes formatted summaries to a stream.
type Renderer struct {
	w io.Writer
}

// New returns a Renderer writing to w.
func New(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// Buckets prints category counts and the files in each bucket.
func (r *Renderer) Buckets(buckets map[string][]string) {
	fmt.Fprintln(r.w, styleHeading.Render("Categories"))
	cats := make([]string, 0, len(buckets))
	for c := range buckets {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		files := buckets[cat]
		fmt.Fprintf(r.w, "  %s (%d)\n", cat, len(files))
		for _, f := range files {
			fmt.Fprintf(r.w, "    %s\n", styleLabel.Render(f))
		}
	}
}

// Transactions prints a transaction table without the raw log column.
func (r *Renderer) Transactions(recs []report.TransactionRecord) {
	fmt.Fprintln(r.w, styleHeading.Render("Transactions"))
	fmt.Fprintf(r.w, "  %-24s %-8s %-8s %10s  %-20s %s\n",
		"ID", "START", "END", "DURATION", "TYPE", "STATE")
	for _, t := range recs {
		fmt.Fprintf(r.w, "  %-24s %-8s %-8s %9.1fs  %-20s %s\n",
			t.ID, orDash(t.Start), orDash(t.End), t.Duration, orDash(t.Type), stateTag(t.State))
	}
}

// Flow prints an annotated screen flow.
func (r *Renderer) Flow(recs []report.ScreenFlowRecord) {
	fmt.Fprintln(r.w, styleHeading.Render("Screen flow"))
	for _, f := range recs {
		fmt.Fprintf(r.w, "  %s  %-28s %6.1fs\n", styleLabel.Render(f.Timestamp), f.Screen, f.Duration)
	}
}

// FlowComparison prints two screen sequences side by side. Shared steps
// carry an equals marker, steps unique to one side a tilde.
func (r *Renderer) FlowComparison(a, b []string, maskA, maskB []bool) {
	fmt.Fprintln(r.w, styleHeading.Render("Flow comparison"))
	fmt.Fprintf(r.w, "  %-32s %s\n", "A", "B")
	rows := len(a)
	if len(b) > rows {
		rows = len(b)
	}
	for i := 0; i < rows; i++ {
		left, right := "", ""
		if i < len(a) {
			left = flowStep(a[i], maskA[i])
		}
		if i < len(b) {
			right = flowStep(b[i], maskB[i])
		}
		fmt.Fprintf(r.w, "  %s %s\n", left, right)
	}
}

func flowStep(screen string, matched bool) string {
	padded := fmt.Sprintf("%-32s", markFor(matched)+" "+screen)
	if matched {
		return styleGood.Render(padded)
	}
	return styleFaint.Render(padded)
}

func markFor(matched bool) string {
	if matched {
		return "="
	}
	return "~"
}

// CounterBlocks prints each counter snapshot as a compact table.
func (r *Renderer) CounterBlocks(recs []report.CounterBlockRecord) {
	for _, block := range recs {
		fmt.Fprintf(r.w, "%s %s\n", styleHeading.Render("Counters"), styleLabel.Render(block.Timestamp))
		fmt.Fprintf(r.w, "  %-3s %-3s %-6s %-12s %-4s %8s %8s %8s\n",
			"NO", "TY", "ID", "UNIT", "CCY", "VAL", "REJ", "MAX")
		for _, row := range block.Data {
			fmt.Fprintf(r.w, "  %-3s %-3s %-6s %-12s %-4s %8s %8s %8s\n",
				row.No, row.Ty, row.ID, row.UnitName, row.Currency, row.Val, row.Rej, row.Max)
		}
	}
}

// RegistryDiff prints comparison totals followed by the entries.
func (r *Renderer) RegistryDiff(rec report.RegistryDiffRecord) {
	fmt.Fprintln(r.w, styleHeading.Render("Registry diff"))
	fmt.Fprintf(r.w, "  %s vs %s\n", rec.FileA, rec.FileB)
	fmt.Fprintf(r.w, "  added %d  removed %d  changed %d  identical %d\n",
		len(rec.Added), len(rec.Removed), len(rec.Changed), rec.Identical)
	for _, e := range rec.Added {
		fmt.Fprintf(r.w, "  %s [%s] %s = %s\n", styleGood.Render("+"), e.Section, e.Key, e.Value)
	}
	for _, e := range rec.Removed {
		fmt.Fprintf(r.w, "  %s [%s] %s = %s\n", styleBad.Render("-"), e.Section, e.Key, e.Value)
	}
	for _, c := range rec.Changed {
		fmt.Fprintf(r.w, "  %s [%s] %s: %s => %s\n", styleWarn.Render("~"), c.Section, c.Key, c.ValueA, c.ValueB)
	}
}

// Summary prints the analyze rollup for a bundle.
func (r *Renderer) Summary(b *report.Bundle) {
	fmt.Fprintln(r.w, styleHeading.Render("Analysis summary"))
	fmt.Fprintf(r.w, "  archive    %s\n", b.Archive)
	fmt.Fprintf(r.w, "  run        %s\n", b.RunID)

	total := 0
	cats := make([]string, 0, len(b.Buckets))
	for c, files := range b.Buckets {
		cats = append(cats, c)
		total += len(files)
	}
	sort.Strings(cats)
	fmt.Fprintf(r.w, "  files      %d\n", total)
	for _, cat := range cats {
		fmt.Fprintf(r.w, "    %-18s %d\n", cat, len(b.Buckets[cat]))
	}

	txns := 0
	for _, recs := range b.Transactions {
		txns += len(recs)
	}
	fmt.Fprintf(r.w, "  transactions %d\n", txns)
	if b.Stats.Count > 0 {
		fmt.Fprintf(r.w, "  duration   min %.1fs  avg %.1fs  max %.1fs\n",
			b.Stats.Min, b.Stats.Avg, b.Stats.Max)
	}
	if b.Discarded > 0 {
		fmt.Fprintf(r.w, "  %s\n", styleWarn.Render(
			fmt.Sprintf("discarded  %d unterminated transaction candidates", b.Discarded)))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func stateTag(state string) string {
	switch state {
	case "Successful":
		return styleGood.Render(state)
	case "Unsuccessful":
		return styleBad.Render(state)
	default:
		return styleWarn.Render(state)
	}
}
