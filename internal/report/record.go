// Package report defines the boundary record shapes handed to callers
// and the bundle writer that persists a full analysis run. Field names
// on the wire are stable; downstream tooling indexes them by key.
package report

import (
	"github.com/termlens/termlens/internal/counters"
	"github.com/termlens/termlens/internal/journal"
	"github.com/termlens/termlens/internal/registry"
	"github.com/termlens/termlens/internal/uiflow"
)

const clockLayout = "15:04:05"

// TransactionRecord is the external shape of one reconstructed
// transaction.
type TransactionRecord struct {
	ID       string  `json:"Transaction ID"`
	Start    string  `json:"Start Time"`
	End      string  `json:"End Time"`
	Duration float64 `json:"Duration (seconds)"`
	Type     string  `json:"Transaction Type"`
	State    string  `json:"End State"`
	Log      string  `json:"Transaction Log"`
	Source   string  `json:"Source File"`
}

// NewTransactionRecord converts a segmented transaction to its boundary
// shape. Missing clock values become empty strings.
func NewTransactionRecord(t journal.Transaction) TransactionRecord {
	rec := TransactionRecord{
		ID:       t.ID,
		Duration: t.Duration,
		Type:     t.Type,
		State:    string(t.State),
		Log:      t.Log,
		Source:   t.Source,
	}
	if t.Start != nil {
		rec.Start = t.Start.Format(clockLayout)
	}
	if t.End != nil {
		rec.End = t.End.Format(clockLayout)
	}
	return rec
}

// TransactionRecords converts a slice of transactions.
func TransactionRecords(txns []journal.Transaction) []TransactionRecord {
	recs := make([]TransactionRecord, 0, len(txns))
	for _, t := range txns {
		recs = append(recs, NewTransactionRecord(t))
	}
	return recs
}

// ScreenFlowRecord is one step of an annotated screen flow.
type ScreenFlowRecord struct {
	Screen    string  `json:"screen"`
	Timestamp string  `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// FlowRecords converts screen-flow entries to their boundary shape.
func FlowRecords(entries []uiflow.FlowEntry) []ScreenFlowRecord {
	recs := make([]ScreenFlowRecord, 0, len(entries))
	for _, e := range entries {
		recs = append(recs, ScreenFlowRecord{
			Screen:    e.Screen,
			Timestamp: e.Time.Format(clockLayout),
			Duration:  e.Duration,
		})
	}
	return recs
}

// CounterBlockRecord is one timestamped counter snapshot. Row fields
// marshal under their schema names (No, Ty, ID, UnitName, ...).
type CounterBlockRecord struct {
	Timestamp string         `json:"timestamp"`
	Data      []counters.Row `json:"data"`
}

// CounterRecords converts extracted counter blocks.
func CounterRecords(blocks []counters.Block) []CounterBlockRecord {
	recs := make([]CounterBlockRecord, 0, len(blocks))
	for _, b := range blocks {
		recs = append(recs, CounterBlockRecord{Timestamp: b.Timestamp, Data: b.Rows})
	}
	return recs
}

// RegistryEntryRecord is an added or removed registry value.
type RegistryEntryRecord struct {
	Section string `json:"Device Path"`
	Key     string `json:"Key"`
	Value   string `json:"Value"`
}

// RegistryChangeRecord is a value present on both sides with different
// content.
type RegistryChangeRecord struct {
	Section string `json:"Device Path"`
	Key     string `json:"Key"`
	ValueA  string `json:"Value_A"`
	ValueB  string `json:"Value_B"`
}

// RegistryDiffRecord is the external shape of one registry comparison.
type RegistryDiffRecord struct {
	FileA     string                 `json:"file_a"`
	FileB     string                 `json:"file_b"`
	Added     []RegistryEntryRecord  `json:"added"`
	Removed   []RegistryEntryRecord  `json:"removed"`
	Changed   []RegistryChangeRecord `json:"changed"`
	Identical int                    `json:"identical_count"`
}

// NewRegistryDiffRecord converts a computed diff to its boundary shape.
func NewRegistryDiffRecord(fileA, fileB string, d registry.Diff) RegistryDiffRecord {
	rec := RegistryDiffRecord{
		FileA:     fileA,
		FileB:     fileB,
		Added:     make([]RegistryEntryRecord, 0, len(d.Added)),
		Removed:   make([]RegistryEntryRecord, 0, len(d.Removed)),
		Changed:   make([]RegistryChangeRecord, 0, len(d.Changed)),
		Identical: d.Identical,
	}
	for _, e := range d.Added {
		rec.Added = append(rec.Added, RegistryEntryRecord{Section: e.Section, Key: e.Key, Value: e.Value})
	}
	for _, e := range d.Removed {
		rec.Removed = append(rec.Removed, RegistryEntryRecord{Section: e.Section, Key: e.Key, Value: e.Value})
	}
	for _, c := range d.Changed {
		rec.Changed = append(rec.Changed, RegistryChangeRecord{Section: c.Section, Key: c.Key, ValueA: c.ValueA, ValueB: c.ValueB})
	}
	return rec
}
