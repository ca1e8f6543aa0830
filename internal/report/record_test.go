package report

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/termlens/termlens/internal/counters"
	"github.com/termlens/termlens/internal/journal"
	"github.com/termlens/termlens/internal/registry"
	"github.com/termlens/termlens/internal/uiflow"
)

func clock(t *testing.T, s string) *time.Time {
	t.Helper()
	v, err := time.Parse("15:04:05", s)
	if err != nil {
		t.Fatal(err)
	}
	return &v
}

func TestTransactionRecordFieldNames(t *testing.T) {
	txn := journal.Transaction{
		ID:       "T1",
		Start:    clock(t, "10:00:00"),
		End:      clock(t, "10:00:09"),
		Duration: 9,
		Type:     "Cash Withdrawal",
		State:    journal.Successful,
		Log:      "10:00:00 3201 Transaction no. 'T1'",
		Source:   "journal.jrn",
	}

	data, err := json.Marshal(NewTransactionRecord(txn))
	if err != nil {
		t.Fatal(err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{
		"Transaction ID", "Start Time", "End Time", "Duration (seconds)",
		"Transaction Type", "End State", "Transaction Log", "Source File",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("marshaled record missing key %q", key)
		}
	}
	if m["Start Time"] != "10:00:00" || m["End Time"] != "10:00:09" {
		t.Errorf("times = %v / %v", m["Start Time"], m["End Time"])
	}
	if m["End State"] != "Successful" {
		t.Errorf("End State = %v", m["End State"])
	}
}

func TestTransactionRecordMissingClocks(t *testing.T) {
	rec := NewTransactionRecord(journal.Transaction{ID: "X"})
	if rec.Start != "" || rec.End != "" {
		t.Errorf("nil clocks should render empty, got %q / %q", rec.Start, rec.End)
	}
}

func TestFlowRecords(t *testing.T) {
	at, _ := time.Parse("15:04:05", "10:00:05")
	recs := FlowRecords([]uiflow.FlowEntry{{Screen: "PinEntry", Time: at, Duration: 4.5}})
	if len(recs) != 1 {
		t.Fatalf("len = %d", len(recs))
	}
	if recs[0].Screen != "PinEntry" || recs[0].Timestamp != "10:00:05" || recs[0].Duration != 4.5 {
		t.Errorf("record = %+v", recs[0])
	}

	data, err := json.Marshal(recs[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"screen"`, `"timestamp"`, `"duration"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled flow missing %s: %s", key, data)
		}
	}
}

func TestCounterRecords(t *testing.T) {
	blocks := []counters.Block{{
		Seq:       "12",
		Timestamp: "250115 10:22:33.17",
		Rows:      []counters.Row{{No: "1", Ty: "2", ID: "1001", UnitName: "CASS1", Currency: "EUR", Val: "50"}},
	}}

	recs := CounterRecords(blocks)
	if len(recs) != 1 || recs[0].Timestamp != "250115 10:22:33.17" {
		t.Fatalf("recs = %+v", recs)
	}

	data, err := json.Marshal(recs[0])
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"timestamp"`, `"data"`, `"No"`, `"UnitName"`, `"Currency"`, `"Status2"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled block missing %s: %s", key, data)
		}
	}
}

func TestRegistryDiffRecord(t *testing.T) {
	d := registry.Diff{
		Added:   []registry.Entry{{Section: "S2", Key: "New", Value: `"2"`}},
		Removed: []registry.Entry{{Section: "S1", Key: "Gone", Value: `"1"`}},
		Changed: []registry.Change{{Section: "S", Key: "K", ValueA: `"A"`, ValueB: `"B"`}},
	}

	rec := NewRegistryDiffRecord("before.reg.txt", "after.reg.txt", d)
	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"Device Path"`, `"Value_A"`, `"Value_B"`, `"identical_count"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled diff missing %s: %s", key, data)
		}
	}
	if rec.Changed[0].ValueA != `"A"` {
		t.Errorf("ValueA = %q, quotes must survive", rec.Changed[0].ValueA)
	}
}
