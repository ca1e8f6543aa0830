package counters

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func extract(text string) []Block {
	return NewExtractor(zerolog.Nop(), "").Extract(text)
}

func TestExtractBlock(t *testing.T) {
	text := strings.Join([]string{
		"1234 250115 10:22:33.17 CUINFO counter dump",
		"No Ty ID UnitName Cur Val Init Actn Rej Safe Min Max",
		"1 4 1001 CASS1 EUR 500 600 10 2 0 0 2000 OK OK",
		"2 4 1002 CASS2 EUR 200 300 5 1 0 0 2000 OK LOW",
		"   continuation detail line",
		"99 4 9999 PHANTOM EUR 0 0 0 0 0 0 0 OK OK",
		"-------------------------------------------",
		"",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	b := blocks[0]
	if b.Seq != "1234" {
		t.Errorf("Seq = %q, want 1234", b.Seq)
	}
	if b.Timestamp != "250115 10:22:33.17" {
		t.Errorf("Timestamp = %q", b.Timestamp)
	}
	if b.When.IsZero() {
		t.Error("When not parsed")
	}
	if len(b.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(b.Rows))
	}

	r := b.Rows[0]
	if r.No != "1" || r.Ty != "4" || r.ID != "1001" || r.UnitName != "CASS1" {
		t.Errorf("row identity = %+v", r)
	}
	if r.Currency != "EUR" {
		t.Errorf("Currency = %q, want EUR", r.Currency)
	}
	if r.Val != "500" || r.Init != "600" || r.Actn != "10" || r.Rej != "2" {
		t.Errorf("counters = %+v", r)
	}
	if r.Safe != "0" || r.Min != "0" || r.Max != "2000" {
		t.Errorf("bounds = %+v", r)
	}
	if r.Status1 != "OK" || r.Status2 != "OK" {
		t.Errorf("status = %+v", r)
	}
	if b.Rows[1].Status2 != "LOW" {
		t.Errorf("Rows[1].Status2 = %q, want LOW", b.Rows[1].Status2)
	}
}

func TestExtractTimestampOnPrecedingLine(t *testing.T) {
	text := strings.Join([]string{
		"5678 250115 11:00:00.00",
		"CUINFO periodic dump",
		"1 4 100 C1 EUR 10 20 1 0 0 0 99 OK OK",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0].Timestamp != "250115 11:00:00.00" {
		t.Errorf("Timestamp = %q", blocks[0].Timestamp)
	}
	if blocks[0].Seq != "5678" {
		t.Errorf("Seq = %q", blocks[0].Seq)
	}
}

func TestExtractBlocksNeverMerge(t *testing.T) {
	text := strings.Join([]string{
		"1111 250115 12:00:00.00 CUINFO snap",
		"1 4 100 C1 EUR 10 20 1 0 0 0 99 OK OK",
		"1111 250115 12:00:00.00 CUINFO snap",
		"2 4 200 C2 EUR 30 40 2 0 0 0 99 OK OK",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 2 {
		t.Fatalf("len(blocks) = %d, want 2 distinct blocks", len(blocks))
	}
	if blocks[0].Timestamp != blocks[1].Timestamp {
		t.Errorf("timestamps differ: %q vs %q", blocks[0].Timestamp, blocks[1].Timestamp)
	}
	if len(blocks[0].Rows) != 1 || len(blocks[1].Rows) != 1 {
		t.Errorf("row counts = %d, %d, want 1 and 1", len(blocks[0].Rows), len(blocks[1].Rows))
	}
	if blocks[0].Rows[0].No != "1" || blocks[1].Rows[0].No != "2" {
		t.Errorf("rows landed in the wrong blocks")
	}
}

func TestExtractBodyStopsAtTimestampLine(t *testing.T) {
	text := strings.Join([]string{
		"1111 250115 12:00:00.00 CUINFO snap",
		"1 4 100 C1 EUR 10 20 1 0 0 0 99 OK OK",
		"2222 250115 12:00:05.00",
		"2 4 200 C2 EUR 30 40 2 0 0 0 99 OK OK",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if len(blocks[0].Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1; body must stop at the timestamp line", len(blocks[0].Rows))
	}
}

func TestExtractRowWithoutCurrency(t *testing.T) {
	text := strings.Join([]string{
		"1234 250115 10:00:00.00 CUINFO dump",
		"1 4 1001 RECYCLER 500 600 10 2 0 0 2000 OK OK",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 || len(blocks[0].Rows) != 1 {
		t.Fatalf("blocks = %+v", blocks)
	}
	r := blocks[0].Rows[0]
	if r.Currency != "" {
		t.Errorf("Currency = %q, want empty", r.Currency)
	}
	if r.Val != "500" || r.Max != "2000" {
		t.Errorf("row = %+v", r)
	}
}

func TestExtractShortRowDefaults(t *testing.T) {
	text := strings.Join([]string{
		"1234 250115 10:00:00.00 CUINFO dump",
		"3 4 1003",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 || len(blocks[0].Rows) != 1 {
		t.Fatalf("blocks = %+v", blocks)
	}
	r := blocks[0].Rows[0]
	if r.No != "3" || r.Ty != "4" || r.ID != "1003" {
		t.Errorf("row = %+v", r)
	}
	if r.UnitName != "" || r.Val != "" || r.Status2 != "" {
		t.Errorf("short row should default to empty fields: %+v", r)
	}
}

func TestExtractMarkerWithoutTimestamp(t *testing.T) {
	text := strings.Join([]string{
		"CUINFO dump with no stamp anywhere",
		"1 4 100 C1 EUR 10 20 1 0 0 0 99 OK OK",
	}, "\n")

	blocks := extract(text)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if blocks[0].Timestamp != "" || !blocks[0].When.IsZero() {
		t.Errorf("expected empty stamp, got %q", blocks[0].Timestamp)
	}
	if len(blocks[0].Rows) != 1 {
		t.Errorf("len(Rows) = %d, want 1", len(blocks[0].Rows))
	}
}

func TestExtractCustomMarker(t *testing.T) {
	text := strings.Join([]string{
		"7 250115 09:00:00.00 CASHINFO dump",
		"1 4 100 C1 EUR 10 20 1 0 0 0 99 OK OK",
	}, "\n")

	e := NewExtractor(zerolog.Nop(), "CASHINFO")
	blocks := e.Extract(text)
	if len(blocks) != 1 {
		t.Fatalf("len(blocks) = %d, want 1", len(blocks))
	}
	if extract(text) != nil {
		t.Error("default marker should not match CASHINFO text")
	}
}
