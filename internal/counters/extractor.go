// Package counters locates hardware counter snapshots inside trace
// logs. A snapshot starts at a marker token, is stamped from the marker
// line or the line right before it, and carries a fixed-width table of
// per-cassette counter rows.
package counters

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMarker is the token the terminal firmware prints in front of
// every counter dump.
const DefaultMarker = "CUINFO"

// maxCassetteNo bounds the cassette id of a plausible counter row.
const maxCassetteNo = 50

var (
	stampRe    = regexp.MustCompile(`^(\d+)\s+(\d{6})\s+(\d{2}:\d{2}:\d{2}\.\d{2})`)
	currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

// noisePrefixes start ruler and banner lines that sit inside a block
// body without being counter rows.
var noisePrefixes = []string{"---", "==="}

// Row is one cassette line of a counter snapshot. All fields stay in
// their textual form; short rows leave trailing fields empty.
type Row struct {
	No       string
	Ty       string
	ID       string
	UnitName string
	Currency string
	Val      string
	Init     string
	Actn     string
	Rej      string
	Safe     string
	Min      string
	Max      string
	Status1  string
	Status2  string
}

// Block is one timestamped counter snapshot. Two marker occurrences
// always yield two blocks, even with identical timestamps.
type Block struct {
	Seq       string
	Timestamp string
	When      time.Time
	Rows      []Row
}

type Extractor struct {
	log    zerolog.Logger
	marker string
}

func NewExtractor(log zerolog.Logger, marker string) *Extractor {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Extractor{log: log, marker: marker}
}

// Extract scans trace text for marker blocks. The body of a block runs
// until the next marker or the next standalone timestamp line.
func (e *Extractor) Extract(text string) []Block {
	lines := strings.Split(text, "\n")

	var blocks []Block
	for i, line := range lines {
		if !strings.Contains(line, e.marker) {
			continue
		}

		block := Block{}
		if m := stampRe.FindStringSubmatch(line); m != nil {
			block.Seq, block.Timestamp, block.When = m[1], m[2]+" "+m[3], parseStamp(m[2], m[3])
		} else if i > 0 {
			if m := stampRe.FindStringSubmatch(lines[i-1]); m != nil {
				block.Seq, block.Timestamp, block.When = m[1], m[2]+" "+m[3], parseStamp(m[2], m[3])
			}
		}
		if block.Timestamp == "" {
			e.log.Debug().Int("line", i).Msg("counter block without timestamp")
		}

		for j := i + 1; j < len(lines); j++ {
			if strings.Contains(lines[j], e.marker) || stampRe.MatchString(lines[j]) {
				break
			}
			if row, ok := parseRow(lines[j]); ok {
				block.Rows = append(block.Rows, row)
			}
		}
		blocks = append(blocks, block)
	}

	e.log.Debug().Int("blocks", len(blocks)).Msg("extracted counter blocks")
	return blocks
}

func parseStamp(date, clock string) time.Time {
	t, err := time.Parse("060102 15:04:05.00", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseRow accepts a body line only when it looks like a cassette
// counter row: flush left, at least three fields, the first two numeric
// and the cassette id within bounds. Everything else is skipped without
// complaint.
func parseRow(line string) (Row, bool) {
	if line == "" || strings.TrimSpace(line) == "" {
		return Row{}, false
	}
	if line[0] == ' ' || line[0] == '\t' {
		return Row{}, false
	}
	for _, p := range noisePrefixes {
		if strings.HasPrefix(line, p) {
			return Row{}, false
		}
	}

	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Row{}, false
	}
	if !allDigits(fields[0]) || !allDigits(fields[1]) {
		return Row{}, false
	}
	no, err := strconv.Atoi(fields[0])
	if err != nil || no > maxCassetteNo {
		return Row{}, false
	}

	rest := fields[2:]
	next := func() string {
		if len(rest) == 0 {
			return ""
		}
		v := rest[0]
		rest = rest[1:]
		return v
	}

	row := Row{No: fields[0], Ty: fields[1], ID: next(), UnitName: next()}
	if len(rest) > 0 && currencyRe.MatchString(rest[0]) {
		row.Currency = next()
	}
	row.Val = next()
	row.Init = next()
	row.Actn = next()
	row.Rej = next()
	row.Safe = next()
	row.Min = next()
	row.Max = next()
	row.Status1 = next()
	row.Status2 = next()
	return row, true
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
