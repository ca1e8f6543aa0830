package journal

import (
	"regexp"
	"strings"
	"time"
)

var lineRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\s+(\d+)\s*(.*)`)

// RawEventLine is one tokenized journal line. EventID is empty and
// HasTime false when the line continues the previous message; HasTime
// is also false when the clock field does not parse as a real time.
type RawEventLine struct {
	Time    time.Time
	HasTime bool
	EventID string
	Message string
}

// ParseLines tokenizes journal text. Blank lines and the all-asterisk
// separator lines the terminal prints between sessions are dropped;
// everything else is kept so that span indexes stay aligned with the
// visible log.
func ParseLines(text string) []RawEventLine {
	var rows []RawEventLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || allAsterisks(line) {
			continue
		}
		m := lineRe.FindStringSubmatch(line)
		if m == nil {
			rows = append(rows, RawEventLine{Message: line})
			continue
		}
		row := RawEventLine{EventID: m[2], Message: m[3]}
		if t, err := time.Parse("15:04:05", m[1]); err == nil {
			row.Time = t
			row.HasTime = true
		}
		rows = append(rows, row)
	}
	return rows
}

func allAsterisks(line string) bool {
	for _, r := range line {
		if r != '*' {
			return false
		}
	}
	return len(line) > 0
}
