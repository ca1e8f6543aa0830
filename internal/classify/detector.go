package classify

import (
	"regexp"
	"strings"
)

// PatternDetector scores one physical line against the signature of a
// single log dialect. A line counts as a match for the dialect when
// Score reaches Threshold.
type PatternDetector interface {
	Name() string
	Score(line string) int
	Threshold() int
}

var (
	directionRe = regexp.MustCompile(`\s+[<>*]\s+`)
	viewIDRe    = regexp.MustCompile(`\[\d+\]`)
	payloadRe   = regexp.MustCompile(`(result|action):\s*\{.*\}`)

	uiShapeRe     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\s+\d+\s+\w+\s+[<>*]`)
	uiShapeDateRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}\s+\d{2}:\d{2}:\d{2}\s+\d+\s+\w+\s+[<>*]`)

	journalLineRe = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\s+(\d+)\s*(.*)`)

	traceTimeRe = regexp.MustCompile(`\d{2}:\d{2}:\d{2}\.\d{2}`)
	tracePIDRe  = regexp.MustCompile(`PID:\w+\.\w+`)

	errorHeaderRe = regexp.MustCompile(`^\d{2}/\d{2}\s+\d{6}\s+\d{2}:\d{2}:\d{2}\.\d{1,3}\s+\w+\s+\w+\s+PID:\w+\.\w+\s+Data:\d+`)
)

// customerTIDs are the event IDs that dominate genuine customer journals.
var customerTIDs = map[string]struct{}{
	"3201": {},
	"3202": {},
	"3207": {},
	"3217": {},
	"3220": {},
}

// uiDetector recognizes UI navigation journal lines: a direction marker,
// a bracketed view id, a screen separator and a JSON-ish payload.
type uiDetector struct {
	need int
}

func (d uiDetector) Name() string   { return "ui_journal" }
func (d uiDetector) Threshold() int { return d.need }

func (d uiDetector) Score(line string) int {
	n := 0
	if directionRe.MatchString(line) {
		n++
	}
	if viewIDRe.MatchString(line) {
		n++
	}
	if strings.Contains(line, " - ") {
		n++
	}
	if payloadRe.MatchString(line) {
		n++
	}
	if uiShapeRe.MatchString(line) || uiShapeDateRe.MatchString(line) {
		n++
	}
	return n
}

// customerDetector recognizes customer journal lines. The line must carry
// the HH:MM:SS + event id prefix; the remaining indicators are the absence
// of UI markers plus a known transaction event id.
type customerDetector struct {
	need int
}

func (d customerDetector) Name() string   { return "customer_journal" }
func (d customerDetector) Threshold() int { return d.need }

func (d customerDetector) Score(line string) int {
	if allAsterisks(line) {
		return 0
	}
	m := journalLineRe.FindStringSubmatch(line)
	if m == nil {
		return 0
	}
	n := 0
	if !directionRe.MatchString(line) {
		n++
	}
	if !viewIDRe.MatchString(line) {
		n++
	}
	if !strings.Contains(line, " - ") {
		n++
	}
	if !payloadRe.MatchString(line) {
		n++
	}
	if _, ok := customerTIDs[m[2]]; ok {
		n++
	}
	return n
}

// traceDetector recognizes TRC trace lines by fractional timestamp,
// PID marker and Data field together.
type traceDetector struct{}

func (traceDetector) Name() string   { return "trc_trace" }
func (traceDetector) Threshold() int { return 3 }

func (traceDetector) Score(line string) int {
	n := 0
	if traceTimeRe.MatchString(line) {
		n++
	}
	if tracePIDRe.MatchString(line) {
		n++
	}
	if strings.Contains(line, "Data:") {
		n++
	}
	return n
}

// errorDetector recognizes TRC error logs by their dated header line or
// one of the fixed banner lines the error writer emits.
type errorDetector struct{}

func (errorDetector) Name() string   { return "trc_error" }
func (errorDetector) Threshold() int { return 1 }

func (errorDetector) Score(line string) int {
	if errorHeaderRe.MatchString(line) {
		return 1
	}
	if strings.HasPrefix(line, "*** Running") || strings.HasPrefix(line, "Created by") || line == "Process Information:" {
		return 1
	}
	return 0
}

// Header reports a strict dated header match only, without the banner
// alternatives. Header-heavy .prn files are error logs regardless of how
// the looser counts compare.
func (errorDetector) Header(line string) bool {
	return errorHeaderRe.MatchString(line)
}

func allAsterisks(line string) bool {
	for _, r := range line {
		if r != '*' {
			return false
		}
	}
	return len(line) > 0
}

func countMatches(d PatternDetector, lines []string) int {
	n := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if d.Score(line) >= d.Threshold() {
			n++
		}
	}
	return n
}

func countHeaders(lines []string) int {
	var det errorDetector
	n := 0
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if det.Header(line) {
			n++
		}
	}
	return n
}
