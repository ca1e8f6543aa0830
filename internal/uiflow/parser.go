// Package uiflow parses UI navigation journals and reduces their
// events to per-transaction screen flows.
package uiflow

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/termlens/termlens/internal/textenc"
)

var (
	eventRe     = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2})\s+(\d+)\s+(\w+)\s+([<>*])\s+\[(\d+)\]\s+-\s+(\w+)\s+(result|action):(.+)$`)
	eventDateRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{4})\s+(\d{2}:\d{2}:\d{2})\s+(\d+)\s+(\w+)\s+([<>*])\s+\[(\d+)\]\s+-\s+(\w+)\s+(result|action):(.+)$`)
	fileDateRe  = regexp.MustCompile(`\d{8}`)
)

// Event is one parsed UI journal line.
type Event struct {
	Date      string // DD/MM/YYYY, empty when no date could be derived
	Time      time.Time
	LogID     int
	Module    string
	Direction string
	ViewID    int
	Screen    string
	Kind      string // "result" or "action"
	RawJSON   string
	Payload   map[string]any
}

// Parser turns UI journal text into events. Lines that fail the
// grammar, carry an undecodable payload, or belong to the device
// monitor module (outside its authorization screen) are dropped, and
// exact duplicates are suppressed.
type Parser struct {
	log  zerolog.Logger
	pool fastjson.ParserPool
}

func NewParser(log zerolog.Logger) *Parser {
	return &Parser{log: log}
}

// FileDate recovers the journal's date from the first 8-digit run in
// the file name, rendered DD/MM/YYYY. Empty when the name carries no
// parsable date.
func FileDate(name string) string {
	stem := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	m := fileDateRe.FindString(stem)
	if m == "" {
		return ""
	}
	d, err := time.Parse("20060102", m)
	if err != nil {
		return ""
	}
	return d.Format("02/01/2006")
}

// ParseFile reads and parses a UI journal from disk.
func (p *Parser) ParseFile(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Parse(path, data), nil
}

// Parse decodes and parses journal bytes. The name is only used to
// derive the fallback date for lines without their own date prefix.
func (p *Parser) Parse(name string, data []byte) []Event {
	text, _ := textenc.DecodeChain(data, textenc.JournalChain)
	fileDate := FileDate(name)

	js := p.pool.Get()
	defer p.pool.Put(js)

	var events []Event
	seen := make(map[string]struct{})

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		var date, ts, logID, module, dir, viewID, screen, kind, payload string
		if m := eventDateRe.FindStringSubmatch(line); m != nil {
			date, ts, logID, module, dir, viewID, screen, kind, payload = m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8], m[9]
		} else if m := eventRe.FindStringSubmatch(line); m != nil {
			date = fileDate
			ts, logID, module, dir, viewID, screen, kind, payload = m[1], m[2], m[3], m[4], m[5], m[6], m[7], m[8]
		} else {
			continue
		}

		// The device monitor chatters on every poll; only its
		// authorization screen carries signal.
		if module == "GUIDM" && screen != "DMAuthorization" {
			continue
		}

		val, err := js.Parse(payload)
		if err != nil {
			p.log.Debug().Str("file", name).Str("line", line).Msg("undecodable event payload")
			continue
		}

		key := fmt.Sprintf("%s %s  %s %s %s [%s] - %s %s:%s", date, ts, logID, module, dir, viewID, screen, kind, payload)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		t, err := time.Parse("15:04:05", ts)
		if err != nil {
			p.log.Debug().Str("file", name).Str("clock", ts).Msg("event clock out of range")
			continue
		}
		id, err := strconv.Atoi(logID)
		if err != nil {
			continue
		}
		view, err := strconv.Atoi(viewID)
		if err != nil {
			continue
		}

		events = append(events, Event{
			Date:      date,
			Time:      t,
			LogID:     id,
			Module:    module,
			Direction: dir,
			ViewID:    view,
			Screen:    screen,
			Kind:      kind,
			RawJSON:   payload,
			Payload:   coercePayload(val),
		})
	}

	p.log.Debug().Str("file", name).Int("events", len(events)).Msg("parsed ui journal")
	return events
}

// coercePayload flattens a payload object into scalar values.
// Numeric-looking strings become numbers; everything non-scalar keeps
// its JSON text form.
func coercePayload(val *fastjson.Value) map[string]any {
	obj, err := val.Object()
	if err != nil {
		return nil
	}
	out := make(map[string]any, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		out[string(key)] = coerceValue(v)
	})
	return out
}

func coerceValue(v *fastjson.Value) any {
	switch v.Type() {
	case fastjson.TypeNumber:
		if n, err := v.Int64(); err == nil {
			return n
		}
		f, _ := v.Float64()
		return f
	case fastjson.TypeString:
		s := string(v.GetStringBytes())
		if !strings.Contains(s, ".") {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return n
			}
			return s
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	default:
		return v.String()
	}
}
