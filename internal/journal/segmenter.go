// Package journal parses customer journal logs and reconstructs the
// discrete transactions embedded in their interleaved event stream.
package journal

import (
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var (
	txnNoRe    = regexp.MustCompile(`Transaction no\. '([^']*)'`)
	functionRe = regexp.MustCompile(`Function\s+'([^']+)'`)
)

// EndState is the terminal outcome recorded on a transaction's end line.
type EndState string

const (
	Successful   EndState = "Successful"
	Unsuccessful EndState = "Unsuccessful"
	StateUnknown EndState = "Unknown"
)

// Transaction is one reconstructed customer transaction. Start and End
// are times of day on a reference date; nil means the journal never
// yielded a parsable clock value for that boundary.
type Transaction struct {
	ID       string
	Start    *time.Time
	End      *time.Time
	Duration float64
	Type     string
	State    EndState
	Log      string
	Source   string
	StartIdx int
	EndIdx   int
}

// Rules supplies the event IDs that delimit transactions and the table
// mapping raw function codes to display names.
type Rules struct {
	StartIDs  []string
	EndIDs    []string
	ChainIDs  []string
	TypeNames map[string]string
}

// Segmenter carves tokenized journal rows into transactions. It is safe
// for concurrent use across files.
type Segmenter struct {
	log   zerolog.Logger
	rules Rules

	startSet map[string]struct{}
	endSet   map[string]struct{}
	chainSet map[string]struct{}

	discarded atomic.Int64
}

func NewSegmenter(log zerolog.Logger, rules Rules) *Segmenter {
	return &Segmenter{
		log:      log,
		rules:    rules,
		startSet: toSet(rules.StartIDs),
		endSet:   toSet(rules.EndIDs),
		chainSet: toSet(rules.ChainIDs),
	}
}

func toSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}

// Discarded reports how many start or chain markers never found a
// matching end and were dropped.
func (s *Segmenter) Discarded() int64 {
	return s.discarded.Load()
}

// Segment walks the rows and emits one Transaction per matched
// start/end span. Spans never overlap; scanning resumes after each
// accepted end line.
func (s *Segmenter) Segment(rows []RawEventLine, source string) []Transaction {
	var bounds [][2]int
	i := 0
	for i < len(rows) {
		if !s.boundary(rows[i].EventID) {
			i++
			continue
		}
		endIdx := -1
		for j := i + 1; j < len(rows); j++ {
			if s.member(s.endSet, rows[j].EventID) {
				endIdx = j
				break
			}
			// Another boundary right next to the candidate is part of
			// the same session; only a later one signals a new span.
			if s.boundary(rows[j].EventID) && j > i+3 {
				break
			}
		}
		if endIdx < 0 {
			s.discarded.Add(1)
			s.log.Debug().Str("source", source).Int("line", i).Msg("start marker without matching end")
			i++
			continue
		}
		bounds = append(bounds, [2]int{i, endIdx})
		i = endIdx + 1
	}

	txns := make([]Transaction, 0, len(bounds))
	for _, b := range bounds {
		txn := s.build(rows[b[0]:b[1]+1], source)
		txn.StartIdx, txn.EndIdx = b[0], b[1]
		txns = append(txns, txn)
	}
	s.log.Debug().Str("source", source).Int("transactions", len(txns)).Msg("segmented journal")
	return txns
}

func (s *Segmenter) boundary(id string) bool {
	return s.member(s.startSet, id) || s.member(s.chainSet, id)
}

func (s *Segmenter) member(set map[string]struct{}, id string) bool {
	if id == "" {
		return false
	}
	_, ok := set[id]
	return ok
}

func (s *Segmenter) build(seg []RawEventLine, source string) Transaction {
	var start *time.Time
	id := ""

	for _, tid := range s.rules.StartIDs {
		row, ok := firstWithID(seg, tid)
		if !ok {
			continue
		}
		if row.HasTime {
			t := row.Time
			start = &t
		}
		if m := txnNoRe.FindStringSubmatch(row.Message); m != nil && strings.TrimSpace(m[1]) != "" {
			id = m[1]
		} else if start != nil {
			id = source + start.Format("150405")
		} else {
			id = source
		}
		break
	}

	if start == nil {
		for _, tid := range s.rules.ChainIDs {
			row, ok := firstWithID(seg, tid)
			if !ok {
				continue
			}
			if row.HasTime {
				t := row.Time
				start = &t
			}
			if start != nil {
				id = source + start.Format("150405")
			} else {
				id = "CHAIN_" + source
			}
			break
		}
	}

	var end *time.Time
	state := StateUnknown
	for _, tid := range s.rules.EndIDs {
		row, ok := lastWithID(seg, tid)
		if !ok {
			continue
		}
		if row.HasTime {
			t := row.Time
			end = &t
		}
		state = endStateOf(row.Message)
		break
	}

	txnType := "Unknown"
	for _, row := range seg {
		m := functionRe.FindStringSubmatch(row.Message)
		if m == nil {
			continue
		}
		raw := strings.TrimSpace(m[1])
		if name, ok := s.rules.TypeNames[raw]; ok {
			txnType = name
		} else {
			txnType = raw
		}
		break
	}

	var b strings.Builder
	for k, row := range seg {
		ts := "??:??:??"
		if row.HasTime {
			ts = row.Time.Format("15:04:05")
		}
		if k > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s", ts, row.EventID, row.Message)
	}

	// Times are combined on a common reference date, so an end before
	// the start (midnight rollover) yields a negative duration.
	duration := 0.0
	if start != nil && end != nil {
		duration = end.Sub(*start).Seconds()
	}

	return Transaction{
		ID:       id,
		Start:    start,
		End:      end,
		Duration: duration,
		Type:     txnType,
		State:    state,
		Log:      b.String(),
		Source:   source,
	}
}

func endStateOf(msg string) EndState {
	switch {
	case strings.Contains(msg, "end-state'N'") || strings.Contains(msg, "end-state'n'") ||
		strings.Contains(msg, "state 'N'") || strings.Contains(msg, "state 'n'"):
		return Successful
	case strings.Contains(msg, "end-state'E'") || strings.Contains(msg, "end-state'e'") ||
		strings.Contains(msg, "state 'E'") || strings.Contains(msg, "state 'e'") ||
		strings.Contains(msg, "state 'C'") || strings.Contains(msg, "state 'c'"):
		return Unsuccessful
	default:
		return StateUnknown
	}
}

func firstWithID(rows []RawEventLine, id string) (RawEventLine, bool) {
	for _, r := range rows {
		if r.EventID == id {
			return r, true
		}
	}
	return RawEventLine{}, false
}

func lastWithID(rows []RawEventLine, id string) (RawEventLine, bool) {
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].EventID == id {
			return rows[i], true
		}
	}
	return RawEventLine{}, false
}
