// Package archive extracts entries from terminal diagnostic ZIPs by walking
// central-directory records directly. Field archives are routinely truncated,
// concatenated or partially corrupt, so the reader never trusts the
// end-of-central-directory pointer and recovers what it can entry by entry.
package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog"

	"github.com/termlens/termlens/internal/textenc"
)

var (
	cdSig = []byte("PK\x01\x02")
	lhSig = []byte("PK\x03\x04")
)

const (
	cdRecordSize = 46
	lhRecordSize = 30

	methodStore   = 0
	methodDeflate = 8

	// recoveryWindow bounds the search around a bad local-header offset.
	recoveryWindow = 64

	// DefaultMaxDepth bounds nested-archive recursion.
	DefaultMaxDepth = 5
)

// Entry is a read-only view of one central-directory record.
type Entry struct {
	Name              string
	Method            uint16
	CompressedSize    uint32
	UncompressedSize  uint32
	LocalHeaderOffset uint32
}

// Reader extracts relevant entries from ZIP buffers held in memory,
// recursing into nested archives up to a depth budget.
type Reader struct {
	log      zerolog.Logger
	maxDepth int
}

// NewReader returns a Reader with the given nested-archive depth budget.
// A non-positive budget falls back to DefaultMaxDepth.
func NewReader(log zerolog.Logger, maxDepth int) *Reader {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Reader{log: log, maxDepth: maxDepth}
}

// Extract returns the decompressed bytes of every entry accepted by the
// relevance predicate, keyed by basename. Name collisions keep the first
// occurrence and rename later ones name_1.ext, name_2.ext and so on.
// Nested archives are recursed into and merged first-seen-wins. Individual
// bad entries are skipped with a diagnostic; Extract fails only when the
// buffer is empty or holds no central-directory signature at all.
func (r *Reader) Extract(data []byte, relevant func(string) bool) (map[string][]byte, error) {
	if len(data) == 0 {
		return nil, ErrInvalidArchive
	}
	found, hits := r.walk(data, relevant, r.maxDepth)
	if hits == 0 {
		return nil, ErrInvalidArchive
	}
	return found, nil
}

func (r *Reader) walk(data []byte, relevant func(string) bool, depth int) (map[string][]byte, int) {
	found := make(map[string][]byte)
	hits := 0
	pos := 0

	for {
		idx := bytes.Index(data[pos:], cdSig)
		if idx < 0 {
			break
		}
		pos += idx
		hits++

		if pos+cdRecordSize > len(data) {
			r.log.Warn().Int("offset", pos).Msg("central directory record truncated")
			break
		}

		entry, err := parseRecord(data, pos)
		if err != nil {
			r.log.Warn().Int("offset", pos).Err(err).Msg("skipping unparsable record")
			pos += 4
			continue
		}

		base := path.Base(entry.Name)
		nested := strings.HasSuffix(strings.ToLower(base), ".zip")
		if !nested && !relevant(entry.Name) {
			pos += 4
			continue
		}

		body, err := entry.payload(data)
		if err != nil {
			r.log.Warn().Err(&EntryError{Name: entry.Name, Err: err}).Msg("skipping entry")
			pos += 4
			continue
		}

		if nested {
			if depth <= 0 {
				r.log.Warn().Str("entry", entry.Name).Msg("nested archive depth budget exhausted")
			} else {
				inner, innerHits := r.walk(body, relevant, depth-1)
				if innerHits == 0 {
					r.log.Warn().Str("entry", entry.Name).Msg("nested archive has no central directory")
				}
				for k, v := range inner {
					if _, ok := found[k]; !ok {
						found[k] = v
					}
				}
			}
		} else {
			found[uniqueKey(found, base)] = body
		}

		pos += 4
	}

	return found, hits
}

// uniqueKey resolves basename collisions by appending a numeric suffix
// before the extension. The first occupant keeps the plain name.
func uniqueKey(found map[string][]byte, base string) string {
	if _, ok := found[base]; !ok {
		return base
	}
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; ; i++ {
		key := fmt.Sprintf("%s_%d%s", stem, i, ext)
		if _, ok := found[key]; !ok {
			return key
		}
	}
}

// parseRecord decodes the fixed 46-byte central-directory record at pos and
// its variable-length filename.
func parseRecord(data []byte, pos int) (Entry, error) {
	fnameLen := int(binary.LittleEndian.Uint16(data[pos+28:]))

	nameStart := pos + cdRecordSize
	nameEnd := nameStart + fnameLen
	if nameEnd > len(data) {
		return Entry{}, fmt.Errorf("filename truncated")
	}

	raw := data[nameStart:nameEnd]
	var name string
	if utf8.Valid(raw) {
		name = string(raw)
	} else {
		name, _ = textenc.Latin1.Decode(raw)
	}
	name = strings.ReplaceAll(name, `\`, "/")

	return Entry{
		Name:              name,
		Method:            binary.LittleEndian.Uint16(data[pos+10:]),
		CompressedSize:    binary.LittleEndian.Uint32(data[pos+20:]),
		UncompressedSize:  binary.LittleEndian.Uint32(data[pos+24:]),
		LocalHeaderOffset: binary.LittleEndian.Uint32(data[pos+42:]),
	}, nil
}

// payload locates the entry's local header, recovering from a stale offset
// by scanning a small window for the signature, then decompresses the data.
// Only store and raw deflate are supported.
func (e *Entry) payload(data []byte) ([]byte, error) {
	off := int(e.LocalHeaderOffset)
	if off+lhRecordSize > len(data) {
		return nil, fmt.Errorf("local header truncated at %d", off)
	}

	if !bytes.Equal(data[off:off+4], lhSig) {
		from := off - recoveryWindow
		if from < 0 {
			from = 0
		}
		to := off + recoveryWindow
		if to > len(data) {
			to = len(data)
		}
		idx := bytes.Index(data[from:to], lhSig)
		if idx < 0 {
			return nil, fmt.Errorf("no local header signature near %d", off)
		}
		off = from + idx
		if off+lhRecordSize > len(data) {
			return nil, fmt.Errorf("recovered local header truncated at %d", off)
		}
	}

	fnameLen := int(binary.LittleEndian.Uint16(data[off+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[off+28:]))
	start := off + lhRecordSize + fnameLen + extraLen

	size := int(e.CompressedSize)
	if size == 0 {
		// Some writers leave the central record size zero; fall back to the
		// local header's copy.
		size = int(binary.LittleEndian.Uint32(data[off+18:]))
	}

	var comp []byte
	switch {
	case start >= len(data):
		comp = nil
	case start+size > len(data):
		comp = data[start:]
	default:
		comp = data[start : start+size]
	}

	switch e.Method {
	case methodStore:
		out := make([]byte, len(comp))
		copy(out, comp)
		return out, nil
	case methodDeflate:
		rc := flate.NewReader(bytes.NewReader(comp))
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("inflate: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported compression method %d", e.Method)
	}
}
