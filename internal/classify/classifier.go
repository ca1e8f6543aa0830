// Package classify assigns extracted diagnostic files to semantic
// categories. Cheap name and folder rules decide first; ambiguous .jrn
// and .prn files fall through to content scoring, where four pattern
// detectors compete over the decoded lines and the extension constrains
// which verdicts are admissible.
package classify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/termlens/termlens/internal/textenc"
)

// Mode narrows which categories a classification run may produce.
type Mode string

const (
	// ModeFull considers every category.
	ModeFull Mode = ""
	// ModeRegistry keeps registry files and sends everything else to
	// unidentified without reading content.
	ModeRegistry Mode = "registry"
)

// Config holds the confidence thresholds for content scoring.
type Config struct {
	// LineIndicators is how many sub-indicators a line must satisfy
	// before it counts as a match for the journal detectors.
	LineIndicators int
	// MinSample is the number of non-empty lines required before
	// content scoring is attempted at all.
	MinSample int
	// MinMatches is the number of matching lines required for a
	// confident verdict when the extension already narrows the field.
	MinMatches int
	// GenericFloor is the stricter line count required when the
	// extension gives no hint.
	GenericFloor int
}

func DefaultConfig() Config {
	return Config{
		LineIndicators: 4,
		MinSample:      5,
		MinMatches:     5,
		GenericFloor:   10,
	}
}

// passiveExts never carry terminal logs; content scoring would only
// produce false positives on them.
var passiveExts = map[string]struct{}{
	".py":   {},
	".js":   {},
	".html": {},
	".css":  {},
	".json": {},
	".xml":  {},
	".txt":  {},
	".xlsx": {},
	".xls":  {},
	".csv":  {},
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

type Classifier struct {
	log zerolog.Logger
	cfg Config

	ui       uiDetector
	customer customerDetector
	trace    traceDetector
	errs     errorDetector
}

func New(log zerolog.Logger, cfg Config) *Classifier {
	def := DefaultConfig()
	if cfg.LineIndicators <= 0 {
		cfg.LineIndicators = def.LineIndicators
	}
	if cfg.MinSample <= 0 {
		cfg.MinSample = def.MinSample
	}
	if cfg.MinMatches <= 0 {
		cfg.MinMatches = def.MinMatches
	}
	if cfg.GenericFloor <= 0 {
		cfg.GenericFloor = def.GenericFloor
	}
	return &Classifier{
		log:      log,
		cfg:      cfg,
		ui:       uiDetector{need: cfg.LineIndicators},
		customer: customerDetector{need: cfg.LineIndicators},
	}
}

// Classify resolves a category for an in-memory file.
func (c *Classifier) Classify(name string, data []byte, mode Mode) Category {
	if cat, done := c.structural(name, mode); done {
		return cat
	}
	return c.Content(name, data)
}

// ClassifyFile resolves a category for a file on disk, reading content
// only when the name rules cannot decide.
func (c *Classifier) ClassifyFile(path string, mode Mode) Category {
	if cat, done := c.structural(path, mode); done {
		return cat
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.log.Warn().Err(err).Str("file", path).Msg("unreadable file left unidentified")
		return Unidentified
	}
	return c.Content(path, data)
}

// structural applies the name and folder rules. The second return is
// false when the file must go through content scoring.
func (c *Classifier) structural(name string, mode Mode) (Category, bool) {
	base := strings.ToLower(filepath.Base(name))
	ext := filepath.Ext(base)

	if isRegistryName(base, ext) {
		return Registry, true
	}
	hint, hinted := folderHint(name)
	if hinted && hint == Registry {
		return Registry, true
	}
	if mode == ModeRegistry {
		return Unidentified, true
	}
	if isACUName(base, ext) {
		return ACU, true
	}
	if hinted {
		return hint, true
	}
	return Unidentified, false
}

func isRegistryName(base, ext string) bool {
	if strings.Contains(base, "reg.txt") {
		return true
	}
	if strings.HasPrefix(base, "reg") && strings.HasSuffix(base, ".txt") {
		return true
	}
	return ext == ".reg"
}

func isACUName(base, ext string) bool {
	if ext != ".xml" && ext != ".xsd" {
		return false
	}
	return strings.Contains(base, "jdd") || strings.Contains(base, "x3")
}

// folderHint resolves a category from a parent directory keyword plus a
// matching extension.
func folderHint(name string) (Category, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	dir := strings.ToLower(filepath.ToSlash(filepath.Dir(name)))
	if dir == "." || dir == "/" {
		return Unidentified, false
	}
	for _, seg := range strings.Split(dir, "/") {
		switch {
		case strings.Contains(seg, "registry") && (ext == ".txt" || ext == ".reg"):
			return Registry, true
		case strings.Contains(seg, "customer") && ext == ".jrn":
			return CustomerJournal, true
		case uiSegment(seg) && ext == ".jrn":
			return UIJournal, true
		case strings.Contains(seg, "trace") && (ext == ".prn" || ext == ".trc"):
			return TRCTrace, true
		case strings.Contains(seg, "error") && ext == ".prn":
			return TRCError, true
		}
	}
	return Unidentified, false
}

// uiSegment avoids substring hits like "guide"; the token must name a
// UI journal folder.
func uiSegment(seg string) bool {
	return seg == "ui" || strings.Contains(seg, "ui_journal") || strings.Contains(seg, "uijournal")
}

// Content scores the decoded lines with all four detectors and picks a
// verdict the extension admits.
func (c *Classifier) Content(name string, data []byte) Category {
	ext := strings.ToLower(filepath.Ext(name))
	if _, passive := passiveExts[ext]; passive {
		return Unidentified
	}

	text, enc := textenc.DecodeChain(data, textenc.JournalChain)
	lines := strings.Split(text, "\n")

	sample := 0
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			sample++
		}
	}
	if sample < c.cfg.MinSample {
		return Insufficient
	}

	ui := countMatches(c.ui, lines)
	customer := countMatches(c.customer, lines)
	trace := countMatches(c.trace, lines)
	errLines := countMatches(c.errs, lines)
	top := max(ui, customer, trace, errLines)

	c.log.Debug().
		Str("file", name).
		Str("encoding", string(enc)).
		Int("ui", ui).
		Int("customer", customer).
		Int("trace", trace).
		Int("error", errLines).
		Msg("content scores")

	if top < c.cfg.MinMatches {
		return Unidentified
	}

	switch ext {
	case ".prn":
		// Header-heavy files are error logs even when the looser trace
		// pattern racks up a higher total.
		switch {
		case countHeaders(lines) >= c.cfg.MinMatches:
			return TRCError
		case errLines == top:
			return TRCError
		case trace == top:
			return TRCTrace
		case errLines >= c.cfg.MinMatches:
			return TRCError
		case trace >= c.cfg.MinMatches:
			return TRCTrace
		default:
			return Unidentified
		}
	case ".jrn":
		switch {
		case ui == top:
			return UIJournal
		case customer == top:
			return CustomerJournal
		case ui >= c.cfg.MinMatches:
			return UIJournal
		case customer >= c.cfg.MinMatches:
			return CustomerJournal
		default:
			return Unidentified
		}
	default:
		switch {
		case errLines == top && top >= c.cfg.GenericFloor:
			return TRCError
		case ui == top && top >= c.cfg.GenericFloor:
			return UIJournal
		case customer == top && top >= c.cfg.GenericFloor:
			return CustomerJournal
		case trace == top && top >= c.cfg.GenericFloor:
			return TRCTrace
		default:
			return Unidentified
		}
	}
}
