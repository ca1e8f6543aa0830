package archive

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DiskExtractor is the bulk intake path: it unpacks a whole archive onto
// disk with directory structure preserved, drops irrelevant entries and
// expands one level of nested archives into sibling directories.
type DiskExtractor struct {
	log      zerolog.Logger
	relevant func(string) bool
}

// NewDiskExtractor returns a DiskExtractor using the given relevance
// predicate; a nil predicate means Relevant.
func NewDiskExtractor(log zerolog.Logger, relevant func(string) bool) *DiskExtractor {
	if relevant == nil {
		relevant = Relevant
	}
	return &DiskExtractor{log: log, relevant: relevant}
}

// ExtractTo unpacks data into dest and returns the manifest of what was
// written. It fails with ErrInvalidArchive on an empty or directory-less
// buffer, and with an error when nothing relevant was found; individual bad
// entries are skipped.
func (x *DiskExtractor) ExtractTo(data []byte, dest string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, ErrInvalidArchive
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}

	kept, hits := x.unpack(data, dest)
	if hits == 0 {
		return nil, ErrInvalidArchive
	}
	if kept == 0 {
		return nil, fmt.Errorf("archive: no relevant diagnostic files found")
	}
	x.log.Info().Int("files", kept).Str("dest", dest).Msg("archive extracted")

	x.expandNested(dest)

	manifest, err := BuildManifest(dest)
	if err != nil {
		return nil, err
	}
	if err := manifest.Write(dest); err != nil {
		return nil, err
	}
	return manifest, nil
}

// unpack walks central-directory records and writes relevant files under
// dest. It returns the number of files written and the number of
// central-directory signatures seen.
func (x *DiskExtractor) unpack(data []byte, dest string) (kept, hits int) {
	cleanDest := filepath.Clean(dest)
	pos := 0

	for {
		idx := bytes.Index(data[pos:], cdSig)
		if idx < 0 {
			break
		}
		pos += idx
		hits++

		if pos+cdRecordSize > len(data) {
			x.log.Warn().Int("offset", pos).Msg("central directory record truncated")
			break
		}

		entry, err := parseRecord(data, pos)
		if err != nil {
			x.log.Warn().Int("offset", pos).Err(err).Msg("skipping unparsable record")
			pos += 4
			continue
		}

		name := strings.TrimPrefix(entry.Name, "/")
		if name == "" || strings.HasSuffix(name, "/") {
			pos += 4
			continue
		}
		if !x.relevant(name) {
			pos += 4
			continue
		}

		target := filepath.Join(cleanDest, filepath.FromSlash(name))
		if !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			x.log.Warn().Str("entry", entry.Name).Msg("skipping unsafe path")
			pos += 4
			continue
		}

		body, err := entry.payload(data)
		if err != nil {
			x.log.Warn().Err(&EntryError{Name: entry.Name, Err: err}).Msg("skipping entry")
			pos += 4
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			x.log.Warn().Str("entry", entry.Name).Err(err).Msg("cannot create directory")
			pos += 4
			continue
		}
		if err := os.WriteFile(target, body, 0o644); err != nil {
			x.log.Warn().Str("entry", entry.Name).Err(err).Msg("cannot write file")
			pos += 4
			continue
		}

		kept++
		pos += 4
	}

	return kept, hits
}

// expandNested finds archives written during unpack and extracts each into
// a directory named after its stem, removing the archive on success. Only
// one level is expanded.
func (x *DiskExtractor) expandNested(root string) {
	var zips []string
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".zip") {
			zips = append(zips, p)
		}
		return nil
	})

	for _, zp := range zips {
		content, err := os.ReadFile(zp)
		if err != nil {
			x.log.Warn().Str("archive", zp).Err(err).Msg("cannot read nested archive")
			continue
		}

		stem := strings.TrimSuffix(filepath.Base(zp), filepath.Ext(zp))
		nestedDir := filepath.Join(filepath.Dir(zp), stem)
		if err := os.MkdirAll(nestedDir, 0o755); err != nil {
			x.log.Warn().Str("archive", zp).Err(err).Msg("cannot create nested directory")
			continue
		}

		kept, hits := x.unpack(content, nestedDir)
		if hits == 0 {
			x.log.Warn().Str("archive", zp).Msg("nested archive has no central directory, leaving as is")
			continue
		}
		x.log.Info().Str("archive", zp).Int("files", kept).Msg("nested archive expanded")

		if err := os.Remove(zp); err != nil {
			x.log.Warn().Str("archive", zp).Err(err).Msg("cannot remove expanded archive")
		}
	}
}
