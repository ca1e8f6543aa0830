package archive

import (
	"errors"
	"fmt"
)

// ErrInvalidArchive reports a buffer that is empty or contains no parsable
// central directory. It is the only fatal extraction failure; everything
// else degrades to skipped entries.
var ErrInvalidArchive = errors.New("archive: no central directory found")

// EntryError describes a recoverable failure on a single archive entry.
// Extraction continues past it.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("archive: entry %q: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
