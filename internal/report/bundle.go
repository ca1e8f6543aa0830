package report

import (
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Bundle is the full result of one analyze run. Map keys are the
// relative paths of the source files inside the extraction.
type Bundle struct {
	RunID         string                          `json:"run_id"`
	Archive       string                          `json:"archive"`
	CreatedAt     time.Time                       `json:"created_at"`
	Buckets       map[string][]string             `json:"buckets"`
	Transactions  map[string][]TransactionRecord  `json:"transactions"`
	Flows         map[string][]ScreenFlowRecord   `json:"flows"`
	Counters      map[string][]CounterBlockRecord `json:"counters"`
	RegistryDiffs []RegistryDiffRecord            `json:"registry_diffs"`
	Stats         DurationStats                   `json:"duration_stats"`
	Discarded     int64                           `json:"discarded_candidates"`
}

// Writer persists bundles to disk, zstd-compressing when the filename
// carries a .zst suffix.
type Writer struct {
	encoder *zstd.Encoder
}

// NewWriter returns a bundle writer with a shared zstd encoder.
func NewWriter() (*Writer, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	return &Writer{encoder: enc}, nil
}

// Write marshals the bundle and writes it atomically via a temp file.
func (w *Writer) Write(path string, b *Bundle) error {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	if strings.HasSuffix(path, ".zst") {
		data = w.encoder.EncodeAll(data, make([]byte, 0, len(data)))
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Load reads a bundle back, decompressing .zst files.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		if data, err = dec.DecodeAll(data, nil); err != nil {
			return nil, err
		}
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
