package archive

import (
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/crypto/blake2b"
)

// ManifestName is the file written at the extraction root.
const ManifestName = "manifest.json"

// Manifest records what a bulk extraction produced. Digests let downstream
// tooling verify the extracted evidence has not been altered.
type Manifest struct {
	Root      string          `json:"root"`
	CreatedAt time.Time       `json:"created_at"`
	Files     []ManifestEntry `json:"files"`
}

// ManifestEntry describes one extracted file.
type ManifestEntry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	Digest string `json:"blake2b_256"`
}

// BuildManifest walks root and digests every regular file with BLAKE2b-256.
// Entries are ordered by path.
func BuildManifest(root string) (*Manifest, error) {
	m := &Manifest{Root: filepath.Base(root), CreatedAt: time.Now().UTC()}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() == ManifestName {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		sum := blake2b.Sum256(data)
		m.Files = append(m.Files, ManifestEntry{
			Path:   filepath.ToSlash(rel),
			Size:   int64(len(data)),
			Digest: hex.EncodeToString(sum[:]),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Write serializes the manifest to ManifestName under root.
func (m *Manifest) Write(root string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(root, ManifestName), data, 0o644)
}
