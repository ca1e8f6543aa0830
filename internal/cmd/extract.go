package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/archive"
)

var (
	extractDest string
	extractFlat bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <archive>",
	Short: "Unpack the relevant files from a diagnostic archive",
	Long: `Unpack a diagnostic archive to disk, keeping only files the analysis
pipeline knows how to read. The default mode preserves the archive's
directory structure and expands one level of nested archives; --flat
recurses nested archives in memory and writes every file into a single
directory. Both modes leave a digest manifest at the extraction root.

Examples:
  termlens extract diag_20240115.zip
  termlens extract diag_20240115.zip -o evidence --flat`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractDest, "out", "o", "", "destination directory (default: archive name without extension)")
	extractCmd.Flags().BoolVar(&extractFlat, "flat", false, "flatten nested archives into one directory")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	dest := extractDest
	if dest == "" {
		base := filepath.Base(args[0])
		dest = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var manifest *archive.Manifest
	if extractFlat {
		manifest, err = extractFlatTo(data, dest)
	} else {
		manifest, err = archive.NewDiskExtractor(logger, nil).ExtractTo(data, dest)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(manifest)
	}
	fmt.Printf("extracted %d files to %s\n", len(manifest.Files), dest)
	return nil
}

func extractFlatTo(data []byte, dest string) (*archive.Manifest, error) {
	files, err := archive.NewReader(logger, tool.MaxDepth).Extract(data, archive.Relevant)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dest, name), body, 0o644); err != nil {
			return nil, err
		}
	}
	manifest, err := archive.BuildManifest(dest)
	if err != nil {
		return nil, err
	}
	if err := manifest.Write(dest); err != nil {
		return nil, err
	}
	return manifest, nil
}
