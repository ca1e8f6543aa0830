package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/registry"
	"github.com/termlens/termlens/internal/render"
	"github.com/termlens/termlens/internal/report"
)

var regdiffCmd = &cobra.Command{
	Use:   "regdiff <a> <b>",
	Short: "Compare two registry exports",
	Long: `Join two registry exports on (device path, key) and report the values
added, removed or changed between them, typically the before and after
of a service visit.

Example:
  termlens regdiff reg_before.txt reg_after.txt`,
	Args: cobra.ExactArgs(2),
	RunE: runRegdiff,
}

func init() {
	rootCmd.AddCommand(regdiffCmd)
}

func runRegdiff(cmd *cobra.Command, args []string) error {
	dataA, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	dataB, err := os.ReadFile(args[1])
	if err != nil {
		return err
	}

	d := registry.Compare(registry.Parse(dataA), registry.Parse(dataB))
	rec := report.NewRegistryDiffRecord(filepath.Base(args[0]), filepath.Base(args[1]), d)

	if jsonOut {
		return printJSON(rec)
	}
	render.New(os.Stdout).RegistryDiff(rec)
	return nil
}
