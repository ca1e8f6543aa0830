package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/termlens/termlens/internal/classify"
	"github.com/termlens/termlens/internal/journal"
	"github.com/termlens/termlens/internal/pipeline"
	"github.com/termlens/termlens/internal/render"
)

var (
	classifyGlob     string
	classifyRegistry bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify <dir>",
	Short: "Bucket the files under a directory by log category",
	Long: `Walk an extracted directory and assign every file to a category:
customer journal, UI journal, trace, error log, registry export, ACU
configuration or unidentified. Name and folder rules decide first;
ambiguous journal and trace files are scored on content.

Examples:
  termlens classify evidence
  termlens classify evidence --glob "**/*.jrn"
  termlens classify evidence --registry-only`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyGlob, "glob", "", "pattern relative to dir (default: **/*)")
	classifyCmd.Flags().BoolVar(&classifyRegistry, "registry-only", false, "keep registry exports only, skip content scoring")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	mode := classify.ModeFull
	if classifyRegistry {
		mode = classify.ModeRegistry
	}

	a := pipeline.NewAnalyzer(logger, tool, journal.Rules{})
	buckets, err := a.ClassifyDir(cmd.Context(), args[0], classifyGlob, mode)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(buckets)
	}
	render.New(os.Stdout).Buckets(buckets)
	return nil
}
