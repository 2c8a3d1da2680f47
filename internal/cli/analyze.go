package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/charprofile/internal/pipeline"
)

var outPath string

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <book_file>",
	Short: "Print the character profile report of one .book file",
	Long: `Analyze reads a BookNLP .book artifact and reports its major characters:
- Total mentions and referential gender
- Top proper names, common names and pronouns
- Top actions performed and received, possessions and descriptors

Characters keep the order of the artifact; nothing is re-sorted.

Example:
  charprofile analyze emma.book
  charprofile analyze emma.book --top 5 --top-agent 10
  charprofile analyze emma.book --format markdown --out emma.md`,
	Args: exactlyOneFile,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the report to this file instead of stdout")
	addReportFlags(analyzeCmd)
}

// exactlyOneFile rejects anything but a single positional argument
func exactlyOneFile(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one .book file, got %d\nUsage: %s", len(args), cmd.UseLine())
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := reportConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "Analyzing: %s\n", path)
		fmt.Fprintf(cmd.ErrOrStderr(), "Format: %s, strictness: %s, cache: %v\n\n", cfg.Output.Format, cfg.Strictness, cfg.Cache.Enabled)
	}

	p := pipeline.NewPipeline(cfg)
	result, err := p.AnalyzeFile(cmd.Context(), path)
	if err != nil {
		return fmt.Errorf("analyze failed: %w", err)
	}

	if outPath == "" {
		if _, err := io.WriteString(cmd.OutOrStdout(), result.Output); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else {
		if err := writeReport(outPath, result.Output); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Report written to %s\n", outPath)
	}

	printDiagnostics(cmd.ErrOrStderr(), result)
	return nil
}

// writeReport writes a rendered report to path
func writeReport(path, content string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close report file: %w", closeErr)
		}
	}()

	if _, err = io.WriteString(f, content); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}
	return nil
}

// printDiagnostics reports warnings and dropped data on w
func printDiagnostics(w io.Writer, result *pipeline.Result) {
	if verbose && result.Cached {
		fmt.Fprintf(w, "✓ Served from cache\n")
	}

	for _, warning := range result.Warnings {
		if errors.Is(warning, pipeline.ErrEmptyDocument) {
			fmt.Fprintf(w, "⚠️  %s: no characters found\n", result.Source)
			continue
		}
		fmt.Fprintf(w, "⚠️  %s: %v\n", result.Source, warning)
	}

	if !result.Issues.Empty() {
		fmt.Fprintf(w, "✗ Skipped %d malformed entries and %d malformed records\n",
			result.Issues.SkippedEntries, result.Issues.SkippedRecords)
		if verbose {
			for _, msg := range result.Issues.Messages {
				fmt.Fprintf(w, "  - %s\n", msg)
			}
		}
	}
}
