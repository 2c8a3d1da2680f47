package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/charprofile/internal/model"
	"github.com/ppiankov/charprofile/internal/pipeline"
	"github.com/ppiankov/charprofile/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	failFast     bool
	rateLimit    float64
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Analyze many .book files in parallel",
	Long: `Batch analyzes many .book artifacts concurrently:
- Files are given as arguments or listed in a file passed as @list.txt
  (one path per line, # comments, paths relative to the list file)
- Each artifact gets its own report in the output directory
- Failures are reported per file; --fail-fast stops at the first one

Example:
  charprofile batch emma.book persuasion.book
  charprofile batch @novels.txt --concurrency 8 --output-dir ./profiles
  charprofile batch @novels.txt --format json --fail-fast`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", model.DefaultConfig().Concurrency.Workers, "number of concurrent workers (overrides concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./charprofile-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failing file")
	batchCmd.Flags().Float64Var(&rateLimit, "rate", 0, "max files read per second from one directory (0 = unlimited)")
	addReportFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := reportConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}
	if cmd.Flags().Changed("rate") {
		cfg.Concurrency.RateLimit = rateLimit
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid flags: %w", err)
		}
	}

	paths, err := worker.ExpandArgs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no .book files to process")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "\n%s\n", rule)
	fmt.Fprintf(stderr, "  charprofile Batch Processing\n")
	fmt.Fprintf(stderr, "%s\n\n", rule)
	fmt.Fprintf(stderr, "  Files:        %d\n", len(paths))
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "  Format:       %s\n", cfg.Output.Format)
	if cfg.Concurrency.RateLimit > 0 {
		fmt.Fprintf(stderr, "  Rate limit:   %g files/s per directory\n", cfg.Concurrency.RateLimit)
	}
	fmt.Fprintf(stderr, "  Timeout:      %v\n\n", batchTimeout)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One pipeline serves every worker; it holds no per-document state
	p := pipeline.NewPipeline(cfg)
	processor := worker.NewBatchProcessor(p, cfg.Concurrency.Workers)
	processor.SetLimiter(worker.NewLimiter(cfg.Concurrency.RateLimit, cfg.Concurrency.Burst))

	fmt.Fprintf(stderr, "⚙️  Processing %d files with %d workers...\n\n", len(paths), cfg.Concurrency.Workers)

	var results []*worker.FileResult
	var abortErr error
	if failFast {
		results, abortErr = processor.ProcessPathsFailFast(ctx, paths)
	} else {
		results = processor.ProcessPaths(ctx, paths)
	}

	names := worker.UniqueOutputNames(paths, p.Format().Ext())
	successCount, failureCount, skippedCount := 0, 0, 0

	for i, res := range results {
		if res == nil {
			skippedCount++
			continue
		}
		if res.Error != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", res.Path, res.Error)
			continue
		}

		target := filepath.Join(outputDir, names[i])
		if err := writeReport(target, res.Result.Output); err != nil {
			failureCount++
			fmt.Fprintf(stderr, "✗ %s: %v\n", res.Path, err)
			continue
		}

		successCount++
		fmt.Fprintf(stderr, "✓ %s → %s (%d characters)\n", res.Path, target, res.Result.Total)
		printDiagnostics(stderr, res.Result)
	}

	fmt.Fprintf(stderr, "\n%s\n", rule)
	fmt.Fprintf(stderr, "  Batch Complete\n")
	fmt.Fprintf(stderr, "%s\n\n", rule)
	fmt.Fprintf(stderr, "  Total:     %d files\n", len(paths))
	fmt.Fprintf(stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failureCount)
	if skippedCount > 0 {
		fmt.Fprintf(stderr, "  Skipped:   %d\n", skippedCount)
	}
	fmt.Fprintf(stderr, "  Output:    %s\n\n", outputDir)

	if abortErr != nil {
		return fmt.Errorf("batch aborted: %w", abortErr)
	}
	if failureCount > 0 {
		return fmt.Errorf("%d of %d files failed", failureCount, len(paths))
	}
	return nil
}
