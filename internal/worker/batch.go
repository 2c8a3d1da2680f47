package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/charprofile/internal/pipeline"
)

// Analyzer defines the interface for analysing one artifact
type Analyzer interface {
	AnalyzeFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// AnalyzeJob analyses the artifact at Path
type AnalyzeJob struct {
	Index    int // Position in the batch input
	Path     string
	Analyzer Analyzer
	Limiter  *Limiter // Optional
}

// Execute executes the analysis job
func (j *AnalyzeJob) Execute(ctx context.Context) Result {
	if err := j.Limiter.Wait(ctx, j.Path); err != nil {
		return &FileResult{Index: j.Index, Path: j.Path, Error: fmt.Errorf("rate limit: %w", err)}
	}
	result, err := j.Analyzer.AnalyzeFile(ctx, j.Path)
	return &FileResult{
		Index:  j.Index,
		Path:   j.Path,
		Result: result,
		Error:  err,
	}
}

// FileResult is the outcome for one artifact of a batch
type FileResult struct {
	Index  int
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the error from the analysis
func (r *FileResult) GetError() error {
	return r.Error
}

// BatchProcessor analyses many artifacts concurrently
type BatchProcessor struct {
	analyzer    Analyzer
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(analyzer Analyzer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{
		analyzer:    analyzer,
		concurrency: concurrency,
	}
}

// SetLimiter throttles reads per source directory; nil disables throttling
func (b *BatchProcessor) SetLimiter(l *Limiter) {
	b.limiter = l
}

// ProcessPaths analyses every path and returns one result per path in
// input order. Failures are recorded per file; the batch always finishes.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*FileResult {
	if len(paths) == 0 {
		return []*FileResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, path := range paths {
		if !pool.Submit(&AnalyzeJob{Index: i, Path: path, Analyzer: b.analyzer, Limiter: b.limiter}) {
			break
		}
	}

	results := pool.Wait()

	ordered := make([]*FileResult, len(paths))
	for _, r := range results {
		fr := r.(*FileResult)
		ordered[fr.Index] = fr
	}

	// Jobs dropped by cancellation still get an entry
	for i, fr := range ordered {
		if fr == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &FileResult{Index: i, Path: paths[i], Error: err}
		}
	}

	return ordered
}

// ProcessPathsFailFast analyses paths concurrently and stops at the first
// failure. Results of files finished before the failure are returned in
// input order, unfinished slots are nil.
func (b *BatchProcessor) ProcessPathsFailFast(ctx context.Context, paths []string) ([]*FileResult, error) {
	results := make([]*FileResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			if err := b.limiter.Wait(gCtx, path); err != nil {
				return err
			}
			result, err := b.analyzer.AnalyzeFile(gCtx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = &FileResult{Index: i, Path: path, Result: result}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// ReadPathsFromFile reads artifact paths from a list file (one per line).
// Blank lines and # comments are skipped, duplicates dropped, and relative
// paths resolved against the list file's directory.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}

// ExpandArgs turns command arguments into artifact paths.
// An argument of the form @list.txt is replaced by the paths it lists.
func ExpandArgs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		if listPath, ok := strings.CutPrefix(arg, "@"); ok {
			listed, err := ReadPathsFromFile(listPath)
			if err != nil {
				return nil, fmt.Errorf("read list %s: %w", listPath, err)
			}
			paths = append(paths, listed...)
			continue
		}
		paths = append(paths, arg)
	}
	return paths, nil
}

// OutputName derives a report file name from an artifact path
func OutputName(path, ext string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if name == "" || name == "." {
		name = "report"
	}
	return sanitizeFilename(name) + ext
}

// UniqueOutputNames assigns distinct report names in input order.
// A taken name gets the first free suffix among -2, -3, ..., including
// names that are taken because another input already produced them.
func UniqueOutputNames(paths []string, ext string) []string {
	names := make([]string, len(paths))
	taken := make(map[string]bool, len(paths))
	for i, p := range paths {
		name := OutputName(p, ext)
		stem := strings.TrimSuffix(name, ext)
		for n := 2; taken[name]; n++ {
			name = fmt.Sprintf("%s-%d%s", stem, n, ext)
		}
		taken[name] = true
		names[i] = name
	}
	return names
}

// maxFilenameBytes caps the report file stem
const maxFilenameBytes = 100

// sanitizeFilename replaces characters that are unsafe in file names
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(s)

	// Cut at a rune boundary so multi-byte names stay valid UTF-8
	if len(s) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = s[:cut]
	}
	return s
}

