package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ppiankov/charprofile/internal/cache"
	"github.com/ppiankov/charprofile/internal/load"
	"github.com/ppiankov/charprofile/internal/logging"
	"github.com/ppiankov/charprofile/internal/model"
	"github.com/ppiankov/charprofile/internal/normalize"
	"github.com/ppiankov/charprofile/internal/rank"
	"github.com/ppiankov/charprofile/internal/report"
)

// ErrEmptyDocument is attached as a warning when an artifact has no characters.
// It never fails a run.
var ErrEmptyDocument = errors.New("document contains no characters")

// Pipeline orchestrates load, normalize, select and render.
// It keeps no per-document state, so one instance may serve concurrent callers.
type Pipeline struct {
	loader     *load.Loader
	normalizer *normalize.Normalizer
	renderer   *report.Renderer
	cache      cache.Cache // nil when caching is disabled
	config     *model.Config
	logger     *slog.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache)
	}

	return &Pipeline{
		loader:     load.NewLoader(cfg.Input.MaxBytes),
		normalizer: normalize.NewNormalizer(cfg.Strictness),
		renderer:   report.NewRenderer(cfg.Output.Format, cfg.Output.Banner),
		cache:      c,
		config:     cfg,
		logger:     logging.New("pipeline"),
	}
}

// Result is the outcome of analysing one artifact
type Result struct {
	Source   string
	Output   string        // Rendered report
	Report   *model.Report // Nil when served from cache
	Total    int
	Issues   model.Issues
	Warnings []error
	Cached   bool
}

// Format returns the output format of rendered reports
func (p *Pipeline) Format() model.Format {
	return p.renderer.Format()
}

// AnalyzeFile analyses the artifact at path
func (p *Pipeline) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, data, err := p.loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}

	key := ""
	if p.cache != nil {
		key = cache.Key(data, p.fingerprint(path))
		if entry, found := p.cache.Get(key); found {
			p.logger.Debug("cache hit", "source", path)
			return p.fromEntry(path, entry), nil
		}
	}

	result, err := p.analyze(path, doc)
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		entry := &cache.Entry{Report: result.Output, Total: result.Total, Issues: result.Issues}
		if err := p.cache.Set(key, entry, 0); err != nil {
			p.logger.Warn("cache write failed", "source", path, "error", err)
		}
	}

	return result, nil
}

// AnalyzeBytes analyses an artifact already held in memory.
// source labels the report and may be empty.
func (p *Pipeline) AnalyzeBytes(ctx context.Context, source string, data []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := p.loader.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	return p.analyze(source, doc)
}

// Build normalizes and selects the characters of doc without rendering
func (p *Pipeline) Build(source string, doc *model.AnalysisDocument) (*model.Report, error) {
	normalized, err := p.normalizer.NormalizeDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}

	issues := model.Issues{
		SkippedEntries: normalized.SkippedEntries,
		SkippedRecords: normalized.SkippedRecords,
	}
	for _, issue := range normalized.Issues {
		issues.Messages = append(issues.Messages, issue.Error())
		p.logger.Debug("dropped malformed data", "source", source, "issue", issue.Error())
	}

	return &model.Report{
		Source:     source,
		Total:      len(normalized.Characters),
		Limits:     p.config.Limits,
		Characters: rank.Apply(normalized.Characters, p.config.Limits),
		Issues:     issues,
	}, nil
}

func (p *Pipeline) analyze(source string, doc *model.AnalysisDocument) (*Result, error) {
	rep, err := p.Build(source, doc)
	if err != nil {
		return nil, err
	}

	out, err := p.renderer.Render(rep)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	result := &Result{
		Source: source,
		Output: out,
		Report: rep,
		Total:  rep.Total,
		Issues: rep.Issues,
	}

	if doc.Len() == 0 {
		result.Warnings = append(result.Warnings, ErrEmptyDocument)
		p.logger.Warn("empty document", "source", source)
	}
	if !rep.Issues.Empty() {
		p.logger.Warn("skipped malformed data",
			"source", source,
			"entries", rep.Issues.SkippedEntries,
			"records", rep.Issues.SkippedRecords,
		)
	}

	return result, nil
}

func (p *Pipeline) fromEntry(source string, entry *cache.Entry) *Result {
	result := &Result{
		Source: source,
		Output: entry.Report,
		Total:  entry.Total,
		Issues: entry.Issues,
		Cached: true,
	}
	if entry.Total == 0 && entry.Issues.SkippedRecords == 0 {
		result.Warnings = append(result.Warnings, ErrEmptyDocument)
	}
	return result
}

// fingerprint captures every setting that changes the rendered output
func (p *Pipeline) fingerprint(source string) string {
	return fmt.Sprintf("%s|%+v|%s|%s|%t",
		source, p.config.Limits, p.config.Strictness, p.config.Output.Format, p.config.Output.Banner)
}
