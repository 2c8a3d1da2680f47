package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ppiankov/charprofile/internal/load"
	"github.com/ppiankov/charprofile/internal/model"
	"github.com/ppiankov/charprofile/internal/normalize"
)

const aliceDoc = `{
	"characters": [{
		"id": 7, "count": 42, "g": ["female", ""],
		"mentions": {
			"proper": [{"n": "Alice", "c": 40}],
			"common": [],
			"pronoun": [{"n": "she", "c": 2}]
		},
		"agent": [{"w": "ran"}, {"w": "thought"}],
		"patient": [], "poss": [], "mod": []
	}]
}`

func writeBook(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPipeline_SingleCharacter(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	result, err := p.AnalyzeBytes(context.Background(), "alice.book", []byte(aliceDoc))
	if err != nil {
		t.Fatalf("AnalyzeBytes failed: %v", err)
	}

	for _, want := range []string{
		"Found 1 major characters",
		"1. CHARACTER ID 7\n",
		"   Total mentions: 42\n",
		"   Referential gender: female\n",
		"   Proper names: Alice (40)\n",
		"   Pronouns: she (2)\n",
		"   Actions performed: ran, thought\n",
	} {
		if !strings.Contains(result.Output, want) {
			t.Errorf("expected %q in report:\n%s", want, result.Output)
		}
	}
	for _, absent := range []string{"Common names", "Actions received", "Possessions", "Described as"} {
		if strings.Contains(result.Output, absent) {
			t.Errorf("expected no %q line in report:\n%s", absent, result.Output)
		}
	}
	if strings.Count(result.Output, "CHARACTER ID") != 1 {
		t.Errorf("expected a single block, got:\n%s", result.Output)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}

func TestPipeline_EmptyDocument(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	for _, input := range []string{`{"characters": []}`, `{}`} {
		result, err := p.AnalyzeBytes(context.Background(), "", []byte(input))
		if err != nil {
			t.Fatalf("%s: expected no error, got %v", input, err)
		}
		if !strings.Contains(result.Output, "Found 0 major characters") {
			t.Errorf("%s: expected zero characters stated, got:\n%s", input, result.Output)
		}
		if strings.Contains(result.Output, "CHARACTER ID") {
			t.Errorf("%s: expected no blocks, got:\n%s", input, result.Output)
		}
		if len(result.Warnings) != 1 || !errors.Is(result.Warnings[0], ErrEmptyDocument) {
			t.Errorf("%s: expected ErrEmptyDocument warning, got %v", input, result.Warnings)
		}
	}
}

func TestPipeline_MissingCommonRendersLikeEmpty(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())
	ctx := context.Background()

	missing := `{"characters": [{"id": 1, "count": 3, "g": "male", "mentions": {"proper": [{"n": "Frank", "c": 3}], "pronoun": []}, "agent": [], "patient": [], "poss": [], "mod": []}]}`
	explicit := `{"characters": [{"id": 1, "count": 3, "g": "male", "mentions": {"proper": [{"n": "Frank", "c": 3}], "common": [], "pronoun": []}, "agent": [], "patient": [], "poss": [], "mod": []}]}`

	a, err := p.AnalyzeBytes(ctx, "", []byte(missing))
	if err != nil {
		t.Fatalf("missing common: %v", err)
	}
	b, err := p.AnalyzeBytes(ctx, "", []byte(explicit))
	if err != nil {
		t.Fatalf("explicit common: %v", err)
	}

	if diff := cmp.Diff(b.Output, a.Output); diff != "" {
		t.Errorf("reports differ (-explicit +missing):\n%s", diff)
	}
}

func TestPipeline_BlockCountIsMinOfCharactersAndLimit(t *testing.T) {
	build := func(k int) string {
		records := make([]string, k)
		for i := range records {
			records[i] = fmt.Sprintf(`{"id": %d, "count": %d}`, 1000+i, k-i)
		}
		return `{"characters": [` + strings.Join(records, ",") + `]}`
	}

	for _, limit := range []int{0, 1, 10} {
		cfg := model.DefaultConfig()
		cfg.Limits.Characters = limit
		p := NewPipeline(cfg)

		for _, k := range []int{0, 3, 10, 14} {
			result, err := p.AnalyzeBytes(context.Background(), "", []byte(build(k)))
			if err != nil {
				t.Fatalf("k=%d limit=%d: %v", k, limit, err)
			}

			want := min(k, limit)
			if got := strings.Count(result.Output, "CHARACTER ID"); got != want {
				t.Errorf("k=%d limit=%d: expected %d blocks, got %d", k, limit, want, got)
			}
			if result.Total != k {
				t.Errorf("k=%d: expected total %d, got %d", k, k, result.Total)
			}
			for i := 0; i < want; i++ {
				heading := fmt.Sprintf("%d. CHARACTER ID %d\n", i+1, 1000+i)
				if !strings.Contains(result.Output, heading) {
					t.Errorf("k=%d limit=%d: expected %q in input order", k, limit, heading)
				}
			}
		}
	}
}

func TestPipeline_Malformed(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	_, err := p.AnalyzeBytes(context.Background(), "", []byte(`{"characters": [`))
	if !errors.Is(err, load.ErrMalformedDocument) {
		t.Errorf("expected ErrMalformedDocument, got %v", err)
	}
}

func TestPipeline_Strictness(t *testing.T) {
	doc := `{"characters": [
		{"id": 1, "count": 5, "agent": [{"w": "ran"}, {"lemma": "run"}]},
		{"id": 2, "count": 4}
	]}`

	lenient := NewPipeline(model.DefaultConfig())
	result, err := lenient.AnalyzeBytes(context.Background(), "", []byte(doc))
	if err != nil {
		t.Fatalf("lenient: %v", err)
	}
	if result.Issues.SkippedEntries != 1 || len(result.Issues.Messages) != 1 {
		t.Errorf("expected one skipped entry accounted for, got %+v", result.Issues)
	}
	if !strings.Contains(result.Output, "Actions performed: ran\n") {
		t.Errorf("expected well-formed entry kept, got:\n%s", result.Output)
	}

	cfg := model.DefaultConfig()
	cfg.Strictness = model.StrictAbort
	_, err = NewPipeline(cfg).AnalyzeBytes(context.Background(), "", []byte(doc))
	var missing *normalize.AttestationFieldMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("strict: expected *AttestationFieldMissingError, got %v", err)
	}
	if missing.CharacterID != 1 || missing.Collection != "agent" || missing.Index != 1 {
		t.Errorf("unexpected issue details: %+v", missing)
	}
}

func TestPipeline_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewPipeline(model.DefaultConfig()).AnalyzeFile(ctx, "irrelevant.book")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPipeline_AnalyzeFileCache(t *testing.T) {
	path := writeBook(t, "alice.book", aliceDoc)

	cfg := model.DefaultConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "cache")
	p := NewPipeline(cfg)

	first, err := p.AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("first AnalyzeFile: %v", err)
	}
	if first.Cached {
		t.Error("first analysis should not come from cache")
	}

	second, err := p.AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("second AnalyzeFile: %v", err)
	}
	if !second.Cached {
		t.Error("second analysis should come from cache")
	}
	if first.Output != second.Output {
		t.Errorf("cached output differs:\n%s\nvs\n%s", first.Output, second.Output)
	}

	// A fresh pipeline reads the disk layer
	third, err := NewPipeline(cfg).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("third AnalyzeFile: %v", err)
	}
	if !third.Cached {
		t.Error("expected disk cache hit from a new pipeline")
	}

	// Different limits must not reuse the entry
	cfg2 := *cfg
	cfg2.Limits.Agent = 1
	fourth, err := NewPipeline(&cfg2).AnalyzeFile(context.Background(), path)
	if err != nil {
		t.Fatalf("fourth AnalyzeFile: %v", err)
	}
	if fourth.Cached {
		t.Error("expected cache miss after limits changed")
	}
	if !strings.Contains(fourth.Output, "Actions performed: ran\n") {
		t.Errorf("expected agent list truncated to 1, got:\n%s", fourth.Output)
	}
}

func TestPipeline_AnalyzeFileMissing(t *testing.T) {
	_, err := NewPipeline(model.DefaultConfig()).AnalyzeFile(context.Background(), filepath.Join(t.TempDir(), "nope.book"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got %v", err)
	}
}
