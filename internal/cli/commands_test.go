package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/ppiankov/charprofile/internal/model"
)

const aliceBook = `{
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

// run executes the root command with an isolated home directory
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestAnalyzeCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "alice.book", aliceBook)

	stdout, _, err := run(t, "analyze", path)
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	for _, want := range []string{
		"BOOKNLP CHARACTER ANALYSIS",
		"Found 1 major characters mentioned more than once:",
		"1. CHARACTER ID 7\n",
		"   Referential gender: female\n",
		"   Actions performed: ran, thought\n",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestAnalyzeCommand_Args(t *testing.T) {
	for _, args := range [][]string{
		{"analyze"},
		{"analyze", "a.book", "b.book"},
	} {
		_, _, err := run(t, args...)
		if err == nil {
			t.Fatalf("expected usage error for %v", args)
		}
		if !strings.Contains(err.Error(), "Usage: charprofile analyze <book_file>") {
			t.Errorf("expected usage in error, got %v", err)
		}
	}
}

func TestAnalyzeCommand_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.book", `{"characters": [`)

	_, _, err := run(t, "analyze", path)
	if err == nil {
		t.Fatal("expected error for malformed artifact")
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "reports")
	good := writeFile(t, dir, "alice.book", aliceBook)
	empty := writeFile(t, dir, "empty.book", `{"characters": []}`)
	bad := writeFile(t, dir, "broken.book", `not json`)
	list := writeFile(t, dir, "list.txt", "# books\nalice.book\nempty.book\n")

	_, stderr, err := run(t, "batch", "@"+list, bad, "--output-dir", outDir, "--format", "json")
	if err == nil || !strings.Contains(err.Error(), "1 of 3 files failed") {
		t.Fatalf("expected one failure, got %v", err)
	}

	for _, name := range []string{"alice.json", "empty.json"} {
		if _, statErr := os.Stat(filepath.Join(outDir, name)); statErr != nil {
			t.Errorf("expected report %s: %v", name, statErr)
		}
	}
	if _, statErr := os.Stat(filepath.Join(outDir, "broken.json")); statErr == nil {
		t.Error("expected no report for broken artifact")
	}

	for _, want := range []string{"✓ " + good, "✗ " + bad, "no characters found", empty} {
		if !strings.Contains(stderr, want) {
			t.Errorf("expected %q in stderr:\n%s", want, stderr)
		}
	}
}

func TestBatchCommand_ConcurrencyDefault(t *testing.T) {
	flag := batchCmd.Flags().Lookup("concurrency")
	if flag == nil {
		t.Fatal("expected --concurrency flag")
	}
	want := strconv.Itoa(model.DefaultConfig().Concurrency.Workers)
	if flag.DefValue != want {
		t.Errorf("expected --concurrency default %s (concurrency.workers), got %s", want, flag.DefValue)
	}
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "charprofile v") {
		t.Errorf("unexpected version output %q", stdout)
	}
}
