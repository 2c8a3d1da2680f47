package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/charprofile/internal/model"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	configureViper(v)
	return v
}

func TestConfigFromViper_Defaults(t *testing.T) {
	cfg, err := configFromViper(newTestViper())
	if err != nil {
		t.Fatalf("configFromViper failed: %v", err)
	}
	if diff := cmp.Diff(model.DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFromViper_Env(t *testing.T) {
	t.Setenv("CHARPROFILE_LIMITS_CHARACTERS", "2")
	t.Setenv("CHARPROFILE_OUTPUT_FORMAT", "json")
	t.Setenv("CHARPROFILE_OUTPUT_BANNER", "false")
	t.Setenv("CHARPROFILE_CACHE_MEMORY_TTL", "30s")

	cfg, err := configFromViper(newTestViper())
	if err != nil {
		t.Fatalf("configFromViper failed: %v", err)
	}

	if cfg.Limits.Characters != 2 {
		t.Errorf("expected characters limit 2, got %d", cfg.Limits.Characters)
	}
	if cfg.Output.Format != model.FormatJSON {
		t.Errorf("expected json format, got %s", cfg.Output.Format)
	}
	if cfg.Output.Banner {
		t.Error("expected banner disabled")
	}
	if cfg.Cache.MemoryTTL != 30*time.Second {
		t.Errorf("expected 30s memory ttl, got %v", cfg.Cache.MemoryTTL)
	}
	if cfg.Limits.Proper != 3 {
		t.Errorf("expected untouched proper limit 3, got %d", cfg.Limits.Proper)
	}
}

func TestConfigFromViper_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "limits:\n  agent: 8\nstrictness: strict\nlog:\n  level: debug\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	cfg, err := configFromViper(v)
	if err != nil {
		t.Fatalf("configFromViper failed: %v", err)
	}
	if cfg.Limits.Agent != 8 {
		t.Errorf("expected agent limit 8, got %d", cfg.Limits.Agent)
	}
	if cfg.Limits.Characters != 10 {
		t.Errorf("expected default characters limit 10, got %d", cfg.Limits.Characters)
	}
	if cfg.Strictness != model.StrictAbort {
		t.Errorf("expected strict, got %s", cfg.Strictness)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.Log.Level)
	}
}

func TestConfigFromViper_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"strictness", "lenient"},
		{"output.format", "html"},
		{"limits.pronoun", -1},
		{"input.max_bytes", 0},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			v := newTestViper()
			v.Set(tt.key, tt.value)
			if _, err := configFromViper(v); err == nil {
				t.Errorf("expected error for %s=%v", tt.key, tt.value)
			}
		})
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig failed: %v", err)
	}

	v := newTestViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}
	cfg, err := configFromViper(v)
	if err != nil {
		t.Fatalf("configFromViper failed: %v", err)
	}
	if diff := cmp.Diff(model.DefaultConfig(), cfg); diff != "" {
		t.Errorf("written config mismatch (-want +got):\n%s", diff)
	}

	err = writeDefaultConfig(path)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("expected already exists error, got %v", err)
	}
}

func TestApplyReportFlags(t *testing.T) {
	cacheDir := t.TempDir()
	cmd := &cobra.Command{Use: "test"}
	addReportFlags(cmd)
	if err := cmd.ParseFlags([]string{
		"--top", "2",
		"--top-agent", "7",
		"--format", "markdown",
		"--no-banner",
		"--cache-dir", cacheDir,
	}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg := model.DefaultConfig()
	cfg.Limits.Proper = 9 // from config file; no flag set
	if err := applyReportFlags(cmd, cfg); err != nil {
		t.Fatalf("applyReportFlags failed: %v", err)
	}

	want := model.DefaultLimits()
	want.Characters = 2
	want.Agent = 7
	want.Proper = 9
	if diff := cmp.Diff(want, cfg.Limits); diff != "" {
		t.Errorf("limits mismatch (-want +got):\n%s", diff)
	}
	if cfg.Output.Format != model.FormatMarkdown {
		t.Errorf("expected markdown, got %s", cfg.Output.Format)
	}
	if cfg.Output.Banner {
		t.Error("expected banner disabled")
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != cacheDir {
		t.Errorf("expected cache enabled in %s, got %+v", cacheDir, cfg.Cache)
	}
}

func TestApplyReportFlags_Invalid(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addReportFlags(cmd)
	if err := cmd.ParseFlags([]string{"--top", "-1"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	if err := applyReportFlags(cmd, model.DefaultConfig()); err == nil {
		t.Error("expected error for negative limit")
	}
}
