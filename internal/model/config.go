package model

import (
	"fmt"
	"time"
)

// Config is the complete charprofile configuration
type Config struct {
	Limits      Limits            `yaml:"limits" mapstructure:"limits"`
	Strictness  Strictness        `yaml:"strictness" mapstructure:"strictness"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// Limits holds the top-N truncation policy used by the report
type Limits struct {
	Characters  int `yaml:"characters" mapstructure:"characters" json:"characters"`
	Proper      int `yaml:"proper" mapstructure:"proper" json:"proper"`
	Common      int `yaml:"common" mapstructure:"common" json:"common"`
	Pronoun     int `yaml:"pronoun" mapstructure:"pronoun" json:"pronoun"`
	Agent       int `yaml:"agent" mapstructure:"agent" json:"agent"`
	Patient     int `yaml:"patient" mapstructure:"patient" json:"patient"`
	Possessions int `yaml:"possessions" mapstructure:"possessions" json:"possessions"`
	Modifiers   int `yaml:"modifiers" mapstructure:"modifiers" json:"modifiers"`
}

// DefaultLimits returns the limits of the standard character report
func DefaultLimits() Limits {
	return Limits{
		Characters:  10,
		Proper:      3,
		Common:      3,
		Pronoun:     3,
		Agent:       5,
		Patient:     3,
		Possessions: 3,
		Modifiers:   3,
	}
}

// Mention returns the limit for a mention kind
func (l Limits) Mention(kind MentionKind) int {
	switch kind {
	case MentionProper:
		return l.Proper
	case MentionCommon:
		return l.Common
	case MentionPronoun:
		return l.Pronoun
	default:
		return 0
	}
}

// Role returns the limit for a role kind
func (l Limits) Role(kind RoleKind) int {
	switch kind {
	case RoleAgent:
		return l.Agent
	case RolePatient:
		return l.Patient
	case RolePossession:
		return l.Possessions
	case RoleModifier:
		return l.Modifiers
	default:
		return 0
	}
}

// Strictness controls how normalization reacts to malformed entries
type Strictness string

const (
	StrictSkipEntry  Strictness = "skip-entry"  // Drop the bad attestation, keep the record
	StrictSkipRecord Strictness = "skip-record" // Drop the whole record
	StrictAbort      Strictness = "strict"      // Fail the run
)

// Valid reports whether s is a known strictness level
func (s Strictness) Valid() bool {
	switch s {
	case StrictSkipEntry, StrictSkipRecord, StrictAbort:
		return true
	}
	return false
}

// Format selects the report rendering
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
)

// Ext returns the file extension used when writing this format to disk
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// InputConfig bounds artifact reads
type InputConfig struct {
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Format Format `yaml:"format" mapstructure:"format"`
	Banner bool   `yaml:"banner" mapstructure:"banner"`
}

// CacheConfig controls the rendered report cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers   int     `yaml:"workers" mapstructure:"workers"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // Files per second per directory, 0 = unlimited
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Limits:     DefaultLimits(),
		Strictness: StrictSkipEntry,
		Input: InputConfig{
			MaxBytes: 256 << 20,
		},
		Output: OutputConfig{
			Format: FormatText,
			Banner: true,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       "",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers:   4,
			RateLimit: 0,
			Burst:     5,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks the configuration for values the pipeline cannot use
func (c *Config) Validate() error {
	limits := []struct {
		name  string
		value int
	}{
		{"characters", c.Limits.Characters},
		{"proper", c.Limits.Proper},
		{"common", c.Limits.Common},
		{"pronoun", c.Limits.Pronoun},
		{"agent", c.Limits.Agent},
		{"patient", c.Limits.Patient},
		{"possessions", c.Limits.Possessions},
		{"modifiers", c.Limits.Modifiers},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("limits.%s must be >= 0, got %d", l.name, l.value)
		}
	}

	if !c.Strictness.Valid() {
		return fmt.Errorf("unknown strictness %q (supported: skip-entry, skip-record, strict)", c.Strictness)
	}

	switch c.Output.Format {
	case FormatText, FormatMarkdown, FormatTable, FormatJSON:
	default:
		return fmt.Errorf("unknown output format %q (supported: text, markdown, table, json)", c.Output.Format)
	}

	if c.Concurrency.RateLimit < 0 {
		return fmt.Errorf("concurrency.rate_limit must be >= 0, got %g", c.Concurrency.RateLimit)
	}

	if c.Input.MaxBytes <= 0 {
		return fmt.Errorf("input.max_bytes must be > 0, got %d", c.Input.MaxBytes)
	}

	return nil
}
