package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/charprofile/internal/model"
)

// limitFlag maps a --top-* flag onto one field of model.Limits
type limitFlag struct {
	name  string
	usage string
	field func(*model.Limits) *int
}

var limitFlags = []limitFlag{
	{"top", "number of characters to report", func(l *model.Limits) *int { return &l.Characters }},
	{"top-proper", "proper names shown per character", func(l *model.Limits) *int { return &l.Proper }},
	{"top-common", "common names shown per character", func(l *model.Limits) *int { return &l.Common }},
	{"top-pronoun", "pronouns shown per character", func(l *model.Limits) *int { return &l.Pronoun }},
	{"top-agent", "actions performed shown per character", func(l *model.Limits) *int { return &l.Agent }},
	{"top-patient", "actions received shown per character", func(l *model.Limits) *int { return &l.Patient }},
	{"top-poss", "possessions shown per character", func(l *model.Limits) *int { return &l.Possessions }},
	{"top-mod", "descriptors shown per character", func(l *model.Limits) *int { return &l.Modifiers }},
}

// addReportFlags registers the flags shared by analyze and batch.
// Flags only override the configuration when set explicitly.
func addReportFlags(cmd *cobra.Command) {
	d := model.DefaultConfig()
	flags := cmd.Flags()

	flags.StringP("format", "f", string(d.Output.Format), "output format (text, markdown, table, json)")
	flags.String("strictness", string(d.Strictness), "malformed data handling (skip-entry, skip-record, strict)")
	flags.Bool("no-banner", false, "omit the report banner")
	flags.Bool("cache", false, "cache rendered reports")
	flags.String("cache-dir", "", "persist cached reports in this directory")
	flags.Int64("max-bytes", d.Input.MaxBytes, "max artifact bytes to read")

	defaults := d.Limits
	for _, lf := range limitFlags {
		flags.Int(lf.name, *lf.field(&defaults), lf.usage)
	}
}

// applyReportFlags copies explicitly set flags onto cfg and revalidates it
func applyReportFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()

	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		cfg.Output.Format = model.Format(v)
	}
	if flags.Changed("strictness") {
		v, _ := flags.GetString("strictness")
		cfg.Strictness = model.Strictness(v)
	}
	if flags.Changed("no-banner") {
		v, _ := flags.GetBool("no-banner")
		cfg.Output.Banner = !v
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir, _ = flags.GetString("cache-dir")
		cfg.Cache.Enabled = true
	}
	if flags.Changed("max-bytes") {
		cfg.Input.MaxBytes, _ = flags.GetInt64("max-bytes")
	}

	for _, lf := range limitFlags {
		if flags.Changed(lf.name) {
			v, _ := flags.GetInt(lf.name)
			*lf.field(&cfg.Limits) = v
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// reportConfig returns a copy of the resolved configuration with flags applied
func reportConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if appConfig != nil {
		copied := *appConfig
		cfg = &copied
	}
	if err := applyReportFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
