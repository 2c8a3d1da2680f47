// Package report renders selected character profiles as text, Markdown,
// a summary table, or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/charprofile/internal/model"
)

const (
	bannerRule  = "============================================================"
	bannerTitle = "BOOKNLP CHARACTER ANALYSIS"
)

// Renderer turns a model.Report into its textual form.
// It holds no state between calls; Render is a pure function of its input.
type Renderer struct {
	format model.Format
	banner bool
}

// NewRenderer creates a renderer for the given format
func NewRenderer(format model.Format, banner bool) *Renderer {
	if format == "" {
		format = model.FormatText
	}
	return &Renderer{format: format, banner: banner}
}

// Format returns the renderer's output format
func (r *Renderer) Format() model.Format {
	return r.format
}

// Render produces the report text
func (r *Renderer) Render(report *model.Report) (string, error) {
	var sb strings.Builder
	if err := r.RenderTo(&sb, report); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderTo writes the report to w
func (r *Renderer) RenderTo(w io.Writer, report *model.Report) error {
	if report == nil {
		return fmt.Errorf("%w: nil report", ErrContractViolation)
	}

	if r.format == model.FormatJSON {
		return renderJSON(w, report)
	}

	blocks, err := buildBlocks(report.Characters)
	if err != nil {
		return err
	}

	var out string
	switch r.format {
	case model.FormatText:
		out = r.text(report.Total, blocks)
	case model.FormatMarkdown:
		out = r.markdown(report.Total, blocks)
	case model.FormatTable:
		out = r.table(report.Total, blocks)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}

	if _, err := io.WriteString(w, out); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func foundLine(total int) string {
	return fmt.Sprintf("Found %d major characters mentioned more than once:", total)
}

func (r *Renderer) text(total int, blocks []block) string {
	var sb strings.Builder

	if r.banner {
		sb.WriteString(bannerRule + "\n")
		sb.WriteString(bannerTitle + "\n")
		sb.WriteString(bannerRule + "\n")
	}
	sb.WriteString("\n" + foundLine(total) + "\n\n")

	for _, b := range blocks {
		fmt.Fprintf(&sb, "%d. CHARACTER ID %d\n", b.Rank, b.ID)
		fmt.Fprintf(&sb, "   Total mentions: %d\n", b.Count)
		fmt.Fprintf(&sb, "   Referential gender: %s\n", b.Gender)
		for _, c := range b.Categories {
			if !c.Present {
				continue
			}
			fmt.Fprintf(&sb, "   %s: %s\n", c.Label, c.Value())
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *Renderer) markdown(total int, blocks []block) string {
	var sb strings.Builder

	if r.banner {
		sb.WriteString("# BookNLP Character Analysis\n\n")
	}
	fmt.Fprintf(&sb, "Found %d major characters mentioned more than once.\n\n", total)

	if len(blocks) > 0 {
		sb.WriteString(summaryTable(blocks, true))
		sb.WriteString("\n\n")
	}

	for _, b := range blocks {
		fmt.Fprintf(&sb, "## %d. Character %d\n\n", b.Rank, b.ID)
		fmt.Fprintf(&sb, "- **Total mentions:** %d\n", b.Count)
		fmt.Fprintf(&sb, "- **Referential gender:** %s\n", b.Gender)
		for _, c := range b.Categories {
			if !c.Present {
				continue
			}
			fmt.Fprintf(&sb, "- **%s:** %s\n", c.Label, c.Value())
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *Renderer) table(total int, blocks []block) string {
	var sb strings.Builder

	if r.banner {
		sb.WriteString(bannerTitle + "\n")
	}
	sb.WriteString(foundLine(total) + "\n")
	if len(blocks) > 0 {
		sb.WriteString(summaryTable(blocks, false))
		sb.WriteString("\n")
	}

	return sb.String()
}

func renderJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
