package report

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// summaryWidth caps the free-text columns of the ASCII summary table
const summaryWidth = 40

// summaryTable renders one row per character block.
// Markdown output is used inside the markdown report, ASCII otherwise.
func summaryTable(blocks []block, markdown bool) string {
	w := table.NewWriter()

	w.AppendHeader(table.Row{"#", "ID", "Mentions", "Gender", LabelProper, LabelPronoun, LabelAgent})
	for _, b := range blocks {
		w.AppendRow(table.Row{
			b.Rank,
			b.ID,
			b.Count,
			b.Gender,
			b.lookup(LabelProper).Value(),
			b.lookup(LabelPronoun).Value(),
			b.lookup(LabelAgent).Value(),
		})
	}

	if markdown {
		return w.RenderMarkdown()
	}

	w.SetStyle(table.StyleLight)
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 5, WidthMax: summaryWidth},
		{Number: 6, WidthMax: summaryWidth},
		{Number: 7, WidthMax: summaryWidth},
	})
	return w.Render()
}
