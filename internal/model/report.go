package model

// Report is the renderer's input: selected, truncated profiles plus the
// bookkeeping needed to explain what was left out.
type Report struct {
	Source     string      `json:"source,omitempty"` // Path or label of the analysed artifact
	Total      int         `json:"total"`            // Characters that survived normalization
	Limits     Limits      `json:"limits"`
	Characters []Character `json:"characters"` // Selected characters, source order
	Issues     Issues      `json:"issues"`
}

// Issues accounts for everything normalization dropped
type Issues struct {
	SkippedEntries int      `json:"skipped_entries"`
	SkippedRecords int      `json:"skipped_records"`
	Messages       []string `json:"messages,omitempty"`
}

// Empty reports whether nothing was dropped
func (i Issues) Empty() bool {
	return i.SkippedEntries == 0 && i.SkippedRecords == 0
}
