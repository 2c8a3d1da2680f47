// Package rank applies the report's top-N truncation policy.
// Upstream order is meaningful (mention count for characters, first
// occurrence for attestations), so nothing here ever sorts.
package rank

import "github.com/ppiankov/charprofile/internal/model"

// SelectTop returns the first min(n, len(seq)) elements of seq.
// The result shares the backing array with seq.
func SelectTop[T any](seq []T, n int) []T {
	if n <= 0 {
		return seq[:0:0]
	}
	if n > len(seq) {
		n = len(seq)
	}
	return seq[:n:n]
}

// Apply selects the leading characters and truncates each of their
// collections. The input slice and its characters are left untouched.
func Apply(chars []model.Character, limits model.Limits) []model.Character {
	selected := SelectTop(chars, limits.Characters)
	out := make([]model.Character, len(selected))
	for i, c := range selected {
		out[i] = Truncate(c, limits)
	}
	return out
}

// Truncate returns a copy of c with every collection cut to its limit
func Truncate(c model.Character, limits model.Limits) model.Character {
	c.Mentions = model.MentionClusters{
		Proper:  SelectTop(c.Mentions.Proper, limits.Proper),
		Common:  SelectTop(c.Mentions.Common, limits.Common),
		Pronoun: SelectTop(c.Mentions.Pronoun, limits.Pronoun),
	}
	c.Agent = SelectTop(c.Agent, limits.Agent)
	c.Patient = SelectTop(c.Patient, limits.Patient)
	c.Possessions = SelectTop(c.Possessions, limits.Possessions)
	c.Modifiers = SelectTop(c.Modifiers, limits.Modifiers)
	return c
}
