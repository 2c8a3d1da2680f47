package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// UnknownGender is the canonical label when no gender value is usable
const UnknownGender = "Unknown"

// GenderForm tags which constructor produced a Gender
type GenderForm int

const (
	GenderAbsent     GenderForm = iota // Key missing or null
	GenderScalar                       // Single value
	GenderCandidates                   // Ordered candidate list, first non-empty wins
)

// Gender is the raw referential-gender field of a character record.
// It is either a single value or an ordered list of candidates; empty
// strings stand in for null entries.
type Gender struct {
	form   GenderForm
	values []string
}

// Scalar builds a single-valued gender
func Scalar(value string) Gender {
	return Gender{form: GenderScalar, values: []string{value}}
}

// Candidates builds a gender from an ordered candidate list
func Candidates(values ...string) Gender {
	return Gender{form: GenderCandidates, values: append([]string(nil), values...)}
}

// Form reports which constructor built g
func (g Gender) Form() GenderForm {
	return g.form
}

// Resolve returns the canonical gender label
func (g Gender) Resolve() string {
	for _, v := range g.values {
		if strings.TrimSpace(v) != "" {
			return v
		}
		if g.form == GenderScalar {
			break
		}
	}
	return UnknownGender
}

// UnmarshalJSON implements json.Unmarshaler.
//
// Accepts a string, an array of strings/nulls, or a BookNLP inference
// object carrying "argmax". Any other shape decodes as absent.
func (g *Gender) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*g = Gender{}
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*g = Scalar(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		values := make([]string, len(raw))
		for i, item := range raw {
			// Non-string entries count as empty candidates
			var s string
			if json.Unmarshal(item, &s) == nil {
				values[i] = s
			}
		}
		*g = Candidates(values...)
	case '{':
		// Map lookup keeps the key match exact; struct decoding folds case
		var inference map[string]json.RawMessage
		if json.Unmarshal(data, &inference) != nil {
			return nil
		}
		var argmax string
		if raw, ok := inference["argmax"]; ok && json.Unmarshal(raw, &argmax) == nil {
			*g = Scalar(argmax)
		}
	}

	return nil
}
