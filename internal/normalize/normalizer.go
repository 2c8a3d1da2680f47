// Package normalize turns raw BookNLP character records into model.Character
// profiles, resolving variant fields and defaulting absent collections.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/charprofile/internal/model"
)

// Wire keys are matched exactly. encoding/json folds case when decoding into
// structs, which would let an unknown "G" or "AGENT" key shadow "g" or "agent".

// wireObject splits a JSON object into its members keyed by exact name
type wireObject map[string]json.RawMessage

func decodeObject(raw json.RawMessage) (wireObject, error) {
	var obj wireObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("not an object")
	}
	return obj, nil
}

// member decodes the value under key into dst.
// It reports false when the key is absent or null.
func (o wireObject) member(key string, dst any) (bool, error) {
	raw, ok := o[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("field %q: %w", key, err)
	}
	return true, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Result is a normalized document with an account of what was dropped
type Result struct {
	Characters     []model.Character
	Issues         []error
	SkippedEntries int
	SkippedRecords int
}

// Normalizer converts raw records according to a strictness policy
type Normalizer struct {
	strictness model.Strictness
}

// NewNormalizer creates a normalizer; unknown strictness falls back to skip-entry
func NewNormalizer(strictness model.Strictness) *Normalizer {
	if !strictness.Valid() {
		strictness = model.StrictSkipEntry
	}
	return &Normalizer{strictness: strictness}
}

// NormalizeDocument normalizes every record of doc in source order.
// In strict mode the first problem aborts; otherwise problems are
// recorded in the result and the offending entry or record is dropped.
func (n *Normalizer) NormalizeDocument(doc *model.AnalysisDocument) (*Result, error) {
	result := &Result{Characters: make([]model.Character, 0, doc.Len())}
	if doc == nil {
		return result, nil
	}

	for i, raw := range doc.Characters {
		c, issues, err := n.Normalize(i, raw)
		if err != nil {
			if n.strictness == model.StrictAbort {
				return nil, err
			}
			result.SkippedRecords++
			result.Issues = append(result.Issues, err)
			continue
		}

		result.SkippedEntries += len(issues)
		for _, issue := range issues {
			result.Issues = append(result.Issues, issue)
		}
		result.Characters = append(result.Characters, c)
	}

	return result, nil
}

// Normalize converts the record at position index.
// Entry-level problems come back as issues when the policy is skip-entry;
// under skip-record and strict the first one is returned as err instead.
func (n *Normalizer) Normalize(index int, raw json.RawMessage) (model.Character, []*AttestationFieldMissingError, error) {
	record, err := decodeObject(raw)
	if err != nil {
		return model.Character{}, nil, &RecordError{Index: index, Err: fmt.Errorf("decode: %w", err)}
	}
	recordErr := func(hasID bool, id int, err error) error {
		return &RecordError{Index: index, CharacterID: id, HasID: hasID, Err: err}
	}

	var id int
	found, err := record.member("id", &id)
	if err != nil {
		return model.Character{}, nil, recordErr(false, 0, fmt.Errorf("decode: %w", err))
	}
	if !found {
		return model.Character{}, nil, recordErr(false, 0, errors.New(`field "id" missing`))
	}

	var gender model.Gender
	if _, err := record.member("g", &gender); err != nil {
		return model.Character{}, nil, recordErr(true, id, fmt.Errorf("decode: %w", err))
	}

	c := model.Character{ID: id, Gender: gender.Resolve()}

	if _, err := record.member("count", &c.Count); err != nil {
		return model.Character{}, nil, recordErr(true, id, fmt.Errorf("decode: %w", err))
	}
	if c.Count < 0 {
		return model.Character{}, nil, recordErr(true, id, fmt.Errorf(`field "count" is negative: %d`, c.Count))
	}

	mentions := wireObject{}
	if _, err := record.member("mentions", &mentions); err != nil {
		return model.Character{}, nil, recordErr(true, id, fmt.Errorf("decode: %w", err))
	}

	var issues []*AttestationFieldMissingError

	for _, kind := range model.MentionKinds {
		var entries []json.RawMessage
		if _, err := mentions.member(string(kind), &entries); err != nil {
			return model.Character{}, nil, recordErr(true, id, fmt.Errorf("decode mentions: %w", err))
		}
		normalized, entryIssues := normalizeMentions(id, kind, entries)
		issues = append(issues, entryIssues...)
		switch kind {
		case model.MentionProper:
			c.Mentions.Proper = normalized
		case model.MentionCommon:
			c.Mentions.Common = normalized
		case model.MentionPronoun:
			c.Mentions.Pronoun = normalized
		}
	}

	for _, kind := range model.RoleKinds {
		var entries []json.RawMessage
		if _, err := record.member(string(kind), &entries); err != nil {
			return model.Character{}, nil, recordErr(true, id, fmt.Errorf("decode: %w", err))
		}
		normalized, entryIssues := normalizeRoles(id, kind, entries)
		issues = append(issues, entryIssues...)
		switch kind {
		case model.RoleAgent:
			c.Agent = normalized
		case model.RolePatient:
			c.Patient = normalized
		case model.RolePossession:
			c.Possessions = normalized
		case model.RoleModifier:
			c.Modifiers = normalized
		}
	}

	if len(issues) > 0 && n.strictness != model.StrictSkipEntry {
		return model.Character{}, nil, issues[0]
	}

	return c, issues, nil
}

// normalizeMentions keeps well-formed entries in source order
func normalizeMentions(id int, kind model.MentionKind, entries []json.RawMessage) ([]model.MentionAttestation, []*AttestationFieldMissingError) {
	out := make([]model.MentionAttestation, 0, len(entries))
	var issues []*AttestationFieldMissingError
	collection := "mentions." + string(kind)

	for i, entry := range entries {
		unreadable := func(field string, err error) *AttestationFieldMissingError {
			return &AttestationFieldMissingError{
				CharacterID: id, Collection: collection, Index: i, Field: field, Reason: "unreadable: " + err.Error(),
			}
		}

		obj, err := decodeObject(entry)
		if err != nil {
			issues = append(issues, unreadable("n", err))
			continue
		}
		var name string
		var count int
		hasName, err := obj.member("n", &name)
		if err != nil {
			issues = append(issues, unreadable("n", err))
			continue
		}
		hasCount, err := obj.member("c", &count)
		if err != nil {
			issues = append(issues, unreadable("c", err))
			continue
		}

		switch {
		case !hasName:
			issues = append(issues, &AttestationFieldMissingError{CharacterID: id, Collection: collection, Index: i, Field: "n"})
			continue
		case !hasCount:
			issues = append(issues, &AttestationFieldMissingError{CharacterID: id, Collection: collection, Index: i, Field: "c"})
			continue
		case count < 0:
			issues = append(issues, &AttestationFieldMissingError{
				CharacterID: id, Collection: collection, Index: i, Field: "c", Reason: fmt.Sprintf("is negative: %d", count),
			})
			continue
		}
		out = append(out, model.MentionAttestation{Name: norm.NFC.String(name), Count: count})
	}

	return out, issues
}

// normalizeRoles keeps well-formed entries in source order, duplicates included
func normalizeRoles(id int, kind model.RoleKind, entries []json.RawMessage) ([]model.RoleAttestation, []*AttestationFieldMissingError) {
	out := make([]model.RoleAttestation, 0, len(entries))
	var issues []*AttestationFieldMissingError

	for i, entry := range entries {
		var word string
		obj, err := decodeObject(entry)
		if err == nil {
			var hasWord bool
			hasWord, err = obj.member("w", &word)
			if err == nil && !hasWord {
				issues = append(issues, &AttestationFieldMissingError{CharacterID: id, Collection: string(kind), Index: i, Field: "w"})
				continue
			}
		}
		if err != nil {
			issues = append(issues, &AttestationFieldMissingError{
				CharacterID: id, Collection: string(kind), Index: i, Field: "w", Reason: "unreadable: " + err.Error(),
			})
			continue
		}
		out = append(out, model.RoleAttestation{Word: norm.NFC.String(word)})
	}

	return out, issues
}
