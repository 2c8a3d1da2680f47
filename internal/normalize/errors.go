package normalize

import (
	"errors"
	"fmt"
)

var (
	// ErrAttestationFieldMissing marks an attestation entry without its required field
	ErrAttestationFieldMissing = errors.New("attestation field missing")
	// ErrInvalidRecord marks a character record that cannot be normalized at all
	ErrInvalidRecord = errors.New("invalid character record")
)

// AttestationFieldMissingError identifies one unusable attestation entry
type AttestationFieldMissingError struct {
	CharacterID int
	Collection  string // e.g. "agent", "mentions.proper"
	Index       int    // Position of the entry within the collection
	Field       string // Wire key that was missing or unreadable
	Reason      string // Empty when the key is simply absent
}

func (e *AttestationFieldMissingError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "missing"
	}
	return fmt.Sprintf("character %d: %s[%d]: field %q %s", e.CharacterID, e.Collection, e.Index, e.Field, reason)
}

// Is matches ErrAttestationFieldMissing
func (e *AttestationFieldMissingError) Is(target error) bool {
	return target == ErrAttestationFieldMissing
}

// RecordError reports a character record dropped as a whole
type RecordError struct {
	Index       int // Position in the document's character list
	CharacterID int
	HasID       bool
	Err         error
}

func (e *RecordError) Error() string {
	if e.HasID {
		return fmt.Sprintf("record %d (character %d): %v", e.Index, e.CharacterID, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Is matches ErrInvalidRecord
func (e *RecordError) Is(target error) bool {
	return target == ErrInvalidRecord
}
