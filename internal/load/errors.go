package load

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocument marks input that is not parseable JSON
	ErrMalformedDocument = errors.New("malformed document")
	// ErrSchemaViolation marks JSON whose top-level shape cannot hold characters
	ErrSchemaViolation = errors.New("schema violation")
	// ErrInputTooLarge marks input exceeding the configured byte limit
	ErrInputTooLarge = errors.New("input too large")
)

// MalformedDocumentError reports input that could not be parsed at all
type MalformedDocumentError struct {
	Source string
	Err    error
}

func (e *MalformedDocumentError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("malformed document %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("malformed document: %v", e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// Is matches ErrMalformedDocument
func (e *MalformedDocumentError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// SchemaViolationError reports parseable JSON with an unusable top-level shape
type SchemaViolationError struct {
	Source string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("schema violation in %s: %s", e.Source, e.Reason)
	}
	return fmt.Sprintf("schema violation: %s", e.Reason)
}

// Is matches ErrSchemaViolation
func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}
