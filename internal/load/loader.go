package load

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/charprofile/internal/model"
)

// DefaultMaxBytes caps artifact reads when no limit is configured
const DefaultMaxBytes int64 = 256 << 20

// Loader parses BookNLP .book artifacts into AnalysisDocuments
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader that refuses inputs larger than maxBytes
func NewLoader(maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Loader{maxBytes: maxBytes}
}

// LoadFile reads and parses the artifact at path.
// The file is closed on every return path.
func (l *Loader) LoadFile(path string) (doc *model.AnalysisDocument, data []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open artifact: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err = l.read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err = parse(data, path)
	if err != nil {
		return nil, nil, err
	}
	return doc, data, nil
}

// Load reads and parses an artifact from r
func (l *Loader) Load(r io.Reader) (*model.AnalysisDocument, error) {
	data, err := l.read(r)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	return parse(data, "")
}

// LoadBytes parses an artifact already held in memory
func (l *Loader) LoadBytes(data []byte) (*model.AnalysisDocument, error) {
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrInputTooLarge, len(data), l.maxBytes)
	}
	return parse(data, "")
}

// read reads at most maxBytes from r
func (l *Loader) read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("%w: exceeds limit of %d bytes", ErrInputTooLarge, l.maxBytes)
	}
	return data, nil
}

// parse splits the artifact into raw character records.
// A missing or null "characters" key means zero characters.
func parse(data []byte, source string) (*model.AnalysisDocument, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, &MalformedDocumentError{Source: source, Err: err}
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &SchemaViolationError{Source: source, Reason: "top level is not an object"}
	}

	var top struct {
		Characters json.RawMessage `json:"characters"`
	}
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return nil, &SchemaViolationError{Source: source, Reason: err.Error()}
	}

	doc := &model.AnalysisDocument{Characters: []json.RawMessage{}}
	if len(top.Characters) == 0 || bytes.Equal(top.Characters, []byte("null")) {
		return doc, nil
	}

	if top.Characters[0] != '[' {
		return nil, &SchemaViolationError{Source: source, Reason: "\"characters\" is not an array"}
	}
	if err := json.Unmarshal(top.Characters, &doc.Characters); err != nil {
		return nil, &SchemaViolationError{Source: source, Reason: fmt.Sprintf("\"characters\": %v", err)}
	}
	if doc.Characters == nil {
		doc.Characters = []json.RawMessage{}
	}

	return doc, nil
}
