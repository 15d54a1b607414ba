package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is the JSON shape a structured reply must have. Providers pass
// Definition to their native structured-output option and every reply is
// checked against it before it is returned.
type Schema struct {
	// Name is a kebab-case identifier, e.g. "question-explanation".
	Name        string
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// The compiler wants decoded JSON, not Go maps with typed slices.
		raw, err := json.Marshal(s.Definition)
		if err != nil {
			s.err = fmt.Errorf("schema %s: %w", s.Name, err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			s.err = fmt.Errorf("schema %s: %w", s.Name, err)
			return
		}
		url := "mem://" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// Check reports why raw does not satisfy the schema, or nil.
func (s *Schema) Check(raw json.RawMessage) error {
	compiled, err := s.compile()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("not JSON: %w", err)
	}
	return compiled.Validate(doc)
}

// Decode checks raw and unmarshals it into v. Failures match
// ErrInvalidResponse.
func (s *Schema) Decode(raw json.RawMessage, v any) error {
	if err := s.Check(raw); err != nil {
		return &ProviderError{Kind: ErrInvalidResponse, Content: raw, Err: err}
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &ProviderError{Kind: ErrInvalidResponse, Content: raw, Err: err}
	}
	return nil
}
