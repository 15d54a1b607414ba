package course

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Bank is the content of an imported course file before it is assigned an
// id and stored.
type Bank struct {
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// ErrEmptyBank is returned when an import file contains no questions.
var ErrEmptyBank = errors.New("question bank has no questions")

// LoadFile reads a course file. Files ending in .yaml or .yml are parsed as
// YAML, everything else as JSON. The document may be a bare array of
// questions or an object with name, description and questions.
func LoadFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("read course file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}
	return ParseJSON(data)
}

// ParseJSON parses and validates a JSON course document.
func ParseJSON(data []byte) (Bank, error) {
	if err := validateDocument(data); err != nil {
		return Bank{}, err
	}
	return decodeBank(data)
}

// ParseYAML parses a YAML course document. It is converted to JSON and
// validated against the same schema as JSON imports.
func ParseYAML(data []byte) (Bank, error) {
	var doc any
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return Bank{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return Bank{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return Bank{}, fmt.Errorf("parse yaml: %w", err)
	}
	converted, err := json.Marshal(doc)
	if err != nil {
		return Bank{}, fmt.Errorf("parse yaml: %w", err)
	}
	return ParseJSON(converted)
}

func decodeBank(data []byte) (Bank, error) {
	var bank Bank
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := strictDecode(trimmed, &bank.Questions); err != nil {
			return Bank{}, err
		}
	} else if err := strictDecode(trimmed, &bank); err != nil {
		return Bank{}, err
	}
	if err := Normalize(&bank); err != nil {
		return Bank{}, err
	}
	return bank, nil
}

func strictDecode(data []byte, v any) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse json: multiple documents are not supported")
		}
		return fmt.Errorf("parse json: %w", err)
	}
	return nil
}

// Normalize trims text, assigns ids to questions that lack one and checks
// the answer-key invariant: every answer key must be an option key.
func Normalize(bank *Bank) error {
	bank.Name = strings.TrimSpace(bank.Name)
	bank.Description = strings.TrimSpace(bank.Description)
	if len(bank.Questions) == 0 {
		return ErrEmptyBank
	}

	ids := make(map[string]int, len(bank.Questions))
	for i := range bank.Questions {
		q := &bank.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			q.ID = uuid.New().String()
		}
		if prev, dup := ids[q.ID]; dup {
			return fmt.Errorf("question %d: duplicate id %q (first used by question %d)", i+1, q.ID, prev+1)
		}
		ids[q.ID] = i

		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			return fmt.Errorf("question %d: empty question text", i+1)
		}
		keys := q.AnswerKeys()
		if len(keys) == 0 {
			return fmt.Errorf("question %d: empty answer", i+1)
		}
		for _, k := range keys {
			if _, ok := q.Options[k]; !ok {
				return fmt.Errorf("question %d: answer key %q is not an option", i+1, k)
			}
		}
		q.Answer = strings.Join(keys, ",")
	}
	return nil
}
