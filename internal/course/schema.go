package course

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "schema://examprep/course.json"

// bankSchema accepts either a bare array of questions or an object wrapping
// them with a name and description.
const bankSchema = `{
  "$defs": {
    "question": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "question": {"type": "string", "minLength": 1},
        "options": {
          "type": "object",
          "minProperties": 2,
          "additionalProperties": {"type": "string"}
        },
        "answer": {"type": "string", "minLength": 1},
        "explanation": {"type": "string"}
      },
      "required": ["question", "options", "answer"],
      "additionalProperties": false
    },
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {"$ref": "#/$defs/question"}
    }
  },
  "oneOf": [
    {"$ref": "#/$defs/questions"},
    {
      "type": "object",
      "properties": {
        "name": {"type": "string"},
        "description": {"type": "string"},
        "questions": {"$ref": "#/$defs/questions"}
      },
      "required": ["questions"],
      "additionalProperties": false
    }
  ]
}`

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func bankValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(bankSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse course schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add course schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks raw JSON against the course schema.
func validateDocument(data []byte) error {
	sch, err := bankValidator()
	if err != nil {
		return err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("parse json: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("invalid course file: %w", err)
	}
	return nil
}
