package course

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileJSON(t *testing.T) {
	bank, err := LoadFile("testdata/bank.json")
	require.NoError(t, err)

	assert.Equal(t, "Cloud Practitioner", bank.Name)
	assert.Equal(t, "Sample questions", bank.Description)
	require.Len(t, bank.Questions, 2)
	assert.Equal(t, "s3-durability", bank.Questions[0].ID)
	assert.NotEmpty(t, bank.Questions[1].ID)
	assert.Equal(t, "A,C", bank.Questions[1].Answer)
	assert.True(t, bank.Questions[1].IsMultiAnswer())
}

func TestLoadFileYAML(t *testing.T) {
	bank, err := LoadFile("testdata/bank.yaml")
	require.NoError(t, err)

	require.Len(t, bank.Questions, 2)
	assert.Equal(t, "Availability Zone", bank.Questions[0].Options["A"])
	assert.Equal(t, []string{"A", "B"}, bank.Questions[1].AnswerKeys())
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseJSONBareArray(t *testing.T) {
	bank, err := ParseJSON([]byte(`[
		{"id": "1", "question": "Q?", "options": {"A": "x", "B": "y"}, "answer": "B"}
	]`))
	require.NoError(t, err)
	assert.Empty(t, bank.Name)
	require.Len(t, bank.Questions, 1)
	assert.Equal(t, "B", bank.Questions[0].Answer)
}

func TestParseJSONRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"empty array", `[]`},
		{"wrong top-level type", `"hello"`},
		{"missing answer", `[{"question": "Q?", "options": {"A": "x", "B": "y"}}]`},
		{"single option", `[{"question": "Q?", "options": {"A": "x"}, "answer": "A"}]`},
		{"answer not an option", `[{"question": "Q?", "options": {"A": "x", "B": "y"}, "answer": "C"}]`},
		{"one of several answers not an option", `[{"question": "Q?", "options": {"A": "x", "B": "y"}, "answer": "A,Z"}]`},
		{"blank answer", `[{"question": "Q?", "options": {"A": "x", "B": "y"}, "answer": " , "}]`},
		{"blank question", `[{"question": "  ", "options": {"A": "x", "B": "y"}, "answer": "A"}]`},
		{"unknown field", `[{"question": "Q?", "options": {"A": "x", "B": "y"}, "answer": "A", "hint": "h"}]`},
		{"duplicate ids", `[
			{"id": "q", "question": "Q1", "options": {"A": "x", "B": "y"}, "answer": "A"},
			{"id": "q", "question": "Q2", "options": {"A": "x", "B": "y"}, "answer": "B"}
		]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJSON([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseYAMLRejectsMultipleDocuments(t *testing.T) {
	doc := "- question: Q\n  options: {A: x, B: y}\n  answer: A\n---\n- question: R\n"
	_, err := ParseYAML([]byte(doc))
	assert.Error(t, err)
}

func TestNormalizeEmptyBank(t *testing.T) {
	err := Normalize(&Bank{})
	assert.ErrorIs(t, err, ErrEmptyBank)
}
