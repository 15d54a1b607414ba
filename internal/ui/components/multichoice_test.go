package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/abhisek/examprep/internal/course"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func sampleQuestion() course.Question {
	return course.Question{
		ID:      "q1",
		Text:    "Which are <b>primary</b> colors?",
		Options: map[string]string{"A": "Red", "B": "Green", "C": "Blue", "D": "Purple"},
		Answer:  "A,C",
	}
}

func TestMultiChoiceResolvesKeys(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want string
	}{
		{"exact key", keyPress('B'), "B"},
		{"lowercase key", keyPress('c'), "C"},
		{"position", keyPress('4'), "D"},
		{"out of range position", keyPress('9'), ""},
		{"unknown letter", keyPress('z'), ""},
		{"space picks cursor", specialKey(tea.KeySpace), "A"},
		{"not a key", tea.WindowSizeMsg{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMultiChoice(sampleQuestion())
			_, got := m.Update(tt.msg)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMultiChoiceCursor(t *testing.T) {
	m := NewMultiChoice(sampleQuestion())
	m, _ = m.Update(specialKey(tea.KeyUp))
	assert.Equal(t, 0, m.Cursor, "cursor stays at top")

	m, _ = m.Update(specialKey(tea.KeyDown))
	m, _ = m.Update(specialKey(tea.KeyDown))
	assert.Equal(t, 2, m.Cursor)

	_, key := m.Update(specialKey(tea.KeySpace))
	assert.Equal(t, "C", key)

	for i := 0; i < 10; i++ {
		m, _ = m.Update(specialKey(tea.KeyDown))
	}
	assert.Equal(t, 3, m.Cursor, "cursor stops at bottom")

	m, _ = m.Update(keyPress('a'))
	assert.Equal(t, 0, m.Cursor, "typing a key moves the cursor to it")
}

func TestMultiChoiceViewMarksSelection(t *testing.T) {
	q := sampleQuestion()
	m := NewMultiChoice(q)
	sel := course.NewSelection(q)
	sel.Choose("C")

	out := m.View(sel, nil)
	assert.Contains(t, out, "[x] C. Blue")
	assert.Contains(t, out, "[ ] A. Red")
	assert.Contains(t, out, "Select all that apply")

	revealed := m.View(sel, q.AnswerKeys())
	assert.False(t, strings.Contains(revealed, "Select all that apply"))
}

func TestMultiChoiceSingleAnswerMarkers(t *testing.T) {
	q := sampleQuestion()
	q.Answer = "B"
	m := NewMultiChoice(q)
	sel := course.NewSelection(q)
	sel.Choose("B")

	out := m.View(sel, nil)
	assert.Contains(t, out, "(•) B. Green")
	assert.Contains(t, out, "( ) A. Red")
}
