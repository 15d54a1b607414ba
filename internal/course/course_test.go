package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAnswerKeys(t *testing.T) {
	tests := []struct {
		answer string
		want   []string
		multi  bool
	}{
		{"A", []string{"A"}, false},
		{"B, D", []string{"B", "D"}, true},
		{" A ,A,C", []string{"A", "C"}, true},
		{"", nil, false},
	}
	for _, tt := range tests {
		q := Question{Answer: tt.answer}
		assert.Equal(t, tt.want, q.AnswerKeys(), tt.answer)
		assert.Equal(t, tt.multi, q.IsMultiAnswer(), tt.answer)
	}
}

func TestIsCorrect(t *testing.T) {
	q := Question{
		Options: map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
		Answer:  "B,D",
	}
	tests := []struct {
		name     string
		selected []string
		want     bool
	}{
		{"exact set", []string{"B", "D"}, true},
		{"order does not matter", []string{"D", "B"}, true},
		{"subset", []string{"B"}, false},
		{"superset", []string{"B", "C", "D"}, false},
		{"disjoint", []string{"A"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, q.IsCorrect(tt.selected))
		})
	}
}

func TestOptionKeysSorted(t *testing.T) {
	q := Question{Options: map[string]string{"C": "", "A": "", "B": ""}}
	assert.Equal(t, []string{"A", "B", "C"}, q.OptionKeys())
}

func TestStripMarkup(t *testing.T) {
	assert.Equal(t, "Which is bold?", StripMarkup("Which is <b>bold</b>?"))
	assert.Equal(t, "line one line two", StripMarkup("line one<br/> line two"))
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_123)
	id := NewID(now)
	assert.Regexp(t, `^course_1700000000123_[0-9a-z]{9}$`, id)
	assert.NotEqual(t, id, NewID(now))
}

func TestCourseQuestionLookup(t *testing.T) {
	c := &Course{Questions: []Question{{ID: "q1"}, {ID: "q2", Text: "two"}}}
	q, ok := c.Question("q2")
	assert.True(t, ok)
	assert.Equal(t, "two", q.Text)
	_, ok = c.Question("q3")
	assert.False(t, ok)

	idx := Index(c.Questions)
	assert.Len(t, idx, 2)
	assert.Equal(t, "two", idx["q2"].Text)
}
