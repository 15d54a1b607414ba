package course

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Question is a single multiple-choice question in a course's bank.
type Question struct {
	ID          string            `json:"id"`
	Text        string            `json:"question"`
	Options     map[string]string `json:"options"`
	Answer      string            `json:"answer"`
	Explanation string            `json:"explanation,omitempty"`
}

// AnswerKeys returns the correct option keys, trimmed and deduplicated, in
// the order they appear in Answer.
func (q Question) AnswerKeys() []string {
	var keys []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(q.Answer, ",") {
		k := strings.TrimSpace(part)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys
}

// IsMultiAnswer reports whether the question has more than one correct key.
func (q Question) IsMultiAnswer() bool {
	return len(q.AnswerKeys()) > 1
}

// OptionKeys returns the option keys in sorted order ("A", "B", ...).
func (q Question) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// IsCorrect reports whether selected is exactly the set of correct keys.
// There is no partial credit.
func (q Question) IsCorrect(selected []string) bool {
	want := q.AnswerKeys()
	got := make(map[string]bool, len(selected))
	for _, k := range selected {
		got[strings.TrimSpace(k)] = true
	}
	if len(got) != len(want) {
		return false
	}
	for _, k := range want {
		if !got[k] {
			return false
		}
	}
	return true
}

var markupRe = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes embedded HTML-style tags from question or option text.
func StripMarkup(s string) string {
	return markupRe.ReplaceAllString(s, "")
}

// Course is an imported question bank.
type Course struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
	CreatedAt   int64      `json:"createdAt"` // unix milliseconds
}

// Question looks up a question by id.
func (c *Course) Question(id string) (Question, bool) {
	for _, q := range c.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Index builds an id → Question lookup for a bank.
func Index(questions []Question) map[string]Question {
	idx := make(map[string]Question, len(questions))
	for _, q := range questions {
		idx[q.ID] = q
	}
	return idx
}

// NewID returns a course id of the form course_<unix-ms>_<9 base36 chars>.
func NewID(now time.Time) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	for range 9 {
		b.WriteByte(alphabet[rand.IntN(len(alphabet))])
	}
	return fmt.Sprintf("course_%s_%s", strconv.FormatInt(now.UnixMilli(), 10), b.String())
}
