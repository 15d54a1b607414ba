package exam

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/abhisek/examprep/internal/course"
)

// PassPercentage is the score at which an exam counts as passed.
const PassPercentage = 70

// ErrSubmitted is returned when a submitted exam is modified.
var ErrSubmitted = errors.New("exam already submitted")

// Score summarizes a graded exam.
type Score struct {
	Correct    int
	Total      int
	Percentage int
}

// Passed reports whether the score reaches PassPercentage.
func (s Score) Passed() bool {
	return s.Percentage >= PassPercentage
}

// Session is one sitting of a mock exam: selections, review marks and a
// countdown. After Submit it is read-only. It is not safe for concurrent
// use.
type Session struct {
	questions []course.Question
	sel       []course.Selection
	marked    []bool
	remaining int // seconds
	submitted bool
	expired   bool

	// recorded is set from the command that saves the result, off the UI
	// goroutine.
	recorded atomic.Bool
}

// NewSession starts an exam over questions with the given time limit,
// rounded down to whole seconds.
func NewSession(questions []course.Question, limit time.Duration) *Session {
	s := &Session{
		questions: questions,
		sel:       make([]course.Selection, len(questions)),
		marked:    make([]bool, len(questions)),
		remaining: int(limit / time.Second),
	}
	for i, q := range questions {
		s.sel[i] = course.NewSelection(q)
	}
	return s
}

// Questions returns the exam's questions in presentation order.
func (s *Session) Questions() []course.Question {
	return s.questions
}

// Len is the number of questions.
func (s *Session) Len() int {
	return len(s.questions)
}

// Remaining is the time left on the countdown.
func (s *Session) Remaining() time.Duration {
	return time.Duration(s.remaining) * time.Second
}

// Submitted reports whether the exam has been submitted.
func (s *Session) Submitted() bool {
	return s.submitted
}

// Recorded reports whether the submitted result has been saved to the
// exam history.
func (s *Session) Recorded() bool {
	return s.recorded.Load()
}

// Expired reports whether the countdown reached zero.
func (s *Session) Expired() bool {
	return s.expired
}

// Tick advances the countdown by one second. It returns true exactly once:
// on the tick that reaches zero while the exam is still open. The caller
// then submits.
func (s *Session) Tick() bool {
	if s.submitted || s.remaining <= 0 {
		return false
	}
	s.remaining--
	if s.remaining == 0 {
		s.expired = true
		return true
	}
	return false
}

func (s *Session) check(i int) error {
	if s.submitted {
		return ErrSubmitted
	}
	if i < 0 || i >= len(s.questions) {
		return fmt.Errorf("question %d out of range", i)
	}
	return nil
}

// Choose applies an option key to question i.
func (s *Session) Choose(i int, key string) error {
	if err := s.check(i); err != nil {
		return err
	}
	if _, ok := s.questions[i].Options[key]; !ok {
		return fmt.Errorf("unknown option %q", key)
	}
	s.sel[i].Choose(key)
	return nil
}

// ToggleMark flags or unflags question i for review.
func (s *Session) ToggleMark(i int) error {
	if err := s.check(i); err != nil {
		return err
	}
	s.marked[i] = !s.marked[i]
	return nil
}

// Marked reports whether question i is flagged for review.
func (s *Session) Marked(i int) bool {
	return i >= 0 && i < len(s.marked) && s.marked[i]
}

// MarkedCount is the number of flagged questions.
func (s *Session) MarkedCount() int {
	n := 0
	for _, m := range s.marked {
		if m {
			n++
		}
	}
	return n
}

// Selection returns the options chosen for question i.
func (s *Session) Selection(i int) course.Selection {
	if i < 0 || i >= len(s.sel) {
		return course.Selection{}
	}
	return s.sel[i]
}

// Answered counts questions with at least one option chosen.
func (s *Session) Answered() int {
	n := 0
	for _, sel := range s.sel {
		if !sel.Empty() {
			n++
		}
	}
	return n
}

// Answers returns the chosen keys by question index, omitting unanswered
// questions.
func (s *Session) Answers() map[int][]string {
	out := make(map[int][]string, len(s.sel))
	for i, sel := range s.sel {
		if !sel.Empty() {
			out[i] = sel.Keys()
		}
	}
	return out
}

// IsCorrect reports whether question i was answered exactly right.
func (s *Session) IsCorrect(i int) bool {
	if i < 0 || i >= len(s.questions) {
		return false
	}
	return s.questions[i].IsCorrect(s.sel[i].Keys())
}

// Submit closes the exam. It returns true the first time and false on any
// later call.
func (s *Session) Submit() bool {
	if s.submitted {
		return false
	}
	s.submitted = true
	return true
}

// Score grades the current selections.
func (s *Session) Score() Score {
	sc := Score{Total: len(s.questions)}
	for i := range s.questions {
		if s.IsCorrect(i) {
			sc.Correct++
		}
	}
	if sc.Total > 0 {
		sc.Percentage = int(math.Round(float64(sc.Correct) / float64(sc.Total) * 100))
	}
	return sc
}
