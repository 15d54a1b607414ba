package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/store"
)

var (
	// ErrNoSelection is returned by Submit when no option is selected.
	ErrNoSelection = errors.New("no option selected")

	// ErrAnswered is returned when the current question was already
	// submitted.
	ErrAnswered = errors.New("question already answered")

	// ErrNoQuestion is returned when the turn is empty.
	ErrNoQuestion = errors.New("no question to answer")
)

// Outcome is the result of submitting an answer.
type Outcome struct {
	Question course.Question
	Selected []string
	Correct  bool

	// RemovedFromReview is set when a correct answer took the question out
	// of the incorrect set.
	RemovedFromReview bool
}

// Session runs practice for one course. It is not safe for concurrent use.
type Session struct {
	courseID string
	bank     []course.Question
	progress store.ProgressRepo
	log      *zap.Logger

	record   store.Progress
	turn     []course.Question
	pos      int
	sel      course.Selection
	outcome  *Outcome
	turnsRun int
}

// NewSession loads the stored progress for courseID and prepares the first
// turn over bank.
func NewSession(ctx context.Context, courseID string, bank []course.Question, progress store.ProgressRepo, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Session{
		courseID: courseID,
		bank:     bank,
		progress: progress,
		log:      log.With(zap.String("course_id", courseID)),
	}
	if err := s.newTurn(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) newTurn(ctx context.Context) error {
	st, err := s.LoadTurn(ctx)
	if err != nil {
		return err
	}
	s.Apply(st)
	return nil
}

// Step is the stored-state half of a practice action: what was read or
// written, and how the session moves on. The Load/Save methods that build a
// Step only read fields fixed at construction, so they may run off the UI
// goroutine; Apply then updates the session.
type Step struct {
	record  store.Progress
	outcome *Outcome
	turn    []course.Question
	reset   bool
}

// Outcome returns the graded answer carried by the step, if any.
func (st Step) Outcome() (Outcome, bool) {
	if st.outcome == nil {
		return Outcome{}, false
	}
	return *st.outcome, true
}

// LoadTurn reads the latest progress and prepares a turn from it.
func (s *Session) LoadTurn(ctx context.Context) (Step, error) {
	rec, err := s.progress.Load(ctx, s.courseID)
	if err != nil {
		return Step{}, fmt.Errorf("prepare turn: %w", err)
	}
	turn := PrepareTurn(s.bank, rec.IncorrectQuestions, rec.LearnedQuestions)
	s.log.Debug("turn prepared",
		zap.Int("questions", len(turn)),
		zap.Int("incorrect", len(rec.IncorrectQuestions)),
		zap.Int("learned", len(rec.LearnedQuestions)),
	)
	if turn == nil {
		turn = []course.Question{}
	}
	return Step{record: rec, turn: turn}, nil
}

// ClearProgress deletes the stored progress and prepares a fresh turn.
func (s *Session) ClearProgress(ctx context.Context) (Step, error) {
	if err := s.progress.Delete(ctx, s.courseID); err != nil {
		return Step{}, fmt.Errorf("reset progress: %w", err)
	}
	s.log.Info("progress reset")
	st, err := s.LoadTurn(ctx)
	st.reset = true
	return st, err
}

// SaveOutcome merges a graded answer into the stored record. The record is
// re-read first so changes made elsewhere are kept; the chat history is
// carried over untouched.
func (s *Session) SaveOutcome(ctx context.Context, out Outcome) (Step, error) {
	rec, err := s.progress.Load(ctx, s.courseID)
	if err != nil {
		return Step{}, fmt.Errorf("submit answer: %w", err)
	}
	id := out.Question.ID
	if out.Correct {
		out.RemovedFromReview = rec.IncorrectQuestions.Has(id)
		rec.LearnedQuestions = rec.LearnedQuestions.Add(id)
		rec.IncorrectQuestions = rec.IncorrectQuestions.Remove(id)
	} else {
		rec.IncorrectQuestions = rec.IncorrectQuestions.Add(id)
	}
	if err := s.progress.Save(ctx, s.courseID, rec); err != nil {
		return Step{}, fmt.Errorf("submit answer: %w", err)
	}
	s.log.Debug("answer submitted",
		zap.String("question_id", id),
		zap.Bool("correct", out.Correct),
	)
	return Step{record: rec, outcome: &out}, nil
}

// Apply moves the session to the state described by st.
func (s *Session) Apply(st Step) {
	s.record = st.record
	if st.reset {
		s.turnsRun = 0
	}
	if st.turn != nil {
		s.turn = st.turn
		s.pos = 0
		s.turnsRun++
		s.resetQuestion()
		return
	}
	if st.outcome != nil {
		s.outcome = st.outcome
	}
}

func (s *Session) resetQuestion() {
	s.outcome = nil
	if q, ok := s.Current(); ok {
		s.sel = course.NewSelection(q)
	} else {
		s.sel = course.Selection{}
	}
}

// Current returns the question being asked, or false when the turn is empty.
func (s *Session) Current() (course.Question, bool) {
	if s.pos >= len(s.turn) {
		return course.Question{}, false
	}
	return s.turn[s.pos], true
}

// Turn returns the questions of the current turn.
func (s *Session) Turn() []course.Question {
	return s.turn
}

// Position returns the zero-based index of the current question and the
// turn length.
func (s *Session) Position() (int, int) {
	return s.pos, len(s.turn)
}

// TurnNumber counts turns prepared in this session, starting at 1.
func (s *Session) TurnNumber() int {
	return s.turnsRun
}

// Selection returns the options chosen for the current question.
func (s *Session) Selection() course.Selection {
	return s.sel
}

// Outcome returns the result for the current question once it is submitted.
func (s *Session) Outcome() (Outcome, bool) {
	if s.outcome == nil {
		return Outcome{}, false
	}
	return *s.outcome, true
}

// IsReview reports whether the current question is in the incorrect set.
func (s *Session) IsReview() bool {
	q, ok := s.Current()
	return ok && s.record.IncorrectQuestions.Has(q.ID)
}

// Choose applies an option key to the current selection.
func (s *Session) Choose(key string) error {
	q, ok := s.Current()
	if !ok {
		return ErrNoQuestion
	}
	if s.outcome != nil {
		return ErrAnswered
	}
	if _, ok := q.Options[key]; !ok {
		return fmt.Errorf("unknown option %q", key)
	}
	s.sel.Choose(key)
	return nil
}

// Grade checks the current selection without touching storage.
func (s *Session) Grade() (Outcome, error) {
	q, ok := s.Current()
	if !ok {
		return Outcome{}, ErrNoQuestion
	}
	if s.outcome != nil {
		return *s.outcome, ErrAnswered
	}
	if s.sel.Empty() {
		return Outcome{}, ErrNoSelection
	}
	return Outcome{
		Question: q,
		Selected: s.sel.Keys(),
		Correct:  q.IsCorrect(s.sel.Keys()),
	}, nil
}

// Submit grades the current selection and persists the result.
func (s *Session) Submit(ctx context.Context) (Outcome, error) {
	out, err := s.Grade()
	if err != nil {
		return out, err
	}
	st, err := s.SaveOutcome(ctx, out)
	if err != nil {
		return Outcome{}, err
	}
	s.Apply(st)
	return *st.outcome, nil
}

// Advance moves to the following question of the current turn. It reports
// false at the end of the turn, when LoadTurn is needed.
func (s *Session) Advance() bool {
	if s.pos+1 < len(s.turn) {
		s.pos++
		s.resetQuestion()
		return true
	}
	return false
}

// Next advances to the following question. At the end of the turn a new
// turn is prepared from the latest stored progress.
func (s *Session) Next(ctx context.Context) error {
	if s.Advance() {
		return nil
	}
	return s.newTurn(ctx)
}

// Reset deletes the stored progress and starts over with a fresh turn.
func (s *Session) Reset(ctx context.Context) error {
	st, err := s.ClearProgress(ctx)
	if err != nil {
		return err
	}
	s.Apply(st)
	return nil
}

// Progress returns the most recently read or written record.
func (s *Session) Progress() store.Progress {
	return s.record
}

// Learned counts bank questions in the learned set.
func (s *Session) Learned() int {
	n := 0
	known := s.record.LearnedQuestions.Lookup()
	for _, q := range s.bank {
		if known[q.ID] {
			n++
		}
	}
	return n
}

// Total is the bank size.
func (s *Session) Total() int {
	return len(s.bank)
}

// Mastery is the fraction of the bank that is learned, in [0, 1].
func (s *Session) Mastery() float64 {
	if len(s.bank) == 0 {
		return 0
	}
	return float64(s.Learned()) / float64(len(s.bank))
}
