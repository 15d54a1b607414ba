package exam

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/store"
)

func makeBank(n int) []course.Question {
	qs := make([]course.Question, n)
	for i := range qs {
		qs[i] = course.Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Options: map[string]string{"A": "yes", "B": "no"},
			Answer:  "A",
		}
	}
	return qs
}

func idRange(from, to int) course.IDSet {
	var s course.IDSet
	for i := from; i <= to; i++ {
		s = append(s, fmt.Sprintf("q%d", i))
	}
	return s
}

func TestQuota(t *testing.T) {
	tests := []struct {
		total, repeat, fresh int
	}{
		{65, 6, 59},
		{10, 1, 9},
		{9, 0, 9},
		{100, 10, 90},
		{0, 0, 0},
		{-3, 0, 0},
	}
	for _, tt := range tests {
		r, f := Quota(tt.total)
		assert.Equal(t, tt.repeat, r, "repeat for %d", tt.total)
		assert.Equal(t, tt.fresh, f, "fresh for %d", tt.total)
	}
}

func TestBuildExamRepeatQuota(t *testing.T) {
	bank := makeBank(200)
	seen := idRange(1, 50)
	wrong := idRange(1, 3)

	for i := 0; i < 20; i++ {
		exam := BuildExam(bank, seen, wrong, 65)
		require.Len(t, exam, 65)

		var repeated, wrongCount int
		uniq := map[string]bool{}
		for _, q := range exam {
			assert.False(t, uniq[q.ID], "duplicate %s", q.ID)
			uniq[q.ID] = true
			if seen.Has(q.ID) {
				repeated++
			}
			if wrong.Has(q.ID) {
				wrongCount++
			}
		}
		assert.Equal(t, 6, repeated)
		assert.Equal(t, 3, wrongCount, "all wrong questions are repeated before other seen ones")
	}
}

func TestBuildExamWrongOutsideSeenNotPrioritized(t *testing.T) {
	bank := makeBank(100)
	// q99 is wrong but was never seen; it only counts as unseen.
	exam := BuildExam(bank, nil, course.IDSet{"q99"}, 10)
	require.Len(t, exam, 10)
}

func TestBuildExamBackfillsEmptyHistory(t *testing.T) {
	exam := BuildExam(makeBank(50), nil, nil, 10)
	assert.Len(t, exam, 10)
}

func TestBuildExamBackfillsFromSeen(t *testing.T) {
	bank := makeBank(20)
	seen := idRange(1, 18)

	exam := BuildExam(bank, seen, nil, 10)
	require.Len(t, exam, 10)
	var unseen int
	for _, q := range exam {
		if !seen.Has(q.ID) {
			unseen++
		}
	}
	assert.Equal(t, 2, unseen, "both unseen questions are used before backfill")
}

func TestBuildExamExhaustsSmallBank(t *testing.T) {
	exam := BuildExam(makeBank(7), idRange(1, 2), idRange(1, 1), 65)
	assert.Len(t, exam, 7)
}

func TestBuildExamEmpty(t *testing.T) {
	assert.Empty(t, BuildExam(nil, nil, nil, 65))
	assert.Empty(t, BuildExam(makeBank(5), nil, nil, 0))
}

type memHistory struct {
	h map[string]store.ExamHistory
}

func (m *memHistory) Load(_ context.Context, id string) (store.ExamHistory, error) {
	return m.h[id], nil
}

func (m *memHistory) Save(_ context.Context, id string, h store.ExamHistory) error {
	m.h[id] = h
	return nil
}

func (m *memHistory) Reset(_ context.Context, id string) error {
	delete(m.h, id)
	return nil
}

func (m *memHistory) ResetWrong(_ context.Context, id string) error {
	h := m.h[id]
	h.WrongIDs = nil
	m.h[id] = h
	return nil
}

func TestRecordResult(t *testing.T) {
	ctx := context.Background()
	repo := &memHistory{h: map[string]store.ExamHistory{
		"c1": {SeenIDs: course.IDSet{"q1", "q9"}, WrongIDs: course.IDSet{"q1", "q9"}},
	}}
	questions := makeBank(3) // q1, q2, q3
	answers := map[int][]string{
		0: {"A"}, // q1 correct
		1: {"B"}, // q2 wrong
		// q3 unanswered
	}

	h, err := RecordResult(ctx, repo, "c1", questions, answers)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q9", "q2", "q3"}, h.SeenIDs)
	assert.ElementsMatch(t, []string{"q9", "q2", "q3"}, h.WrongIDs)

	again, err := RecordResult(ctx, repo, "c1", questions, answers)
	require.NoError(t, err)
	assert.Equal(t, h, again, "recording the same result twice changes nothing")
}

func TestSessionCountdownForcesOneSubmit(t *testing.T) {
	s := NewSession(makeBank(2), 3*time.Second)
	assert.False(t, s.Tick())
	assert.False(t, s.Tick())
	assert.True(t, s.Tick(), "reaching zero forces submit")
	assert.True(t, s.Expired())
	assert.Zero(t, s.Remaining())
	assert.False(t, s.Tick(), "only once")

	assert.True(t, s.Submit())
	assert.False(t, s.Submit())
}

func TestSessionTickStopsAfterSubmit(t *testing.T) {
	s := NewSession(makeBank(1), 2*time.Second)
	s.Submit()
	assert.False(t, s.Tick())
	assert.False(t, s.Tick())
	assert.Equal(t, 2*time.Second, s.Remaining())
	assert.False(t, s.Expired())
}

func TestSessionReadOnlyAfterSubmit(t *testing.T) {
	s := NewSession(makeBank(2), time.Minute)
	require.NoError(t, s.Choose(0, "A"))
	require.NoError(t, s.ToggleMark(1))
	s.Submit()

	assert.ErrorIs(t, s.Choose(0, "B"), ErrSubmitted)
	assert.ErrorIs(t, s.ToggleMark(1), ErrSubmitted)
	assert.Equal(t, []string{"A"}, s.Selection(0).Keys())
	assert.True(t, s.Marked(1))
}

func TestSessionSelectionsAndScore(t *testing.T) {
	questions := append(makeBank(2), course.Question{
		ID:      "multi",
		Options: map[string]string{"A": "a", "B": "b", "C": "c"},
		Answer:  "A,C",
	})
	s := NewSession(questions, time.Minute)

	require.NoError(t, s.Choose(0, "B"))
	require.NoError(t, s.Choose(0, "A")) // replaces
	require.NoError(t, s.Choose(2, "A"))
	require.NoError(t, s.Choose(2, "C"))
	assert.Error(t, s.Choose(1, "Z"))
	assert.Error(t, s.Choose(5, "A"))

	assert.Equal(t, 2, s.Answered())
	assert.Equal(t, map[int][]string{0: {"A"}, 2: {"A", "C"}}, s.Answers())

	require.NoError(t, s.ToggleMark(1))
	require.NoError(t, s.ToggleMark(2))
	require.NoError(t, s.ToggleMark(2))
	assert.Equal(t, 1, s.MarkedCount())

	score := s.Score()
	assert.Equal(t, Score{Correct: 2, Total: 3, Percentage: 67}, score)
	assert.False(t, score.Passed())
}

func TestScorePercentageRounding(t *testing.T) {
	s := NewSession(nil, time.Minute)
	assert.Equal(t, Score{}, s.Score())
	assert.True(t, Score{Percentage: 70}.Passed())
}

type memSettings struct {
	exam store.ExamSettings
}

func (m memSettings) ExamSettings(context.Context) (store.ExamSettings, error) { return m.exam, nil }
func (m memSettings) SaveExamSettings(context.Context, store.ExamSettings) error {
	return nil
}
func (m memSettings) ChatConfig(context.Context) (store.ChatConfig, error) {
	return store.DefaultChatConfig(), nil
}
func (m memSettings) SaveChatConfig(context.Context, store.ChatConfig) error { return nil }

type memCourses struct {
	bank []course.Question
}

func (m memCourses) Create(context.Context, course.Bank) (*course.Course, error) { return nil, nil }
func (m memCourses) Get(context.Context, string) (*course.Course, error) {
	return &course.Course{ID: "c1", Questions: m.bank}, nil
}
func (m memCourses) List(context.Context) ([]*course.Course, error) { return nil, nil }
func (m memCourses) Delete(context.Context, string) error           { return nil }
func (m memCourses) Questions(context.Context, string) ([]course.Question, error) {
	return m.bank, nil
}

func TestServiceStartAndSubmit(t *testing.T) {
	ctx := context.Background()
	history := &memHistory{h: map[string]store.ExamHistory{}}
	svc := NewService(
		memCourses{bank: makeBank(30)},
		history,
		memSettings{exam: store.ExamSettings{DurationSeconds: 90, TotalQuestions: 10}},
		nil,
	)

	sess, err := svc.Start(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 10, sess.Len())
	assert.Equal(t, 90*time.Second, sess.Remaining())

	require.NoError(t, sess.Choose(0, "A"))
	score, err := svc.Submit(ctx, "c1", sess)
	require.NoError(t, err)
	assert.Equal(t, 1, score.Correct)

	h := history.h["c1"]
	assert.Len(t, h.SeenIDs, 10)
	assert.Len(t, h.WrongIDs, 9)

	assert.True(t, sess.Recorded())

	// A second submit (e.g. the timer firing after a manual submit) does
	// not record again.
	history.h["c1"] = store.ExamHistory{}
	_, err = svc.Submit(ctx, "c1", sess)
	require.NoError(t, err)
	assert.Empty(t, history.h["c1"].SeenIDs)
}

// flakyHistory fails the first saves with errSave.
type flakyHistory struct {
	memHistory
	failures int
}

var errSave = errors.New("disk full")

func (f *flakyHistory) Save(ctx context.Context, id string, h store.ExamHistory) error {
	if f.failures > 0 {
		f.failures--
		return errSave
	}
	return f.memHistory.Save(ctx, id, h)
}

func TestServiceSubmitRetriesFailedSave(t *testing.T) {
	ctx := context.Background()
	history := &flakyHistory{memHistory: memHistory{h: map[string]store.ExamHistory{}}, failures: 1}
	svc := NewService(
		memCourses{bank: makeBank(4)},
		history,
		memSettings{exam: store.ExamSettings{DurationSeconds: 60, TotalQuestions: 4}},
		nil,
	)
	sess, err := svc.Start(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, sess.Choose(0, "A"))

	_, err = svc.Submit(ctx, "c1", sess)
	require.ErrorIs(t, err, errSave)
	assert.True(t, sess.Submitted(), "the exam is closed even when saving fails")
	assert.False(t, sess.Recorded())
	assert.Empty(t, history.h["c1"].SeenIDs)

	score, err := svc.Submit(ctx, "c1", sess)
	require.NoError(t, err)
	assert.Equal(t, 1, score.Correct)
	assert.True(t, sess.Recorded())
	assert.Len(t, history.h["c1"].SeenIDs, 4)
	assert.Len(t, history.h["c1"].WrongIDs, 3)
}
