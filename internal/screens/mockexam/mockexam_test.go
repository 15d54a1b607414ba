package mockexam

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screens/screentest"
	"github.com/abhisek/examprep/internal/store"
)

func setup(t *testing.T, seconds int) (*screentest.Env, *course.Course, *ExamScreen) {
	t.Helper()
	env := screentest.New(t, nil)
	require.NoError(t, env.Settings.SaveExamSettings(context.Background(), store.ExamSettings{
		DurationSeconds: seconds,
		TotalQuestions:  2,
	}))
	c := env.CreateCourse(t, "Cloud",
		screentest.Question("q1", "First?", "A"),
		screentest.Question("q2", "Second?", "B"),
	)
	s := New(env.Deps, c)
	_, cmd := s.Update(screentest.Run(s.Init()))
	require.Empty(t, s.errMsg)
	require.NotNil(t, s.sess)
	require.Equal(t, 2, s.sess.Len())
	require.NotNil(t, cmd, "countdown starts with the exam")
	return env, c, s
}

func press(s *ExamScreen, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = s.Update(m)
	}
	return cmd
}

func answerKey(q course.Question, correct bool) rune {
	if correct {
		return rune(q.AnswerKeys()[0][0])
	}
	for _, k := range q.OptionKeys() {
		if !q.IsCorrect([]string{k}) {
			return rune(k[0])
		}
	}
	return 0
}

func TestExamSubmitRecordsHistory(t *testing.T) {
	env, c, s := setup(t, 600)
	ctx := context.Background()

	first := s.sess.Questions()[0]
	second := s.sess.Questions()[1]
	press(s, screentest.KeyPress(answerKey(first, true)))
	press(s, screentest.SpecialKey(tea.KeyRight))
	assert.Equal(t, 1, s.idx)
	press(s, screentest.KeyPress(answerKey(second, false)))
	assert.Equal(t, 2, s.sess.Answered())

	press(s, screentest.CtrlKey('s'))
	assert.True(t, s.confirmSubmit)
	press(s, screentest.KeyPress('n'))
	assert.False(t, s.sess.Submitted())

	cmd := press(s, screentest.CtrlKey('s'), screentest.KeyPress('y'))
	require.True(t, s.sess.Submitted())
	require.NotNil(t, cmd, "saving runs as a command")
	assert.False(t, s.sess.Recorded())
	assert.Nil(t, press(s, screentest.Run(cmd)))
	assert.True(t, s.sess.Recorded())
	require.NotNil(t, s.score)
	assert.Equal(t, exam.Score{Correct: 1, Total: 2, Percentage: 50}, *s.score)
	assert.False(t, s.HandlesBack(), "esc leaves the review")
	assert.Equal(t, "Exam Review", s.Title())
	assert.Contains(t, s.View(100, 30), "FAIL")

	h, err := env.Deps.History.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, h.SeenIDs)
	assert.Equal(t, course.IDSet{second.ID}, h.WrongIDs)

	// Review is read-only.
	press(s, screentest.SpecialKey(tea.KeyLeft), screentest.KeyPress(answerKey(first, false)))
	assert.True(t, s.sess.IsCorrect(0))

	// Tab jumps to the mistake.
	press(s, screentest.SpecialKey(tea.KeyTab))
	assert.Equal(t, 1, s.idx)
}

func TestExamCountdownForcesSubmitOnce(t *testing.T) {
	env, c, s := setup(t, 2)

	cmd := press(s, tickMsg{Session: s.sess, Time: time.Now()})
	assert.NotNil(t, cmd, "countdown continues")
	assert.Equal(t, "0:01", s.Status())

	cmd = press(s, tickMsg{Session: s.sess, Time: time.Now()})
	require.True(t, s.sess.Submitted())
	assert.True(t, s.sess.Expired())
	assert.Contains(t, s.warning, "Time is up")
	saved := screentest.Run(cmd)
	require.IsType(t, recordedMsg{}, saved, "the last tick saves instead of ticking again")
	assert.Nil(t, press(s, saved))
	assert.Contains(t, s.warning, "Time is up")

	assert.Nil(t, press(s, tickMsg{Session: s.sess, Time: time.Now()}))

	h, err := env.Deps.History.Load(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Len(t, h.SeenIDs, 2)
	assert.Len(t, h.WrongIDs, 2, "unanswered questions count as wrong")
}

func TestExamIgnoresStaleTicks(t *testing.T) {
	_, _, s := setup(t, 600)
	before := s.sess.Remaining()

	other := exam.NewSession(nil, time.Minute)
	assert.Nil(t, press(s, tickMsg{Session: other, Time: time.Now()}))
	assert.Equal(t, before, s.sess.Remaining())
}

func TestExamMarkAndJump(t *testing.T) {
	_, _, s := setup(t, 600)

	press(s, screentest.SpecialKey(tea.KeyRight), screentest.CtrlKey('f'))
	assert.True(t, s.sess.Marked(1))
	assert.Equal(t, 1, s.sess.MarkedCount())

	press(s, screentest.SpecialKey(tea.KeyLeft))
	assert.Equal(t, 0, s.idx)
	press(s, screentest.SpecialKey(tea.KeyTab))
	assert.Equal(t, 1, s.idx)

	press(s, screentest.CtrlKey('f'))
	assert.Zero(t, s.sess.MarkedCount())
}

func TestExamEscConfirmsAbandon(t *testing.T) {
	env, c, s := setup(t, 600)

	assert.True(t, s.HandlesBack())
	press(s, screentest.SpecialKey(tea.KeyEscape))
	assert.True(t, s.confirmQuit)
	press(s, screentest.SpecialKey(tea.KeyEscape))
	assert.False(t, s.confirmQuit, "second esc cancels")

	cmd := press(s, screentest.SpecialKey(tea.KeyEscape), screentest.KeyPress('y'))
	assert.Equal(t, router.PopScreenMsg{}, screentest.Run(cmd))
	assert.False(t, s.sess.Submitted())

	h, err := env.Deps.History.Load(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Empty(t, h.SeenIDs, "abandoned exams are not recorded")
}

func TestExamEmptyCourse(t *testing.T) {
	env := screentest.New(t, nil)
	s := New(env.Deps, &course.Course{ID: "course_missing", Name: "Missing"})
	cmd := press(s, screentest.Run(s.Init()))

	assert.Nil(t, cmd, "no countdown for an empty exam")
	assert.Contains(t, s.View(100, 30), "Nothing to examine")
	assert.False(t, s.HandlesBack())
}

// failingHistory fails the first saves and then behaves like the wrapped
// repository.
type failingHistory struct {
	store.ExamHistoryRepo
	failures int
}

func (f *failingHistory) Save(ctx context.Context, id string, h store.ExamHistory) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("disk full")
	}
	return f.ExamHistoryRepo.Save(ctx, id, h)
}

func TestExamRetriesFailedSave(t *testing.T) {
	env := screentest.New(t, nil)
	ctx := context.Background()
	require.NoError(t, env.Settings.SaveExamSettings(ctx, store.ExamSettings{DurationSeconds: 600, TotalQuestions: 2}))
	c := env.CreateCourse(t, "Cloud",
		screentest.Question("q1", "First?", "A"),
		screentest.Question("q2", "Second?", "B"),
	)
	deps := env.Deps
	deps.Exams = exam.NewService(deps.Courses, &failingHistory{ExamHistoryRepo: deps.History, failures: 1}, env.Settings, nil)

	s := New(deps, c)
	press(s, screentest.Run(s.Init()))
	require.Equal(t, 2, s.sess.Len())

	cmd := press(s, screentest.CtrlKey('s'), screentest.KeyPress('y'))
	press(s, screentest.Run(cmd))
	require.Error(t, s.saveErr)
	assert.Contains(t, s.warning, "Result not saved")
	assert.Contains(t, s.View(100, 30), "Press R to retry")
	assert.Equal(t, "R", s.KeyHints()[1].Key)

	h, err := env.Deps.History.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, h.SeenIDs)

	cmd = press(s, screentest.KeyPress('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, savingNotice, s.warning)
	press(s, screentest.Run(cmd))
	assert.NoError(t, s.saveErr)
	assert.Equal(t, "Result saved.", s.warning)
	assert.True(t, s.sess.Recorded())

	h, err = env.Deps.History.Load(ctx, c.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"q1", "q2"}, h.SeenIDs)

	assert.Nil(t, press(s, screentest.KeyPress('r')), "nothing left to retry")
}
