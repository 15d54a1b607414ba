package mockexam

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

const savingNotice = "Saving result..."

// ExamScreen runs one timed mock exam and then shows the graded review.
type ExamScreen struct {
	deps   screens.Deps
	course *course.Course

	sess          *exam.Session
	idx           int
	choice        components.MultiChoice
	score         *exam.Score
	confirmSubmit bool
	confirmQuit   bool
	saving        bool
	saveErr       error
	warning       string
	errMsg        string
}

var _ screen.Screen = (*ExamScreen)(nil)
var _ screen.KeyHintProvider = (*ExamScreen)(nil)
var _ screen.BackHandler = (*ExamScreen)(nil)

// New creates an exam screen for c.
func New(deps screens.Deps, c *course.Course) *ExamScreen {
	return &ExamScreen{
		deps:   deps.WithDefaults(),
		course: c,
	}
}

func (e *ExamScreen) Init() tea.Cmd {
	svc, id := e.deps.Exams, e.course.ID
	return func() tea.Msg {
		sess, err := svc.Start(context.Background(), id)
		return examReadyMsg{Session: sess, Err: err}
	}
}

func (e *ExamScreen) Title() string {
	if e.score != nil {
		return "Exam Review"
	}
	return "Mock Exam"
}

// Status shows the countdown while the exam runs and the score afterwards.
func (e *ExamScreen) Status() string {
	switch {
	case e.sess == nil:
		return ""
	case e.score != nil:
		return fmt.Sprintf("%d%%", e.score.Percentage)
	}
	return layout.FormatCountdown(int(e.sess.Remaining().Seconds()))
}

// HandlesBack keeps Esc from silently abandoning a running exam.
func (e *ExamScreen) HandlesBack() bool {
	return e.running()
}

func (e *ExamScreen) KeyHints() []layout.KeyHint {
	switch {
	case e.confirmSubmit:
		return []layout.KeyHint{{Key: "Y", Description: "Submit exam"}, {Key: "N", Description: "Keep going"}}
	case e.confirmQuit:
		return []layout.KeyHint{{Key: "Y", Description: "Abandon exam"}, {Key: "N", Description: "Keep going"}}
	case e.running():
		return []layout.KeyHint{
			{Key: "←→", Description: "Prev/Next"},
			{Key: "A-Z", Description: "Choose"},
			{Key: "Ctrl+F", Description: "Mark"},
			{Key: "Tab", Description: "Next marked"},
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Quit"},
		}
	case e.saveErr != nil:
		return []layout.KeyHint{
			{Key: "←→", Description: "Prev/Next"},
			{Key: "R", Description: "Retry save"},
			{Key: "Esc", Description: "Back"},
		}
	case e.sess != nil:
		return []layout.KeyHint{
			{Key: "←→", Description: "Prev/Next"},
			{Key: "Tab", Description: "Next mistake"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
}

func (e *ExamScreen) running() bool {
	return e.sess != nil && e.sess.Len() > 0 && !e.sess.Submitted()
}

func (e *ExamScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case examReadyMsg:
		if msg.Err != nil {
			e.errMsg = msg.Err.Error()
			return e, nil
		}
		e.sess = msg.Session
		if e.sess.Len() == 0 {
			return e, nil
		}
		e.goTo(0)
		return e, tickCmd(e.sess)

	case tickMsg:
		if msg.Session != e.sess || !e.running() {
			return e, nil
		}
		if e.sess.Tick() {
			e.confirmSubmit = false
			e.confirmQuit = false
			cmd := e.submit()
			e.warning = "Time is up. The exam was submitted."
			return e, cmd
		}
		return e, tickCmd(e.sess)

	case recordedMsg:
		if msg.Session != e.sess {
			return e, nil
		}
		e.saving = false
		e.saveErr = msg.Err
		switch {
		case msg.Err != nil:
			e.deps.Log.Error("record exam result", zap.String("course_id", e.course.ID), zap.Error(msg.Err))
			e.warning = "Result not saved: " + msg.Err.Error() + ". Press R to retry."
		case e.warning == savingNotice:
			e.warning = "Result saved."
		}
		return e, nil

	case tea.KeyMsg:
		if e.running() {
			return e.handleExamKey(msg)
		}
		return e.handleReviewKey(msg)
	}
	return e, nil
}

func (e *ExamScreen) handleExamKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if e.confirmSubmit {
		switch key {
		case "y", "Y":
			e.confirmSubmit = false
			return e, e.submit()
		case "n", "N", "esc":
			e.confirmSubmit = false
		}
		return e, nil
	}
	if e.confirmQuit {
		switch key {
		case "y", "Y":
			e.confirmQuit = false
			e.deps.Log.Info("exam abandoned", zap.String("course_id", e.course.ID))
			return e, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			e.confirmQuit = false
		}
		return e, nil
	}

	switch key {
	case "esc":
		e.confirmQuit = true
		return e, nil
	case "ctrl+s":
		e.confirmSubmit = true
		return e, nil
	case "left", "pgup":
		e.goTo(e.idx - 1)
		return e, nil
	case "right", "pgdown", "enter":
		e.goTo(e.idx + 1)
		return e, nil
	case "ctrl+f":
		if err := e.sess.ToggleMark(e.idx); err != nil {
			e.warning = err.Error()
		}
		return e, nil
	case "tab":
		e.jump(e.sess.Marked)
		return e, nil
	}

	var picked string
	e.choice, picked = e.choice.Update(msg)
	if picked != "" {
		if err := e.sess.Choose(e.idx, picked); err != nil {
			e.warning = err.Error()
		}
	}
	return e, nil
}

func (e *ExamScreen) handleReviewKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if e.sess == nil || e.sess.Len() == 0 {
		return e, nil
	}
	switch msg.String() {
	case "left", "pgup":
		e.goTo(e.idx - 1)
	case "right", "pgdown", "enter":
		e.goTo(e.idx + 1)
	case "tab":
		e.jump(func(i int) bool { return !e.sess.IsCorrect(i) })
	case "r", "R":
		if e.saveErr != nil && !e.saving {
			e.warning = savingNotice
			return e, e.record()
		}
	}
	return e, nil
}

// submit closes the exam and grades it right away. Saving the result runs
// in the returned command.
func (e *ExamScreen) submit() tea.Cmd {
	e.sess.Submit()
	score := e.sess.Score()
	e.score = &score
	e.warning = ""
	e.goTo(0)
	return e.record()
}

func (e *ExamScreen) record() tea.Cmd {
	e.saving = true
	e.saveErr = nil
	svc, id, sess := e.deps.Exams, e.course.ID, e.sess
	return func() tea.Msg {
		_, err := svc.Submit(context.Background(), id, sess)
		return recordedMsg{Session: sess, Err: err}
	}
}

func (e *ExamScreen) goTo(i int) {
	if i < 0 || i >= e.sess.Len() {
		return
	}
	e.idx = i
	e.choice = components.NewMultiChoice(e.sess.Questions()[i])
	if !e.sess.Submitted() {
		e.warning = ""
	}
}

// jump moves to the next question after the current one matching want,
// wrapping around.
func (e *ExamScreen) jump(want func(int) bool) {
	n := e.sess.Len()
	for step := 1; step <= n; step++ {
		i := (e.idx + step) % n
		if want(i) {
			e.goTo(i)
			return
		}
	}
}
