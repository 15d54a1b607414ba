package practice

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/quiz"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/tutor"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
)

// PracticeScreen runs adaptive practice turns for one course.
type PracticeScreen struct {
	deps   screens.Deps
	course *course.Course

	sess         *quiz.Session
	choice       components.MultiChoice
	outcome      *quiz.Outcome
	explanation  *explainReadyMsg
	explaining   bool
	busy         bool
	confirmReset bool
	warning      string
	errMsg       string
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.BackHandler = (*PracticeScreen)(nil)

// New creates a practice screen for c.
func New(deps screens.Deps, c *course.Course) *PracticeScreen {
	return &PracticeScreen{
		deps:   deps.WithDefaults(),
		course: c,
	}
}

func (p *PracticeScreen) Init() tea.Cmd {
	deps, c := p.deps, p.course
	return func() tea.Msg {
		sess, err := quiz.NewSession(context.Background(), c.ID, c.Questions, deps.Progress, deps.Log)
		return sessionReadyMsg{Session: sess, Err: err}
	}
}

func (p *PracticeScreen) Title() string {
	return "Practice"
}

func (p *PracticeScreen) Status() string {
	return p.course.Name
}

func (p *PracticeScreen) HandlesBack() bool {
	return p.confirmReset
}

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	switch {
	case p.sess == nil || p.errMsg != "":
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case p.confirmReset:
		return []layout.KeyHint{
			{Key: "Y", Description: "Reset progress"},
			{Key: "N", Description: "Cancel"},
		}
	case !p.hasQuestion():
		return []layout.KeyHint{
			{Key: "Ctrl+R", Description: "Reset"},
			{Key: "Esc", Description: "Back"},
		}
	case p.outcome != nil:
		hints := []layout.KeyHint{{Key: "Enter", Description: "Next"}}
		if p.deps.ChatAvailable() {
			hints = append(hints,
				layout.KeyHint{Key: "Ctrl+E", Description: "Explain"},
				layout.KeyHint{Key: "?", Description: "Ask tutor"},
			)
		}
		return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	hints := []layout.KeyHint{
		{Key: "A-Z/1-9", Description: "Choose"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: "Reset"},
	}
	if p.deps.ChatAvailable() {
		hints = append(hints, layout.KeyHint{Key: "?", Description: "Ask tutor"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionReadyMsg:
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
			return p, nil
		}
		p.sess = msg.Session
		p.resetQuestion()
		return p, nil

	case explainReadyMsg:
		p.explaining = false
		if q, ok := p.current(); ok && q.ID == msg.QuestionID {
			p.explanation = &msg
		}
		return p, nil

	case answerSavedMsg:
		p.busy = false
		if msg.Err != nil {
			p.deps.Log.Error("submit answer", zap.String("course_id", p.course.ID), zap.Error(msg.Err))
			p.warning = msg.Err.Error()
			return p, nil
		}
		p.sess.Apply(msg.Step)
		out, _ := msg.Step.Outcome()
		p.outcome = &out
		p.warning = ""
		if out.Correct {
			p.deps.Cues.PlayCorrect()
		} else {
			p.deps.Cues.PlayIncorrect()
		}
		return p, nil

	case turnLoadedMsg:
		p.busy = false
		if msg.Err != nil {
			p.errMsg = msg.Err.Error()
			return p, nil
		}
		p.sess.Apply(msg.Step)
		p.resetQuestion()
		if msg.Reset {
			p.warning = "Progress reset."
		}
		return p, nil

	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if p.errMsg != "" || p.sess == nil || p.busy {
		return p, nil
	}
	key := msg.String()

	if p.confirmReset {
		switch key {
		case "y", "Y":
			p.confirmReset = false
			p.busy = true
			sess := p.sess
			return p, func() tea.Msg {
				st, err := sess.ClearProgress(context.Background())
				return turnLoadedMsg{Step: st, Reset: true, Err: err}
			}
		case "n", "N", "esc":
			p.confirmReset = false
		}
		return p, nil
	}

	// Reset stays reachable once everything is learned and the turn is empty.
	if key == "ctrl+r" {
		p.confirmReset = true
		return p, nil
	}

	q, ok := p.current()
	if !ok {
		return p, nil
	}

	switch key {
	case "?":
		if !p.deps.ChatAvailable() {
			p.warning = "Chat is not configured."
			return p, nil
		}
		return p, func() tea.Msg {
			return router.PushScreenMsg{Screen: tutor.New(p.deps, p.course, &q)}
		}
	}

	if p.outcome != nil {
		switch key {
		case "enter", "n", "N", "right":
			return p.next()
		case "ctrl+e":
			return p.explain(q)
		}
		return p, nil
	}

	if key == "enter" {
		return p.submit()
	}

	var picked string
	p.choice, picked = p.choice.Update(msg)
	if picked != "" {
		if err := p.sess.Choose(picked); err != nil {
			p.warning = err.Error()
			return p, nil
		}
		p.warning = ""
	}
	return p, nil
}

func (p *PracticeScreen) submit() (screen.Screen, tea.Cmd) {
	out, err := p.sess.Grade()
	if errors.Is(err, quiz.ErrNoSelection) {
		p.warning = "Select an option before submitting."
		return p, nil
	}
	if err != nil {
		p.warning = err.Error()
		return p, nil
	}

	p.busy = true
	sess := p.sess
	return p, func() tea.Msg {
		st, err := sess.SaveOutcome(context.Background(), out)
		return answerSavedMsg{Step: st, Err: err}
	}
}

func (p *PracticeScreen) next() (screen.Screen, tea.Cmd) {
	if p.sess.Advance() {
		p.resetQuestion()
		return p, nil
	}
	p.busy = true
	sess := p.sess
	return p, func() tea.Msg {
		st, err := sess.LoadTurn(context.Background())
		return turnLoadedMsg{Step: st, Err: err}
	}
}

func (p *PracticeScreen) explain(q course.Question) (screen.Screen, tea.Cmd) {
	if !p.deps.ChatAvailable() {
		p.warning = "Chat is not configured."
		return p, nil
	}
	if p.explaining || p.explanation != nil {
		return p, nil
	}
	p.explaining = true
	svc, courseID := p.deps.Chat, p.course.ID
	return p, func() tea.Msg {
		exp, err := svc.Explain(context.Background(), courseID, q)
		return explainReadyMsg{QuestionID: q.ID, Explanation: exp, Err: err}
	}
}

func (p *PracticeScreen) resetQuestion() {
	p.outcome = nil
	p.explanation = nil
	p.explaining = false
	p.warning = ""
	if q, ok := p.current(); ok {
		p.choice = components.NewMultiChoice(q)
	}
}

func (p *PracticeScreen) current() (course.Question, bool) {
	if p.sess == nil {
		return course.Question{}, false
	}
	return p.sess.Current()
}

func (p *PracticeScreen) hasQuestion() bool {
	_, ok := p.current()
	return ok
}
