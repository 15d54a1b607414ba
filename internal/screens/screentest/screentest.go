// Package screentest provides fixtures for screen tests: an in-memory
// store wired into screens.Deps and key press helpers.
package screentest

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/cue"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/store"
)

// Env is a fully wired set of screen dependencies over a private
// in-memory SQLite database.
type Env struct {
	Deps     screens.Deps
	Store    *store.Store
	Settings store.SettingsRepo
	Cues     *cue.Recorder
	LLM      *llm.MockProvider
}

// New opens a fresh store for t. When provider is nil chat is left
// unconfigured.
func New(t *testing.T, provider *llm.MockProvider) *Env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { st.Close() })

	courses := store.NewCourseRepo(st, nil)
	progress := store.NewProgressRepo(st, nil)
	history := store.NewExamHistoryRepo(st, nil)
	settings := store.NewSettingsRepo(st, nil)

	env := &Env{
		Store:    st,
		Settings: settings,
		Cues:     &cue.Recorder{},
		LLM:      provider,
	}
	var p llm.Provider
	if provider != nil {
		p = provider
	}
	env.Deps = screens.Deps{
		Courses:  courses,
		Progress: progress,
		History:  history,
		Exams:    exam.NewService(courses, history, settings, nil),
		Chat:     chat.NewService(p, progress, settings, 0, nil),
		Cues:     env.Cues,
	}
	return env
}

// CreateCourse imports questions as a new course.
func (e *Env) CreateCourse(t *testing.T, name string, questions ...course.Question) *course.Course {
	t.Helper()
	c, err := e.Deps.Courses.Create(context.Background(), course.Bank{Name: name, Questions: questions})
	require.NoError(t, err, "create course")
	return c
}

// Question builds a question with options A-D and the given answer.
func Question(id, text, answer string) course.Question {
	return course.Question{
		ID:   id,
		Text: text,
		Options: map[string]string{
			"A": "Option A",
			"B": "Option B",
			"C": "Option C",
			"D": "Option D",
		},
		Answer:      answer,
		Explanation: "Because " + answer + ".",
	}
}

// KeyPress returns a printable key press.
func KeyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// SpecialKey returns a non-printable key press such as tea.KeyEnter.
func SpecialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// CtrlKey returns ctrl plus r.
func CtrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

// Run executes cmd and returns its message, or nil for a nil command.
func Run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}
