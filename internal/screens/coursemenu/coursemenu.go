package coursemenu

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/screens/mockexam"
	"github.com/abhisek/examprep/internal/screens/practice"
	"github.com/abhisek/examprep/internal/screens/tutor"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// statsMsg carries the course's progress counts.
type statsMsg struct {
	Learned   int
	Incorrect int
	Seen      int
	Wrong     int
	Err       error
}

// resetDoneMsg is sent after a reset action finished.
type resetDoneMsg struct {
	Notice string
	Err    error
}

type resetKind int

const (
	resetNone resetKind = iota
	resetPractice
	resetWrong
)

// CourseScreen is the per-course menu: practice, mock exam, tutor chat
// and resets.
type CourseScreen struct {
	deps    screens.Deps
	course  *course.Course
	menu    components.Menu
	stats   *statsMsg
	confirm resetKind
	notice  string
}

var _ screen.Screen = (*CourseScreen)(nil)
var _ screen.Resumer = (*CourseScreen)(nil)
var _ screen.BackHandler = (*CourseScreen)(nil)

// New creates the menu for c.
func New(deps screens.Deps, c *course.Course) *CourseScreen {
	s := &CourseScreen{deps: deps.WithDefaults(), course: c}
	s.menu = components.NewMenu(s.items())
	return s
}

func (s *CourseScreen) items() []components.MenuItem {
	deps, c := s.deps, s.course
	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd {
			return func() tea.Msg { return router.PushScreenMsg{Screen: build()} }
		}
	}

	chatDetail := ""
	if !deps.ChatAvailable() {
		chatDetail = "not configured"
	}
	return []components.MenuItem{
		{Label: "Practice", Action: push(func() screen.Screen { return practice.New(deps, c) })},
		{Label: "Mock exam", Action: push(func() screen.Screen { return mockexam.New(deps, c) })},
		{Label: "Ask the tutor", Detail: chatDetail, Disabled: !deps.ChatAvailable(),
			Action: push(func() screen.Screen { return tutor.New(deps, c, nil) })},
		{Label: "Reset practice progress", Action: func() tea.Cmd {
			s.confirm = resetPractice
			return nil
		}},
		{Label: "Reset exam mistakes", Action: func() tea.Cmd {
			s.confirm = resetWrong
			return nil
		}},
		{Label: "Back", Action: func() tea.Cmd {
			return func() tea.Msg { return router.PopScreenMsg{} }
		}},
	}
}

func (s *CourseScreen) Init() tea.Cmd {
	return s.loadStats()
}

// Resume reloads the counts after practice or an exam.
func (s *CourseScreen) Resume() tea.Cmd {
	return s.loadStats()
}

func (s *CourseScreen) Title() string {
	return s.course.Name
}

func (s *CourseScreen) HandlesBack() bool {
	return s.confirm != resetNone
}

func (s *CourseScreen) loadStats() tea.Cmd {
	deps, c := s.deps, s.course
	return func() tea.Msg {
		ctx := context.Background()
		p, err := deps.Progress.Load(ctx, c.ID)
		if err != nil {
			return statsMsg{Err: err}
		}
		h, err := deps.History.Load(ctx, c.ID)
		if err != nil {
			return statsMsg{Err: err}
		}
		bank := course.Index(c.Questions)
		count := func(ids course.IDSet) int {
			n := 0
			for _, id := range ids {
				if _, ok := bank[id]; ok {
					n++
				}
			}
			return n
		}
		return statsMsg{
			Learned:   count(p.LearnedQuestions),
			Incorrect: count(p.IncorrectQuestions),
			Seen:      count(h.SeenIDs),
			Wrong:     count(h.WrongIDs),
		}
	}
}

func (s *CourseScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case statsMsg:
		s.stats = &msg
		return s, nil

	case resetDoneMsg:
		if msg.Err != nil {
			s.notice = "Reset failed: " + msg.Err.Error()
			return s, nil
		}
		s.notice = msg.Notice
		return s, s.loadStats()

	case tea.KeyMsg:
		if s.confirm != resetNone {
			return s.handleConfirm(msg.String())
		}
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *CourseScreen) handleConfirm(key string) (screen.Screen, tea.Cmd) {
	switch key {
	case "y", "Y":
		kind := s.confirm
		s.confirm = resetNone
		deps, id := s.deps, s.course.ID
		return s, func() tea.Msg {
			ctx := context.Background()
			if kind == resetWrong {
				return resetDoneMsg{Notice: "Exam mistakes cleared.", Err: deps.Exams.ResetWrong(ctx, id)}
			}
			return resetDoneMsg{Notice: "Practice progress reset.", Err: deps.Progress.Delete(ctx, id)}
		}
	case "n", "N", "esc":
		s.confirm = resetNone
	}
	return s, nil
}

func (s *CourseScreen) View(width, height int) string {
	inner := width - 4
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  " + s.course.Name))
	b.WriteString("\n")
	if s.course.Description != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Width(inner).PaddingLeft(2).
			Render(s.course.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	total := len(s.course.Questions)
	switch {
	case s.stats == nil:
		b.WriteString(theme.Hint.Render("  Loading progress..."))
		b.WriteString("\n")
	case s.stats.Err != nil:
		b.WriteString(theme.Incorrect.Render("  Could not load progress: " + s.stats.Err.Error()))
		b.WriteString("\n")
	default:
		pct := 0.0
		if total > 0 {
			pct = float64(s.stats.Learned) / float64(total)
		}
		label := fmt.Sprintf("Mastery %d/%d", s.stats.Learned, total)
		b.WriteString("  " + components.NewProgressBar(label, pct, true, min(inner, 60)).View())
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf(
			"  In review: %d   Seen in exams: %d   Exam mistakes: %d",
			s.stats.Incorrect, s.stats.Seen, s.stats.Wrong)))
		b.WriteString("\n")
	}
	b.WriteString("  " + layout.Rule(inner))
	b.WriteString("\n\n")

	switch s.confirm {
	case resetPractice:
		b.WriteString(theme.Warning.Render("  Reset practice progress for this course? (y/n)"))
	case resetWrong:
		b.WriteString(theme.Warning.Render("  Forget exam mistakes for this course? (y/n)"))
	default:
		b.WriteString(s.menu.View())
	}

	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  " + s.notice))
	}
	return b.String()
}
