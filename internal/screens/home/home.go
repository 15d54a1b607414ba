package home

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
	"github.com/abhisek/examprep/internal/screens/coursemenu"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// coursesLoadedMsg carries the stored course list.
type coursesLoadedMsg struct {
	Courses []*course.Course
	Err     error
}

// HomeScreen lists the imported courses.
type HomeScreen struct {
	deps    screens.Deps
	courses []*course.Course
	menu    components.Menu
	loaded  bool
	errMsg  string
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps screens.Deps) *HomeScreen {
	h := &HomeScreen{deps: deps.WithDefaults()}
	h.menu = components.NewMenu(h.items())
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Resume reloads the list in case a course changed while it was covered.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	repo := h.deps.Courses
	return func() tea.Msg {
		courses, err := repo.List(context.Background())
		return coursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (h *HomeScreen) items() []components.MenuItem {
	items := make([]components.MenuItem, 0, len(h.courses)+1)
	for _, c := range h.courses {
		items = append(items, components.MenuItem{
			Label:  c.Name,
			Detail: fmt.Sprintf("%d questions", len(c.Questions)),
			Action: func() tea.Cmd {
				return func() tea.Msg {
					return router.PushScreenMsg{Screen: coursemenu.New(h.deps, c)}
				}
			},
		})
	}
	return append(items, components.MenuItem{Label: "Quit", Action: func() tea.Cmd {
		return tea.Quit
	}})
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(coursesLoadedMsg); ok {
		h.loaded = true
		if msg.Err != nil {
			h.errMsg = msg.Err.Error()
			return h, nil
		}
		h.errMsg = ""
		selected := h.menu.Selected
		h.courses = msg.Courses
		h.menu = components.NewMenu(h.items())
		if selected < len(h.menu.Items) {
			h.menu.Selected = selected
		}
		return h, nil
	}

	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)
	var sections []string

	sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Render(theme.Title.Render("E X A M P R E P")))
	sections = append(sections, lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).
		Render(theme.Subtitle.Render("Practice, review and sit mock exams")))

	switch {
	case !h.loaded:
		sections = append(sections, theme.Hint.Render("Loading courses..."))
	case h.errMsg != "":
		sections = append(sections, theme.Incorrect.Render("Could not load courses: "+h.errMsg))
	case len(h.courses) == 0:
		sections = append(sections, theme.Subtitle.Render(
			"No courses yet. Import one with:\n\n  examprep course import <file.json|file.yaml>"))
	}

	sections = append(sections, theme.Card.Width(cw).Render(h.menu.View()))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		strings.Join(sections, "\n\n"))
}

func (h *HomeScreen) Title() string {
	return "Courses"
}

// contentWidth returns the uniform width used for all sections.
func contentWidth(frameWidth int) int {
	return min(max(frameWidth-6, 20), 64)
}
