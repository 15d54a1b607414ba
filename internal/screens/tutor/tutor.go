package tutor

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens"
	"github.com/abhisek/examprep/internal/store"
	"github.com/abhisek/examprep/internal/ui/components"
	"github.com/abhisek/examprep/internal/ui/layout"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// historyLoadedMsg carries the stored conversation for the course.
type historyLoadedMsg struct {
	History []store.ChatMessage
	Err     error
}

// replyMsg is sent when the provider answered (or failed).
type replyMsg struct {
	Reply store.ChatMessage
	Err   error
}

// clearedMsg is sent once the stored conversation is deleted.
type clearedMsg struct {
	Err error
}

// TutorScreen is a chat with the configured LLM about one course. When
// opened with a question, that question is asked as soon as the history
// has loaded.
type TutorScreen struct {
	deps   screens.Deps
	course *course.Course
	ask    *course.Question

	input    components.TextInput
	messages []store.ChatMessage
	loaded   bool
	pending  bool
	errMsg   string
}

var _ screen.Screen = (*TutorScreen)(nil)
var _ screen.KeyHintProvider = (*TutorScreen)(nil)

// New creates a tutor chat for c. ask may be nil.
func New(deps screens.Deps, c *course.Course, ask *course.Question) *TutorScreen {
	return &TutorScreen{
		deps:   deps.WithDefaults(),
		course: c,
		ask:    ask,
		input:  components.NewTextInput("Ask a question about this course...", 2000),
	}
}

func (t *TutorScreen) Init() tea.Cmd {
	if !t.deps.ChatAvailable() {
		t.loaded = true
		return nil
	}
	svc, id := t.deps.Chat, t.course.ID
	return tea.Batch(
		func() tea.Msg {
			h, err := svc.History(context.Background(), id)
			return historyLoadedMsg{History: h, Err: err}
		},
		t.input.Init(),
	)
}

func (t *TutorScreen) Title() string {
	return "Tutor"
}

func (t *TutorScreen) Status() string {
	return t.course.Name
}

func (t *TutorScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+L", Description: "Clear chat"},
		{Key: "Esc", Description: "Back"},
	}
}

func (t *TutorScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		t.loaded = true
		if msg.Err != nil {
			t.errMsg = msg.Err.Error()
			return t, nil
		}
		t.messages = msg.History
		if t.ask != nil {
			q := *t.ask
			t.ask = nil
			return t, t.send(chat.QuestionPrompt(q), func(ctx context.Context) (store.ChatMessage, error) {
				return t.deps.Chat.AskAboutQuestion(ctx, t.course.ID, q)
			})
		}
		return t, nil

	case replyMsg:
		t.pending = false
		switch {
		case msg.Reply.Content != "":
			t.messages = append(t.messages, msg.Reply)
		case msg.Err != nil:
			t.messages = append(t.messages, store.ChatMessage{Role: chat.RoleAssistant, Content: "Error: " + msg.Err.Error()})
		}
		return t, nil

	case clearedMsg:
		if msg.Err != nil {
			t.errMsg = msg.Err.Error()
			return t, nil
		}
		t.messages = nil
		t.errMsg = ""
		return t, nil

	case tea.KeyMsg:
		return t.handleKey(msg)
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

func (t *TutorScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if !t.deps.ChatAvailable() {
		return t, nil
	}
	switch msg.String() {
	case "enter":
		text := t.input.Value()
		if text == "" || t.pending || !t.loaded {
			return t, nil
		}
		t.input.Reset()
		id := t.course.ID
		return t, t.send(text, func(ctx context.Context) (store.ChatMessage, error) {
			return t.deps.Chat.SendMessage(ctx, id, text)
		})
	case "ctrl+l":
		if t.pending {
			return t, nil
		}
		svc, id := t.deps.Chat, t.course.ID
		return t, func() tea.Msg {
			return clearedMsg{Err: svc.Clear(context.Background(), id)}
		}
	}

	var cmd tea.Cmd
	t.input, cmd = t.input.Update(msg)
	return t, cmd
}

// send shows text as the user's message right away and runs call in the
// background.
func (t *TutorScreen) send(text string, call func(context.Context) (store.ChatMessage, error)) tea.Cmd {
	t.messages = append(t.messages, store.ChatMessage{Role: chat.RoleUser, Content: text})
	t.pending = true
	return func() tea.Msg {
		reply, err := call(context.Background())
		return replyMsg{Reply: reply, Err: err}
	}
}

func (t *TutorScreen) View(width, height int) string {
	if !t.deps.ChatAvailable() {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(
			"\n\n" + theme.Subtitle.Render(chat.ErrNotConfigured.Error()))
	}

	inner := width - 4
	footer := []string{"  " + layout.Rule(inner)}
	switch {
	case t.errMsg != "":
		footer = append(footer, theme.Incorrect.Render("  Error: "+t.errMsg))
	case t.pending:
		footer = append(footer, theme.Hint.Render("  Thinking..."))
	case !t.loaded:
		footer = append(footer, theme.Hint.Render("  Loading conversation..."))
	}
	footer = append(footer, "  "+t.input.View())

	avail := height - len(footer) - 1
	lines := t.transcript(inner)
	if len(lines) > avail && avail >= 0 {
		lines = lines[len(lines)-avail:]
	}

	var b strings.Builder
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n")
	for range avail - len(lines) {
		b.WriteString("\n")
	}
	b.WriteString(strings.Join(footer, "\n"))
	return b.String()
}

// transcript renders the conversation as wrapped lines.
func (t *TutorScreen) transcript(width int) []string {
	if len(t.messages) == 0 {
		return []string{theme.Hint.Render("  No messages yet.")}
	}
	body := lipgloss.NewStyle().Foreground(theme.Text).Width(width).PaddingLeft(2)
	var lines []string
	for _, m := range t.messages {
		label := theme.AssistantLabel.Render("  Tutor")
		if m.Role == chat.RoleUser {
			label = theme.UserLabel.Render("  You")
		}
		lines = append(lines, label)
		lines = append(lines, strings.Split(body.Render(m.Content), "\n")...)
		lines = append(lines, "")
	}
	return lines
}
