package components

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/ui/theme"
)

// MultiChoice renders a question's options and turns key presses into
// option keys. The selection itself lives with the caller.
type MultiChoice struct {
	Keys    []string
	Options map[string]string
	Multi   bool
	Cursor  int
}

// NewMultiChoice creates a selector for q's options in key order.
func NewMultiChoice(q course.Question) MultiChoice {
	return MultiChoice{
		Keys:    q.OptionKeys(),
		Options: q.Options,
		Multi:   q.IsMultiAnswer(),
	}
}

// Update moves the cursor or resolves a key press to an option key. The
// returned key is empty when the message did not pick an option.
//
// An option is picked by typing its key (case-insensitive), by its
// 1-based position, or with space on the cursor row.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, string) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.Keys) == 0 {
		return m, ""
	}

	key := kmsg.String()
	switch key {
	case "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, ""
	case "down":
		if m.Cursor < len(m.Keys)-1 {
			m.Cursor++
		}
		return m, ""
	case "space":
		return m, m.Keys[m.Cursor]
	}

	if k, ok := m.resolve(key); ok {
		for i, v := range m.Keys {
			if v == k {
				m.Cursor = i
			}
		}
		return m, k
	}
	return m, ""
}

func (m MultiChoice) resolve(key string) (string, bool) {
	if _, ok := m.Options[key]; ok {
		return key, true
	}
	if _, ok := m.Options[strings.ToUpper(key)]; ok {
		return strings.ToUpper(key), true
	}
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(m.Keys) {
		return m.Keys[n-1], true
	}
	return "", false
}

// View renders the options with sel marked. When answer is non-nil the
// correct keys are revealed: correct options green, wrongly chosen ones red.
func (m MultiChoice) View(sel course.Selection, answer []string) string {
	correct := make(map[string]bool, len(answer))
	for _, k := range answer {
		correct[k] = true
	}
	revealed := answer != nil

	var b strings.Builder
	for i, k := range m.Keys {
		marker := "( )"
		if m.Multi {
			marker = "[ ]"
		}
		if sel.Has(k) {
			marker = "(•)"
			if m.Multi {
				marker = "[x]"
			}
		}

		prefix := "  "
		if i == m.Cursor && !revealed {
			prefix = "▸ "
		}
		text := strings.TrimSpace(course.StripMarkup(m.Options[k]))
		line := fmt.Sprintf("%s%s %s. %s", prefix, marker, k, text)

		var style lipgloss.Style
		switch {
		case revealed && correct[k]:
			style = theme.Correct
		case revealed && sel.Has(k):
			style = theme.Incorrect
		case revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		default:
			style = theme.Unselected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if m.Multi && !revealed {
		b.WriteString(theme.Hint.Render("  Select all that apply."))
		b.WriteString("\n")
	}
	return b.String()
}
