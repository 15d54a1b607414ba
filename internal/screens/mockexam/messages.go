package mockexam

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/examprep/internal/exam"
)

// examReadyMsg is sent when the exam questions have been sampled.
type examReadyMsg struct {
	Session *exam.Session
	Err     error
}

// recordedMsg is sent after the submitted result was saved, or failed to.
type recordedMsg struct {
	Session *exam.Session
	Err     error
}

// tickMsg is the one-second countdown tick. It carries the session it was
// scheduled for so stale ticks are dropped.
type tickMsg struct {
	Session *exam.Session
	Time    time.Time
}

// tickCmd returns a 1-second tick command for sess.
func tickCmd(sess *exam.Session) tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg{Session: sess, Time: t}
	})
}
