package practice

import (
	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/quiz"
)

// sessionReadyMsg is sent when stored progress has been loaded and the
// first turn prepared.
type sessionReadyMsg struct {
	Session *quiz.Session
	Err     error
}

// explainReadyMsg carries a structured explanation for one question.
type explainReadyMsg struct {
	QuestionID  string
	Explanation *chat.Explanation
	Err         error
}

// answerSavedMsg is sent after a graded answer was written to the progress
// record.
type answerSavedMsg struct {
	Step quiz.Step
	Err  error
}

// turnLoadedMsg is sent when a new turn was prepared, either at the end of
// a turn or after a reset.
type turnLoadedMsg struct {
	Step  quiz.Step
	Reset bool
	Err   error
}
