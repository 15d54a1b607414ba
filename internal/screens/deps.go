// Package screens holds what the individual screens share: the services
// they are built from.
package screens

import (
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/cue"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/store"
)

// Deps are the services injected into screens. Chat may be nil or
// unconfigured; Cues and Log default to no-ops.
type Deps struct {
	Courses  store.CourseRepo
	Progress store.ProgressRepo
	History  store.ExamHistoryRepo
	Exams    *exam.Service
	Chat     *chat.Service
	Cues     cue.Player
	Log      *zap.Logger
}

// WithDefaults fills optional fields with no-op implementations.
func (d Deps) WithDefaults() Deps {
	if d.Cues == nil {
		d.Cues = cue.Nop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return d
}

// ChatAvailable reports whether a chat provider is configured.
func (d Deps) ChatAvailable() bool {
	return d.Chat != nil && d.Chat.Available()
}
