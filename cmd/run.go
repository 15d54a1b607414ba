package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/app"
	"github.com/abhisek/examprep/internal/chat"
	"github.com/abhisek/examprep/internal/cue"
	"github.com/abhisek/examprep/internal/exam"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/screens"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	provider, timeout := newProvider(cmd, e)

	return app.Run(screens.Deps{
		Courses:  e.courses,
		Progress: e.progress,
		History:  e.history,
		Exams:    exam.NewService(e.courses, e.history, e.settings, e.log),
		Chat:     chat.NewService(provider, e.progress, e.settings, timeout, e.log),
		Cues:     cue.NewBell(os.Stderr),
		Log:      e.log,
	})
}

// newProvider resolves the LLM configuration. A nil provider leaves the
// tutor unavailable; everything else still works.
func newProvider(cmd *cobra.Command, e *env) (llm.Provider, time.Duration) {
	cfg, ok := llm.Resolve()
	if !ok {
		e.log.Info("no LLM provider configured")
		return nil, 0
	}
	provider, err := llm.NewProvider(cmd.Context(), cfg, e.store.EventRepo(), e.log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "The tutor will be unavailable.")
		e.log.Warn("LLM provider init failed", zap.Error(err))
		return nil, 0
	}
	return provider, cfg.Timeout
}
