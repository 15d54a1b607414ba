// Package chat is the optional tutor conversation attached to each course.
// Messages are kept in the course's progress record and sent to the
// configured LLM provider with the recent history.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/llm"
	"github.com/abhisek/examprep/internal/store"
)

// MaxHistory is the number of earlier messages sent with each request.
const MaxHistory = 30

// Message roles stored in the history.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned when no LLM provider is available.
var ErrNotConfigured = errors.New("no LLM provider configured; set EXAMPREP_OPENAI_API_KEY or another provider key")

// Service sends chat messages and keeps each course's history.
type Service struct {
	provider llm.Provider
	progress store.ProgressRepo
	settings store.SettingsRepo
	timeout  time.Duration
	log      *zap.Logger
}

// NewService creates a chat Service. provider may be nil, in which case
// every request fails with ErrNotConfigured.
func NewService(provider llm.Provider, progress store.ProgressRepo, settings store.SettingsRepo, timeout time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider: provider,
		progress: progress,
		settings: settings,
		timeout:  timeout,
		log:      log,
	}
}

// Available reports whether a provider is configured.
func (s *Service) Available() bool {
	return s.provider != nil
}

// Send asks the provider to answer message given the earlier history. Only
// the last MaxHistory history messages are sent. Failures are returned
// once and never retried. The request is logged as a chat message unless
// ctx already names its subject.
func (s *Service) Send(ctx context.Context, history []store.ChatMessage, message string) (string, error) {
	if s.provider == nil {
		return "", ErrNotConfigured
	}
	cfg, err := s.settings.ChatConfig(ctx)
	if err != nil {
		return "", err
	}

	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	req := llm.Request{
		MaxTokens: cfg.MaxTokens,
		Model:     cfg.Model,
	}
	if cfg.SystemRole == RoleUser {
		req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: cfg.SystemPrompt})
	} else {
		req.System = cfg.SystemPrompt
	}
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == RoleAssistant {
			role = llm.RoleAssistant
		}
		req.Messages = append(req.Messages, llm.Message{Role: role, Content: m.Content})
	}
	req.Messages = append(req.Messages, llm.Message{Role: llm.RoleUser, Content: message})

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, ok := llm.SubjectFrom(ctx); !ok {
		ctx = llm.About(ctx, llm.Subject{Purpose: llm.PurposeChat})
	}
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}

// History returns the course's stored conversation.
func (s *Service) History(ctx context.Context, courseID string) ([]store.ChatMessage, error) {
	rec, err := s.progress.Load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return rec.ChatHistory, nil
}

// Clear deletes the course's conversation and keeps its practice progress.
func (s *Service) Clear(ctx context.Context, courseID string) error {
	rec, err := s.progress.Load(ctx, courseID)
	if err != nil {
		return err
	}
	rec.ChatHistory = nil
	if err := s.progress.Save(ctx, courseID, rec); err != nil {
		return fmt.Errorf("clear chat: %w", err)
	}
	return nil
}

// SendMessage sends text in the course's conversation and stores both the
// user message and the reply. When the provider fails, the error text is
// stored as the reply and the error is returned as well.
func (s *Service) SendMessage(ctx context.Context, courseID, text string) (store.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return store.ChatMessage{}, errors.New("empty message")
	}
	return s.exchange(llm.About(ctx, llm.Subject{Purpose: llm.PurposeChat, CourseID: courseID}), courseID, text)
}

// AskAboutQuestion sends q as a plain-text prompt in the course's
// conversation.
func (s *Service) AskAboutQuestion(ctx context.Context, courseID string, q course.Question) (store.ChatMessage, error) {
	sub := llm.Subject{Purpose: llm.PurposeChat, CourseID: courseID, QuestionID: q.ID}
	return s.exchange(llm.About(ctx, sub), courseID, QuestionPrompt(q))
}

func (s *Service) exchange(ctx context.Context, courseID, text string) (store.ChatMessage, error) {
	if s.provider == nil {
		return store.ChatMessage{}, ErrNotConfigured
	}
	history, err := s.History(ctx, courseID)
	if err != nil {
		return store.ChatMessage{}, err
	}

	reply := store.ChatMessage{Role: RoleAssistant}
	answer, sendErr := s.Send(ctx, history, text)
	if sendErr != nil {
		reply.Content = "Error: " + sendErr.Error()
		s.log.Warn("chat request failed", zap.String("course_id", courseID), zap.Error(sendErr))
	} else {
		reply.Content = answer
	}

	// Re-read so practice progress written meanwhile is kept.
	rec, err := s.progress.Load(ctx, courseID)
	if err != nil {
		return reply, err
	}
	rec.ChatHistory = append(rec.ChatHistory,
		store.ChatMessage{Role: RoleUser, Content: text},
		reply,
	)
	if err := s.progress.Save(ctx, courseID, rec); err != nil {
		return reply, fmt.Errorf("save chat: %w", err)
	}
	return reply, sendErr
}

// QuestionPrompt renders q as plain text: markup removed and options
// listed as "A. text".
func QuestionPrompt(q course.Question) string {
	var b strings.Builder
	b.WriteString("Please answer the following question:\n")
	b.WriteString(strings.TrimSpace(course.StripMarkup(q.Text)))
	for _, k := range q.OptionKeys() {
		fmt.Fprintf(&b, "\n%s. %s", k, strings.TrimSpace(course.StripMarkup(q.Options[k])))
	}
	return b.String()
}
