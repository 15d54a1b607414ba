package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

const (
	examSettingsKey = "testing_options"
	chatConfigKey   = "chatgpt_config"
)

// Chat defaults. An empty model means the provider's configured model,
// gpt-4o for OpenAI.
const (
	DefaultChatMaxTokens = 500
	DefaultSystemRole    = "system"
	DefaultSystemPrompt  = `You are an expert tutor who explains multiple-choice exam questions. Answer in this format:

Correct answer: [option letters only]

Question analysis:
[what the question is asking]

Why it is correct:
[explain the correct option(s), referring to them by letter]

Why the others are wrong:
[explain each wrong option by letter]

Conclusion:
[one or two sentences]

Keep the answer short and easy to follow.`
)

// DefaultExamSettings returns the settings used when none are stored.
func DefaultExamSettings() ExamSettings {
	return ExamSettings{
		DurationSeconds: int(DefaultExamDuration.Seconds()),
		TotalQuestions:  DefaultExamQuestions,
	}
}

// DefaultChatConfig returns the chat settings used when none are stored.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		MaxTokens:    DefaultChatMaxTokens,
		SystemPrompt: DefaultSystemPrompt,
		SystemRole:   DefaultSystemRole,
	}
}

type settingsRepo struct {
	kv  KV
	log *zap.Logger
}

// NewSettingsRepo returns a SettingsRepo over kv.
func NewSettingsRepo(kv KV, log *zap.Logger) SettingsRepo {
	return &settingsRepo{kv: kv, log: orNop(log)}
}

func (r *settingsRepo) ExamSettings(ctx context.Context) (ExamSettings, error) {
	s, _, err := loadJSON[ExamSettings](ctx, r.kv, r.log, examSettingsKey)
	if err != nil {
		return ExamSettings{}, fmt.Errorf("load exam settings: %w", err)
	}
	def := DefaultExamSettings()
	if s.DurationSeconds <= 0 {
		s.DurationSeconds = def.DurationSeconds
	}
	if s.TotalQuestions <= 0 {
		s.TotalQuestions = def.TotalQuestions
	}
	return s, nil
}

func (r *settingsRepo) SaveExamSettings(ctx context.Context, s ExamSettings) error {
	if s.DurationSeconds <= 0 || s.TotalQuestions <= 0 {
		return fmt.Errorf("save exam settings: duration and question count must be positive")
	}
	if err := saveJSON(ctx, r.kv, examSettingsKey, s); err != nil {
		return fmt.Errorf("save exam settings: %w", err)
	}
	return nil
}

func (r *settingsRepo) ChatConfig(ctx context.Context) (ChatConfig, error) {
	c, _, err := loadJSON[ChatConfig](ctx, r.kv, r.log, chatConfigKey)
	if err != nil {
		return ChatConfig{}, fmt.Errorf("load chat config: %w", err)
	}
	def := DefaultChatConfig()
	if c.MaxTokens <= 0 {
		c.MaxTokens = def.MaxTokens
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = def.SystemPrompt
	}
	if c.SystemRole == "" {
		c.SystemRole = def.SystemRole
	}
	return c, nil
}

func (r *settingsRepo) SaveChatConfig(ctx context.Context, c ChatConfig) error {
	if err := saveJSON(ctx, r.kv, chatConfigKey, c); err != nil {
		return fmt.Errorf("save chat config: %w", err)
	}
	return nil
}
