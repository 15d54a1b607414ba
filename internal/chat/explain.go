package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/llm"
)

// Explanation is a structured answer to a single question.
type Explanation struct {
	AnswerKeys []string `json:"answerKeys"`
	Analysis   string   `json:"analysis"`
	WhyCorrect string   `json:"whyCorrect"`
	WhyWrong   string   `json:"whyWrong"`
	Conclusion string   `json:"conclusion"`
}

// AgreesWith reports whether the explanation picks exactly q's answer keys.
func (e Explanation) AgreesWith(q course.Question) bool {
	return q.IsCorrect(e.AnswerKeys)
}

var explanationSchema = &llm.Schema{
	Name:        "question-explanation",
	Description: "An explanation of a multiple-choice question",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"answerKeys": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "The option letters the tutor believes are correct",
			},
			"analysis":   map[string]any{"type": "string", "description": "What the question is asking"},
			"whyCorrect": map[string]any{"type": "string", "description": "Why the correct options are correct"},
			"whyWrong":   map[string]any{"type": "string", "description": "Why each other option is wrong"},
			"conclusion": map[string]any{"type": "string", "description": "One or two sentence summary"},
		},
		"required":             []any{"answerKeys", "analysis", "whyCorrect", "whyWrong", "conclusion"},
		"additionalProperties": false,
	},
}

// Explain asks the provider for a structured explanation of q from
// courseID. It is not stored in the chat history.
func (s *Service) Explain(ctx context.Context, courseID string, q course.Question) (*Explanation, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}
	cfg, err := s.settings.ChatConfig(ctx)
	if err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	ctx = llm.About(ctx, llm.Subject{Purpose: llm.PurposeExplain, CourseID: courseID, QuestionID: q.ID})
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:    cfg.SystemPrompt,
		Messages:  []llm.Message{{Role: llm.RoleUser, Content: QuestionPrompt(q)}},
		Schema:    explanationSchema,
		MaxTokens: max(cfg.MaxTokens, 1024),
		Model:     cfg.Model,
	})
	if err != nil {
		return nil, err
	}

	var e Explanation
	if err := explanationSchema.Decode(resp.Content, &e); err != nil {
		return nil, fmt.Errorf("decode explanation: %w", err)
	}
	for i, k := range e.AnswerKeys {
		e.AnswerKeys[i] = strings.TrimSpace(k)
	}
	sort.Strings(e.AnswerKeys)
	return &e, nil
}
