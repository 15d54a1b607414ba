package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

// sentChat is the part of a chat completion request the tests inspect.
type sentChat struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxCompletionTokens int `json:"max_completion_tokens"`
	ResponseFormat      *struct {
		Type       string `json:"type"`
		JSONSchema *struct {
			Name   string         `json:"name"`
			Strict bool           `json:"strict"`
			Schema map[string]any `json:"schema"`
		} `json:"json_schema"`
	} `json:"response_format"`
}

// openaiServer replies to chat completions with content and hands each
// decoded request to seen.
func openaiServer(t *testing.T, status int, content string, seen func(sentChat)) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req sentChat
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if seen != nil {
			seen(req)
		}
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": "server_error", "message": content},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"model": req.Model,
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
		})
	}))
	t.Cleanup(server.Close)
	return server.URL + "/v1"
}

func TestOpenAIChatRequest(t *testing.T) {
	var got sentChat
	url := openaiServer(t, http.StatusOK, "B is correct: S3 offers eleven nines of durability.",
		func(r sentChat) { got = r })

	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := p.Generate(context.Background(), Request{
		System: "You are a tutor for this course.",
		Messages: []Message{
			{Role: RoleUser, Content: "Which storage class is cheapest?"},
			{Role: RoleAssistant, Content: "Glacier Deep Archive."},
			{Role: RoleUser, Content: "Why is B correct?"},
		},
		Model:     "gpt-mini",
		MaxTokens: 500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Model != "gpt-4o-mini" {
		t.Errorf("model = %q, want the chat setting resolved to gpt-4o-mini", got.Model)
	}
	if resp.Model != "gpt-4o-mini" || p.ModelID() != "gpt-4o" {
		t.Errorf("served by %q, default %q", resp.Model, p.ModelID())
	}
	if len(got.Messages) != 4 || got.Messages[0].Role != openai.ChatMessageRoleSystem ||
		got.Messages[2].Role != openai.ChatMessageRoleAssistant {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.ResponseFormat != nil {
		t.Errorf("chat requests ask for plain text, got %+v", got.ResponseFormat)
	}
	if got.MaxCompletionTokens != 500 {
		t.Errorf("max tokens = %d", got.MaxCompletionTokens)
	}
	if resp.Usage.InputTokens != 40 || resp.Usage.OutputTokens != 25 || resp.StopReason != StopEnd {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestOpenAIExplanationRequest(t *testing.T) {
	var got sentChat
	url := openaiServer(t, http.StatusOK, validExplanation, func(r sentChat) { got = r })
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "Please answer the following question:"}},
		Schema:   explanationSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var e struct {
		AnswerKeys []string `json:"answerKeys"`
	}
	if err := json.Unmarshal(resp.Content, &e); err != nil || len(e.AnswerKeys) != 1 || e.AnswerKeys[0] != "B" {
		t.Fatalf("decoded %+v, %v", e, err)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.JSONSchema == nil {
		t.Fatal("explanation requests must send the schema")
	}
	sent := got.ResponseFormat.JSONSchema
	if sent.Name != "question-explanation" || !sent.Strict {
		t.Errorf("unexpected schema format: %+v", sent)
	}
	props, _ := sent.Schema["properties"].(map[string]any)
	if _, ok := props["answerKeys"]; !ok {
		t.Errorf("schema sent without answerKeys: %v", sent.Schema)
	}
}

func TestOpenAIRejectsOffSchemaExplanation(t *testing.T) {
	url := openaiServer(t, http.StatusOK, `{"answer":"B"}`, nil)
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Generate(context.Background(), Request{Schema: explanationSchema()})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestOpenAIFailures(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrUnavailable},
	}
	for _, tt := range tests {
		calls := 0
		url := openaiServer(t, tt.status, "nope", func(sentChat) { calls++ })
		p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4o", BaseURL: url})
		if err != nil {
			t.Fatal(err)
		}
		_, err = p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "hi"}}})
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: error = %v, want %v", tt.status, err, tt.want)
		}
		if calls != 1 {
			t.Errorf("status %d: %d attempts, want 1", tt.status, calls)
		}
	}
}

func TestOpenRouterPassesModelIDsThrough(t *testing.T) {
	var got sentChat
	url := openaiServer(t, http.StatusOK, "ok", func(r sentChat) { got = r })
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or", Model: "anthropic/claude-3-haiku", BaseURL: url})
	if err != nil {
		t.Fatal(err)
	}
	if p.Name() != "openrouter" || p.ModelID() != "anthropic/claude-3-haiku" {
		t.Fatalf("unexpected client %s/%s", p.Name(), p.ModelID())
	}
	if _, err := p.Generate(context.Background(), Request{Model: "gpt-mini"}); err != nil {
		t.Fatal(err)
	}
	if got.Model != "gpt-mini" {
		t.Errorf("model = %q, OpenRouter ids are not aliased", got.Model)
	}
}

func TestProviderConstructorsNeedKeys(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Error("openai without key")
	}
	if _, err := NewOpenRouterProvider(OpenRouterConfig{Model: "x/y"}); err == nil {
		t.Error("openrouter without key")
	}
	if _, err := NewAnthropicProvider(AnthropicConfig{Model: "claude-haiku"}); err == nil {
		t.Error("anthropic without key")
	}
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{Model: "gemini-flash"}); err == nil {
		t.Error("gemini without key")
	}
}
