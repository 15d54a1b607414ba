// Package llm talks to the hosted models behind the course tutor. Each
// vendor SDK sits behind Provider; requests carry the tutor's system prompt,
// the recent conversation and, for explanations, a Schema the reply must
// satisfy.
package llm

import (
	"context"
	"encoding/json"
)

// Provider sends one request to a model. Nothing is retried.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the model used when a request names none.
	ModelID() string
}

// Request is a single tutor call.
type Request struct {
	System   string
	Messages []Message

	// Model replaces the provider's default for this call. Friendly names
	// such as "claude-haiku" resolve the same way as in configuration.
	Model string

	// Schema, when set, asks for a JSON reply and rejects one that does not
	// match.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Message is one turn of the conversation, oldest first in a Request.
type Message struct {
	Role    Role
	Content string
}

// Role is who wrote a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Stop reasons reported in Response.StopReason.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Response is a model's reply.
type Response struct {
	// Content is the reply text, or the checked JSON object when the
	// request had a Schema.
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the call.
	Model      string
	StopReason string
}

// Usage counts tokens for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the reply as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}
