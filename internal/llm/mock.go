package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MockResponse is one queued reply for MockProvider. Err, when set, is
// returned instead of a reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockProvider replays queued replies in order. It backs the "mock"
// provider setting and the tests of everything that talks to the tutor.
type MockProvider struct {
	mu    sync.Mutex
	queue []MockResponse
	Calls []Request
	Asked []Subject
}

// NewMockProvider creates a MockProvider that replies with responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

// Generate records req and its subject, which is zero when the context
// carries none, then pops the next reply. An empty
// queue fails with ErrUnavailable.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	sub, _ := SubjectFrom(ctx)
	m.Asked = append(m.Asked, sub)
	if len(m.queue) == 0 {
		return nil, &ProviderError{Provider: "mock", Kind: ErrUnavailable, Err: errors.New("no reply queued")}
	}
	next := m.queue[0]
	m.queue = m.queue[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	model := m.ModelID()
	if req.Model != "" {
		model = req.Model
	}
	return &Response{Content: next.Content, Usage: next.Usage, Model: model, StopReason: StopEnd}, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues another reply.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resp)
}

// CallCount returns how many requests were made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
