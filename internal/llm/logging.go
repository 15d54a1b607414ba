package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/store"
)

// LoggingProvider records every request in the event log, tagged with the
// subject carried by its context, and writes a summary to the app log.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *zap.Logger
}

// WithLogging wraps p. events may be nil, in which case only the app log
// is written.
func WithLogging(p Provider, provider string, events store.EventRepo, log *zap.Logger) *LoggingProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingProvider{inner: p, provider: provider, events: events, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	sub, ok := SubjectFrom(ctx)
	if !ok || sub.Purpose == "" {
		sub.Purpose = "unknown"
	}
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.requestedModel(req),
		Purpose:     string(sub.Purpose),
		CourseID:    sub.CourseID,
		QuestionID:  sub.QuestionID,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: transcript(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}

	fields := []zap.Field{
		zap.String("provider", l.provider),
		zap.String("model", ev.Model),
		zap.String("purpose", ev.Purpose),
		zap.String("course_id", sub.CourseID),
		zap.Duration("latency", latency),
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		l.log.Warn("tutor request failed", append(fields, zap.Error(err))...)
	} else {
		l.log.Debug("tutor request", append(fields,
			zap.Int("input_tokens", ev.InputTokens),
			zap.Int("output_tokens", ev.OutputTokens),
		)...)
	}

	// A broken event log never fails the request.
	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, ev); logErr != nil {
			l.log.Warn("record tutor request", zap.Error(logErr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) requestedModel(req Request) string {
	if c, ok := l.inner.(*Client); ok {
		return c.modelFor(req)
	}
	if req.Model != "" {
		return req.Model
	}
	return l.inner.ModelID()
}

// transcript renders req the way `examprep llm view` prints it.
func transcript(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
