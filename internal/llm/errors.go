package llm

import (
	"encoding/json"
	"errors"
)

// Failure kinds. Every error returned by a provider matches exactly one of
// them under errors.Is.
var (
	ErrUnavailable     = errors.New("tutor unavailable")
	ErrRateLimited     = errors.New("tutor is rate limited")
	ErrInvalidResponse = errors.New("tutor reply is not in the expected format")
	ErrTruncated       = errors.New("tutor reply was cut off at the token limit")
)

// ProviderError is a classified failure from one provider.
type ProviderError struct {
	Provider string
	Kind     error

	// Content holds the reply for invalid or truncated responses.
	Content json.RawMessage
	Err     error
}

func (e *ProviderError) Error() string {
	msg := e.Kind.Error()
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
