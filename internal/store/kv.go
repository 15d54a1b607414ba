package store

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// KV is the key-value contract every backend implements. Values are opaque
// strings; repositories store JSON in them.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or replaces key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Keys lists keys beginning with prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)

	Close() error
}

// loadJSON decodes the value under key. A missing key reports false. A
// value that fails to decode, even partway, is treated as absent and
// logged, so a corrupt entry never blocks the user and never leaks into the
// result.
func loadJSON[T any](ctx context.Context, kv KV, log *zap.Logger, key string) (T, bool, error) {
	var zero T
	raw, ok, err := kv.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		log.Warn("discarding malformed stored value",
			zap.String("key", key),
			zap.Error(err),
		)
		return zero, false, nil
	}
	return v, true, nil
}

func saveJSON(ctx context.Context, kv KV, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(raw))
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
