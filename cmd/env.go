package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/logger"
	"github.com/abhisek/examprep/internal/store"
)

// env bundles what every command opens: the SQLite store, the optional
// Redis backend for domain state and the repositories over them.
type env struct {
	store    *store.Store
	redis    *store.RedisKV
	log      *zap.Logger
	courses  store.CourseRepo
	progress store.ProgressRepo
	history  store.ExamHistoryRepo
	settings store.SettingsRepo
}

// openEnv opens the database and, when EXAMPREP_REDIS_URL is set, the Redis
// backend. The LLM event log always stays in SQLite.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := zap.NewNop()
	if dir, err := store.DataDir(); err == nil {
		if l, err := logger.New(logger.ConfigFromEnv(dir)); err == nil {
			log = l
		} else {
			fmt.Fprintln(os.Stderr, "Logging disabled:", err)
		}
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	e := &env{store: st, log: log}
	var kv store.KV = st
	if url := os.Getenv("EXAMPREP_REDIS_URL"); url != "" {
		r, err := store.OpenRedis(ctx, url)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		e.redis = r
		kv = r
	}
	log.Info("store opened",
		zap.String("db", dbPath),
		zap.Bool("redis", e.redis != nil),
	)

	e.courses = store.NewCourseRepo(kv, log)
	e.progress = store.NewProgressRepo(kv, log)
	e.history = store.NewExamHistoryRepo(kv, log)
	e.settings = store.NewSettingsRepo(kv, log)
	return e, nil
}

func (e *env) Close() {
	if e.redis != nil {
		e.redis.Close()
	}
	e.store.Close()
	_ = e.log.Sync()
}
