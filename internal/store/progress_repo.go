package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

func progressKey(courseID string) string { return "quiz_state_" + courseID }

type progressRepo struct {
	kv  KV
	log *zap.Logger
}

// NewProgressRepo returns a ProgressRepo over kv.
func NewProgressRepo(kv KV, log *zap.Logger) ProgressRepo {
	return &progressRepo{kv: kv, log: orNop(log)}
}

func (r *progressRepo) Load(ctx context.Context, courseID string) (Progress, error) {
	p, ok, err := loadJSON[Progress](ctx, r.kv, r.log, progressKey(courseID))
	if err != nil {
		return Progress{}, fmt.Errorf("load progress: %w", err)
	}
	if !ok {
		return Progress{}, nil
	}
	p.LearnedQuestions = p.LearnedQuestions.Dedup()
	p.IncorrectQuestions = p.IncorrectQuestions.Dedup()
	return p, nil
}

func (r *progressRepo) Save(ctx context.Context, courseID string, p Progress) error {
	if err := saveJSON(ctx, r.kv, progressKey(courseID), p); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *progressRepo) Delete(ctx context.Context, courseID string) error {
	if err := r.kv.Delete(ctx, progressKey(courseID)); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
