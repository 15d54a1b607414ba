package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
)

func seenKey(courseID string) string  { return "test_seen_questions_" + courseID }
func wrongKey(courseID string) string { return "test_wrong_questions_" + courseID }

type examHistoryRepo struct {
	kv  KV
	log *zap.Logger
}

// NewExamHistoryRepo returns an ExamHistoryRepo over kv.
func NewExamHistoryRepo(kv KV, log *zap.Logger) ExamHistoryRepo {
	return &examHistoryRepo{kv: kv, log: orNop(log)}
}

func (r *examHistoryRepo) Load(ctx context.Context, courseID string) (ExamHistory, error) {
	seen, _, err := loadJSON[course.IDSet](ctx, r.kv, r.log, seenKey(courseID))
	if err != nil {
		return ExamHistory{}, fmt.Errorf("load exam history: %w", err)
	}
	wrong, _, err := loadJSON[course.IDSet](ctx, r.kv, r.log, wrongKey(courseID))
	if err != nil {
		return ExamHistory{}, fmt.Errorf("load exam history: %w", err)
	}
	return ExamHistory{SeenIDs: seen.Dedup(), WrongIDs: wrong.Dedup()}, nil
}

func (r *examHistoryRepo) Save(ctx context.Context, courseID string, h ExamHistory) error {
	seen, wrong := h.SeenIDs, h.WrongIDs
	if seen == nil {
		seen = course.IDSet{}
	}
	if wrong == nil {
		wrong = course.IDSet{}
	}
	if err := saveJSON(ctx, r.kv, seenKey(courseID), seen); err != nil {
		return fmt.Errorf("save exam history: %w", err)
	}
	if err := saveJSON(ctx, r.kv, wrongKey(courseID), wrong); err != nil {
		return fmt.Errorf("save exam history: %w", err)
	}
	return nil
}

func (r *examHistoryRepo) Reset(ctx context.Context, courseID string) error {
	if err := r.kv.Delete(ctx, seenKey(courseID)); err != nil {
		return fmt.Errorf("reset exam history: %w", err)
	}
	return r.ResetWrong(ctx, courseID)
}

func (r *examHistoryRepo) ResetWrong(ctx context.Context, courseID string) error {
	if err := r.kv.Delete(ctx, wrongKey(courseID)); err != nil {
		return fmt.Errorf("reset wrong questions: %w", err)
	}
	return nil
}
