package exam

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/store"
)

// Service wires exam sessions to the course, history and settings stores.
type Service struct {
	courses  store.CourseRepo
	history  store.ExamHistoryRepo
	settings store.SettingsRepo
	log      *zap.Logger
}

// NewService creates an exam Service.
func NewService(courses store.CourseRepo, history store.ExamHistoryRepo, settings store.SettingsRepo, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{courses: courses, history: history, settings: settings, log: log}
}

// Start builds a new exam for courseID using the stored settings and
// history.
func (s *Service) Start(ctx context.Context, courseID string) (*Session, error) {
	cfg, err := s.settings.ExamSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}
	bank, err := s.courses.Questions(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}
	h, err := s.history.Load(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("start exam: %w", err)
	}

	questions := BuildExam(bank, h.SeenIDs, h.WrongIDs, cfg.TotalQuestions)
	s.log.Info("exam started",
		zap.String("course_id", courseID),
		zap.Int("questions", len(questions)),
		zap.Int("bank", len(bank)),
		zap.Duration("limit", cfg.Duration()),
	)
	return NewSession(questions, cfg.Duration()), nil
}

// Submit closes sess and records the result in the course's exam history.
// A session whose earlier save failed is recorded again on the next call;
// once recorded, further calls only return the score. Closing the session
// does not depend on the save succeeding.
func (s *Service) Submit(ctx context.Context, courseID string, sess *Session) (Score, error) {
	sess.Submit()
	score := sess.Score()
	if sess.Recorded() {
		return score, nil
	}
	if _, err := RecordResult(ctx, s.history, courseID, sess.Questions(), sess.Answers()); err != nil {
		return score, err
	}
	sess.recorded.Store(true)
	s.log.Info("exam submitted",
		zap.String("course_id", courseID),
		zap.Int("correct", score.Correct),
		zap.Int("total", score.Total),
		zap.Bool("expired", sess.Expired()),
	)
	return score, nil
}

// ResetWrong clears the wrong-answer history for courseID so future exams
// stop favoring those questions.
func (s *Service) ResetWrong(ctx context.Context, courseID string) error {
	return s.history.ResetWrong(ctx, courseID)
}
