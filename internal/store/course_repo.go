package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/course"
)

const courseKeyPrefix = "courses:"

func courseKey(id string) string { return courseKeyPrefix + id }

type courseRepo struct {
	kv  KV
	log *zap.Logger
	now func() time.Time
}

// NewCourseRepo returns a CourseRepo over kv.
func NewCourseRepo(kv KV, log *zap.Logger) CourseRepo {
	return &courseRepo{kv: kv, log: orNop(log), now: time.Now}
}

func (r *courseRepo) Create(ctx context.Context, bank course.Bank) (*course.Course, error) {
	if err := course.Normalize(&bank); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	now := r.now()
	c := &course.Course{
		ID:          course.NewID(now),
		Name:        bank.Name,
		Description: bank.Description,
		Questions:   bank.Questions,
		CreatedAt:   now.UnixMilli(),
	}
	if c.Name == "" {
		c.Name = "Untitled course"
	}
	if err := saveJSON(ctx, r.kv, courseKey(c.ID), c); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	r.log.Info("course created",
		zap.String("course_id", c.ID),
		zap.Int("questions", len(c.Questions)),
	)
	return c, nil
}

func (r *courseRepo) Get(ctx context.Context, id string) (*course.Course, error) {
	c, ok, err := loadJSON[course.Course](ctx, r.kv, r.log, courseKey(id))
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if !ok {
		return nil, ErrCourseNotFound
	}
	return &c, nil
}

func (r *courseRepo) List(ctx context.Context) ([]*course.Course, error) {
	keys, err := r.kv.Keys(ctx, courseKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	courses := make([]*course.Course, 0, len(keys))
	for _, k := range keys {
		c, err := r.Get(ctx, strings.TrimPrefix(k, courseKeyPrefix))
		if err == ErrCourseNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	sort.SliceStable(courses, func(i, j int) bool {
		return courses[i].CreatedAt < courses[j].CreatedAt
	})
	return courses, nil
}

func (r *courseRepo) Delete(ctx context.Context, id string) error {
	for _, k := range []string{courseKey(id), progressKey(id), seenKey(id), wrongKey(id)} {
		if err := r.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
	}
	r.log.Info("course deleted", zap.String("course_id", id))
	return nil
}

func (r *courseRepo) Questions(ctx context.Context, id string) ([]course.Question, error) {
	c, err := r.Get(ctx, id)
	if err == ErrCourseNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.Questions, nil
}
