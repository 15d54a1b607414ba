// Package exam builds and runs timed mock exams. Exams repeat a small share
// of previously seen questions, favoring ones answered wrong, and fill the
// rest with questions never seen in an exam.
package exam

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/examprep/internal/course"
	"github.com/abhisek/examprep/internal/store"
)

// RepeatPercent is the share of exam slots reserved for previously seen
// questions.
const RepeatPercent = 10

// Quota splits total into repeat and new slots.
func Quota(total int) (repeat, fresh int) {
	if total <= 0 {
		return 0, 0
	}
	repeat = total * RepeatPercent / 100
	return repeat, total - repeat
}

// BuildExam selects up to total questions from all. Repeat slots take
// seen questions that were answered wrong first, then other seen
// questions. New slots take never-seen questions. Remaining slots are
// backfilled from anything not yet chosen, and the result is shuffled.
func BuildExam(all []course.Question, seen, wrong course.IDSet, total int) []course.Question {
	if total <= 0 || len(all) == 0 {
		return nil
	}
	numRepeat, numNew := Quota(total)
	seenSet := seen.Lookup()
	wrongSet := wrong.Lookup()

	var seenWrong, seenRight, unseen []course.Question
	for _, q := range all {
		switch {
		case seenSet[q.ID] && wrongSet[q.ID]:
			seenWrong = append(seenWrong, q)
		case seenSet[q.ID]:
			seenRight = append(seenRight, q)
		default:
			unseen = append(unseen, q)
		}
	}
	shuffle(seenWrong)
	shuffle(seenRight)
	shuffle(unseen)

	picked := make(map[string]bool, total)
	exam := make([]course.Question, 0, min(total, len(all)))
	take := func(from []course.Question, n int) {
		for _, q := range from {
			if n <= 0 || len(exam) >= total {
				return
			}
			if picked[q.ID] {
				continue
			}
			picked[q.ID] = true
			exam = append(exam, q)
			n--
		}
	}

	take(seenWrong, numRepeat)
	take(seenRight, numRepeat-len(exam))
	take(unseen, numNew)

	if len(exam) < total {
		rest := make([]course.Question, 0, len(all)-len(exam))
		for _, q := range all {
			if !picked[q.ID] {
				rest = append(rest, q)
			}
		}
		shuffle(rest)
		take(rest, total-len(exam))
	}

	shuffle(exam)
	return exam
}

// RecordResult merges a submitted exam into the stored history. Every exam
// question becomes seen. Exactly-correct questions leave the wrong set and
// the rest, unanswered included, join it. answers is indexed by exam
// position.
func RecordResult(ctx context.Context, repo store.ExamHistoryRepo, courseID string, questions []course.Question, answers map[int][]string) (store.ExamHistory, error) {
	h, err := repo.Load(ctx, courseID)
	if err != nil {
		return store.ExamHistory{}, fmt.Errorf("record exam result: %w", err)
	}
	for i, q := range questions {
		h.SeenIDs = h.SeenIDs.Add(q.ID)
		if q.IsCorrect(answers[i]) {
			h.WrongIDs = h.WrongIDs.Remove(q.ID)
		} else {
			h.WrongIDs = h.WrongIDs.Add(q.ID)
		}
	}
	if err := repo.Save(ctx, courseID, h); err != nil {
		return store.ExamHistory{}, fmt.Errorf("record exam result: %w", err)
	}
	return h, nil
}

func shuffle(qs []course.Question) {
	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
