// Package quiz implements adaptive practice: turns that mix review of
// previously missed questions with questions the learner has not yet
// learned.
package quiz

import (
	"math/rand/v2"

	"github.com/abhisek/examprep/internal/course"
)

// Turn sizing.
const (
	QuestionsPerTurn       = 8
	ReviewQuestionsPerTurn = 4
)

// PrepareTurn builds the next batch of practice questions. Up to
// ReviewQuestionsPerTurn slots are drawn at random from incorrect; the rest
// are filled at random from questions that are neither learned nor
// incorrect. Review questions come first. Ids in incorrect or learned that
// are not in the bank are ignored. The turn is shorter than
// QuestionsPerTurn when the pools run out.
func PrepareTurn(all []course.Question, incorrect, learned course.IDSet) []course.Question {
	if len(all) == 0 {
		return nil
	}
	index := course.Index(all)
	wrong := incorrect.Lookup()
	known := learned.Lookup()

	var review []course.Question
	for _, id := range incorrect.Dedup() {
		if q, ok := index[id]; ok {
			review = append(review, q)
		}
	}
	shuffle(review)
	if len(review) > ReviewQuestionsPerTurn {
		review = review[:ReviewQuestionsPerTurn]
	}

	var pool []course.Question
	for _, q := range all {
		if known[q.ID] || wrong[q.ID] {
			continue
		}
		pool = append(pool, q)
	}
	shuffle(pool)
	if room := QuestionsPerTurn - len(review); len(pool) > room {
		pool = pool[:room]
	}

	turn := make([]course.Question, 0, len(review)+len(pool))
	turn = append(turn, review...)
	return append(turn, pool...)
}

func shuffle(qs []course.Question) {
	rand.Shuffle(len(qs), func(i, j int) { qs[i], qs[j] = qs[j], qs[i] })
}
