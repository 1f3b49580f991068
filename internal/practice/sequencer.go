package practice

import (
	"math/rand"
	"time"

	"practice-engine/internal/domain"
)

// RNG is the randomness source used for shuffling and question selection.
// *rand.Rand satisfies it.
type RNG interface {
	Intn(n int) int
}

// NewRNG returns a seeded generator. A zero seed uses the current time.
func NewRNG(seed int64) RNG {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Shuffle returns a Fisher-Yates permutation of pool. The input slice is not modified.
func Shuffle(pool []domain.Question, rng RNG) []domain.Question {
	out := make([]domain.Question, len(pool))
	copy(out, pool)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Sequencer serves questions from a shuffled delivery order without repeating
// a served question until the whole pool has been served once.
type Sequencer struct {
	order  []domain.Question
	served map[string]struct{}
	round  int
	rng    RNG
}

// NewSequencer shuffles pool into the delivery order.
func NewSequencer(pool []domain.Question, rng RNG) *Sequencer {
	return &Sequencer{
		order:  Shuffle(pool, rng),
		served: make(map[string]struct{}, len(pool)),
		round:  1,
		rng:    rng,
	}
}

// Next picks uniformly among questions not yet served. When every question
// has been served the history is cleared and a new round starts over the full pool.
// It returns false only for an empty pool.
func (s *Sequencer) Next() (domain.Question, bool) {
	switch len(s.order) {
	case 0:
		return domain.Question{}, false
	case 1:
		return s.order[0], true
	}

	candidates := make([]int, 0, len(s.order))
	for i, q := range s.order {
		if _, ok := s.served[q.ID]; !ok {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		s.served = make(map[string]struct{}, len(s.order))
		s.round++
		return s.order[s.rng.Intn(len(s.order))], true
	}
	return s.order[candidates[s.rng.Intn(len(candidates))]], true
}

// MarkServed adds a question to the history. Only answered questions are marked.
func (s *Sequencer) MarkServed(questionID string) {
	s.served[questionID] = struct{}{}
}

// wasServed reports whether the question is in the current round's history.
func (s *Sequencer) wasServed(questionID string) bool {
	_, ok := s.served[questionID]
	return ok
}

// deliveryOrder returns a copy of the shuffled order.
func (s *Sequencer) deliveryOrder() []domain.Question {
	out := make([]domain.Question, len(s.order))
	copy(out, s.order)
	return out
}

// Round is 1 for the first pass through the pool and increments on each reset.
func (s *Sequencer) Round() int { return s.round }

// Remaining counts questions not yet served this round.
func (s *Sequencer) Remaining() int {
	return len(s.order) - len(s.served)
}
