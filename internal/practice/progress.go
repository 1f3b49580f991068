package practice

import "math"

// Counters are the running tallies of a session.
type Counters struct {
	Attempted int `json:"attempted"`
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
	Skipped   int `json:"skipped"`
}

// Record counts one submitted answer.
func (c *Counters) Record(correct bool) {
	c.Attempted++
	if correct {
		c.Correct++
	} else {
		c.Incorrect++
	}
}

// RecordSkip counts a skip. Skips are not attempts.
func (c *Counters) RecordSkip() {
	c.Skipped++
}

// Accuracy is round(correct/attempted*100), or 0 when nothing was attempted.
func Accuracy(correct, attempted int) int {
	if attempted <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(attempted) * 100))
}

// MasteryPolicy holds the thresholds of the mastered verdict.
type MasteryPolicy struct {
	MinAttempts int `json:"min_attempts"`
	MinAccuracy int `json:"min_accuracy"`
}

// DefaultMasteryPolicy requires 10 attempts at 80% accuracy.
func DefaultMasteryPolicy() MasteryPolicy {
	return MasteryPolicy{MinAttempts: 10, MinAccuracy: 80}
}

// Mastered applies the thresholds to already computed values.
func (p MasteryPolicy) Mastered(attempted, accuracy int) bool {
	return attempted >= p.MinAttempts && accuracy >= p.MinAccuracy
}

// ProgressSnapshot is derived from Counters on demand and never stored.
type ProgressSnapshot struct {
	Counters
	Accuracy int  `json:"accuracy"`
	Mastered bool `json:"mastered"`
}

// Snapshot derives accuracy and mastery from the counters.
func (p MasteryPolicy) Snapshot(c Counters) ProgressSnapshot {
	acc := Accuracy(c.Correct, c.Attempted)
	return ProgressSnapshot{
		Counters: c,
		Accuracy: acc,
		Mastered: p.Mastered(c.Attempted, acc),
	}
}
