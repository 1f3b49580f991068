package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name      string
		correct   int
		attempted int
		want      int
	}{
		{"nothing attempted", 0, 0, 0},
		{"three of four", 3, 4, 75},
		{"seven of nine rounds up", 7, 9, 78},
		{"two of three rounds up", 2, 3, 67},
		{"one of three rounds down", 1, 3, 33},
		{"all correct", 10, 10, 100},
		{"none correct", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Accuracy(tt.correct, tt.attempted))
		})
	}
}

func TestMasteryPolicy_Snapshot(t *testing.T) {
	policy := DefaultMasteryPolicy()

	tests := []struct {
		name         string
		counters     Counters
		wantAccuracy int
		wantMastered bool
	}{
		{"nine perfect attempts", Counters{Attempted: 9, Correct: 9}, 100, false},
		{"ten at eighty", Counters{Attempted: 10, Correct: 8, Incorrect: 2}, 80, true},
		{"seven of nine", Counters{Attempted: 9, Correct: 7, Incorrect: 2}, 78, false},
		{"just below threshold", Counters{Attempted: 100, Correct: 79, Incorrect: 21}, 79, false},
		{"twenty at eighty", Counters{Attempted: 20, Correct: 16, Incorrect: 4}, 80, true},
		{"empty", Counters{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := policy.Snapshot(tt.counters)
			assert.Equal(t, tt.wantAccuracy, snap.Accuracy)
			assert.Equal(t, tt.wantMastered, snap.Mastered)
			assert.Equal(t, tt.counters, snap.Counters)
		})
	}
}

func TestMasteryPolicy_TenAttemptsAtSeventyNine(t *testing.T) {
	// attempted = 10 with accuracy 79 can only arise from a computed accuracy, so check the threshold directly.
	assert.False(t, DefaultMasteryPolicy().Mastered(10, 79))
	assert.True(t, DefaultMasteryPolicy().Mastered(10, 80))
}

func TestCounters_RecordAndSkip(t *testing.T) {
	var c Counters
	c.Record(true)
	c.RecordSkip()
	c.Record(false)

	assert.Equal(t, Counters{Attempted: 2, Correct: 1, Incorrect: 1, Skipped: 1}, c)
}

func TestMasteryPolicy_Custom(t *testing.T) {
	policy := MasteryPolicy{MinAttempts: 3, MinAccuracy: 60}
	snap := policy.Snapshot(Counters{Attempted: 3, Correct: 2, Incorrect: 1})
	assert.Equal(t, 67, snap.Accuracy)
	assert.True(t, snap.Mastered)
}
