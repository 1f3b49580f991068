package practice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinalize_Idempotent(t *testing.T) {
	s := newTestSession(t, 5, Options{})
	answer(t, s, true, startTime)
	require.NoError(t, Advance(s, startTime))
	answer(t, s, false, startTime)
	Tick(s, 4)
	Stop(s)

	first := Finalize(s)
	second := Finalize(s)
	assert.Equal(t, first, second)
}

func TestFinalize_Totals(t *testing.T) {
	s := newTestSession(t, 4, Options{})

	correct := []bool{true, true, false, true}
	for i, c := range correct {
		answer(t, s, c, startTime.Add(time.Duration(i)*time.Second))
		require.NoError(t, Advance(s, startTime.Add(time.Duration(i)*time.Second)))
	}
	require.NoError(t, Skip(s, startTime))
	Tick(s, 1)
	Tick(s, 1)
	Stop(s)

	res := Finalize(s)
	assert.Equal(t, "session-1", res.SessionID)
	assert.Equal(t, topicScope, res.Scope)
	assert.Equal(t, 4, res.Attempted)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 1, res.Incorrect)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 75, res.Accuracy)
	assert.False(t, res.Mastered)
	assert.Equal(t, 2, res.ElapsedSeconds)
	assert.False(t, res.TimeExpired)
	assert.Equal(t, 3*4.0-1.0, res.Score)
	assert.Equal(t, 16.0, res.MaxScore)

	// makePool tags odd questions t1 and even questions t2.
	require.Len(t, res.Breakdown, 2)
	assert.Equal(t, "t1", res.Breakdown[0].TopicID)
	assert.Equal(t, "t2", res.Breakdown[1].TopicID)
	total := 0
	for _, b := range res.Breakdown {
		assert.Equal(t, b.Attempted, b.Correct+b.Incorrect)
		assert.Equal(t, Accuracy(b.Correct, b.Attempted), b.Accuracy)
		total += b.Attempted
	}
	assert.Equal(t, 4, total)
}

func TestFinalize_NoAttempts(t *testing.T) {
	s := newTestSession(t, 2, Options{})
	Stop(s)

	res := Finalize(s)
	assert.Equal(t, 0, res.Attempted)
	assert.Equal(t, 0, res.Accuracy)
	assert.NotNil(t, res.Breakdown)
	assert.Empty(t, res.Breakdown)
}

func TestFinalize_Mastered(t *testing.T) {
	s := newTestSession(t, 3, Options{})
	for i := 0; i < 10; i++ {
		answer(t, s, i < 8, startTime)
		require.NoError(t, Advance(s, startTime))
	}

	res := Finalize(s)
	assert.Equal(t, 10, res.Attempted)
	assert.Equal(t, 80, res.Accuracy)
	assert.True(t, res.Mastered)
}

func TestFinalize_TimeExpired(t *testing.T) {
	s := newTestSession(t, 2, Options{TimeLimit: 2})
	Tick(s, 5)

	res := Finalize(s)
	assert.True(t, res.TimeExpired)
	assert.Equal(t, 2, res.ElapsedSeconds)
}
