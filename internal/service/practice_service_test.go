package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"practice-engine/internal/domain"
	"practice-engine/internal/dto"
	"practice-engine/internal/practice"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type practiceFixture struct {
	svc      PracticeService
	loader   *MockPoolLoader
	attempts *MockAttemptRepository
	sink     *recordingSink
	clock    *fakeClock
}

func newPracticeFixture(t *testing.T, pool []domain.Question) *practiceFixture {
	t.Helper()
	f := &practiceFixture{
		loader:   new(MockPoolLoader),
		attempts: new(MockAttemptRepository),
		sink:     &recordingSink{},
		clock:    &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)},
	}
	if pool != nil {
		f.loader.On("Load", mock.Anything, topicScope).Return(pool, nil)
	}
	var seq atomic.Int64
	f.svc = NewPracticeService(f.loader, f.attempts, f.sink, PracticeSettings{
		Policy:      practice.DefaultMasteryPolicy(),
		IdleTimeout: 30 * time.Minute,
		RNGSeed:     7,
	},
		WithClock(f.clock.Now),
		WithIDGenerator(func() string { return fmt.Sprintf("id-%d", seq.Add(1)) }),
	)
	return f
}

func (f *practiceFixture) start(t *testing.T, userID string, timeLimit int) *dto.SessionView {
	t.Helper()
	view, err := f.svc.Start(context.Background(), StartRequest{Scope: topicScope, UserID: userID, TimeLimit: timeLimit})
	require.NoError(t, err)
	return view
}

func answer(t *testing.T, svc PracticeService, view *dto.SessionView, correct bool) *dto.SubmitAnswerResponse {
	t.Helper()
	option := view.Question.ID + "-wrong"
	if correct {
		option = view.Question.ID + "-right"
	}
	ctx := context.Background()
	_, err := svc.Select(ctx, view.SessionID, option)
	require.NoError(t, err)
	resp, err := svc.Submit(ctx, view.SessionID)
	require.NoError(t, err)
	return resp
}

func assertCode(t *testing.T, err error, code domain.ErrorCode) {
	t.Helper()
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestPracticeService_Start(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(3))

	view := f.start(t, "", 0)

	assert.NotEmpty(t, view.SessionID)
	assert.Equal(t, "topic", view.ScopeKind)
	assert.Equal(t, "topic-1", view.ScopeID)
	assert.Equal(t, 3, view.PoolSize)
	assert.Equal(t, 1, view.Round)
	assert.Len(t, view.Question.Options, 2)
	assert.False(t, view.IsAnswered)
	assert.Nil(t, view.Feedback)
	assert.Equal(t, "running", view.Timer.State)
	assert.Equal(t, 1, f.svc.ActiveSessions())
	f.attempts.AssertNotCalled(t, "GetRecentAttempts", mock.Anything, mock.Anything, mock.Anything)
}

func TestPracticeService_Start_NoQuestions(t *testing.T) {
	f := newPracticeFixture(t, nil)
	f.loader.On("Load", mock.Anything, topicScope).Return(nil, domain.NewNoQuestionsError(topicScope))

	_, err := f.svc.Start(context.Background(), StartRequest{Scope: topicScope})

	assert.ErrorIs(t, err, domain.ErrNoQuestions)
	assert.Equal(t, 0, f.svc.ActiveSessions())
}

func TestPracticeService_Start_InvalidScope(t *testing.T) {
	f := newPracticeFixture(t, nil)

	_, err := f.svc.Start(context.Background(), StartRequest{Scope: domain.Scope{Kind: domain.ScopeSubject}})

	assertCode(t, err, domain.CodeInvalidScope)
	f.loader.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestPracticeService_Start_MarksPreviouslyAttempted(t *testing.T) {
	pool := testQuestions(1)
	f := newPracticeFixture(t, pool)
	f.attempts.On("GetRecentAttempts", mock.Anything, "user-1", []string{"q1"}).Return([]domain.Attempt{
		{ID: "old-2", QuestionID: "q1", IsCorrect: false},
		{ID: "old-1", QuestionID: "q1", IsCorrect: true},
	}, nil).Once()

	view := f.start(t, "user-1", 0)

	assert.True(t, view.Question.PreviouslyAttempted)
	f.attempts.AssertExpectations(t)
}

func TestPracticeService_Start_PriorAttemptFailureIsIgnored(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	f.attempts.On("GetRecentAttempts", mock.Anything, "user-1", mock.Anything).Return(nil, errors.New("db down")).Once()

	view := f.start(t, "user-1", 0)

	assert.False(t, view.Question.PreviouslyAttempted)
	assert.Equal(t, 1, f.svc.ActiveSessions())
}

func TestPracticeService_SubmitRecordsAttemptAndRevealsFeedback(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(3))
	f.attempts.On("GetRecentAttempts", mock.Anything, "user-1", mock.Anything).Return([]domain.Attempt{}, nil)
	view := f.start(t, "user-1", 0)

	assert.Equal(t, 3, view.RemainingInRound)

	f.clock.Advance(12 * time.Second)
	resp := answer(t, f.svc, view, true)
	assert.Equal(t, 2, resp.Session.RemainingInRound)

	assert.NotEmpty(t, resp.AttemptID)
	assert.True(t, resp.Session.IsAnswered)
	require.NotNil(t, resp.Session.Feedback)
	assert.True(t, resp.Session.Feedback.IsCorrect)
	assert.Equal(t, view.Question.ID+"-right", resp.Session.Feedback.CorrectOptionID)
	assert.Equal(t, "because "+view.Question.ID, resp.Session.Feedback.Explanation)
	assert.Equal(t, 4.0, resp.Session.Feedback.Marks)
	assert.Equal(t, dto.ProgressView{Attempted: 1, Correct: 1, Accuracy: 100}, resp.Session.Progress)

	recorded := f.sink.recorded()
	require.Len(t, recorded, 1)
	assert.Equal(t, resp.AttemptID, recorded[0].ID)
	assert.Equal(t, view.SessionID, recorded[0].SessionID)
	assert.Equal(t, "user-1", recorded[0].UserID)
	assert.Equal(t, 12*time.Second, recorded[0].TimeTaken)
}

func TestPracticeService_SubmitGuards(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 0)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, view.SessionID)
	assertCode(t, err, domain.CodeInvalidSubmission)

	_, err = f.svc.Select(ctx, view.SessionID, "no-such-option")
	assertCode(t, err, domain.CodeInvalidSubmission)

	_, err = f.svc.Next(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrNotAnswered)

	answer(t, f.svc, view, false)

	_, err = f.svc.Submit(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)
	_, err = f.svc.Skip(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrAlreadyAnswered)

	assert.Len(t, f.sink.recorded(), 1)
}

func TestPracticeService_UnknownSession(t *testing.T) {
	f := newPracticeFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = f.svc.End(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = f.svc.Restart(ctx, "missing", false)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestPracticeService_PauseBlocksInteraction(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 0)
	ctx := context.Background()

	paused, err := f.svc.Pause(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "paused", paused.Timer.State)

	_, err = f.svc.Select(ctx, view.SessionID, view.Question.ID+"-right")
	assert.ErrorIs(t, err, domain.ErrSessionPaused)
	_, err = f.svc.Skip(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionPaused)
	_, err = f.svc.Pause(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 0, f.svc.TickAll(f.clock.Now()))

	resumed, err := f.svc.Resume(ctx, view.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "running", resumed.Timer.State)
	assert.Equal(t, 0, resumed.Timer.ElapsedSeconds)

	answer(t, f.svc, view, true)
}

func TestPracticeService_TimerArithmetic(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 0)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.clock.Advance(time.Second)
		f.svc.TickAll(f.clock.Now())
	}
	_, err := f.svc.Pause(ctx, view.SessionID)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		f.svc.TickAll(f.clock.Now())
	}
	_, err = f.svc.Resume(ctx, view.SessionID)
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	f.svc.TickAll(f.clock.Now())
	f.clock.Advance(time.Second)
	got, err := f.svc.Get(ctx, view.SessionID)
	require.NoError(t, err)

	assert.Equal(t, 5, got.Timer.ElapsedSeconds)
}

func TestPracticeService_ClockCreditsWallTimeOnly(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 0)
	ctx := context.Background()

	elapsed := func() int {
		t.Helper()
		got, err := f.svc.Get(ctx, view.SessionID)
		require.NoError(t, err)
		return got.Timer.ElapsedSeconds
	}

	// A tick shortly after start does not count a whole second.
	f.clock.Advance(400 * time.Millisecond)
	f.svc.TickAll(f.clock.Now())
	assert.Equal(t, 0, elapsed())

	// Sub-second remainders carry over.
	f.clock.Advance(700 * time.Millisecond)
	f.svc.TickAll(f.clock.Now())
	assert.Equal(t, 1, elapsed())
	f.clock.Advance(900 * time.Millisecond)
	f.svc.TickAll(f.clock.Now())
	assert.Equal(t, 2, elapsed())

	// Resuming just before a tick counts only the time since the resume.
	_, err := f.svc.Pause(ctx, view.SessionID)
	require.NoError(t, err)
	f.clock.Advance(10 * time.Second)
	_, err = f.svc.Resume(ctx, view.SessionID)
	require.NoError(t, err)
	f.clock.Advance(300 * time.Millisecond)
	f.svc.TickAll(f.clock.Now())
	assert.Equal(t, 2, elapsed())
}

func TestPracticeService_EndScenario(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(3))
	view := f.start(t, "", 0)
	ctx := context.Background()

	// A correct, B skipped, C wrong
	resp := answer(t, f.svc, view, true)
	next, err := f.svc.Next(ctx, resp.Session.SessionID)
	require.NoError(t, err)
	afterSkip, err := f.svc.Skip(ctx, next.SessionID)
	require.NoError(t, err)
	answer(t, f.svc, afterSkip, false)

	result, err := f.svc.End(ctx, view.SessionID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Correct)
	assert.Equal(t, 1, result.Incorrect)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 50, result.Accuracy)
	assert.False(t, result.Mastered)
	assert.Equal(t, 3.0, result.Score)
	assert.Equal(t, 8.0, result.MaxScore)
	assert.NotNil(t, result.Breakdown)

	_, err = f.svc.Get(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, f.svc.ActiveSessions())
}

func TestPracticeService_TimeLimitExpires(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 2)
	ctx := context.Background()

	assert.Equal(t, 2, view.Timer.RemainingSeconds)
	f.clock.Advance(time.Second)
	assert.Equal(t, 0, f.svc.TickAll(f.clock.Now()))
	f.clock.Advance(time.Second)
	assert.Equal(t, 1, f.svc.TickAll(f.clock.Now()))
	f.clock.Advance(time.Second)
	assert.Equal(t, 0, f.svc.TickAll(f.clock.Now()))

	_, err := f.svc.Select(ctx, view.SessionID, view.Question.ID+"-right")
	assert.ErrorIs(t, err, domain.ErrSessionEnded)

	result, err := f.svc.End(ctx, view.SessionID)
	require.NoError(t, err)
	assert.True(t, result.TimeExpired)
	assert.Equal(t, 2, result.ElapsedSeconds)
}

func TestPracticeService_RestartKeepsPool(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(3))
	view := f.start(t, "", 90)
	ctx := context.Background()
	answer(t, f.svc, view, true)

	restarted, err := f.svc.Restart(ctx, view.SessionID, false)
	require.NoError(t, err)

	assert.NotEqual(t, view.SessionID, restarted.SessionID)
	assert.Equal(t, dto.ProgressView{}, restarted.Progress)
	assert.Equal(t, 90, restarted.Timer.LimitSeconds)
	assert.Equal(t, 3, restarted.PoolSize)
	assert.Equal(t, 1, f.svc.ActiveSessions())
	f.loader.AssertNumberOfCalls(t, "Load", 1)
	f.loader.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)

	_, err = f.svc.Get(ctx, view.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = f.svc.Get(ctx, restarted.SessionID)
	assert.NoError(t, err)
}

func TestPracticeService_RestartWithReload(t *testing.T) {
	f := newPracticeFixture(t, nil)
	ctx := context.Background()
	f.loader.On("Load", mock.Anything, topicScope).Return(testQuestions(2), nil).Once()
	f.loader.On("Load", mock.Anything, topicScope).Return(testQuestions(4), nil).Once()
	f.loader.On("Invalidate", mock.Anything, topicScope).Return(nil).Once()

	view := f.start(t, "", 0)
	assert.Equal(t, 2, view.PoolSize)

	restarted, err := f.svc.Restart(ctx, view.SessionID, true)
	require.NoError(t, err)
	assert.Equal(t, 4, restarted.PoolSize)
	f.loader.AssertExpectations(t)
}

func TestPracticeService_RestartReloadFailureKeepsSession(t *testing.T) {
	f := newPracticeFixture(t, nil)
	ctx := context.Background()
	f.loader.On("Load", mock.Anything, topicScope).Return(testQuestions(2), nil).Once()
	f.loader.On("Load", mock.Anything, topicScope).Return(nil, domain.NewNoQuestionsError(topicScope)).Once()
	f.loader.On("Invalidate", mock.Anything, topicScope).Return(nil).Once()

	view := f.start(t, "", 0)
	_, err := f.svc.Restart(ctx, view.SessionID, true)
	assert.ErrorIs(t, err, domain.ErrNoQuestions)

	_, err = f.svc.Get(ctx, view.SessionID)
	assert.NoError(t, err)
}

func TestPracticeService_EvictIdle(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	stale := f.start(t, "", 0)
	f.clock.Advance(20 * time.Minute)
	fresh := f.start(t, "", 0)
	f.clock.Advance(15 * time.Minute)

	evicted := f.svc.EvictIdle(f.clock.Now())

	assert.Equal(t, 1, evicted)
	_, err := f.svc.Get(context.Background(), stale.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = f.svc.Get(context.Background(), fresh.SessionID)
	assert.NoError(t, err)
}

func TestPracticeService_ViewingKeepsSessionAlive(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(2))
	view := f.start(t, "", 0)
	ctx := context.Background()

	_, err := f.svc.Pause(ctx, view.SessionID)
	require.NoError(t, err)
	f.clock.Advance(20 * time.Minute)
	_, err = f.svc.Get(ctx, view.SessionID)
	require.NoError(t, err)
	f.clock.Advance(15 * time.Minute)

	assert.Equal(t, 0, f.svc.EvictIdle(f.clock.Now()))
	_, err = f.svc.Get(ctx, view.SessionID)
	assert.NoError(t, err)
}

func TestPracticeService_PreviousAttempts(t *testing.T) {
	f := newPracticeFixture(t, nil)
	ctx := context.Background()
	at := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	f.attempts.On("GetRecentAttempts", ctx, "user-1", []string{"q1", "q2"}).Return([]domain.Attempt{
		{ID: "a-2", QuestionID: "q2", SelectedOptionID: "q2-right", IsCorrect: true, AttemptedAt: at},
	}, nil).Once()

	_, err := f.svc.PreviousAttempts(ctx, "", []string{"q1"})
	assertCode(t, err, domain.CodeUnauthorized)

	resp, err := f.svc.PreviousAttempts(ctx, "user-1", []string{"q1", "q2"})
	require.NoError(t, err)
	assert.Equal(t, []dto.PreviousAttempt{
		{AttemptID: "a-2", QuestionID: "q2", SelectedOptionID: "q2-right", IsCorrect: true, AttemptedAt: at},
	}, resp.Attempts)

	empty, err := f.svc.PreviousAttempts(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Attempts)
}

func TestPracticeService_PreviousAttemptsStoreFailure(t *testing.T) {
	f := newPracticeFixture(t, nil)
	f.attempts.On("GetRecentAttempts", mock.Anything, "user-1", mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := f.svc.PreviousAttempts(context.Background(), "user-1", []string{"q1"})
	assertCode(t, err, domain.CodeInternal)
}

func TestPracticeService_ConcurrentSubmitIsSerialized(t *testing.T) {
	f := newPracticeFixture(t, testQuestions(3))
	view := f.start(t, "", 0)
	ctx := context.Background()
	_, err := f.svc.Select(ctx, view.SessionID, view.Question.ID+"-right")
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	var succeeded atomic.Int32
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := f.svc.Submit(ctx, view.SessionID); err == nil {
				succeeded.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Len(t, f.sink.recorded(), 1)
}
