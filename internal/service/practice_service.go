package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"practice-engine/internal/domain"
	"practice-engine/internal/dto"
	"practice-engine/internal/logger"
	"practice-engine/internal/practice"
	"practice-engine/internal/util"

	"go.uber.org/zap"
)

// StartRequest opens a session over a scope. UserID is empty for anonymous learners.
type StartRequest struct {
	Scope     domain.Scope
	UserID    string
	TimeLimit int
}

// PracticeService owns the live practice sessions.
type PracticeService interface {
	Start(ctx context.Context, req StartRequest) (*dto.SessionView, error)
	Get(ctx context.Context, sessionID string) (*dto.SessionView, error)
	Select(ctx context.Context, sessionID, optionID string) (*dto.SessionView, error)
	Submit(ctx context.Context, sessionID string) (*dto.SubmitAnswerResponse, error)
	Skip(ctx context.Context, sessionID string) (*dto.SessionView, error)
	Next(ctx context.Context, sessionID string) (*dto.SessionView, error)
	Pause(ctx context.Context, sessionID string) (*dto.SessionView, error)
	Resume(ctx context.Context, sessionID string) (*dto.SessionView, error)
	// End finalizes the session and discards it.
	End(ctx context.Context, sessionID string) (*dto.SessionResultResponse, error)
	// Restart replaces the session with a fresh one over the same scope. With
	// reload the pool is read again from the content store.
	Restart(ctx context.Context, sessionID string, reload bool) (*dto.SessionView, error)
	PreviousAttempts(ctx context.Context, userID string, questionIDs []string) (*dto.PreviousAttemptsResponse, error)

	// TickAll credits every running session with the wall time since its last
	// tick and returns how many ran out of time.
	TickAll(now time.Time) int
	// EvictIdle discards sessions without activity since now minus the idle timeout.
	EvictIdle(now time.Time) int
	ActiveSessions() int
}

// PracticeSettings are the tunables of the registry.
type PracticeSettings struct {
	Policy      practice.MasteryPolicy
	IdleTimeout time.Duration
	// RNGSeed makes every session shuffle deterministically. Zero seeds from the clock.
	RNGSeed int64
}

// PracticeOption overrides a collaborator of the registry.
type PracticeOption func(*practiceServiceImpl)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) PracticeOption {
	return func(s *practiceServiceImpl) { s.now = now }
}

// WithIDGenerator replaces util.NewULID for session and attempt ids.
func WithIDGenerator(newID func() string) PracticeOption {
	return func(s *practiceServiceImpl) { s.newID = newID }
}

type sessionEntry struct {
	mu    sync.Mutex
	state *practice.SessionState
	// tickedAt is when the clock was last credited; carry is the sub-second
	// remainder not yet counted.
	tickedAt time.Time
	carry    time.Duration
}

func newSessionEntry(state *practice.SessionState) *sessionEntry {
	return &sessionEntry{state: state, tickedAt: state.StartedAt}
}

// advance credits the clock with whole seconds of wall time since the last
// call while Running. Time spent paused is never credited. Reports whether
// this call ran a timed session out. Callers hold e.mu.
func (e *sessionEntry) advance(now time.Time) bool {
	if e.state.Timer.State != practice.Running {
		e.tickedAt = now
		return false
	}
	elapsed := e.carry + now.Sub(e.tickedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	secs := int(elapsed / time.Second)
	e.carry = elapsed - time.Duration(secs)*time.Second
	e.tickedAt = now
	if practice.Tick(e.state, secs) {
		logger.Get().Info("PracticeService: session time expired", zap.String("session_id", e.state.ID))
		return true
	}
	return false
}

type practiceServiceImpl struct {
	loader   PoolLoader
	attempts domain.AttemptRepository
	sink     AttemptSink
	settings PracticeSettings

	now   func() time.Time
	newID func() string
	seeds atomic.Int64

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

// NewPracticeService creates the registry. attempts may be nil, in which case
// prior attempts are never looked up.
func NewPracticeService(loader PoolLoader, attempts domain.AttemptRepository, sink AttemptSink, settings PracticeSettings, opts ...PracticeOption) PracticeService {
	if settings.Policy == (practice.MasteryPolicy{}) {
		settings.Policy = practice.DefaultMasteryPolicy()
	}
	s := &practiceServiceImpl{
		loader:   loader,
		attempts: attempts,
		sink:     sink,
		settings: settings,
		now:      time.Now,
		newID:    util.NewULID,
		sessions: make(map[string]*sessionEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// rng returns a generator for one session. With a fixed seed, the n-th
// session started gets seed+n so runs are reproducible.
func (s *practiceServiceImpl) rng() practice.RNG {
	if s.settings.RNGSeed == 0 {
		return practice.NewRNG(0)
	}
	return practice.NewRNG(s.settings.RNGSeed + s.seeds.Add(1) - 1)
}

func (s *practiceServiceImpl) Start(ctx context.Context, req StartRequest) (*dto.SessionView, error) {
	if err := req.Scope.Validate(); err != nil {
		return nil, err
	}
	pool, err := s.loader.Load(ctx, req.Scope)
	if err != nil {
		return nil, err
	}
	state, err := s.newState(ctx, req.Scope, req.UserID, req.TimeLimit, pool)
	if err != nil {
		return nil, err
	}

	entry := newSessionEntry(state)
	s.mu.Lock()
	s.sessions[state.ID] = entry
	s.mu.Unlock()

	logger.Get().Info("PracticeService: session started",
		zap.String("session_id", state.ID),
		zap.String("scope", req.Scope.String()),
		zap.Int("pool_size", len(pool)),
		zap.Bool("anonymous", req.UserID == ""),
		zap.Int("time_limit", req.TimeLimit),
	)

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return toSessionView(state), nil
}

func (s *practiceServiceImpl) newState(ctx context.Context, scope domain.Scope, userID string, timeLimit int, pool []domain.Question) (*practice.SessionState, error) {
	return practice.NewSessionState(s.newID(), scope, userID, pool, s.rng(), s.now(), practice.Options{
		TimeLimit:     timeLimit,
		Policy:        s.settings.Policy,
		PriorAttempts: s.priorAttempts(ctx, userID, pool),
		NewID:         s.newID,
	})
}

// priorAttempts keeps the most recent earlier attempt per question. Lookup
// failures only lose the indicator.
func (s *practiceServiceImpl) priorAttempts(ctx context.Context, userID string, pool []domain.Question) map[string]domain.Attempt {
	prior := make(map[string]domain.Attempt)
	if userID == "" || s.attempts == nil {
		return prior
	}
	ids := make([]string, len(pool))
	for i, q := range pool {
		ids[i] = q.ID
	}
	recent, err := s.attempts.GetRecentAttempts(ctx, userID, ids)
	if err != nil {
		logger.Get().Warn("PracticeService: failed to load prior attempts",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return prior
	}
	for _, a := range recent {
		if _, seen := prior[a.QuestionID]; !seen {
			prior[a.QuestionID] = a
		}
	}
	return prior
}

func (s *practiceServiceImpl) lookup(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	return entry, nil
}

// mutate brings the session clock up to date, then runs fn under the session
// lock and returns the resulting view.
func (s *practiceServiceImpl) mutate(sessionID string, fn func(*practice.SessionState, time.Time) error) (*dto.SessionView, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	now := s.now()
	entry.advance(now)
	if err := fn(entry.state, now); err != nil {
		return nil, err
	}
	return toSessionView(entry.state), nil
}

func (s *practiceServiceImpl) Get(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	// Viewing the session counts as activity for idle eviction.
	return s.mutate(sessionID, func(st *practice.SessionState, now time.Time) error {
		st.LastActivity = now
		return nil
	})
}

func (s *practiceServiceImpl) Select(ctx context.Context, sessionID, optionID string) (*dto.SessionView, error) {
	return s.mutate(sessionID, func(st *practice.SessionState, now time.Time) error {
		return practice.SelectOption(st, optionID, now)
	})
}

func (s *practiceServiceImpl) Submit(ctx context.Context, sessionID string) (*dto.SubmitAnswerResponse, error) {
	var attempt domain.Attempt
	view, err := s.mutate(sessionID, func(st *practice.SessionState, now time.Time) error {
		var err error
		attempt, err = practice.Submit(st, now)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Get().Debug("PracticeService: attempt recorded",
		zap.String("session_id", sessionID),
		zap.String("question_id", attempt.QuestionID),
		zap.Bool("correct", attempt.IsCorrect),
	)
	// The in-memory transition has already happened; persistence is best effort.
	if s.sink != nil {
		s.sink.Record(ctx, attempt)
	}
	return &dto.SubmitAnswerResponse{AttemptID: attempt.ID, Session: *view}, nil
}

func (s *practiceServiceImpl) Skip(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	return s.mutate(sessionID, practice.Skip)
}

func (s *practiceServiceImpl) Next(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	return s.mutate(sessionID, practice.Advance)
}

func (s *practiceServiceImpl) Pause(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	return s.mutate(sessionID, practice.Pause)
}

func (s *practiceServiceImpl) Resume(ctx context.Context, sessionID string) (*dto.SessionView, error) {
	return s.mutate(sessionID, practice.Resume)
}

// remove takes the session out of the registry. Later calls for the id get SESSION_NOT_FOUND.
func (s *practiceServiceImpl) remove(sessionID string) (*sessionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	delete(s.sessions, sessionID)
	return entry, nil
}

func (s *practiceServiceImpl) End(ctx context.Context, sessionID string) (*dto.SessionResultResponse, error) {
	entry, err := s.remove(sessionID)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	entry.advance(s.now())
	practice.Stop(entry.state)
	result := practice.Finalize(entry.state)

	logger.Get().Info("PracticeService: session ended",
		zap.String("session_id", sessionID),
		zap.Int("attempted", result.Attempted),
		zap.Int("accuracy", result.Accuracy),
		zap.Bool("mastered", result.Mastered),
		zap.Bool("time_expired", result.TimeExpired),
	)
	return toResultResponse(result), nil
}

func (s *practiceServiceImpl) Restart(ctx context.Context, sessionID string, reload bool) (*dto.SessionView, error) {
	entry, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	old := entry.state
	scope, userID, timeLimit, pool := old.Scope, old.UserID, old.Timer.Limit, old.Pool
	entry.mu.Unlock()

	if reload {
		if err := s.loader.Invalidate(ctx, scope); err != nil {
			logger.Get().Warn("PracticeService: failed to invalidate pool cache", zap.String("scope", scope.String()), zap.Error(err))
		}
		pool, err = s.loader.Load(ctx, scope)
		if err != nil {
			return nil, err
		}
	}

	state, err := s.newState(ctx, scope, userID, timeLimit, pool)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.mu.Unlock()
		return nil, domain.NewSessionNotFoundError(sessionID)
	}
	delete(s.sessions, sessionID)
	s.sessions[state.ID] = newSessionEntry(state)
	s.mu.Unlock()

	entry.mu.Lock()
	practice.Stop(old)
	entry.mu.Unlock()

	logger.Get().Info("PracticeService: session restarted",
		zap.String("previous_session_id", sessionID),
		zap.String("session_id", state.ID),
		zap.Bool("reload", reload),
		zap.Int("pool_size", len(pool)),
	)
	return toSessionView(state), nil
}

func (s *practiceServiceImpl) PreviousAttempts(ctx context.Context, userID string, questionIDs []string) (*dto.PreviousAttemptsResponse, error) {
	if userID == "" {
		return nil, domain.NewUnauthorizedError("identity required to list previous attempts")
	}
	resp := &dto.PreviousAttemptsResponse{Attempts: []dto.PreviousAttempt{}}
	if s.attempts == nil || len(questionIDs) == 0 {
		return resp, nil
	}
	recent, err := s.attempts.GetRecentAttempts(ctx, userID, questionIDs)
	if err != nil {
		logger.Get().Error("PracticeService: failed to list previous attempts", zap.String("user_id", userID), zap.Error(err))
		return nil, domain.NewInternalError("failed to list previous attempts", err)
	}
	for _, a := range recent {
		resp.Attempts = append(resp.Attempts, dto.PreviousAttempt{
			AttemptID:        a.ID,
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        a.IsCorrect,
			AttemptedAt:      a.AttemptedAt,
		})
	}
	return resp, nil
}

func (s *practiceServiceImpl) snapshot() []*sessionEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, e := range s.sessions {
		entries = append(entries, e)
	}
	return entries
}

func (s *practiceServiceImpl) TickAll(now time.Time) int {
	expired := 0
	for _, entry := range s.snapshot() {
		entry.mu.Lock()
		if entry.advance(now) {
			expired++
		}
		entry.mu.Unlock()
	}
	return expired
}

func (s *practiceServiceImpl) EvictIdle(now time.Time) int {
	if s.settings.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-s.settings.IdleTimeout)

	var idle []string
	for _, entry := range s.snapshot() {
		entry.mu.Lock()
		if entry.state.LastActivity.Before(cutoff) {
			idle = append(idle, entry.state.ID)
		}
		entry.mu.Unlock()
	}

	evicted := 0
	for _, id := range idle {
		entry, err := s.remove(id)
		if err != nil {
			continue
		}
		entry.mu.Lock()
		practice.Stop(entry.state)
		entry.mu.Unlock()
		evicted++
		logger.Get().Info("PracticeService: idle session discarded", zap.String("session_id", id))
	}
	return evicted
}

func (s *practiceServiceImpl) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func toSessionView(st *practice.SessionState) *dto.SessionView {
	q := st.Current
	options := make([]dto.OptionView, len(q.Options))
	for i, o := range q.Options {
		options[i] = dto.OptionView{ID: o.ID, Text: o.Text}
	}
	snap := st.Progress()

	view := &dto.SessionView{
		SessionID:        st.ID,
		ScopeKind:        string(st.Scope.Kind),
		ScopeID:          st.Scope.ID,
		PoolSize:         len(st.Pool),
		Round:            st.Sequencer().Round(),
		RemainingInRound: st.Sequencer().Remaining(),
		Question: dto.QuestionView{
			ID:                  q.ID,
			Text:                q.Text,
			Difficulty:          string(q.Difficulty),
			MarksAwarded:        q.MarksAwarded,
			MarksDeducted:       q.MarksDeducted,
			TopicID:             q.TopicID,
			Options:             options,
			PreviouslyAttempted: st.PreviouslyAttempted(q.ID),
		},
		SelectedOptionID: st.SelectedOptionID,
		IsAnswered:       st.IsAnswered,
		Progress: dto.ProgressView{
			Attempted: snap.Attempted,
			Correct:   snap.Correct,
			Incorrect: snap.Incorrect,
			Skipped:   snap.Skipped,
			Accuracy:  snap.Accuracy,
			Mastered:  snap.Mastered,
		},
		Timer: dto.TimerView{
			State:          st.Timer.State.String(),
			ElapsedSeconds: st.Timer.Elapsed,
			LimitSeconds:   st.Timer.Limit,
		},
		StartedAt: st.StartedAt,
	}
	if st.Timer.Limit > 0 {
		view.Timer.RemainingSeconds = st.Timer.Remaining()
	}
	if fb, ok := practice.Reveal(st); ok {
		view.Feedback = &dto.FeedbackView{
			IsCorrect:        fb.IsCorrect,
			SelectedOptionID: fb.SelectedOptionID,
			CorrectOptionID:  fb.CorrectOptionID,
			Marks:            fb.Marks,
			Explanation:      fb.Explanation,
			Solution:         fb.Solution,
		}
	}
	return view
}

func toResultResponse(r practice.Result) *dto.SessionResultResponse {
	breakdown := make([]dto.TopicResult, len(r.Breakdown))
	for i, b := range r.Breakdown {
		breakdown[i] = dto.TopicResult{
			TopicID:   b.TopicID,
			Attempted: b.Attempted,
			Correct:   b.Correct,
			Incorrect: b.Incorrect,
			Accuracy:  b.Accuracy,
		}
	}
	return &dto.SessionResultResponse{
		SessionID:      r.SessionID,
		ScopeKind:      string(r.Scope.Kind),
		ScopeID:        r.Scope.ID,
		Attempted:      r.Attempted,
		Correct:        r.Correct,
		Incorrect:      r.Incorrect,
		Skipped:        r.Skipped,
		Accuracy:       r.Accuracy,
		Mastered:       r.Mastered,
		ElapsedSeconds: r.ElapsedSeconds,
		TimeExpired:    r.TimeExpired,
		Score:          r.Score,
		MaxScore:       r.MaxScore,
		Breakdown:      breakdown,
	}
}
