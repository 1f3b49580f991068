package practice

import (
	"fmt"
	"time"

	"practice-engine/internal/domain"
	"practice-engine/internal/util"
)

// Options configures a new session.
type Options struct {
	// TimeLimit in seconds. Zero means untimed.
	TimeLimit int
	Policy    MasteryPolicy
	// PriorAttempts maps question id to the user's most recent earlier attempt.
	PriorAttempts map[string]domain.Attempt
	// NewID generates attempt ids. Defaults to util.NewULID.
	NewID func() string
}

// SessionState is the complete state of one practice run. It is owned by a
// single session and every transition goes through the functions in this package.
type SessionState struct {
	ID        string
	Scope     domain.Scope
	UserID    string
	Pool      []domain.Question
	StartedAt time.Time

	Current           domain.Question
	SelectedOptionID  string
	IsAnswered        bool
	QuestionStartedAt time.Time
	LastActivity      time.Time

	Timer    Timer
	Counters Counters
	Policy   MasteryPolicy
	Attempts []domain.Attempt

	PriorAttempts map[string]domain.Attempt

	seq   *Sequencer
	newID func() string
}

// NewSessionState shuffles the pool and serves the first question.
// An empty pool cannot start a session.
func NewSessionState(id string, scope domain.Scope, userID string, pool []domain.Question, rng RNG, now time.Time, opts Options) (*SessionState, error) {
	if len(pool) == 0 {
		return nil, domain.NewNoQuestionsError(scope)
	}
	if opts.Policy == (MasteryPolicy{}) {
		opts.Policy = DefaultMasteryPolicy()
	}
	if opts.NewID == nil {
		opts.NewID = util.NewULID
	}
	if opts.PriorAttempts == nil {
		opts.PriorAttempts = map[string]domain.Attempt{}
	}

	s := &SessionState{
		ID:            id,
		Scope:         scope,
		UserID:        userID,
		Pool:          pool,
		StartedAt:     now,
		LastActivity:  now,
		Timer:         NewTimer(opts.TimeLimit),
		Policy:        opts.Policy,
		PriorAttempts: opts.PriorAttempts,
		seq:           NewSequencer(pool, rng),
		newID:         opts.NewID,
	}
	s.serveNext(now)
	return s, nil
}

func (s *SessionState) serveNext(now time.Time) {
	q, _ := s.seq.Next()
	s.Current = q
	s.SelectedOptionID = ""
	s.IsAnswered = false
	s.QuestionStartedAt = now
}

// interactive rejects user actions on a paused or stopped session.
func (s *SessionState) interactive() error {
	switch s.Timer.State {
	case Stopped:
		return domain.ErrSessionEnded
	case Paused:
		return domain.ErrSessionPaused
	}
	return nil
}

// Sequencer exposes the delivery order and history of the session.
func (s *SessionState) Sequencer() *Sequencer { return s.seq }

// Progress derives the running accuracy and mastery verdict.
func (s *SessionState) Progress() ProgressSnapshot {
	return s.Policy.Snapshot(s.Counters)
}

// PreviouslyAttempted reports whether the user answered the question in an earlier session.
func (s *SessionState) PreviouslyAttempted(questionID string) bool {
	_, ok := s.PriorAttempts[questionID]
	return ok
}

// SelectOption records the chosen option without submitting it.
func SelectOption(s *SessionState, optionID string, now time.Time) error {
	if err := s.interactive(); err != nil {
		return err
	}
	if s.IsAnswered {
		return domain.ErrAlreadyAnswered
	}
	if _, ok := s.Current.Option(optionID); !ok {
		return domain.NewInvalidSubmissionError(fmt.Sprintf("option %s does not belong to question %s", optionID, s.Current.ID))
	}
	s.SelectedOptionID = optionID
	s.LastActivity = now
	return nil
}

// Submit grades the selected option and records an attempt. The returned
// attempt is appended to the session log; persisting it is the caller's job.
func Submit(s *SessionState, now time.Time) (domain.Attempt, error) {
	if err := s.interactive(); err != nil {
		return domain.Attempt{}, err
	}
	if s.IsAnswered {
		return domain.Attempt{}, domain.ErrAlreadyAnswered
	}
	if s.SelectedOptionID == "" {
		return domain.Attempt{}, domain.NewInvalidSubmissionError("no option selected")
	}
	opt, ok := s.Current.Option(s.SelectedOptionID)
	if !ok {
		return domain.Attempt{}, domain.NewInvalidSubmissionError(fmt.Sprintf("option %s does not belong to question %s", s.SelectedOptionID, s.Current.ID))
	}

	marks := -s.Current.MarksDeducted
	if opt.IsCorrect {
		marks = s.Current.MarksAwarded
	}
	taken := now.Sub(s.QuestionStartedAt)
	if taken < 0 {
		taken = 0
	}

	attempt := domain.Attempt{
		ID:               s.newID(),
		SessionID:        s.ID,
		UserID:           s.UserID,
		QuestionID:       s.Current.ID,
		SelectedOptionID: opt.ID,
		IsCorrect:        opt.IsCorrect,
		TopicID:          s.Current.TopicID,
		Marks:            marks,
		TimeTaken:        taken,
		AttemptedAt:      now,
	}

	s.IsAnswered = true
	s.seq.MarkServed(s.Current.ID)
	s.Counters.Record(opt.IsCorrect)
	s.Attempts = append(s.Attempts, attempt)
	s.LastActivity = now
	return attempt, nil
}

// Skip moves on without an attempt. The skipped question stays eligible and may be served again right away.
func Skip(s *SessionState, now time.Time) error {
	if err := s.interactive(); err != nil {
		return err
	}
	if s.IsAnswered {
		return domain.ErrAlreadyAnswered
	}
	s.Counters.RecordSkip()
	s.serveNext(now)
	s.LastActivity = now
	return nil
}

// Advance serves the next question after the current one was answered.
func Advance(s *SessionState, now time.Time) error {
	if err := s.interactive(); err != nil {
		return err
	}
	if !s.IsAnswered {
		return domain.ErrNotAnswered
	}
	s.serveNext(now)
	s.LastActivity = now
	return nil
}

func Pause(s *SessionState, now time.Time) error {
	t, err := s.Timer.Pause()
	if err != nil {
		return err
	}
	s.Timer = t
	s.LastActivity = now
	return nil
}

func Resume(s *SessionState, now time.Time) error {
	t, err := s.Timer.Resume()
	if err != nil {
		return err
	}
	s.Timer = t
	s.LastActivity = now
	return nil
}

// Tick advances the session clock. It reports true when this tick ran a timed session out.
func Tick(s *SessionState, delta int) bool {
	wasRunning := s.Timer.State == Running
	s.Timer = s.Timer.Tick(delta)
	return wasRunning && s.Timer.State == Stopped
}

// Stop ends the session clock. Further interaction is rejected.
func Stop(s *SessionState) {
	s.Timer = s.Timer.Stop()
}

// Feedback is what the user sees once the current question is answered.
type Feedback struct {
	QuestionID       string  `json:"question_id"`
	SelectedOptionID string  `json:"selected_option_id"`
	CorrectOptionID  string  `json:"correct_option_id"`
	IsCorrect        bool    `json:"is_correct"`
	Marks            float64 `json:"marks"`
	Explanation      string  `json:"explanation,omitempty"`
	Solution         string  `json:"solution,omitempty"`
}

// Reveal returns the explanation and solution of the current question. It is
// available only after the question has been answered.
func Reveal(s *SessionState) (Feedback, bool) {
	if !s.IsAnswered || len(s.Attempts) == 0 {
		return Feedback{}, false
	}
	last := s.Attempts[len(s.Attempts)-1]
	correct, _ := s.Current.CorrectOption()
	return Feedback{
		QuestionID:       s.Current.ID,
		SelectedOptionID: last.SelectedOptionID,
		CorrectOptionID:  correct.ID,
		IsCorrect:        last.IsCorrect,
		Marks:            last.Marks,
		Explanation:      s.Current.Explanation,
		Solution:         s.Current.Solution,
	}, true
}
