package dto

import "time"

// StartSessionRequest starts a practice session over a scope
// @Description Request body for starting a practice session
type StartSessionRequest struct {
	ScopeKind        string `json:"scope_kind" example:"topic"`
	ScopeID          string `json:"scope_id" example:"01HZX3V6Q8N2S0M4K7B9C1D5EF"`
	TimeLimitSeconds int    `json:"time_limit_seconds,omitempty" example:"600"`
}

// SelectOptionRequest marks an option as chosen without submitting it
type SelectOptionRequest struct {
	OptionID string `json:"option_id"`
}

// RestartSessionRequest restarts a session, optionally reloading the pool from the content store
type RestartSessionRequest struct {
	Reload bool `json:"reload"`
}

// OptionView is an option as shown to the learner. Correctness is never included.
type OptionView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// QuestionView is the current question as shown to the learner
type QuestionView struct {
	ID                  string       `json:"id"`
	Text                string       `json:"text"`
	Difficulty          string       `json:"difficulty"`
	MarksAwarded        float64      `json:"marks_awarded"`
	MarksDeducted       float64      `json:"marks_deducted"`
	TopicID             string       `json:"topic_id,omitempty"`
	Options             []OptionView `json:"options"`
	PreviouslyAttempted bool         `json:"previously_attempted"`
}

// ProgressView carries the running counters and derived mastery
type ProgressView struct {
	Attempted int  `json:"attempted"`
	Correct   int  `json:"correct"`
	Incorrect int  `json:"incorrect"`
	Skipped   int  `json:"skipped"`
	Accuracy  int  `json:"accuracy"`
	Mastered  bool `json:"mastered"`
}

// TimerView is the session clock
type TimerView struct {
	State            string `json:"state"`
	ElapsedSeconds   int    `json:"elapsed_seconds"`
	LimitSeconds     int    `json:"limit_seconds,omitempty"`
	RemainingSeconds int    `json:"remaining_seconds,omitempty"`
}

// FeedbackView is revealed once the current question is answered
type FeedbackView struct {
	IsCorrect        bool    `json:"is_correct"`
	SelectedOptionID string  `json:"selected_option_id"`
	CorrectOptionID  string  `json:"correct_option_id"`
	Marks            float64 `json:"marks"`
	Explanation      string  `json:"explanation,omitempty"`
	Solution         string  `json:"solution,omitempty"`
}

// SessionView is the full observable state of a practice session
// @Description Practice session state
type SessionView struct {
	SessionID        string        `json:"session_id"`
	ScopeKind        string        `json:"scope_kind"`
	ScopeID          string        `json:"scope_id"`
	PoolSize         int           `json:"pool_size"`
	Round            int           `json:"round"`
	RemainingInRound int           `json:"remaining_in_round"`
	Question         QuestionView  `json:"question"`
	SelectedOptionID string        `json:"selected_option_id,omitempty"`
	IsAnswered       bool          `json:"is_answered"`
	Feedback         *FeedbackView `json:"feedback,omitempty"`
	Progress         ProgressView  `json:"progress"`
	Timer            TimerView     `json:"timer"`
	StartedAt        time.Time     `json:"started_at"`
}

// SubmitAnswerResponse is returned after grading the selected option
type SubmitAnswerResponse struct {
	AttemptID string      `json:"attempt_id"`
	Session   SessionView `json:"session"`
}

// TopicResult is one row of the per-topic breakdown
type TopicResult struct {
	TopicID   string `json:"topic_id"`
	Attempted int    `json:"attempted"`
	Correct   int    `json:"correct"`
	Incorrect int    `json:"incorrect"`
	Accuracy  int    `json:"accuracy"`
}

// SessionResultResponse is the end-of-session summary
// @Description End-of-session summary
type SessionResultResponse struct {
	SessionID      string        `json:"session_id"`
	ScopeKind      string        `json:"scope_kind"`
	ScopeID        string        `json:"scope_id"`
	Attempted      int           `json:"attempted"`
	Correct        int           `json:"correct"`
	Incorrect      int           `json:"incorrect"`
	Skipped        int           `json:"skipped"`
	Accuracy       int           `json:"accuracy"`
	Mastered       bool          `json:"mastered"`
	ElapsedSeconds int           `json:"elapsed_seconds"`
	TimeExpired    bool          `json:"time_expired"`
	Score          float64       `json:"score"`
	MaxScore       float64       `json:"max_score"`
	Breakdown      []TopicResult `json:"breakdown"`
}

// PreviousAttempt is one earlier attempt of the caller
type PreviousAttempt struct {
	AttemptID        string    `json:"attempt_id"`
	QuestionID       string    `json:"question_id"`
	SelectedOptionID string    `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
	AttemptedAt      time.Time `json:"attempted_at"`
}

// PreviousAttemptsResponse lists earlier attempts, most recent first
type PreviousAttemptsResponse struct {
	Attempts []PreviousAttempt `json:"attempts"`
}
