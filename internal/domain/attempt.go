package domain

import (
	"context"
	"time"
)

// Attempt is the immutable record of one submitted answer.
type Attempt struct {
	ID               string        `json:"id"`
	SessionID        string        `json:"session_id"`
	UserID           string        `json:"user_id,omitempty"`
	QuestionID       string        `json:"question_id"`
	SelectedOptionID string        `json:"selected_option_id"`
	IsCorrect        bool          `json:"is_correct"`
	TopicID          string        `json:"topic_id,omitempty"`
	Marks            float64       `json:"marks"`
	TimeTaken        time.Duration `json:"time_taken"`
	AttemptedAt      time.Time     `json:"attempted_at"`
}

// AttemptRepository persists attempts and reads them back for the prior-attempt indicator.
type AttemptRepository interface {
	CreateAttempt(ctx context.Context, attempt *Attempt) error
	// GetRecentAttempts returns the user's attempts on the given questions, most recent first.
	GetRecentAttempts(ctx context.Context, userID string, questionIDs []string) ([]Attempt, error)
}

// TransactionManager runs fn inside a transaction carried by ctx.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
