package models

import (
	"database/sql"
	"time"
)

// PracticeAttempt is a row of the PRACTICE_ATTEMPTS table. Rows are insert-only.
type PracticeAttempt struct {
	ID               string         `db:"ID"` // ULID
	SessionID        string         `db:"SESSION_ID"`
	UserID           sql.NullString `db:"USER_ID"` // NULL for anonymous practice
	QuestionID       string         `db:"QUESTION_ID"`
	SelectedOptionID sql.NullString `db:"SELECTED_OPTION_ID"`
	IsCorrect        int            `db:"IS_CORRECT"` // NUMBER(1)
	TopicID          sql.NullString `db:"TOPIC_ID"`
	Marks            float64        `db:"MARKS"`
	TimeTakenMs      int64          `db:"TIME_TAKEN_MS"`
	AttemptedAt      time.Time      `db:"ATTEMPTED_AT"`
	CreatedAt        time.Time      `db:"CREATED_AT"`
}
