package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"practice-engine/internal/domain"
	"practice-engine/internal/repository/models"
	"practice-engine/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxAttemptRepository implements domain.AttemptRepository using sqlx.
type sqlxAttemptRepository struct {
	db *sqlx.DB
}

func NewSQLXAttemptRepository(db *sqlx.DB) domain.AttemptRepository {
	return &sqlxAttemptRepository{db: db}
}

func boolToNumber(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fromDomainAttempt(a *domain.Attempt) *models.PracticeAttempt {
	if a == nil {
		return nil
	}
	return &models.PracticeAttempt{
		ID:               a.ID,
		SessionID:        a.SessionID,
		UserID:           util.StringToNullString(a.UserID),
		QuestionID:       a.QuestionID,
		SelectedOptionID: util.StringToNullString(a.SelectedOptionID),
		IsCorrect:        boolToNumber(a.IsCorrect),
		TopicID:          util.StringToNullString(a.TopicID),
		Marks:            a.Marks,
		TimeTakenMs:      a.TimeTaken.Milliseconds(),
		AttemptedAt:      a.AttemptedAt,
	}
}

func toDomainAttempt(m *models.PracticeAttempt) *domain.Attempt {
	if m == nil {
		return nil
	}
	return &domain.Attempt{
		ID:               m.ID,
		SessionID:        m.SessionID,
		UserID:           m.UserID.String,
		QuestionID:       m.QuestionID,
		SelectedOptionID: m.SelectedOptionID.String,
		IsCorrect:        m.IsCorrect == 1,
		TopicID:          m.TopicID.String,
		Marks:            m.Marks,
		TimeTaken:        time.Duration(m.TimeTakenMs) * time.Millisecond,
		AttemptedAt:      m.AttemptedAt,
	}
}

// CreateAttempt inserts one attempt row.
func (r *sqlxAttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.Attempt) error {
	m := fromDomainAttempt(attempt)
	if m == nil {
		return fmt.Errorf("cannot create nil attempt")
	}
	if m.ID == "" {
		m.ID = util.NewULID()
	}
	if m.AttemptedAt.IsZero() {
		m.AttemptedAt = time.Now()
	}
	m.CreatedAt = time.Now()

	query := `INSERT INTO PRACTICE_ATTEMPTS (ID, SESSION_ID, USER_ID, QUESTION_ID, SELECTED_OPTION_ID, IS_CORRECT, TOPIC_ID, MARKS, TIME_TAKEN_MS, ATTEMPTED_AT, CREATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`

	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID,
		m.SessionID,
		m.UserID,
		m.QuestionID,
		m.SelectedOptionID,
		m.IsCorrect,
		m.TopicID,
		m.Marks,
		m.TimeTakenMs,
		m.AttemptedAt,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create practice attempt: %w", err)
	}
	return nil
}

// GetRecentAttempts returns the user's attempts on questionIDs, most recent first.
func (r *sqlxAttemptRepository) GetRecentAttempts(ctx context.Context, userID string, questionIDs []string) ([]domain.Attempt, error) {
	if userID == "" || len(questionIDs) == 0 {
		return []domain.Attempt{}, nil
	}
	exec := GetExecutor(ctx, r.db)

	var all []models.PracticeAttempt
	// One bind is taken by USER_ID.
	for _, chunk := range chunkIDs(questionIDs, oracleInListLimit-1) {
		query := fmt.Sprintf(`SELECT ID, SESSION_ID, USER_ID, QUESTION_ID, SELECTED_OPTION_ID, IS_CORRECT, TOPIC_ID, MARKS, TIME_TAKEN_MS, ATTEMPTED_AT, CREATED_AT
		FROM PRACTICE_ATTEMPTS
		WHERE USER_ID = :1
		AND QUESTION_ID IN (%s)
		ORDER BY ATTEMPTED_AT DESC, ID DESC`, positionalPlaceholders(2, len(chunk)))

		args := make([]interface{}, 0, len(chunk)+1)
		args = append(args, userID)
		for _, id := range chunk {
			args = append(args, id)
		}

		var rows []models.PracticeAttempt
		if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("failed to get recent attempts for user %s: %w", userID, err)
		}
		all = append(all, rows...)
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].AttemptedAt.Equal(all[j].AttemptedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].AttemptedAt.After(all[j].AttemptedAt)
	})

	attempts := make([]domain.Attempt, 0, len(all))
	for i := range all {
		attempts = append(attempts, *toDomainAttempt(&all[i]))
	}
	return attempts, nil
}
