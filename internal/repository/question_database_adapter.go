package repository

import (
	"context"
	"fmt"

	"practice-engine/internal/domain"
	"practice-engine/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const questionColumns = `q.ID, q.SUBJECT_ID, q.CHAPTER_ID, q.TOPIC_ID, q.QUESTION_TEXT, q.DIFFICULTY,
	q.MARKS_AWARDED, q.MARKS_DEDUCTED, q.EXPLANATION, q.SOLUTION, q.IS_ACTIVE, q.CREATED_AT, q.UPDATED_AT`

// scopeColumn maps a scope kind onto the QUESTIONS column that holds its id.
var scopeColumn = map[domain.ScopeKind]string{
	domain.ScopeTopic:    "q.TOPIC_ID",
	domain.ScopeChapter:  "q.CHAPTER_ID",
	domain.ScopeSubject:  "q.SUBJECT_ID",
	domain.ScopeQuestion: "q.ID",
}

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// GetActiveQuestionsByScope implements domain.QuestionRepository. Run it
// inside a transaction so the question and option reads share a snapshot.
func (a *QuestionDatabaseAdapter) GetActiveQuestionsByScope(ctx context.Context, scope domain.Scope) ([]domain.Question, error) {
	column, ok := scopeColumn[scope.Kind]
	if !ok {
		return nil, domain.NewInvalidScopeError(fmt.Sprintf("unknown scope kind %q", scope.Kind))
	}
	exec := GetExecutor(ctx, a.db)

	query := fmt.Sprintf(`SELECT %s
	FROM QUESTIONS q
	WHERE %s = :1
	AND q.IS_ACTIVE = 1
	ORDER BY q.ID`, questionColumns, column)

	var rows []models.Question
	if err := exec.SelectContext(ctx, &rows, query, scope.ID); err != nil {
		return nil, fmt.Errorf("failed to get questions for %s: %w", scope, err)
	}
	if len(rows) == 0 {
		return []domain.Question{}, nil
	}

	questionIDs := make([]string, 0, len(rows))
	for _, r := range rows {
		questionIDs = append(questionIDs, r.ID)
	}
	options, err := a.getOptions(ctx, exec, questionIDs)
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i], options[rows[i].ID]))
	}
	return questions, nil
}

func (a *QuestionDatabaseAdapter) getOptions(ctx context.Context, exec DBTX, questionIDs []string) (map[string][]models.QuestionOption, error) {
	byQuestion := make(map[string][]models.QuestionOption, len(questionIDs))
	for _, chunk := range chunkIDs(questionIDs, oracleInListLimit) {
		query := fmt.Sprintf(`SELECT ID, QUESTION_ID, OPTION_TEXT, IS_CORRECT, DISPLAY_ORDER
		FROM QUESTION_OPTIONS
		WHERE QUESTION_ID IN (%s)
		ORDER BY QUESTION_ID, DISPLAY_ORDER, ID`, positionalPlaceholders(1, len(chunk)))

		args := make([]interface{}, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}

		var rows []models.QuestionOption
		if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
			return nil, fmt.Errorf("failed to get question options: %w", err)
		}
		for _, r := range rows {
			byQuestion[r.QuestionID] = append(byQuestion[r.QuestionID], r)
		}
	}
	return byQuestion, nil
}

func toDomainQuestion(m *models.Question, opts []models.QuestionOption) domain.Question {
	options := make([]domain.Option, 0, len(opts))
	for _, o := range opts {
		options = append(options, domain.Option{
			ID:           o.ID,
			Text:         o.OptionText,
			IsCorrect:    o.IsCorrect == 1,
			DisplayOrder: o.DisplayOrder,
		})
	}
	return domain.Question{
		ID:            m.ID,
		Text:          m.QuestionText,
		Difficulty:    domain.ParseDifficulty(m.Difficulty.String),
		MarksAwarded:  m.MarksAwarded.Float64,
		MarksDeducted: m.MarksDeducted.Float64,
		Explanation:   m.Explanation.String,
		Solution:      m.Solution.String,
		Options:       options,
		IsActive:      m.IsActive == 1,
		SubjectID:     m.SubjectID.String,
		ChapterID:     m.ChapterID.String,
		TopicID:       m.TopicID.String,
	}
}
