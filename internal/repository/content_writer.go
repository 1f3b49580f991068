package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"practice-engine/internal/repository/models"
	"practice-engine/internal/util"

	"github.com/jmoiron/sqlx"
)

// ContentWriter inserts the subject, chapter and topic hierarchy and the
// questions under it. Wrap calls in a transaction to keep a subject atomic.
type ContentWriter struct {
	db *sqlx.DB
}

func NewContentWriter(db *sqlx.DB) *ContentWriter {
	return &ContentWriter{db: db}
}

// hierarchyTables maps a level to its table and parent column.
var hierarchyTables = map[string]struct{ table, parent string }{
	"subject": {"SUBJECTS", ""},
	"chapter": {"CHAPTERS", "SUBJECT_ID"},
	"topic":   {"TOPICS", "CHAPTER_ID"},
}

// EnsureSubject returns the id of the subject named name, creating it when missing.
func (w *ContentWriter) EnsureSubject(ctx context.Context, name string) (string, bool, error) {
	return w.ensure(ctx, "subject", "", name)
}

// EnsureChapter returns the id of the chapter named name under subjectID, creating it when missing.
func (w *ContentWriter) EnsureChapter(ctx context.Context, subjectID, name string) (string, bool, error) {
	return w.ensure(ctx, "chapter", subjectID, name)
}

// EnsureTopic returns the id of the topic named name under chapterID, creating it when missing.
func (w *ContentWriter) EnsureTopic(ctx context.Context, chapterID, name string) (string, bool, error) {
	return w.ensure(ctx, "topic", chapterID, name)
}

// ensure reports whether a row was created alongside its id.
func (w *ContentWriter) ensure(ctx context.Context, level, parentID, name string) (string, bool, error) {
	t := hierarchyTables[level]
	exec := GetExecutor(ctx, w.db)

	var (
		id   string
		err  error
		args = []interface{}{name}
	)
	query := fmt.Sprintf(`SELECT ID FROM %s WHERE NAME = :1`, t.table)
	if t.parent != "" {
		query += fmt.Sprintf(` AND %s = :2`, t.parent)
		args = append(args, parentID)
	}
	err = exec.GetContext(ctx, &id, query, args...)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("failed to look up %s %q: %w", level, name, err)
	}

	id = util.NewULID()
	if t.parent == "" {
		query = fmt.Sprintf(`INSERT INTO %s (ID, NAME, CREATED_AT) VALUES (:1, :2, :3)`, t.table)
		_, err = exec.ExecContext(ctx, query, id, name, time.Now())
	} else {
		query = fmt.Sprintf(`INSERT INTO %s (ID, %s, NAME, CREATED_AT) VALUES (:1, :2, :3, :4)`, t.table, t.parent)
		_, err = exec.ExecContext(ctx, query, id, parentID, name, time.Now())
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to create %s %q: %w", level, name, err)
	}
	return id, true, nil
}

// InsertQuestion stores q and its options. Empty ids are generated; the
// question id is copied onto every option.
func (w *ContentWriter) InsertQuestion(ctx context.Context, q *models.Question, options []models.QuestionOption) error {
	if q == nil {
		return fmt.Errorf("cannot insert nil question")
	}
	if q.ID == "" {
		q.ID = util.NewULID()
	}
	now := time.Now()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now

	exec := GetExecutor(ctx, w.db)
	query := `INSERT INTO QUESTIONS (ID, SUBJECT_ID, CHAPTER_ID, TOPIC_ID, QUESTION_TEXT, DIFFICULTY,
	          MARKS_AWARDED, MARKS_DEDUCTED, EXPLANATION, SOLUTION, IS_ACTIVE, CREATED_AT, UPDATED_AT)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11, :12, :13)`
	_, err := exec.ExecContext(ctx, query,
		q.ID,
		q.SubjectID,
		q.ChapterID,
		q.TopicID,
		q.QuestionText,
		q.Difficulty,
		q.MarksAwarded,
		q.MarksDeducted,
		q.Explanation,
		q.Solution,
		q.IsActive,
		q.CreatedAt,
		q.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert question %s: %w", q.ID, err)
	}

	optionQuery := `INSERT INTO QUESTION_OPTIONS (ID, QUESTION_ID, OPTION_TEXT, IS_CORRECT, DISPLAY_ORDER)
	                VALUES (:1, :2, :3, :4, :5)`
	for i := range options {
		o := &options[i]
		if o.ID == "" {
			o.ID = util.NewULID()
		}
		o.QuestionID = q.ID
		if _, err := exec.ExecContext(ctx, optionQuery, o.ID, o.QuestionID, o.OptionText, o.IsCorrect, o.DisplayOrder); err != nil {
			return fmt.Errorf("failed to insert option %d of question %s: %w", i, q.ID, err)
		}
	}
	return nil
}
