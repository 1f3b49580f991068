package models

import (
	"database/sql"
	"time"
)

// Question is a row of the QUESTIONS table.
type Question struct {
	ID            string          `db:"ID"`
	SubjectID     sql.NullString  `db:"SUBJECT_ID"`
	ChapterID     sql.NullString  `db:"CHAPTER_ID"`
	TopicID       sql.NullString  `db:"TOPIC_ID"`
	QuestionText  string          `db:"QUESTION_TEXT"`
	Difficulty    sql.NullString  `db:"DIFFICULTY"`
	MarksAwarded  sql.NullFloat64 `db:"MARKS_AWARDED"`
	MarksDeducted sql.NullFloat64 `db:"MARKS_DEDUCTED"`
	Explanation   sql.NullString  `db:"EXPLANATION"`
	Solution      sql.NullString  `db:"SOLUTION"`
	IsActive      int             `db:"IS_ACTIVE"` // NUMBER(1)
	CreatedAt     time.Time       `db:"CREATED_AT"`
	UpdatedAt     time.Time       `db:"UPDATED_AT"`
}

// QuestionOption is a row of the QUESTION_OPTIONS table.
type QuestionOption struct {
	ID           string `db:"ID"`
	QuestionID   string `db:"QUESTION_ID"`
	OptionText   string `db:"OPTION_TEXT"`
	IsCorrect    int    `db:"IS_CORRECT"` // NUMBER(1)
	DisplayOrder int    `db:"DISPLAY_ORDER"`
}
