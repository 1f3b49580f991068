package domain

import (
	"context"
	"fmt"
	"strings"
)

// Difficulty is the authored difficulty of a question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps stored values onto Difficulty, defaulting to medium for unknown input.
func ParseDifficulty(s string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy":
		return DifficultyEasy
	case "hard":
		return DifficultyHard
	default:
		return DifficultyMedium
	}
}

// Option is one selectable answer of a question.
type Option struct {
	ID           string `json:"id"`
	Text         string `json:"text"`
	IsCorrect    bool   `json:"is_correct"`
	DisplayOrder int    `json:"display_order"`
}

// Question is read-only content owned by the content store.
type Question struct {
	ID            string     `json:"id"`
	Text          string     `json:"text"`
	Difficulty    Difficulty `json:"difficulty"`
	MarksAwarded  float64    `json:"marks_awarded"`
	MarksDeducted float64    `json:"marks_deducted"`
	Explanation   string     `json:"explanation,omitempty"`
	Solution      string     `json:"solution,omitempty"`
	Options       []Option   `json:"options"`
	IsActive      bool       `json:"is_active"`
	SubjectID     string     `json:"subject_id,omitempty"`
	ChapterID     string     `json:"chapter_id,omitempty"`
	TopicID       string     `json:"topic_id,omitempty"`
}

// Validate checks that the question can be answered at all.
func (q *Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("question id is required")
	}
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question %s: text is required", q.ID)
	}
	if len(q.Options) == 0 {
		return fmt.Errorf("question %s: at least one option is required", q.ID)
	}
	if q.correctCount() == 0 {
		return fmt.Errorf("question %s: no correct option", q.ID)
	}
	return nil
}

// IsSingleSelect reports whether exactly one option is marked correct.
func (q *Question) IsSingleSelect() bool {
	return q.correctCount() == 1
}

func (q *Question) correctCount() int {
	n := 0
	for _, o := range q.Options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// Option returns the option with the given id.
func (q *Question) Option(optionID string) (Option, bool) {
	for _, o := range q.Options {
		if o.ID == optionID {
			return o, true
		}
	}
	return Option{}, false
}

// CorrectOption returns the first option marked correct.
func (q *Question) CorrectOption() (Option, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return Option{}, false
}

// ScopeKind names the content boundary a pool is drawn from.
type ScopeKind string

const (
	ScopeTopic    ScopeKind = "topic"
	ScopeChapter  ScopeKind = "chapter"
	ScopeSubject  ScopeKind = "subject"
	ScopeQuestion ScopeKind = "question"
)

// Scope selects the questions that make up one pool.
type Scope struct {
	Kind ScopeKind `json:"kind"`
	ID   string    `json:"id"`
}

func (s Scope) String() string {
	return string(s.Kind) + ":" + s.ID
}

// Validate rejects unknown kinds and blank ids.
func (s Scope) Validate() error {
	switch s.Kind {
	case ScopeTopic, ScopeChapter, ScopeSubject, ScopeQuestion:
	default:
		return NewInvalidScopeError(fmt.Sprintf("unknown scope kind %q", s.Kind))
	}
	if strings.TrimSpace(s.ID) == "" {
		return NewInvalidScopeError("scope id is required")
	}
	return nil
}

// QuestionRepository is the read contract of the content store.
type QuestionRepository interface {
	// GetActiveQuestionsByScope returns active questions ordered by id with options populated.
	// An empty scope yields an empty slice and a nil error.
	GetActiveQuestionsByScope(ctx context.Context, scope Scope) ([]Question, error)
}
