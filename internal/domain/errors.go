package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Content errors
	CodeNoQuestions       ErrorCode = "NO_QUESTIONS_AVAILABLE"
	CodeContentLoadFailed ErrorCode = "CONTENT_LOAD_FAILED"
	CodeInvalidScope      ErrorCode = "INVALID_SCOPE"

	// Session errors
	CodeInvalidSubmission ErrorCode = "INVALID_SUBMISSION"
	CodeAlreadyAnswered   ErrorCode = "ALREADY_ANSWERED"
	CodeNotAnswered       ErrorCode = "QUESTION_NOT_ANSWERED"
	CodeSessionPaused     ErrorCode = "SESSION_PAUSED"
	CodeSessionEnded      ErrorCode = "SESSION_ENDED"
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeSessionNotFound   ErrorCode = "SESSION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches any DomainError carrying the same code, so sentinel values work with errors.Is.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithContext attaches a key/value detail that is echoed to API clients.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrNoQuestions       = NewError(CodeNoQuestions, "no questions available", nil)
	ErrAlreadyAnswered   = NewError(CodeAlreadyAnswered, "question already answered", nil)
	ErrNotAnswered       = NewError(CodeNotAnswered, "question not answered yet", nil)
	ErrSessionPaused     = NewError(CodeSessionPaused, "session is paused", nil)
	ErrSessionEnded      = NewError(CodeSessionEnded, "session has ended", nil)
	ErrInvalidTransition = NewError(CodeInvalidTransition, "invalid timer transition", nil)
	ErrSessionNotFound   = NewError(CodeSessionNotFound, "session not found", nil)
)

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewNoQuestionsError(scope Scope) *DomainError {
	return NewError(CodeNoQuestions, fmt.Sprintf("no active questions for %s", scope), nil).
		WithContext("scope_kind", string(scope.Kind)).
		WithContext("scope_id", scope.ID)
}

func NewContentLoadError(scope Scope, cause error) *DomainError {
	return NewError(CodeContentLoadFailed, fmt.Sprintf("failed to load questions for %s", scope), cause)
}

func NewInvalidScopeError(message string) *DomainError {
	return NewError(CodeInvalidScope, message, nil)
}

func NewInvalidSubmissionError(message string) *DomainError {
	return NewError(CodeInvalidSubmission, message, nil)
}

func NewInvalidTransitionError(from, action string) *DomainError {
	return NewError(CodeInvalidTransition, fmt.Sprintf("cannot %s a %s session", action, from), nil)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("session not found with ID: %s", sessionID), nil)
}
