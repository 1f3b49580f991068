package validation

import (
	"regexp"
	"strings"

	"practice-engine/internal/domain"

	"github.com/oklog/ulid/v2"
)

const (
	// MaxTimeLimitSeconds caps a timed session at four hours.
	MaxTimeLimitSeconds = 4 * 60 * 60
	// MaxQuestionIDs bounds one previous-attempts lookup.
	MaxQuestionIDs = 200
)

var contentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateStartSession validates the scope and optional time limit of a new session
func (v *Validator) ValidateStartSession(scopeKind, scopeID string, timeLimitSeconds int) domain.ValidationErrors {
	var errors domain.ValidationErrors

	switch domain.ScopeKind(strings.TrimSpace(scopeKind)) {
	case "":
		errors = append(errors, domain.NewMissingFieldError("scope_kind"))
	case domain.ScopeTopic, domain.ScopeChapter, domain.ScopeSubject, domain.ScopeQuestion:
	default:
		errors = append(errors, domain.NewInvalidFormatError("scope_kind", scopeKind))
	}

	errors = append(errors, v.validateContentID("scope_id", scopeID)...)

	if timeLimitSeconds < 0 || timeLimitSeconds > MaxTimeLimitSeconds {
		errors = append(errors, domain.NewOutOfRangeError("time_limit_seconds", timeLimitSeconds, 0, MaxTimeLimitSeconds))
	}

	return errors
}

// ValidateSessionID checks the path parameter of session routes
func (v *Validator) ValidateSessionID(sessionID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(sessionID) == "" {
		errors = append(errors, domain.NewMissingFieldError("session_id"))
	} else if _, err := ulid.ParseStrict(sessionID); err != nil {
		errors = append(errors, domain.NewInvalidFormatError("session_id", sessionID))
	}

	return errors
}

// ValidateSelectOption validates the option chosen for the current question
func (v *Validator) ValidateSelectOption(optionID string) domain.ValidationErrors {
	return v.validateContentID("option_id", optionID)
}

// ValidateQuestionIDs validates the question id list of a previous-attempts lookup
func (v *Validator) ValidateQuestionIDs(questionIDs []string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(questionIDs) == 0 {
		errors = append(errors, domain.NewMissingFieldError("question_ids"))
		return errors
	}
	if len(questionIDs) > MaxQuestionIDs {
		errors = append(errors, domain.NewOutOfRangeError("question_ids", len(questionIDs), 1, MaxQuestionIDs))
		return errors
	}
	for _, id := range questionIDs {
		if !contentIDPattern.MatchString(id) {
			errors = append(errors, domain.NewInvalidFormatError("question_ids", id))
		}
	}

	return errors
}

// SplitIDs parses a comma separated id list, ignoring blanks and duplicates.
func SplitIDs(raw string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (v *Validator) validateContentID(field, value string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(value) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
	} else if !contentIDPattern.MatchString(value) {
		errors = append(errors, domain.NewInvalidFormatError(field, value))
	}

	return errors
}
