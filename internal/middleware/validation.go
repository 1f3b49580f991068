package middleware

import (
	"practice-engine/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionIDKey   = "validated_session_id"
	QuestionIDsKey = "validated_question_ids"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validator: validation.NewValidator(),
	}
}

// ValidateSessionID validates the :id path parameter of session routes
func (vm *ValidationMiddleware) ValidateSessionID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")
		if errors := vm.validator.ValidateSessionID(sessionID); len(errors) > 0 {
			return errors // This will be handled by ErrorHandler middleware
		}

		c.Locals(SessionIDKey, sessionID)
		return c.Next()
	}
}

// ValidateQuestionIDs validates the comma separated question_ids query parameter
func (vm *ValidationMiddleware) ValidateQuestionIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ids := validation.SplitIDs(c.Query("question_ids"))
		if errors := vm.validator.ValidateQuestionIDs(ids); len(errors) > 0 {
			return errors
		}

		c.Locals(QuestionIDsKey, ids)
		return c.Next()
	}
}
