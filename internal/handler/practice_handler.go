package handler

import (
	"practice-engine/internal/domain"
	"practice-engine/internal/dto"
	"practice-engine/internal/middleware"
	"practice-engine/internal/service"
	"practice-engine/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// PracticeHandler handles practice session HTTP requests
type PracticeHandler struct {
	service   service.PracticeService
	validator *validation.Validator
}

// NewPracticeHandler creates a new PracticeHandler instance
func NewPracticeHandler(service service.PracticeService) *PracticeHandler {
	return &PracticeHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// RegisterRoutes mounts the session routes on router. identity attributes
// requests to users when a bearer token is present.
func (h *PracticeHandler) RegisterRoutes(router fiber.Router, identity fiber.Handler) {
	vm := middleware.NewValidationMiddleware()

	router.Post("/sessions", identity, h.StartSession)

	sessions := router.Group("/sessions/:id", vm.ValidateSessionID())
	sessions.Get("", h.GetSession)
	sessions.Post("/select", h.SelectOption)
	sessions.Post("/submit", h.SubmitAnswer)
	sessions.Post("/skip", h.SkipQuestion)
	sessions.Post("/next", h.NextQuestion)
	sessions.Post("/pause", h.PauseSession)
	sessions.Post("/resume", h.ResumeSession)
	sessions.Post("/end", h.EndSession)
	sessions.Post("/restart", h.RestartSession)

	router.Get("/attempts/previous", identity, middleware.RequireIdentity(), vm.ValidateQuestionIDs(), h.PreviousAttempts)
}

func sessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(middleware.SessionIDKey).(string); ok {
		return id
	}
	return c.Params("id")
}

// StartSession godoc
// @Summary Start a practice session
// @Description Loads the active questions of a topic, chapter, subject or single question and serves the first one
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body dto.StartSessionRequest true "Scope of the session"
// @Param Authorization header string false "Bearer identity token"
// @Success 201 {object} dto.SessionView
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /sessions [post]
func (h *PracticeHandler) StartSession(c *fiber.Ctx) error {
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateStartSession(req.ScopeKind, req.ScopeID, req.TimeLimitSeconds); len(errs) > 0 {
		return errs
	}

	view, err := h.service.Start(c.UserContext(), service.StartRequest{
		Scope:     domain.Scope{Kind: domain.ScopeKind(req.ScopeKind), ID: req.ScopeID},
		UserID:    middleware.UserID(c),
		TimeLimit: req.TimeLimitSeconds,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// GetSession godoc
// @Summary Get a practice session
// @Description Returns the current question, progress and timer of a session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionView
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id} [get]
func (h *PracticeHandler) GetSession(c *fiber.Ctx) error {
	view, err := h.service.Get(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// SelectOption godoc
// @Summary Select an option
// @Description Marks an option of the current question as chosen without submitting it
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.SelectOptionRequest true "Chosen option"
// @Success 200 {object} dto.SessionView
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/select [post]
func (h *PracticeHandler) SelectOption(c *fiber.Ctx) error {
	var req dto.SelectOptionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("Invalid request body")
	}
	if errs := h.validator.ValidateSelectOption(req.OptionID); len(errs) > 0 {
		return errs
	}

	view, err := h.service.Select(c.UserContext(), sessionID(c), req.OptionID)
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// SubmitAnswer godoc
// @Summary Submit the selected option
// @Description Grades the selected option, records the attempt and reveals the explanation
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SubmitAnswerResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/submit [post]
func (h *PracticeHandler) SubmitAnswer(c *fiber.Ctx) error {
	resp, err := h.service.Submit(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// SkipQuestion godoc
// @Summary Skip the current question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/skip [post]
func (h *PracticeHandler) SkipQuestion(c *fiber.Ctx) error {
	view, err := h.service.Skip(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// NextQuestion godoc
// @Summary Move to the next question
// @Description Serves the next question once the current one has been answered
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/next [post]
func (h *PracticeHandler) NextQuestion(c *fiber.Ctx) error {
	view, err := h.service.Next(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// PauseSession godoc
// @Summary Pause the session clock
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/pause [post]
func (h *PracticeHandler) PauseSession(c *fiber.Ctx) error {
	view, err := h.service.Pause(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// ResumeSession godoc
// @Summary Resume the session clock
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionView
// @Failure 409 {object} middleware.ErrorResponse
// @Router /sessions/{id}/resume [post]
func (h *PracticeHandler) ResumeSession(c *fiber.Ctx) error {
	view, err := h.service.Resume(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(view)
}

// EndSession godoc
// @Summary End the session
// @Description Stops the clock, returns the summary and discards the session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} dto.SessionResultResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/end [post]
func (h *PracticeHandler) EndSession(c *fiber.Ctx) error {
	result, err := h.service.End(c.UserContext(), sessionID(c))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

// RestartSession godoc
// @Summary Restart the session
// @Description Replaces the session with a fresh one over the same scope
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body dto.RestartSessionRequest false "Reload the pool from the content store"
// @Success 201 {object} dto.SessionView
// @Failure 404 {object} middleware.ErrorResponse
// @Router /sessions/{id}/restart [post]
func (h *PracticeHandler) RestartSession(c *fiber.Ctx) error {
	var req dto.RestartSessionRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewInvalidInputError("Invalid request body")
		}
	}

	view, err := h.service.Restart(c.UserContext(), sessionID(c), req.Reload)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// PreviousAttempts godoc
// @Summary List previous attempts
// @Description Returns the caller's earlier attempts on the given questions, most recent first
// @Tags attempts
// @Produce json
// @Param question_ids query string true "Comma separated question IDs"
// @Param Authorization header string true "Bearer identity token"
// @Success 200 {object} dto.PreviousAttemptsResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /attempts/previous [get]
func (h *PracticeHandler) PreviousAttempts(c *fiber.Ctx) error {
	ids, _ := c.Locals(middleware.QuestionIDsKey).([]string)
	resp, err := h.service.PreviousAttempts(c.UserContext(), middleware.UserID(c), ids)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
