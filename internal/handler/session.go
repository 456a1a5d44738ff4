package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"tubequiz/internal/domain"
	"tubequiz/internal/dto"
	"tubequiz/internal/logger"
	"tubequiz/internal/middleware"
	"tubequiz/internal/service"
	"tubequiz/internal/validation"
)

// SessionHandler handles quiz session HTTP requests
type SessionHandler struct {
	pipeline       service.PipelineService
	sessions       service.SessionService
	validator      *validation.Validator
	requestTimeout time.Duration
}

// NewSessionHandler creates a new SessionHandler instance
func NewSessionHandler(
	pipeline service.PipelineService,
	sessions service.SessionService,
	validator *validation.Validator,
	requestTimeout time.Duration,
) *SessionHandler {
	return &SessionHandler{
		pipeline:       pipeline,
		sessions:       sessions,
		validator:      validator,
		requestTimeout: requestTimeout,
	}
}

func (h *SessionHandler) context(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	if h.requestTimeout <= 0 {
		return context.WithCancel(c.UserContext())
	}
	return context.WithTimeout(c.UserContext(), h.requestTimeout)
}

// CreateFromURL handles POST /api/sessions
func (h *SessionHandler) CreateFromURL(c *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateVideoURL(req.URL); len(errs) > 0 {
		return errs
	}

	ctx, cancel := h.context(c)
	defer cancel()

	result, err := h.pipeline.FromURL(ctx, req.URL)
	if err != nil {
		return err
	}
	session, err := h.sessions.Create(ctx, result)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSessionResponse(session))
}

// CreateFromUpload handles POST /api/sessions/upload
func (h *SessionHandler) CreateFromUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("file")}
	}
	if errs := h.validator.ValidateUpload(fh.Filename, fh.Size); len(errs) > 0 {
		return errs
	}

	f, err := fh.Open()
	if err != nil {
		return domain.NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()

	ctx, cancel := h.context(c)
	defer cancel()

	logger.Get().Info("Media upload received",
		zap.String("file_name", fh.Filename),
		zap.Int64("size", fh.Size))

	result, err := h.pipeline.FromMedia(ctx, domain.MediaUpload{FileName: fh.Filename, Size: fh.Size, Reader: f})
	if err != nil {
		return err
	}
	session, err := h.sessions.Create(ctx, result)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewSessionResponse(session))
}

// GetSession handles GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	id := c.Locals(middleware.LocalSessionID).(string)

	session, err := h.sessions.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSessionResponse(session))
}

// SubmitAnswers handles POST /api/sessions/:id/answers
func (h *SessionHandler) SubmitAnswers(c *fiber.Ctx) error {
	id := c.Locals(middleware.LocalSessionID).(string)

	var req dto.SubmitAnswersRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateAnswers(req.Answers); len(errs) > 0 {
		return errs
	}

	ctx, cancel := h.context(c)
	defer cancel()

	session, err := h.sessions.SubmitAnswers(ctx, id, req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewGradeResponse(session.Result))
}

// Ask handles POST /api/sessions/:id/ask
func (h *SessionHandler) Ask(c *fiber.Ctx) error {
	id := c.Locals(middleware.LocalSessionID).(string)

	var req dto.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateQuestion(req.Question); len(errs) > 0 {
		return errs
	}

	ctx, cancel := h.context(c)
	defer cancel()

	answer, err := h.sessions.Ask(ctx, id, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(dto.AskResponse{Answer: answer})
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *fiber.Ctx) error {
	id := c.Locals(middleware.LocalSessionID).(string)

	if err := h.sessions.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Summarize handles POST /api/summaries
func (h *SessionHandler) Summarize(c *fiber.Ctx) error {
	var req dto.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid request body")
	}
	if errs := h.validator.ValidateVideoURL(req.URL); len(errs) > 0 {
		return errs
	}

	ctx, cancel := h.context(c)
	defer cancel()

	result, err := h.pipeline.Summarize(ctx, req.URL)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewSummaryResponse(result))
}
