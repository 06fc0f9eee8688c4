package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type InterviewHandler struct {
	repo    repositories.InterviewRepository
	worker  services.Worker
	reports services.ReportRenderer
	log     *zap.Logger
}

func NewInterviewHandler(
	repo repositories.InterviewRepository,
	worker services.Worker,
	reports services.ReportRenderer,
	log *zap.Logger,
) *InterviewHandler {
	return &InterviewHandler{
		repo:    repo,
		worker:  worker,
		reports: reports,
		log:     log,
	}
}

// HandleCreate handles POST /interviews
func (h *InterviewHandler) HandleCreate(c *fiber.Ctx) error {
	var req models.CreateInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobDescription) == "" || strings.TrimSpace(req.CVText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Job description and CV are required",
		})
	}

	interview := &models.Interview{
		ID:             uuid.New(),
		JobDescription: req.JobDescription,
		CVText:         req.CVText,
		Status:         models.StatusInProgress,
		ResumeAnalysis: req.ResumeAnalysis,
	}

	if err := h.repo.Create(c.UserContext(), interview); err != nil {
		h.log.Error("failed to create interview", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create interview",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.InterviewResponse{
		ID:     interview.ID.String(),
		Status: string(interview.Status),
	})
}

// HandleGet handles GET /interviews/:id
func (h *InterviewHandler) HandleGet(c *fiber.Ctx) error {
	interview, err := h.find(c)
	if err != nil {
		return err
	}
	if interview == nil {
		return nil
	}

	return c.JSON(interview)
}

// HandleComplete handles POST /interviews/:id/complete
func (h *InterviewHandler) HandleComplete(c *fiber.Ctx) error {
	interview, err := h.find(c)
	if err != nil || interview == nil {
		return err
	}

	var req models.CompleteInterviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Messages are required",
		})
	}

	if err := models.ValidateMessages(req.Messages); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if interview.Status == models.StatusProcessing {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Interview is already being evaluated",
		})
	}

	if err := h.repo.SaveTranscript(c.UserContext(), interview.ID, req.Messages, req.Timings); err != nil {
		h.log.Error("failed to save transcript", zap.String("interview_id", interview.ID.String()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save interview",
		})
	}

	h.worker.EnqueueJob(interview.ID)

	return c.Status(fiber.StatusAccepted).JSON(models.InterviewResponse{
		ID:     interview.ID.String(),
		Status: string(models.StatusQueued),
	})
}

// HandleReport handles GET /interviews/:id/report
func (h *InterviewHandler) HandleReport(c *fiber.Ctx) error {
	interview, err := h.find(c)
	if err != nil || interview == nil {
		return err
	}

	page, err := h.reports.HTML(interview)
	if errors.Is(err, services.ErrReportNotReady) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "Interview evaluation is not completed",
			"status": interview.Status,
		})
	}
	if err != nil {
		h.log.Error("failed to render report", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to render report",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(page)
}

// find loads the interview named by the :id param. When it returns a nil
// interview the error response has already been written.
func (h *InterviewHandler) find(c *fiber.Ctx) (*models.Interview, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid interview ID format",
		})
	}

	interview, err := h.repo.FindByID(c.UserContext(), id)
	if errors.Is(err, repositories.ErrInterviewNotFound) {
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Interview not found",
		})
	}
	if err != nil {
		h.log.Error("failed to load interview", zap.Error(err))
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load interview",
		})
	}

	return interview, nil
}
