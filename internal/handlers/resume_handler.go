package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type ResumeHandler struct {
	matcher     services.ResumeMatcher
	extractor   services.ResumeExtractor
	maxFileSize int64
	log         *zap.Logger
}

func NewResumeHandler(
	matcher services.ResumeMatcher,
	extractor services.ResumeExtractor,
	maxFileSize int64,
	log *zap.Logger,
) *ResumeHandler {
	return &ResumeHandler{
		matcher:     matcher,
		extractor:   extractor,
		maxFileSize: maxFileSize,
		log:         log,
	}
}

// HandleAnalyze handles POST /analyze-resume
func (h *ResumeHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req models.AnalyzeResumeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobDescription) == "" || strings.TrimSpace(req.Resume) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Job description and resume are required",
		})
	}

	analysis, err := h.matcher.AnalyzeResume(c.UserContext(), req.JobDescription, req.Resume)
	if err != nil {
		h.log.Error("resume analysis failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to analyze resume",
		})
	}

	return c.JSON(analysis)
}

// HandleExtract handles POST /extract-resume
func (h *ResumeHandler) HandleExtract(c *fiber.Ctx) error {
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid content type. Expected multipart/form-data",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	if file.Header.Get(fiber.HeaderContentType) != "application/pdf" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only PDF files are supported",
		})
	}

	if h.maxFileSize > 0 && file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	ctx := c.UserContext()

	text, err := h.extractor.ExtractText(ctx, file)
	if errors.Is(err, services.ErrEmptyResume) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "The PDF appears to be empty or couldn't be parsed",
		})
	}
	if err != nil {
		return h.extractFailed(c, err)
	}

	details, err := h.extractor.Structure(ctx, text)
	if err != nil {
		return h.extractFailed(c, err)
	}

	return c.JSON(models.ExtractResumeResponse{
		Success:          true,
		ExtractedDetails: details,
	})
}

func (h *ResumeHandler) extractFailed(c *fiber.Ctx, err error) error {
	h.log.Error("resume extraction failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Failed to process resume",
		"details": err.Error(),
	})
}
