package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type EvaluationHandler struct {
	evaluator services.EvaluatorService
	log       *zap.Logger
}

func NewEvaluationHandler(evaluator services.EvaluatorService, log *zap.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluator: evaluator,
		log:       log,
	}
}

// HandleScore handles POST /score
func (h *EvaluationHandler) HandleScore(c *fiber.Ctx) error {
	var req models.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobDescription) == "" || strings.TrimSpace(req.CVText) == "" ||
		req.Messages == nil || req.ResponseTimes == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required parameters",
		})
	}

	result, err := h.evaluator.Score(c.UserContext(), &req)
	if err != nil {
		h.log.Error("interview scoring failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(result)
}

// HandleEvaluate handles POST /evaluate
func (h *EvaluationHandler) HandleEvaluate(c *fiber.Ctx) error {
	var req models.EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	if err := models.ValidateMessages(req.Messages); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	evaluation, err := h.evaluator.Evaluate(c.UserContext(), &req)
	if err != nil {
		h.log.Error("interview evaluation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate interview",
		})
	}

	return c.JSON(evaluation)
}
