package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type QuestionHandler struct {
	generator services.QuestionGenerator
	log       *zap.Logger
}

func NewQuestionHandler(generator services.QuestionGenerator, log *zap.Logger) *QuestionHandler {
	return &QuestionHandler{
		generator: generator,
		log:       log,
	}
}

// HandleGenerate handles POST /generate-questions
func (h *QuestionHandler) HandleGenerate(c *fiber.Ctx) error {
	var req models.GenerateQuestionsRequest
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

	questions, err := h.generator.GenerateQuestions(c.UserContext(), req.JobDescription, req.CVText)
	if err != nil {
		h.log.Error("question generation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate interview questions",
		})
	}

	return c.JSON(models.QuestionsResponse{Questions: questions})
}
