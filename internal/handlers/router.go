package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"go.uber.org/zap"
)

const minBodyLimit = 4 * 1024 * 1024

type AppConfig struct {
	MaxFileSize int64
	AccessLog   bool

	// LLMTimeout bounds the request context of every model-backed route.
	// Zero leaves requests without a deadline.
	LLMTimeout time.Duration
	Log        *zap.Logger
}

type Handlers struct {
	Resume     *ResumeHandler
	Questions  *QuestionHandler
	Chat       *ChatHandler
	Evaluation *EvaluationHandler
	Interviews *InterviewHandler
}

// NewApp creates the Fiber app with middleware and every API route.
func NewApp(cfg AppConfig, h Handlers) *fiber.App {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}

	bodyLimit := int(cfg.MaxFileSize) * 2
	if bodyLimit < minBodyLimit {
		bodyLimit = minBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      "AI Interviewer API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    bodyLimit,
		ErrorHandler: errorHandler(log),
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	llm := withDeadline(cfg.LLMTimeout)
	api.Post("/analyze-resume", llm(h.Resume.HandleAnalyze))
	api.Post("/extract-resume", llm(h.Resume.HandleExtract))
	api.Post("/generate-questions", llm(h.Questions.HandleGenerate))
	api.Post("/chat", llm(h.Chat.HandleChat))
	api.Post("/interview", llm(h.Chat.HandleInterview))
	api.Post("/evaluate", llm(h.Evaluation.HandleEvaluate))
	api.Post("/score", llm(h.Evaluation.HandleScore))

	if h.Interviews != nil {
		api.Post("/interviews", h.Interviews.HandleCreate)
		api.Get("/interviews/:id", h.Interviews.HandleGet)
		api.Post("/interviews/:id/complete", h.Interviews.HandleComplete)
		api.Get("/interviews/:id/report", h.Interviews.HandleReport)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "AI Interviewer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/analyze-resume",
				"POST /api/v1/extract-resume",
				"POST /api/v1/generate-questions",
				"POST /api/v1/chat",
				"POST /api/v1/interview",
				"POST /api/v1/evaluate",
				"POST /api/v1/score",
				"POST /api/v1/interviews",
				"GET /api/v1/interviews/:id",
				"POST /api/v1/interviews/:id/complete",
				"GET /api/v1/interviews/:id/report",
			},
		})
	})

	return app
}

func withDeadline(d time.Duration) func(fiber.Handler) fiber.Handler {
	return func(h fiber.Handler) fiber.Handler {
		if d <= 0 {
			return h
		}
		return timeout.NewWithContext(h, d)
	}
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  code,
		})
	}
}
