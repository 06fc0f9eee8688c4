package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tmaxmax/go-sse"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

var (
	deltaEvent = sse.Type("delta")
	doneEvent  = sse.Type("done")
	errorEvent = sse.Type("error")
)

// turnSummary is the payload of the final "done" event.
type turnSummary struct {
	QuestionCount  int    `json:"questionCount"`
	Complete       bool   `json:"complete"`
	ClosingMessage string `json:"closingMessage,omitempty"`
}

type ChatHandler struct {
	conductor     services.Conductor
	streamTimeout time.Duration
	log           *zap.Logger
}

func NewChatHandler(conductor services.Conductor, streamTimeout time.Duration, log *zap.Logger) *ChatHandler {
	if streamTimeout <= 0 {
		streamTimeout = 5 * time.Minute
	}
	return &ChatHandler{
		conductor:     conductor,
		streamTimeout: streamTimeout,
		log:           log,
	}
}

// HandleChat handles POST /chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	return h.handleTurn(c, services.ModeConversational)
}

// HandleInterview handles POST /interview
func (h *ChatHandler) HandleInterview(c *fiber.Ctx) error {
	return h.handleTurn(c, services.ModeStructured)
}

func (h *ChatHandler) handleTurn(c *fiber.Ctx, mode services.Mode) error {
	var req models.TurnRequest
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

	input := services.TurnInput{
		Mode:           mode,
		Messages:       req.Messages,
		JobDescription: req.JobDescription,
		CVText:         req.CVText,
	}

	log := h.log.With(zap.String("mode", string(mode)), zap.Int("messages", len(req.Messages)))

	if !req.Streaming() {
		resp, err := h.conductor.Reply(c.UserContext(), input)
		if err != nil {
			log.Error("interview turn failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate interview response",
			})
		}
		return c.JSON(resp)
	}

	turn := h.conductor.Prepare(input)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	// The fiber context is released once the handler returns, so the
	// stream gets its own deadline.
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithTimeout(context.Background(), h.streamTimeout)
		defer cancel()

		h.streamTurn(ctx, w, turn, log)
	})

	return nil
}

func (h *ChatHandler) streamTurn(ctx context.Context, w *bufio.Writer, turn services.PreparedTurn, log *zap.Logger) {
	var reply strings.Builder

	for chunk, err := range h.conductor.Stream(ctx, turn) {
		if err != nil {
			log.Error("interview stream failed", zap.Error(err))
			_ = writeEvent(w, errorEvent, "Failed to generate interview response")
			return
		}

		reply.WriteString(chunk)
		if err := writeEvent(w, deltaEvent, chunk); err != nil {
			log.Debug("client went away", zap.Error(err))
			return
		}
	}

	if strings.TrimSpace(reply.String()) == "" {
		log.Error("interview stream failed", zap.Error(services.ErrEmptyResponse))
		_ = writeEvent(w, errorEvent, "Failed to generate interview response")
		return
	}

	result := turn.Result(reply.String())
	payload, err := json.Marshal(turnSummary{
		QuestionCount:  result.QuestionCount,
		Complete:       result.Complete,
		ClosingMessage: result.ClosingMessage,
	})
	if err != nil {
		log.Error("failed to encode turn summary", zap.Error(err))
		return
	}

	if err := writeEvent(w, doneEvent, string(payload)); err != nil {
		log.Debug("client went away", zap.Error(err))
	}
}

func writeEvent(w *bufio.Writer, typ sse.EventType, data string) error {
	msg := sse.Message{Type: typ}
	msg.AppendData(data)

	if _, err := msg.WriteTo(w); err != nil {
		return err
	}
	return w.Flush()
}
