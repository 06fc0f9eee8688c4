package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/models"
)

var ErrEmptyResponse = errors.New("empty response from model")

// ChatRequest is a provider independent completion request. System is sent
// as the provider's system instruction; system messages inside Messages are
// merged into it by providers that only accept a single instruction.
type ChatRequest struct {
	System      string
	Messages    []models.Message
	Temperature *float32
	MaxTokens   int32
	JSON        bool
}

type LLMService interface {
	Generate(ctx context.Context, req ChatRequest) (string, error)
	Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error]
	Provider() string
	Model() string
}

// Embedder turns text into vectors for the knowledge base.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Temperature is a helper for ChatRequest literals.
func Temperature(t float32) *float32 {
	return &t
}

// UserPrompt wraps a single user prompt.
func UserPrompt(prompt string) []models.Message {
	return []models.Message{{Role: models.RoleUser, Content: prompt}}
}

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultGroqModel   = "llama-3.3-70b-versatile"
	defaultOllamaModel = "llama3.1"
)

// NewLLMService builds the provider selected by cfg.Provider.
func NewLLMService(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (LLMService, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiService(ctx, cfg.GeminiAPIKey, orDefault(cfg.Model, defaultGeminiModel), log)
	case config.ProviderGroq:
		return NewGroqService(cfg.GroqAPIKey, cfg.GroqBaseURL, orDefault(cfg.Model, defaultGroqModel), log)
	case config.ProviderOllama:
		return NewOllamaService(cfg.OllamaHost, orDefault(cfg.Model, defaultOllamaModel), log)
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}

// GenerateWithRetry calls Generate up to attempts times, stopping early when
// ctx is done.
func GenerateWithRetry(ctx context.Context, llm LLMService, req ChatRequest, attempts int, log *zap.Logger) (string, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := llm.Generate(ctx, req)
		if err == nil {
			return result, nil
		}

		lastErr = err

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		if attempt < attempts {
			log.Warn("llm attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	if attempts == 1 {
		return "", lastErr
	}
	return "", fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}

// Collect drains a stream into a single string.
func Collect(stream iter.Seq2[string, error]) (string, error) {
	var sb strings.Builder
	for chunk, err := range stream {
		if err != nil {
			return sb.String(), err
		}
		sb.WriteString(chunk)
	}
	return sb.String(), nil
}

// splitSystem separates system messages from the conversation and joins
// them with the explicit system instruction.
func splitSystem(req ChatRequest) (string, []models.Message) {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(req.System); s != "" {
		parts = append(parts, s)
	}

	conversation := make([]models.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		if msg.Role == models.RoleSystem {
			if s := strings.TrimSpace(msg.Content); s != "" {
				parts = append(parts, s)
			}
			continue
		}
		conversation = append(conversation, msg)
	}

	return strings.Join(parts, "\n\n"), conversation
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
