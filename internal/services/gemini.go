package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
	"alfredoptarigan/ai-interviewer/internal/models"
)

const maxEmbeddingBytes = 40000

type GeminiService interface {
	LLMService
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
	log        *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey, modelName string, log *zap.Logger) (GeminiService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GEMINI_API_KEY is required for the gemini provider")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: "text-embedding-004",
		log:        logger.WithLLM(log, config.ProviderGemini, modelName),
	}, nil
}

func (g *geminiService) Provider() string { return config.ProviderGemini }

func (g *geminiService) Model() string { return g.modelName }

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// max ~10000 tokens for embedding
	text = truncateUTF8(text, maxEmbeddingBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// Generate implements LLMService.
func (g *geminiService) Generate(ctx context.Context, req ChatRequest) (string, error) {
	contents, cfg := g.buildRequest(req)

	g.log.Debug("gemini request",
		zap.Int("messages", len(contents)),
		zap.String("system", logger.Truncate(systemText(cfg), 200)),
	)

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response): %w", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	g.log.Debug("gemini response", zap.String("text", logger.Truncate(text, 200)))

	return text, nil
}

// Stream implements LLMService.
func (g *geminiService) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		contents, cfg := g.buildRequest(req)

		for resp, err := range g.client.Models.GenerateContentStream(ctx, g.modelName, contents, cfg) {
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				yield("", fmt.Errorf("failed to stream text: %w", err))
				return
			}
			if resp == nil {
				continue
			}
			if chunk := resp.Text(); chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

func (g *geminiService) buildRequest(req ChatRequest) ([]*genai.Content, *genai.GenerateContentConfig) {
	system, conversation := splitSystem(req)

	contents := make([]*genai.Content, 0, len(conversation))
	for _, msg := range conversation {
		role := genai.Role(genai.RoleUser)
		if msg.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Content, role))
	}

	// Gemini needs at least one turn besides the system instruction.
	if len(contents) == 0 {
		contents = append(contents, genai.NewContentFromText("Begin.", genai.RoleUser))
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:     req.Temperature,
		MaxOutputTokens: 4096,
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = req.MaxTokens
	}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	return contents, cfg
}

func systemText(cfg *genai.GenerateContentConfig) string {
	if cfg == nil || cfg.SystemInstruction == nil || len(cfg.SystemInstruction.Parts) == 0 {
		return ""
	}
	return cfg.SystemInstruction.Parts[0].Text
}

// truncateUTF8 cuts s to at most limit bytes without splitting a rune.
func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
