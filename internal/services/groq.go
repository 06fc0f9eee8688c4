package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

// groqService talks to Groq through its OpenAI compatible endpoint.
type groqService struct {
	client *goopenai.Client
	model  string
	log    *zap.Logger
}

func NewGroqService(apiKey, baseURL, model string, log *zap.Logger) (LLMService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("GROQ_API_KEY is required for the groq provider")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &groqService{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
		log:    logger.WithLLM(log, config.ProviderGroq, model),
	}, nil
}

func (g *groqService) Provider() string { return config.ProviderGroq }

func (g *groqService) Model() string { return g.model }

// Generate implements LLMService.
func (g *groqService) Generate(ctx context.Context, req ChatRequest) (string, error) {
	chatReq := g.chatRequest(req, false)

	g.log.Debug("groq request", zap.Int("messages", len(chatReq.Messages)))

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices found: %w", ErrEmptyResponse)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}

	g.log.Debug("groq response", zap.String("text", logger.Truncate(text, 200)))

	return text, nil
}

// Stream implements LLMService.
func (g *groqService) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := g.client.CreateChatCompletionStream(ctx, g.chatRequest(req, true))
		if err != nil {
			yield("", fmt.Errorf("error sending request: %w", err))
			return
		}
		defer stream.Close()

		for {
			response, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				if errors.Is(err, context.Canceled) {
					return
				}
				yield("", fmt.Errorf("error receiving response: %w", err))
				return
			}

			if len(response.Choices) == 0 {
				continue
			}

			if chunk := response.Choices[0].Delta.Content; chunk != "" {
				if !yield(chunk, nil) {
					return
				}
			}
		}
	}
}

func (g *groqService) chatRequest(req ChatRequest, stream bool) goopenai.ChatCompletionRequest {
	system, conversation := splitSystem(req)

	msgs := make([]goopenai.ChatCompletionMessage, 0, len(conversation)+1)
	if system != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, msg := range conversation {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	chatReq := goopenai.ChatCompletionRequest{
		Model:    g.model,
		Messages: msgs,
		Stream:   stream,
	}
	if req.Temperature != nil {
		chatReq.Temperature = *req.Temperature
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = int(req.MaxTokens)
	}
	if req.JSON {
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return chatReq
}
