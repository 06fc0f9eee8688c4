package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/config"
	"alfredoptarigan/ai-interviewer/internal/logger"
)

type ollamaService struct {
	client *api.Client
	model  string
	log    *zap.Logger
}

func NewOllamaService(host, model string, log *zap.Logger) (LLMService, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST: %w", err)
	}

	return &ollamaService{
		client: api.NewClient(u, &http.Client{}),
		model:  model,
		log:    logger.WithLLM(log, config.ProviderOllama, model),
	}, nil
}

func (o *ollamaService) Provider() string { return config.ProviderOllama }

func (o *ollamaService) Model() string { return o.model }

// Generate implements LLMService.
func (o *ollamaService) Generate(ctx context.Context, req ChatRequest) (string, error) {
	chatReq := o.chatRequest(req, false)

	var sb strings.Builder
	if err := o.client.Chat(ctx, chatReq, func(res api.ChatResponse) error {
		sb.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}

	o.log.Debug("ollama response", zap.String("text", logger.Truncate(text, 200)))

	return text, nil
}

// Stream implements LLMService.
func (o *ollamaService) Stream(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		stopped := false
		if err := o.client.Chat(ctx, o.chatRequest(req, true), func(res api.ChatResponse) error {
			if stopped || res.Message.Content == "" {
				return nil
			}
			if !yield(res.Message.Content, nil) {
				stopped = true
				cancel()
			}
			return nil
		}); err != nil {
			if stopped || errors.Is(err, context.Canceled) {
				return
			}
			yield("", fmt.Errorf("error sending request: %w", err))
		}
	}
}

func (o *ollamaService) chatRequest(req ChatRequest, stream bool) *api.ChatRequest {
	system, conversation := splitSystem(req)

	msgs := make([]api.Message, 0, len(conversation)+1)
	if system != "" {
		msgs = append(msgs, api.Message{Role: "system", Content: system})
	}
	for _, msg := range conversation {
		msgs = append(msgs, api.Message{Role: string(msg.Role), Content: msg.Content})
	}

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	chatReq := &api.ChatRequest{
		Model:    o.model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}
	if req.JSON {
		chatReq.Format = json.RawMessage(`"json"`)
	}

	return chatReq
}
