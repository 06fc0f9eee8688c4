package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type ResumeMatcher interface {
	AnalyzeResume(ctx context.Context, jobDescription, resume string) (*models.ResumeAnalysis, error)
}

type resumeMatcher struct {
	llm           LLMService
	cache         ResponseCache
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

func NewResumeMatcher(llm LLMService, cache ResponseCache, maxRetries int, log *zap.Logger) ResumeMatcher {
	if cache == nil {
		cache = nopCache{}
	}
	return &resumeMatcher{
		llm:           llm,
		cache:         cache,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log,
	}
}

// AnalyzeResume returns the model's analysis, or the default analysis when
// the output cannot be parsed. Only transport errors are returned.
func (m *resumeMatcher) AnalyzeResume(ctx context.Context, jobDescription, resume string) (*models.ResumeAnalysis, error) {
	key := CacheKey("analyze-resume", m.llm.Model(), jobDescription, resume)

	var cached models.ResumeAnalysis
	if ok, err := m.cache.Get(ctx, key, &cached); err != nil {
		m.log.Warn("resume cache read failed", zap.Error(err))
	} else if ok {
		m.log.Debug("resume analysis served from cache")
		return &cached, nil
	}

	response, err := GenerateWithRetry(ctx, m.llm, ChatRequest{
		System:   m.promptBuilder.JSONOnlySystem(),
		Messages: UserPrompt(m.promptBuilder.BuildResumeAnalysisPrompt(jobDescription, resume)),
		JSON:     true,
	}, m.maxRetries, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to generate resume analysis: %w", err)
	}

	var analysis models.ResumeAnalysis
	if err := parseJSONResponse(response, &analysis); err != nil {
		logFallback(m.log, "analyze-resume", response, err)
		return models.DefaultResumeAnalysis(), nil
	}

	if err := m.cache.Put(ctx, key, &analysis); err != nil {
		m.log.Warn("resume cache write failed", zap.Error(err))
	}

	return &analysis, nil
}
