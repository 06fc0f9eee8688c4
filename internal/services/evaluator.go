package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

const scoreCategoryCount = 5

type EvaluatorService interface {
	// Score rates the interview on the five 0-100 categories.
	Score(ctx context.Context, req *models.ScoreRequest) (*models.EvaluationResult, error)
	// Evaluate produces the quick 0-10 evaluation with strengths and
	// improvements.
	Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.InterviewEvaluation, error)
}

type evaluatorService struct {
	llm           LLMService
	knowledge     KnowledgeBase
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

func NewEvaluatorService(llm LLMService, knowledge KnowledgeBase, maxRetries int, log *zap.Logger) EvaluatorService {
	return &evaluatorService{
		llm:           llm,
		knowledge:     knowledge,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log,
	}
}

// Score implements EvaluatorService. Output that is not a five-category
// result is replaced by the default evaluation.
func (e *evaluatorService) Score(ctx context.Context, req *models.ScoreRequest) (*models.EvaluationResult, error) {
	stats := models.SummarizeTimings(req.ResponseTimes)
	transcript := models.FormatTranscript(req.Messages, "\n\n")

	rubric := guidance(ctx, e.knowledge, e.log, DocTypeEvaluationRubric,
		e.promptBuilder.BuildRetrievalQuery(DocTypeEvaluationRubric, req.JobDescription))
	prompt := e.promptBuilder.BuildScorePrompt(req.JobDescription, req.CVText, transcript, stats, rubric)

	e.log.Debug("score prompt built", zap.Int("chars", len(prompt)), zap.Int("timings", stats.Count))

	response, err := GenerateWithRetry(ctx, e.llm, ChatRequest{
		Messages:    UserPrompt(prompt),
		Temperature: Temperature(0.3),
		MaxTokens:   1000,
	}, e.maxRetries, e.log)
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview score: %w", err)
	}

	var result models.EvaluationResult
	if err := parseJSONResponse(response, &result); err != nil {
		logFallback(e.log, "score", response, err)
		return models.DefaultEvaluation(stats.AverageSeconds), nil
	}

	if len(result.Scores) != scoreCategoryCount {
		logFallback(e.log, "score", response, fmt.Errorf("expected %d score categories, got %d", scoreCategoryCount, len(result.Scores)))
		return models.DefaultEvaluation(stats.AverageSeconds), nil
	}

	if result.OverallScore == 0 {
		result.OverallScore = result.WeightedOverall()
	}

	return &result, nil
}

// Evaluate implements EvaluatorService.
func (e *evaluatorService) Evaluate(ctx context.Context, req *models.EvaluateRequest) (*models.InterviewEvaluation, error) {
	avg := models.SummarizeTimings(req.Timings).AverageSeconds

	rubric := guidance(ctx, e.knowledge, e.log, DocTypeEvaluationRubric,
		e.promptBuilder.BuildRetrievalQuery(DocTypeEvaluationRubric, req.JobDescription))

	response, err := GenerateWithRetry(ctx, e.llm, ChatRequest{
		System:      e.promptBuilder.BuildQuickEvaluationPrompt(req.JobDescription, req.CVText, avg, rubric),
		Messages:    req.Messages,
		Temperature: Temperature(0.3),
		JSON:        true,
	}, e.maxRetries, e.log)
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview evaluation: %w", err)
	}

	var evaluation models.InterviewEvaluation
	if err := parseJSONResponse(response, &evaluation); err != nil {
		logFallback(e.log, "evaluate", response, err)
		return models.DefaultInterviewEvaluation(avg), nil
	}

	return evaluation.WithMetrics(avg), nil
}
