package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// finishTimeout bounds the final status write, which runs even when the
// job context was cancelled.
const finishTimeout = 10 * time.Second

// InterviewProcessor evaluates a persisted, completed interview.
type InterviewProcessor interface {
	ProcessInterview(ctx context.Context, id uuid.UUID) error
}

type interviewProcessor struct {
	repo      repositories.InterviewRepository
	evaluator EvaluatorService
	matcher   ResumeMatcher
	log       *zap.Logger
}

func NewInterviewProcessor(
	repo repositories.InterviewRepository,
	evaluator EvaluatorService,
	matcher ResumeMatcher,
	log *zap.Logger,
) InterviewProcessor {
	return &interviewProcessor{
		repo:      repo,
		evaluator: evaluator,
		matcher:   matcher,
		log:       log,
	}
}

// ProcessInterview moves the interview through processing to completed,
// or to failed with the error message.
func (p *interviewProcessor) ProcessInterview(ctx context.Context, id uuid.UUID) error {
	log := p.log.With(zap.String("interview_id", id.String()))

	if err := p.repo.UpdateStatus(ctx, id, models.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	log.Info("evaluating interview")

	interview, err := p.repo.FindByID(ctx, id)
	if err != nil {
		p.fail(ctx, log, id, err)
		return fmt.Errorf("failed to get interview: %w", err)
	}

	if interview.ResumeAnalysis == nil && p.matcher != nil {
		analysis, err := p.matcher.AnalyzeResume(ctx, interview.JobDescription, interview.CVText)
		if err != nil {
			// The evaluation is still useful without a match score.
			log.Warn("resume analysis failed", zap.Error(err))
		} else if err := p.repo.SaveResumeAnalysis(ctx, id, analysis); err != nil {
			log.Warn("failed to save resume analysis", zap.Error(err))
		}
	}

	result, err := p.evaluator.Score(ctx, &models.ScoreRequest{
		JobDescription: interview.JobDescription,
		CVText:         interview.CVText,
		Messages:       interview.Transcript,
		ResponseTimes:  interview.Timings,
	})
	if err != nil {
		p.fail(ctx, log, id, err)
		return fmt.Errorf("failed to score interview: %w", err)
	}

	saveCtx, cancel := finishContext(ctx)
	defer cancel()

	if err := p.repo.UpdateResult(saveCtx, id, result); err != nil {
		p.fail(ctx, log, id, err)
		return fmt.Errorf("failed to save results: %w", err)
	}

	log.Info("interview evaluated", zap.Float64("overall_score", float64(result.OverallScore)))
	return nil
}

func (p *interviewProcessor) fail(ctx context.Context, log *zap.Logger, id uuid.UUID, cause error) {
	ctx, cancel := finishContext(ctx)
	defer cancel()

	if err := p.repo.UpdateError(ctx, id, cause.Error()); err != nil {
		log.Error("failed to record interview error", zap.Error(err))
	}
}

// finishContext detaches from the job's cancellation so a shutdown does
// not leave the interview in processing.
func finishContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
}
