package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var ErrInterviewNotFound = errors.New("interview not found")

// StaleProcessingAfter is how long an interview may stay in processing
// before the poller picks it up again.
const StaleProcessingAfter = 15 * time.Minute

type InterviewRepository interface {
	Create(ctx context.Context, interview *models.Interview) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.InterviewStatus) error
	SaveTranscript(ctx context.Context, id uuid.UUID, transcript []models.Message, timings models.ResponseTimes) error
	SaveResumeAnalysis(ctx context.Context, id uuid.UUID, analysis *models.ResumeAnalysis) error
	UpdateResult(ctx context.Context, id uuid.UUID, result *models.EvaluationResult) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindPendingJobs(ctx context.Context, limit int) ([]models.Interview, error)
}

type interviewRepository struct {
	db *gorm.DB
}

func NewInterviewRepository(db *gorm.DB) InterviewRepository {
	return &interviewRepository{db: db}
}

func (r *interviewRepository) Create(ctx context.Context, interview *models.Interview) error {
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	if interview.Status == "" {
		interview.Status = models.StatusInProgress
	}

	if err := r.db.WithContext(ctx).Create(interview).Error; err != nil {
		return fmt.Errorf("failed to create interview: %w", err)
	}
	return nil
}

func (r *interviewRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Interview, error) {
	var interview models.Interview
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&interview).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInterviewNotFound
		}
		return nil, fmt.Errorf("failed to find interview: %w", err)
	}
	return &interview, nil
}

func (r *interviewRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InterviewStatus) error {
	return r.update(ctx, id, &models.Interview{Status: status}, "status")
}

// SaveTranscript stores the finished conversation and queues the interview
// for evaluation.
func (r *interviewRepository) SaveTranscript(ctx context.Context, id uuid.UUID, transcript []models.Message, timings models.ResponseTimes) error {
	return r.update(ctx, id, &models.Interview{
		Transcript:   transcript,
		Timings:      timings,
		Status:       models.StatusQueued,
		ErrorMessage: nil,
	}, "transcript", "timings", "status", "error_message")
}

func (r *interviewRepository) SaveResumeAnalysis(ctx context.Context, id uuid.UUID, analysis *models.ResumeAnalysis) error {
	return r.update(ctx, id, &models.Interview{ResumeAnalysis: analysis}, "resume_analysis")
}

func (r *interviewRepository) UpdateResult(ctx context.Context, id uuid.UUID, result *models.EvaluationResult) error {
	overall := float64(result.OverallScore)
	summary := result.Summary

	return r.update(ctx, id, &models.Interview{
		Scores:       result.Scores,
		OverallScore: &overall,
		Summary:      &summary,
		Status:       models.StatusCompleted,
	}, "scores", "overall_score", "summary", "status")
}

func (r *interviewRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, id, &models.Interview{
		Status:       models.StatusFailed,
		ErrorMessage: &errorMsg,
	}, "status", "error_message")
}

// FindPendingJobs returns queued interviews and those left in processing
// for longer than StaleProcessingAfter.
func (r *interviewRepository) FindPendingJobs(ctx context.Context, limit int) ([]models.Interview, error) {
	var interviews []models.Interview
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Or("status = ? AND updated_at < ?", models.StatusProcessing, time.Now().Add(-StaleProcessingAfter)).
		Order("created_at ASC").
		Limit(limit).
		Find(&interviews).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find pending jobs: %w", err)
	}

	return interviews, nil
}

// update writes only the named columns so JSON serialized fields go
// through their serializer and nil values are stored as NULL.
func (r *interviewRepository) update(ctx context.Context, id uuid.UUID, values *models.Interview, columns ...string) error {
	values.UpdatedAt = time.Now()
	columns = append(columns, "updated_at")

	result := r.db.WithContext(ctx).
		Model(&models.Interview{}).
		Where("id = ?", id).
		Select(columns).
		Updates(values)

	if result.Error != nil {
		return fmt.Errorf("failed to update interview: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrInterviewNotFound
	}

	return nil
}
