package services

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

type stubEvaluator struct {
	result *models.EvaluationResult
	err    error
	calls  atomic.Int32
}

func (s *stubEvaluator) Score(context.Context, *models.ScoreRequest) (*models.EvaluationResult, error) {
	s.calls.Add(1)
	return s.result, s.err
}

func (s *stubEvaluator) Evaluate(context.Context, *models.EvaluateRequest) (*models.InterviewEvaluation, error) {
	return nil, errors.New("not used")
}

type stubMatcher struct {
	err error
}

func (s stubMatcher) AnalyzeResume(context.Context, string, string) (*models.ResumeAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return models.DefaultResumeAnalysis(), nil
}

func queuedInterview() *models.Interview {
	return &models.Interview{
		ID:             uuid.New(),
		JobDescription: "jd",
		CVText:         "cv",
		Status:         models.StatusQueued,
		Transcript:     []models.Message{{Role: models.RoleAssistant, Content: "Q1"}},
	}
}

func TestProcessInterview(t *testing.T) {
	interview := queuedInterview()
	repo := newMemoryRepository(interview)
	evaluator := &stubEvaluator{result: models.DefaultEvaluation(10)}
	processor := NewInterviewProcessor(repo, evaluator, stubMatcher{}, zap.NewNop())

	if err := processor.ProcessInterview(context.Background(), interview.ID); err != nil {
		t.Fatalf("ProcessInterview: %v", err)
	}

	got, _ := repo.FindByID(context.Background(), interview.ID)
	if got.Status != models.StatusCompleted || got.OverallScore == nil || *got.OverallScore != 77 {
		t.Fatalf("unexpected interview %+v", got)
	}
	if got.ResumeAnalysis == nil {
		t.Fatalf("expected the resume analysis to be stored")
	}
	if repo.statuses[0] != models.StatusProcessing {
		t.Fatalf("expected processing before completion, got %v", repo.statuses)
	}
}

func TestProcessInterviewFailure(t *testing.T) {
	interview := queuedInterview()
	repo := newMemoryRepository(interview)
	evaluator := &stubEvaluator{err: errors.New("provider down")}
	processor := NewInterviewProcessor(repo, evaluator, stubMatcher{err: errors.New("no match")}, zap.NewNop())

	if err := processor.ProcessInterview(context.Background(), interview.ID); err == nil {
		t.Fatalf("expected an error")
	}

	got, _ := repo.FindByID(context.Background(), interview.ID)
	if got.Status != models.StatusFailed || got.ErrorMessage == nil || !strings.Contains(*got.ErrorMessage, "provider down") {
		t.Fatalf("expected a failed interview with the cause, got %+v", got)
	}
	if got.ResumeAnalysis != nil {
		t.Fatalf("a failed analysis must not be stored")
	}
}

// cancellingEvaluator simulates a shutdown that lands mid-evaluation.
type cancellingEvaluator struct {
	stubEvaluator
	cancel context.CancelFunc
}

func (c *cancellingEvaluator) Score(ctx context.Context, _ *models.ScoreRequest) (*models.EvaluationResult, error) {
	c.cancel()
	return nil, ctx.Err()
}

func TestProcessInterviewCancelledMidJob(t *testing.T) {
	interview := queuedInterview()
	repo := newMemoryRepository(interview)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	processor := NewInterviewProcessor(repo, &cancellingEvaluator{cancel: cancel}, nil, zap.NewNop())

	err := processor.ProcessInterview(ctx, interview.ID)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	if got := repo.status(interview.ID); got != models.StatusFailed {
		t.Fatalf("expected the interview to be marked failed after cancellation, got %s", got)
	}
}

func TestProcessInterviewSaveResultFailure(t *testing.T) {
	interview := queuedInterview()
	repo := newMemoryRepository(interview)
	repo.resultErr = errors.New("disk full")
	processor := NewInterviewProcessor(repo, &stubEvaluator{result: models.DefaultEvaluation(10)}, nil, zap.NewNop())

	if err := processor.ProcessInterview(context.Background(), interview.ID); err == nil {
		t.Fatalf("expected an error")
	}

	got, _ := repo.FindByID(context.Background(), interview.ID)
	if got.Status != models.StatusFailed || got.ErrorMessage == nil || !strings.Contains(*got.ErrorMessage, "disk full") {
		t.Fatalf("expected a failed interview with the save error, got %+v", got)
	}
}

func TestWorkerProcessesEnqueuedAndPolledJobs(t *testing.T) {
	enqueued := queuedInterview()
	polled := queuedInterview()
	repo := newMemoryRepository(enqueued, polled)
	evaluator := &stubEvaluator{result: models.DefaultEvaluation(10)}
	processor := NewInterviewProcessor(repo, evaluator, nil, zap.NewNop())

	w := NewWorker(repo, processor, 2, 20*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w.Start(ctx)
	w.EnqueueJob(enqueued.ID)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.status(enqueued.ID) == models.StatusCompleted && repo.status(polled.ID) == models.StatusCompleted {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if repo.status(enqueued.ID) != models.StatusCompleted || repo.status(polled.ID) != models.StatusCompleted {
		t.Fatalf("expected both interviews to complete, got %s and %s", repo.status(enqueued.ID), repo.status(polled.ID))
	}
	if n := evaluator.calls.Load(); n < 2 {
		t.Fatalf("expected both interviews to be scored, got %d calls", n)
	}
}

func TestWorkerEnqueueAfterStop(t *testing.T) {
	repo := newMemoryRepository()
	w := NewWorker(repo, NewInterviewProcessor(repo, &stubEvaluator{}, nil, zap.NewNop()), 1, time.Hour, zap.NewNop())
	w.Start(context.Background())
	w.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			w.EnqueueJob(uuid.New())
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("EnqueueJob blocked after Stop")
	}
}
