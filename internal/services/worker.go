package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/repositories"
)

type Worker interface {
	Start(ctx context.Context)
	Stop()
	EnqueueJob(id uuid.UUID)
}

type worker struct {
	repo         repositories.InterviewRepository
	processor    InterviewProcessor
	jobQueue     chan uuid.UUID
	concurrency  int
	pollInterval time.Duration
	inflight     sync.Map
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
	log          *zap.Logger
}

func NewWorker(
	repo repositories.InterviewRepository,
	processor InterviewProcessor,
	concurrency int,
	pollInterval time.Duration,
	log *zap.Logger,
) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		repo:         repo,
		processor:    processor,
		jobQueue:     make(chan uuid.UUID, 100),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
		log:          log.With(zap.String("component", "worker")),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	w.log.Info("starting worker", zap.Int("concurrency", w.concurrency))

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingJobs(ctx)
}

// Stop implements Worker.
func (w *worker) Stop() {
	w.stopOnce.Do(func() {
		w.log.Info("stopping worker")
		close(w.stopChan)
		w.wg.Wait()
		w.log.Info("worker stopped")
	})
}

// EnqueueJob implements Worker. Jobs already queued or running are skipped.
func (w *worker) EnqueueJob(id uuid.UUID) {
	if _, loaded := w.inflight.LoadOrStore(id, struct{}{}); loaded {
		return
	}

	select {
	case w.jobQueue <- id:
		w.log.Debug("job enqueued", zap.String("interview_id", id.String()))
	case <-w.stopChan:
		w.inflight.Delete(id)
		w.log.Warn("worker stopped, cannot enqueue job", zap.String("interview_id", id.String()))
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case id := <-w.jobQueue:
			log := w.log.With(zap.Int("worker", workerID), zap.String("interview_id", id.String()))
			if err := w.processor.ProcessInterview(ctx, id); err != nil {
				log.Error("job failed", zap.Error(err))
			} else {
				log.Info("job completed")
			}
			w.inflight.Delete(id)
		}
	}
}

func (w *worker) pollPendingJobs(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending, err := w.repo.FindPendingJobs(ctx, 10)
			if err != nil {
				w.log.Warn("failed to fetch pending jobs", zap.Error(err))
				continue
			}

			if len(pending) > 0 {
				w.log.Debug("found pending jobs", zap.Int("count", len(pending)))
			}

			for _, job := range pending {
				w.EnqueueJob(job.ID)
			}
		}
	}
}
