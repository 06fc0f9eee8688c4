package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var ErrTimingNotStarted = errors.New("timing was not started for question")

// TimingTracker measures how long the candidate takes to answer each
// question. It is safe for concurrent use.
type TimingTracker struct {
	mu      sync.Mutex
	now     func() time.Time
	started map[string]time.Time
	timings []models.ResponseTiming
}

func NewTimingTracker() *TimingTracker {
	return newTimingTracker(time.Now)
}

func newTimingTracker(now func() time.Time) *TimingTracker {
	return &TimingTracker{
		now:     now,
		started: make(map[string]time.Time),
	}
}

// Start marks the moment questionID was shown. Restarting a question
// resets its clock.
func (t *TimingTracker) Start(questionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started[questionID] = t.now()
}

// Stop records the answer for questionID.
func (t *TimingTracker) Stop(questionID string) (models.ResponseTiming, error) {
	timing, err := t.Lap(questionID)
	if err != nil {
		return models.ResponseTiming{}, err
	}
	t.Record(timing)
	return timing, nil
}

// Lap measures the answer to questionID without recording it. The clock
// keeps running until the timing is passed to Record.
func (t *TimingTracker) Lap(questionID string) (models.ResponseTiming, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start, ok := t.started[questionID]
	if !ok {
		return models.ResponseTiming{}, fmt.Errorf("%w: %s", ErrTimingNotStarted, questionID)
	}

	end := t.now()
	return models.ResponseTiming{
		QuestionID: questionID,
		StartTime:  start.UnixMilli(),
		EndTime:    end.UnixMilli(),
		Duration:   end.Sub(start).Milliseconds(),
	}, nil
}

// Record stores a timing taken with Lap and clears its clock.
func (t *TimingTracker) Record(timing models.ResponseTiming) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.started, timing.QuestionID)
	t.timings = append(t.timings, timing)
}

// Timings returns a copy of the recorded timings in answer order.
func (t *TimingTracker) Timings() []models.ResponseTiming {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]models.ResponseTiming, len(t.timings))
	copy(out, t.timings)
	return out
}

// Stats summarizes the recorded timings.
func (t *TimingTracker) Stats() models.TimingStats {
	return models.SummarizeTimings(t.Timings())
}
