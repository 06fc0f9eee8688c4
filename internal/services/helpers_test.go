package services

import (
	"bytes"
	"context"
	"iter"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/google/uuid"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
)

// stubLLM returns canned responses in order; the last one repeats.
type stubLLM struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	chunks    []string
	requests  []ChatRequest
}

func (s *stubLLM) Generate(_ context.Context, req ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := len(s.requests)
	s.requests = append(s.requests, req)

	if call < len(s.errs) && s.errs[call] != nil {
		return "", s.errs[call]
	}
	if len(s.responses) == 0 {
		return "", ErrEmptyResponse
	}
	if call >= len(s.responses) {
		call = len(s.responses) - 1
	}
	return s.responses[call], nil
}

func (s *stubLLM) Stream(_ context.Context, req ChatRequest) iter.Seq2[string, error] {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	chunks := append([]string(nil), s.chunks...)
	s.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
	}
}

func (s *stubLLM) Provider() string { return "stub" }

func (s *stubLLM) Model() string { return "stub-model" }

func (s *stubLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubLLM) lastRequest(t *testing.T) ChatRequest {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		t.Fatalf("expected at least one llm request")
	}
	return s.requests[len(s.requests)-1]
}

type stubKnowledge struct {
	text    string
	err     error
	queries []string
}

func (k *stubKnowledge) Retrieve(_ context.Context, docType, query string, _ int) (string, error) {
	k.queries = append(k.queries, docType+":"+query)
	return k.text, k.err
}

func (k *stubKnowledge) Ingest(context.Context, string, string, string) (int, error) {
	return 0, nil
}

// memoryRepository is an in-memory InterviewRepository.
type memoryRepository struct {
	mu         sync.Mutex
	interviews map[uuid.UUID]*models.Interview
	statuses   []models.InterviewStatus
	resultErr  error
}

func newMemoryRepository(interviews ...*models.Interview) *memoryRepository {
	repo := &memoryRepository{interviews: make(map[uuid.UUID]*models.Interview)}
	for _, i := range interviews {
		repo.interviews[i.ID] = i
	}
	return repo
}

func (m *memoryRepository) get(id uuid.UUID) (*models.Interview, error) {
	i, ok := m.interviews[id]
	if !ok {
		return nil, repositories.ErrInterviewNotFound
	}
	return i, nil
}

func (m *memoryRepository) Create(_ context.Context, interview *models.Interview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if interview.ID == uuid.Nil {
		interview.ID = uuid.New()
	}
	m.interviews[interview.ID] = interview
	return nil
}

func (m *memoryRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return nil, err
	}
	cp := *i
	return &cp, nil
}

func (m *memoryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.InterviewStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return err
	}
	i.Status = status
	m.statuses = append(m.statuses, status)
	return nil
}

func (m *memoryRepository) SaveTranscript(_ context.Context, id uuid.UUID, transcript []models.Message, timings models.ResponseTimes) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return err
	}
	i.Transcript, i.Timings, i.Status, i.ErrorMessage = transcript, timings, models.StatusQueued, nil
	return nil
}

func (m *memoryRepository) SaveResumeAnalysis(_ context.Context, id uuid.UUID, analysis *models.ResumeAnalysis) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return err
	}
	i.ResumeAnalysis = analysis
	return nil
}

func (m *memoryRepository) UpdateResult(ctx context.Context, id uuid.UUID, result *models.EvaluationResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.resultErr != nil {
		return m.resultErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return err
	}
	overall := float64(result.OverallScore)
	i.Scores, i.OverallScore, i.Summary, i.Status = result.Scores, &overall, &result.Summary, models.StatusCompleted
	m.statuses = append(m.statuses, models.StatusCompleted)
	return nil
}

func (m *memoryRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	i, err := m.get(id)
	if err != nil {
		return err
	}
	i.Status, i.ErrorMessage = models.StatusFailed, &errorMsg
	m.statuses = append(m.statuses, models.StatusFailed)
	return nil
}

func (m *memoryRepository) FindPendingJobs(_ context.Context, limit int) ([]models.Interview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Interview
	for _, i := range m.interviews {
		if i.Status == models.StatusQueued && len(out) < limit {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (m *memoryRepository) status(id uuid.UUID) models.InterviewStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.interviews[id].Status
}

// fileHeader builds a multipart upload the way a request would carry it.
func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	form, err := multipart.NewReader(&body, writer.Boundary()).ReadForm(1 << 20)
	if err != nil {
		t.Fatalf("read form: %v", err)
	}
	t.Cleanup(func() { _ = form.RemoveAll() })

	return form.File["file"][0]
}
