package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/repositories"
	"alfredoptarigan/ai-interviewer/internal/services"
)

type stubLLM struct {
	mu        sync.Mutex
	response  string
	chunks    []string
	err       error
	requests  []services.ChatRequest
	deadlines []bool // whether each Generate call had a context deadline
}

func (s *stubLLM) Generate(ctx context.Context, req services.ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	_, hasDeadline := ctx.Deadline()
	s.deadlines = append(s.deadlines, hasDeadline)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) Stream(_ context.Context, req services.ChatRequest) iter.Seq2[string, error] {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	chunks, err := s.chunks, s.err
	s.mu.Unlock()

	return func(yield func(string, error) bool) {
		for _, c := range chunks {
			if !yield(c, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

func (s *stubLLM) Provider() string { return "stub" }

func (s *stubLLM) Model() string { return "stub-model" }

type stubWorker struct {
	mu       sync.Mutex
	enqueued []uuid.UUID
}

func (w *stubWorker) Start(context.Context) {}

func (w *stubWorker) Stop() {}

func (w *stubWorker) EnqueueJob(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enqueued = append(w.enqueued, id)
}

type testApp struct {
	app    *fiber.App
	llm    *stubLLM
	repo   repositories.InterviewRepository
	worker *stubWorker
}

func newTestApp(t *testing.T, llm *stubLLM) *testApp {
	t.Helper()
	return newTestAppWithConfig(t, llm, AppConfig{MaxFileSize: 1024})
}

func newTestAppWithConfig(t *testing.T, llm *stubLLM, cfg AppConfig) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Interview{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zap.NewNop()
	repo := repositories.NewInterviewRepository(db)
	worker := &stubWorker{}
	kb := services.NewNopKnowledgeBase()
	storage := services.NewStorageService(t.TempDir())

	cfg.Log = log
	app := NewApp(cfg, Handlers{
		Resume: NewResumeHandler(
			services.NewResumeMatcher(llm, nil, 1, log),
			services.NewResumeExtractor("", storage, services.NewPDFParserService(), llm, 1, log),
			cfg.MaxFileSize, log,
		),
		Questions:  NewQuestionHandler(services.NewQuestionGenerator(llm, kb, nil, 1, log), log),
		Chat:       NewChatHandler(services.NewConductor(llm, 7, log), 0, log),
		Evaluation: NewEvaluationHandler(services.NewEvaluatorService(llm, kb, 1, log), log),
		Interviews: NewInterviewHandler(repo, worker, services.NewReportRenderer(), log),
	})

	return &testApp{app: app, llm: llm, repo: repo, worker: worker}
}

func (a *testApp) do(t *testing.T, req *http.Request) (*http.Response, []byte) {
	t.Helper()

	resp, err := a.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func (a *testApp) postJSON(t *testing.T, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return a.do(t, req)
}

func decode(t *testing.T, body []byte, target any) {
	t.Helper()
	if err := json.Unmarshal(body, target); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
}

func expectError(t *testing.T, resp *http.Response, body []byte, status int, message string) {
	t.Helper()

	if resp.StatusCode != status {
		t.Fatalf("expected status %d, got %d: %s", status, resp.StatusCode, body)
	}
	var payload struct {
		Error string `json:"error"`
	}
	decode(t, body, &payload)
	if payload.Error != message {
		t.Fatalf("expected error %q, got %q", message, payload.Error)
	}
}

var errProvider = errors.New("provider down")

func TestHealthAndRoot(t *testing.T) {
	a := newTestApp(t, &stubLLM{})

	resp, body := a.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte(`"status":"healthy"`)) {
		t.Fatalf("unexpected health response %d %s", resp.StatusCode, body)
	}

	resp, body = a.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.StatusCode != fiber.StatusOK || !bytes.Contains(body, []byte("POST /api/v1/score")) {
		t.Fatalf("unexpected root response %d %s", resp.StatusCode, body)
	}

	resp, _ = a.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/missing", nil))
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestLLMRoutesCarryDeadline(t *testing.T) {
	llm := &stubLLM{response: `{"questions":["a","b","c"]}`}
	a := newTestAppWithConfig(t, llm, AppConfig{MaxFileSize: 1024, LLMTimeout: time.Minute})

	requests := []struct {
		path    string
		payload any
	}{
		{"/api/v1/analyze-resume", models.AnalyzeResumeRequest{JobDescription: "jd", Resume: "cv"}},
		{"/api/v1/generate-questions", models.GenerateQuestionsRequest{JobDescription: "jd", CVText: "cv"}},
		{"/api/v1/chat", map[string]any{"messages": []models.Message{}, "stream": false}},
		{"/api/v1/evaluate", models.EvaluateRequest{}},
		{"/api/v1/score", map[string]any{
			"jobDescription": "jd",
			"cvText":         "cv",
			"messages":       []models.Message{},
			"responseTimes":  []models.ResponseTiming{},
		}},
	}
	for _, r := range requests {
		if resp, body := a.postJSON(t, r.path, r.payload); resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: expected 200, got %d: %s", r.path, resp.StatusCode, body)
		}
	}

	if len(llm.deadlines) != len(requests) {
		t.Fatalf("expected %d model calls, got %d", len(requests), len(llm.deadlines))
	}
	for i, ok := range llm.deadlines {
		if !ok {
			t.Fatalf("%s reached the model without a deadline", requests[i].path)
		}
	}
}

func TestLLMRoutesWithoutTimeout(t *testing.T) {
	llm := &stubLLM{response: "Tell me about yourself."}
	a := newTestApp(t, llm)

	a.postJSON(t, "/api/v1/chat", map[string]any{"messages": []models.Message{}, "stream": false})
	if len(llm.deadlines) != 1 || llm.deadlines[0] {
		t.Fatalf("expected a call without deadline, got %v", llm.deadlines)
	}
}
