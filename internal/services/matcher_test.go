package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const analysisJSON = `{
  "matchScore": 82,
  "keySkillsMatch": ["Go", "PostgreSQL"],
  "missingSkills": ["Kubernetes"],
  "experienceRelevance": "75",
  "educationRelevance": 60,
  "strengths": ["Backend experience"],
  "weaknesses": ["No cloud exposure"],
  "summary": "Good backend match.",
  "recommendations": ["Learn Kubernetes"]
}`

func TestAnalyzeResume(t *testing.T) {
	llm := &stubLLM{responses: []string{"```json\n" + analysisJSON + "\n```"}}
	matcher := NewResumeMatcher(llm, nil, 1, zap.NewNop())

	analysis, err := matcher.AnalyzeResume(context.Background(), "Go backend engineer", "Five years of Go")
	if err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if analysis.MatchScore != 82 || analysis.ExperienceRelevance != 75 {
		t.Fatalf("unexpected analysis: %+v", analysis)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0] != "Kubernetes" {
		t.Fatalf("unexpected missing skills: %v", analysis.MissingSkills)
	}

	req := llm.lastRequest(t)
	if !req.JSON || req.System == "" {
		t.Fatalf("expected a JSON request with a system instruction, got %+v", req)
	}
}

func TestAnalyzeResumeFallback(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	llm := &stubLLM{responses: []string{"The candidate looks great!"}}
	matcher := NewResumeMatcher(llm, nil, 1, zap.New(core))

	analysis, err := matcher.AnalyzeResume(context.Background(), "jd", "cv")
	if err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if analysis.MatchScore != 65 || analysis.Summary == "" {
		t.Fatalf("expected the default analysis, got %+v", analysis)
	}
	if logs.FilterMessage("using fallback result").Len() != 1 {
		t.Fatalf("expected the fallback to be logged")
	}
}

func TestAnalyzeResumeProviderError(t *testing.T) {
	errDown := errors.New("provider down")
	matcher := NewResumeMatcher(&stubLLM{errs: []error{errDown}}, nil, 1, zap.NewNop())

	if _, err := matcher.AnalyzeResume(context.Background(), "jd", "cv"); !errors.Is(err, errDown) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestAnalyzeResumeCache(t *testing.T) {
	cache, err := NewResponseCache(filepath.Join(t.TempDir(), "cache", "responses.db"))
	if err != nil {
		t.Fatalf("NewResponseCache: %v", err)
	}
	defer cache.Close()

	llm := &stubLLM{responses: []string{analysisJSON}}
	matcher := NewResumeMatcher(llm, cache, 1, zap.NewNop())

	for i := 0; i < 2; i++ {
		analysis, err := matcher.AnalyzeResume(context.Background(), "jd", "cv")
		if err != nil {
			t.Fatalf("AnalyzeResume: %v", err)
		}
		if analysis.MatchScore != 82 {
			t.Fatalf("unexpected match score %v", analysis.MatchScore)
		}
	}

	if llm.calls() != 1 {
		t.Fatalf("expected the second call to be served from cache, got %d llm calls", llm.calls())
	}

	if _, err := matcher.AnalyzeResume(context.Background(), "other jd", "cv"); err != nil {
		t.Fatalf("AnalyzeResume: %v", err)
	}
	if llm.calls() != 2 {
		t.Fatalf("expected a new input to reach the llm, got %d calls", llm.calls())
	}
}
