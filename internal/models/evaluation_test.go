package models

import (
	"encoding/json"
	"testing"
)

func TestScoreUnmarshal(t *testing.T) {
	var got struct {
		A Score `json:"a"`
		B Score `json:"b"`
		C Score `json:"c"`
		D Score `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":85,"b":"72","c":"90%","d":null}`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.A != 85 || got.B != 72 || got.C != 90 || got.D != 0 {
		t.Fatalf("unexpected scores: %+v", got)
	}

	var bad Score
	if err := json.Unmarshal([]byte(`"high"`), &bad); err == nil {
		t.Fatalf("expected an error for a non numeric score")
	}
}

func TestWeightedOverall(t *testing.T) {
	result := &EvaluationResult{Scores: []ScoreCategory{
		{Name: CategoryTechnical, Score: 90},
		{Name: CategoryCommunication, Score: 80},
		{Name: CategoryProblemSolving, Score: 70},
		{Name: CategoryCulturalFit, Score: 60},
		{Name: CategoryResponsiveness, Score: 10},
	}}

	// 36 + 24 + 14 + 6
	if got := result.WeightedOverall(); got != 80 {
		t.Fatalf("expected 80, got %v", got)
	}

	short := &EvaluationResult{Scores: result.Scores[:3]}
	if got := short.WeightedOverall(); got != 0 {
		t.Fatalf("expected 0 with missing categories, got %v", got)
	}
}

func TestDefaultEvaluationResponsiveness(t *testing.T) {
	tests := []struct {
		avg      int
		score    Score
		feedback string
	}{
		{avg: 30, score: 100, feedback: "Average response time of 30 seconds. Good balance of speed and thoughtfulness."},
		{avg: 45, score: 70, feedback: "Average response time of 45 seconds. Could improve speed without sacrificing quality."},
		{avg: 100, score: 0, feedback: "Average response time of 100 seconds. Could improve speed without sacrificing quality."},
		{avg: 0, score: 100, feedback: "Average response time of 0 seconds. Good balance of speed and thoughtfulness."},
	}

	for _, tt := range tests {
		result := DefaultEvaluation(tt.avg)
		if len(result.Scores) != 5 {
			t.Fatalf("expected 5 categories, got %d", len(result.Scores))
		}
		if result.OverallScore != 77 {
			t.Fatalf("expected overall 77, got %v", result.OverallScore)
		}

		responsiveness := result.Scores[4]
		if responsiveness.Name != CategoryResponsiveness {
			t.Fatalf("expected last category %q, got %q", CategoryResponsiveness, responsiveness.Name)
		}
		if responsiveness.Score != tt.score {
			t.Fatalf("avg %d: expected score %v, got %v", tt.avg, tt.score, responsiveness.Score)
		}
		if responsiveness.Feedback != tt.feedback {
			t.Fatalf("avg %d: unexpected feedback %q", tt.avg, responsiveness.Feedback)
		}
	}
}

func TestInterviewEvaluationMetrics(t *testing.T) {
	eval := (&InterviewEvaluation{Scores: QuickScores{Technical: 8, Communication: 6}}).WithMetrics(22)
	if eval.Metrics.Technical == nil || *eval.Metrics.Technical != 8 {
		t.Fatalf("expected technical metric 8, got %v", eval.Metrics.Technical)
	}
	if eval.Metrics.ResponseTime != 22 {
		t.Fatalf("expected response time 22, got %d", eval.Metrics.ResponseTime)
	}

	fallback := DefaultInterviewEvaluation(18)
	if fallback.OverallScore != 70 || fallback.Metrics.ResponseTime != 18 {
		t.Fatalf("unexpected fallback: %+v", fallback)
	}
	if fallback.Metrics.Technical != nil {
		t.Fatalf("fallback metrics must only carry the response time")
	}

	data, err := json.Marshal(fallback.Metrics)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"responseTime":18}` {
		t.Fatalf("unexpected metrics json: %s", data)
	}
}
