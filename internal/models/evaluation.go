package models

import "fmt"

const (
	CategoryTechnical      = "Technical Accuracy"
	CategoryCommunication  = "Communication"
	CategoryProblemSolving = "Problem-Solving"
	CategoryCulturalFit    = "Cultural Fit"
	CategoryResponsiveness = "Responsiveness"
)

// ScoreCategory is one rubric line of an interview evaluation (0-100).
type ScoreCategory struct {
	Name     string `json:"name"`
	Score    Score  `json:"score"`
	Feedback string `json:"feedback"`
}

// EvaluationResult is the five-category interview score.
type EvaluationResult struct {
	Scores       []ScoreCategory `json:"scores"`
	OverallScore Score           `json:"overallScore"`
	Summary      string          `json:"summary"`
}

// WeightedOverall combines the first four categories as 40% technical,
// 30% communication, 20% problem solving and 10% cultural fit.
func (e *EvaluationResult) WeightedOverall() Score {
	if len(e.Scores) < 4 {
		return 0
	}
	weighted := float64(e.Scores[0].Score)*0.4 +
		float64(e.Scores[1].Score)*0.3 +
		float64(e.Scores[2].Score)*0.2 +
		float64(e.Scores[3].Score)*0.1
	return Score(Score(weighted).Int())
}

// DefaultEvaluation is the fallback score set. Responsiveness is derived
// from the average answer time: full marks up to 30s, minus two points per
// extra second.
func DefaultEvaluation(avgResponseSeconds int) *EvaluationResult {
	timingScore := 100 - max(0, avgResponseSeconds-30)*2
	timingScore = max(0, timingScore)

	timingFeedback := "Good balance of speed and thoughtfulness."
	if avgResponseSeconds > 40 {
		timingFeedback = "Could improve speed without sacrificing quality."
	}

	return &EvaluationResult{
		Scores: []ScoreCategory{
			{
				Name:     CategoryTechnical,
				Score:    75,
				Feedback: "Demonstrated adequate technical knowledge but could provide more depth in certain areas.",
			},
			{
				Name:     CategoryCommunication,
				Score:    80,
				Feedback: "Clear and structured responses. Effective at conveying technical concepts.",
			},
			{
				Name:     CategoryProblemSolving,
				Score:    70,
				Feedback: "Shows logical approach but could benefit from considering alternative solutions.",
			},
			{
				Name:     CategoryCulturalFit,
				Score:    85,
				Feedback: "Appears well-aligned with team values and collaborative work style.",
			},
			{
				Name:     CategoryResponsiveness,
				Score:    Score(timingScore),
				Feedback: fmt.Sprintf("Average response time of %d seconds. %s", avgResponseSeconds, timingFeedback),
			},
		},
		OverallScore: 77,
		Summary:      "Competent candidate with solid technical foundation and good communication skills. Would benefit from more detailed examples in technical responses.",
	}
}

// QuickScores are the 0-10 metrics of the quick evaluation rubric.
type QuickScores struct {
	Technical      Score `json:"technical"`
	Communication  Score `json:"communication"`
	Responsiveness Score `json:"responsiveness"`
	ProblemSolving Score `json:"problemSolving"`
	CulturalFit    Score `json:"culturalFit"`
}

// EvaluationMetrics mirrors the scores and adds the average response time
// in seconds. Score fields are absent on the fallback.
type EvaluationMetrics struct {
	Technical      *Score `json:"technical,omitempty"`
	Communication  *Score `json:"communication,omitempty"`
	Responsiveness *Score `json:"responsiveness,omitempty"`
	ProblemSolving *Score `json:"problemSolving,omitempty"`
	CulturalFit    *Score `json:"culturalFit,omitempty"`
	ResponseTime   int    `json:"responseTime"`
}

// InterviewEvaluation is the quick evaluation response.
type InterviewEvaluation struct {
	Scores       QuickScores       `json:"scores"`
	OverallScore Score             `json:"overallScore"`
	Strengths    []string          `json:"strengths"`
	Improvements []string          `json:"improvements"`
	Summary      string            `json:"summary"`
	Metrics      EvaluationMetrics `json:"metrics"`
}

// WithMetrics fills Metrics from the parsed scores.
func (e *InterviewEvaluation) WithMetrics(avgResponseSeconds int) *InterviewEvaluation {
	s := e.Scores
	e.Metrics = EvaluationMetrics{
		Technical:      &s.Technical,
		Communication:  &s.Communication,
		Responsiveness: &s.Responsiveness,
		ProblemSolving: &s.ProblemSolving,
		CulturalFit:    &s.CulturalFit,
		ResponseTime:   avgResponseSeconds,
	}
	return e
}

// DefaultInterviewEvaluation is the quick evaluation fallback.
func DefaultInterviewEvaluation(avgResponseSeconds int) *InterviewEvaluation {
	return &InterviewEvaluation{
		Scores: QuickScores{
			Technical:      7,
			Communication:  7,
			Responsiveness: 7,
			ProblemSolving: 7,
			CulturalFit:    7,
		},
		OverallScore: 70,
		Strengths: []string{
			"Demonstrated relevant technical knowledge",
			"Clear communication style",
			"Good problem-solving approach",
		},
		Improvements: []string{
			"Could provide more specific examples",
			"Work on structuring answers more clearly",
			"Consider company culture more explicitly",
		},
		Summary: "Competent candidate with solid fundamentals...",
		Metrics: EvaluationMetrics{ResponseTime: avgResponseSeconds},
	}
}
