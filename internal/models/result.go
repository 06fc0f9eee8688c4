package models

type AnalyzeResumeRequest struct {
	JobDescription string `json:"jobDescription"`
	Resume         string `json:"resume"`
}

type GenerateQuestionsRequest struct {
	JobDescription string `json:"jobDescription"`
	CVText         string `json:"cvText"`
}

type QuestionsResponse struct {
	Questions []string `json:"questions"`
}

// TurnRequest is the body of the chat and structured interview endpoints.
type TurnRequest struct {
	Messages       []Message     `json:"messages"`
	JobDescription string        `json:"jobDescription"`
	CVText         string        `json:"cvText"`
	CurrentTimings ResponseTimes `json:"currentTimings,omitempty"`
	Stream         *bool         `json:"stream,omitempty"`
}

// Streaming reports whether the client asked for server-sent events.
// Streaming is the default.
func (r *TurnRequest) Streaming() bool {
	return r.Stream == nil || *r.Stream
}

type TurnResponse struct {
	Reply          string `json:"reply"`
	QuestionCount  int    `json:"questionCount"`
	Complete       bool   `json:"complete"`
	ClosingMessage string `json:"closingMessage,omitempty"`
}

type EvaluateRequest struct {
	Messages       []Message     `json:"messages"`
	JobDescription string        `json:"jobDescription"`
	CVText         string        `json:"cvText"`
	Timings        ResponseTimes `json:"timings"`
}

type ScoreRequest struct {
	JobDescription string        `json:"jobDescription"`
	CVText         string        `json:"cvText"`
	Messages       []Message     `json:"messages"`
	ResponseTimes  ResponseTimes `json:"responseTimes"`
}

type CreateInterviewRequest struct {
	JobDescription string          `json:"jobDescription"`
	CVText         string          `json:"cvText"`
	ResumeAnalysis *ResumeAnalysis `json:"resumeAnalysis,omitempty"`
}

type CompleteInterviewRequest struct {
	Messages []Message     `json:"messages"`
	Timings  ResponseTimes `json:"timings"`
}

type InterviewResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ExtractResumeResponse struct {
	Success          bool   `json:"success"`
	ExtractedDetails string `json:"extractedDetails"`
}
