package models

import (
	"time"

	"github.com/google/uuid"
)

type InterviewStatus string

const (
	StatusInProgress InterviewStatus = "in_progress"
	StatusQueued     InterviewStatus = "queued"
	StatusProcessing InterviewStatus = "processing"
	StatusCompleted  InterviewStatus = "completed"
	StatusFailed     InterviewStatus = "failed"
)

type Interview struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	JobDescription string          `gorm:"type:text;not null" json:"jobDescription"`
	CVText         string          `gorm:"type:text;not null" json:"cvText"`
	Status         InterviewStatus `gorm:"type:text;not null;default:'in_progress';index" json:"status"`
	Transcript     []Message       `gorm:"type:text;serializer:json" json:"transcript,omitempty"`
	Timings        ResponseTimes   `gorm:"type:text;serializer:json" json:"timings,omitempty"`
	ResumeAnalysis *ResumeAnalysis `gorm:"type:text;serializer:json" json:"resumeAnalysis,omitempty"`
	Scores         []ScoreCategory `gorm:"type:text;serializer:json" json:"scores,omitempty"`
	OverallScore   *float64        `json:"overallScore,omitempty"`
	Summary        *string         `gorm:"type:text" json:"summary,omitempty"`
	ErrorMessage   *string         `gorm:"type:text" json:"errorMessage,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (Interview) TableName() string {
	return "interviews"
}
