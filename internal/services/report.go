package services

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var ErrReportNotReady = errors.New("interview evaluation is not completed")

type ReportRenderer interface {
	Markdown(interview *models.Interview) (string, error)
	HTML(interview *models.Interview) ([]byte, error)
}

type reportRenderer struct {
	md goldmark.Markdown
}

func NewReportRenderer() ReportRenderer {
	return &reportRenderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// Markdown renders a completed interview. Raw HTML in candidate text is
// dropped by the renderer.
func (r *reportRenderer) Markdown(interview *models.Interview) (string, error) {
	if interview.Status != models.StatusCompleted {
		return "", fmt.Errorf("%w: status is %s", ErrReportNotReady, interview.Status)
	}

	var sb strings.Builder
	sb.WriteString("# Interview Report\n\n")
	fmt.Fprintf(&sb, "- **Interview:** `%s`\n", interview.ID)
	fmt.Fprintf(&sb, "- **Date:** %s\n", interview.CreatedAt.Format("2006-01-02 15:04"))
	if interview.OverallScore != nil {
		fmt.Fprintf(&sb, "- **Overall score:** %.0f/100\n", *interview.OverallScore)
	}
	sb.WriteString("\n")

	if interview.Summary != nil && *interview.Summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(*interview.Summary)
		sb.WriteString("\n\n")
	}

	if len(interview.Scores) > 0 {
		sb.WriteString("## Score Breakdown\n\n")
		sb.WriteString("| Category | Score | Feedback |\n|---|---|---|\n")
		for _, s := range interview.Scores {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", cell(s.Name), s.Score.Int(), cell(s.Feedback))
		}
		sb.WriteString("\n")
	}

	if a := interview.ResumeAnalysis; a != nil {
		sb.WriteString("## Resume Match\n\n")
		fmt.Fprintf(&sb, "**%s** (%d/100). Experience relevance %d, education relevance %d.\n\n",
			a.MatchLevel(), a.MatchScore.Int(), a.ExperienceRelevance.Int(), a.EducationRelevance.Int())
		if a.Summary != "" {
			sb.WriteString(a.Summary + "\n\n")
		}
		writeList(&sb, "Matching skills", a.KeySkillsMatch)
		writeList(&sb, "Missing skills", a.MissingSkills)
		writeList(&sb, "Recommendations", a.Recommendations)
	}

	if stats := models.SummarizeTimings(interview.Timings); stats.Count > 0 {
		sb.WriteString("## Response Times\n\n")
		fmt.Fprintf(&sb, "- Answers timed: %d\n- Average: %ds\n- Fastest: %.1fs\n- Slowest: %.1fs\n\n",
			stats.Count, stats.AverageSeconds, stats.FastestSeconds, stats.SlowestSeconds)
	}

	if len(interview.Transcript) > 0 {
		sb.WriteString("## Transcript\n\n")
		for _, msg := range interview.Transcript {
			if msg.Role == models.RoleSystem {
				continue
			}
			speaker := "Interviewer"
			if msg.Role == models.RoleUser {
				speaker = "Candidate"
			}
			fmt.Fprintf(&sb, "**%s:** %s", speaker, strings.TrimSpace(msg.Content))
			if msg.ResponseTime != nil {
				fmt.Fprintf(&sb, " _(%.1fs)_", float64(*msg.ResponseTime)/1000)
			}
			sb.WriteString("\n\n")
		}
	}

	return sb.String(), nil
}

// HTML wraps the rendered markdown in a minimal page.
func (r *reportRenderer) HTML(interview *models.Interview) ([]byte, error) {
	source, err := r.Markdown(interview)
	if err != nil {
		return nil, err
	}

	var body bytes.Buffer
	if err := r.md.Convert([]byte(source), &body); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&page, "<title>Interview %s</title>", html.EscapeString(interview.ID.String()))
	page.WriteString("</head><body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")

	return page.Bytes(), nil
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s:**\n\n", title)
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
	sb.WriteString("\n")
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
