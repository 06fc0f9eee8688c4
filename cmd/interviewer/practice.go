package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
	"alfredoptarigan/ai-interviewer/internal/services"
)

const (
	PromptConversational = "Conversational interview"
	PromptStructured     = "Structured interview"
)

var practiceCmd = &cobra.Command{
	Use:   "practice",
	Short: "Run a mock interview in the terminal and score it",
	RunE:  practice,
}

func init() {
	rootCmd.AddCommand(practiceCmd)

	practiceCmd.Flags().String("job", "", "file with the job description (text or PDF)")
	practiceCmd.Flags().String("cv", "", "file with the candidate resume (text or PDF)")
	practiceCmd.Flags().StringP("mode", "m", "", "interview mode: conversational or structured. Asked when unset.")
	practiceCmd.Flags().StringP("report", "r", "", "write a markdown report to this file")

	_ = practiceCmd.MarkFlagRequired("job")
	_ = practiceCmd.MarkFlagRequired("cv")
}

func practice(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	jobPath, _ := cmd.Flags().GetString("job")
	cvPath, _ := cmd.Flags().GetString("cv")
	modeFlag, _ := cmd.Flags().GetString("mode")
	reportPath, _ := cmd.Flags().GetString("report")

	pdfParser := services.NewPDFParserService()
	jobDescription, err := readDocument(jobPath, pdfParser)
	if err != nil {
		return fmt.Errorf("reading job description: %w", err)
	}
	cvText, err := readDocument(cvPath, pdfParser)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	mode, err := practiceMode(modeFlag)
	if err != nil {
		return err
	}

	rt, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	retries := rt.cfg.LLM.MaxRetries
	matcher := services.NewResumeMatcher(rt.llm, rt.cache, retries, rt.log)
	evaluator := services.NewEvaluatorService(rt.llm, rt.knowledge, retries, rt.log)
	conductor := services.NewConductor(rt.llm, rt.cfg.Interview.MaxQuestions, rt.log)

	analysis, err := matcher.AnalyzeResume(ctx, jobDescription, cvText)
	if err != nil {
		rt.log.Warn("resume analysis failed", zap.Error(err))
	} else {
		fmt.Printf("\nResume match: %d/100 (%s)\n%s\n", analysis.MatchScore.Int(), analysis.MatchLevel(), analysis.Summary)
	}

	session := conductor.NewSession(mode, jobDescription, cvText)
	turn, err := session.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting interview: %w", err)
	}

	answer := promptui.Prompt{
		Label: "Your answer",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("answer must not be empty")
			}
			return nil
		},
	}

	for {
		fmt.Printf("\n[%d/%d] %s\n\n", turn.QuestionCount, conductor.MaxQuestions(), turn.Reply)
		if turn.Complete {
			fmt.Printf("%s\n", turn.ClosingMessage)
			break
		}

		text, err := answer.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			fmt.Println("Interview stopped, scoring the answers given so far.")
			break
		}
		if err != nil {
			return err
		}

		turn, err = session.Answer(ctx, text)
		if err != nil {
			return fmt.Errorf("interview turn: %w", err)
		}
	}

	history := session.History()
	timings := session.Timings()

	result, err := evaluator.Score(ctx, &models.ScoreRequest{
		JobDescription: jobDescription,
		CVText:         cvText,
		Messages:       history,
		ResponseTimes:  timings,
	})
	if err != nil {
		return fmt.Errorf("scoring interview: %w", err)
	}

	printResult(result, models.SummarizeTimings(timings))

	if reportPath == "" {
		return nil
	}

	overall := float64(result.OverallScore)
	now := time.Now()
	interview := &models.Interview{
		ID:             uuid.New(),
		JobDescription: jobDescription,
		CVText:         cvText,
		Status:         models.StatusCompleted,
		Transcript:     history,
		Timings:        timings,
		Scores:         result.Scores,
		OverallScore:   &overall,
		Summary:        &result.Summary,
		CreatedAt:      now,
		UpdatedAt:      now,
		ResumeAnalysis: analysis,
	}

	report, err := services.NewReportRenderer().Markdown(interview)
	if err != nil {
		return err
	}
	if err := os.WriteFile(reportPath, []byte(report), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	rt.log.Info("report written", zap.String("path", reportPath))
	return nil
}

func practiceMode(flag string) (services.Mode, error) {
	switch services.Mode(strings.ToLower(flag)) {
	case services.ModeConversational:
		return services.ModeConversational, nil
	case services.ModeStructured:
		return services.ModeStructured, nil
	case "":
	default:
		return "", fmt.Errorf("unknown interview mode %q", flag)
	}

	prompt := promptui.Select{
		Label: "Interview mode",
		Items: []string{PromptConversational, PromptStructured},
	}
	_, choice, err := prompt.Run()
	if err != nil {
		return "", err
	}

	if choice == PromptStructured {
		return services.ModeStructured, nil
	}
	return services.ModeConversational, nil
}

func printResult(result *models.EvaluationResult, stats models.TimingStats) {
	fmt.Printf("\n%s\n", strings.Repeat("=", 60))
	fmt.Printf("Overall score: %d/100\n\n", result.OverallScore.Int())
	for _, s := range result.Scores {
		fmt.Printf("  %-20s %3d  %s\n", s.Name, s.Score.Int(), s.Feedback)
	}
	fmt.Printf("\nAverage answer time: %ds (fastest %gs, slowest %gs)\n",
		stats.AverageSeconds, stats.FastestSeconds, stats.SlowestSeconds)
	if result.Summary != "" {
		fmt.Printf("\n%s\n", result.Summary)
	}
	fmt.Println(strings.Repeat("=", 60))
}
