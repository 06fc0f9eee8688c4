package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var (
	numberedLine = regexp.MustCompile(`^\d+[.)]\s+.+`)
	quotedLine   = regexp.MustCompile(`^".+"$`)
	labelledLine = regexp.MustCompile(`^Question \d+:`)

	numberPrefix = regexp.MustCompile(`^\d+[.)]\s+`)
	labelPrefix  = regexp.MustCompile(`^Question \d+:\s*`)
	quoted       = regexp.MustCompile(`^"(.+)"$`)
)

const minExtractedQuestions = 3

type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, jobDescription, cvText string) ([]string, error)
}

type questionGenerator struct {
	llm           LLMService
	knowledge     KnowledgeBase
	cache         ResponseCache
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

func NewQuestionGenerator(llm LLMService, knowledge KnowledgeBase, cache ResponseCache, maxRetries int, log *zap.Logger) QuestionGenerator {
	if cache == nil {
		cache = nopCache{}
	}
	return &questionGenerator{
		llm:           llm,
		knowledge:     knowledge,
		cache:         cache,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log,
	}
}

// GenerateQuestions implements QuestionGenerator.
func (q *questionGenerator) GenerateQuestions(ctx context.Context, jobDescription, cvText string) ([]string, error) {
	key := CacheKey("generate-questions", q.llm.Model(), jobDescription, cvText)

	var cached []string
	if ok, err := q.cache.Get(ctx, key, &cached); err != nil {
		q.log.Warn("questions cache read failed", zap.Error(err))
	} else if ok && len(cached) > 0 {
		return cached, nil
	}

	bank := guidance(ctx, q.knowledge, q.log, DocTypeQuestionBank,
		q.promptBuilder.BuildRetrievalQuery(DocTypeQuestionBank, jobDescription))

	response, err := GenerateWithRetry(ctx, q.llm, ChatRequest{
		Messages: UserPrompt(q.promptBuilder.BuildQuestionsPrompt(jobDescription, cvText, bank)),
	}, q.maxRetries, q.log)
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview questions: %w", err)
	}

	questions, err := parseQuestions(response)
	if err != nil {
		questions = extractQuestionLines(response)
		if len(questions) < minExtractedQuestions {
			logFallback(q.log, "generate-questions", response, err)
			return models.DefaultQuestions(), nil
		}
	}

	if err := q.cache.Put(ctx, key, questions); err != nil {
		q.log.Warn("questions cache write failed", zap.Error(err))
	}

	return questions, nil
}

// parseQuestions accepts a JSON array of strings or an object with a
// "questions" array.
func parseQuestions(response string) ([]string, error) {
	var list []string
	if err := parseJSONResponse(response, &list); err == nil {
		return nonEmpty(list)
	}

	var wrapped struct {
		Questions []string `json:"questions"`
	}
	cleaned := stripFences(response)
	if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
		if candidate := extractJSON(cleaned); candidate != "" {
			if err := json.Unmarshal([]byte(candidate), &wrapped); err != nil {
				return nil, err
			}
		} else {
			return nil, ErrNoJSON
		}
	}

	return nonEmpty(wrapped.Questions)
}

func nonEmpty(list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoJSON
	}
	return out, nil
}

// extractQuestionLines recovers numbered, quoted or "Question N:" lines from
// free text.
func extractQuestionLines(text string) []string {
	var questions []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !numberedLine.MatchString(line) && !quotedLine.MatchString(line) && !labelledLine.MatchString(line) {
			continue
		}

		line = numberPrefix.ReplaceAllString(line, "")
		line = labelPrefix.ReplaceAllString(line, "")
		line = quoted.ReplaceAllString(line, "$1")
		if line = strings.TrimSpace(line); line != "" {
			questions = append(questions, line)
		}
	}
	return questions
}
