package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

var (
	ErrInterviewComplete = errors.New("interview is already complete")
	ErrSessionNotStarted = errors.New("interview session has not started")
)

type Mode string

const (
	// ModeConversational is the free-form interviewer behind /chat.
	ModeConversational Mode = "conversational"
	// ModeStructured follows a fixed question plan behind /interview.
	ModeStructured Mode = "structured"

	DefaultMaxQuestions = 7
)

type TurnInput struct {
	Mode           Mode
	Messages       []models.Message
	JobDescription string
	CVText         string
}

// PreparedTurn is the LLM request for the next assistant reply together
// with the turn counter it will produce.
type PreparedTurn struct {
	Request       ChatRequest
	QuestionCount int
	Complete      bool
}

// Result builds the response for reply. The closing message is attached
// once the interview is complete.
func (p PreparedTurn) Result(reply string) *models.TurnResponse {
	resp := &models.TurnResponse{
		Reply:         reply,
		QuestionCount: p.QuestionCount,
		Complete:      p.Complete,
	}
	if p.Complete {
		resp.ClosingMessage = ClosingMessage
	}
	return resp
}

type Conductor interface {
	Prepare(in TurnInput) PreparedTurn
	Stream(ctx context.Context, turn PreparedTurn) iter.Seq2[string, error]
	Reply(ctx context.Context, in TurnInput) (*models.TurnResponse, error)
	NewSession(mode Mode, jobDescription, cvText string) *Session
	MaxQuestions() int
}

type conductor struct {
	llm           LLMService
	promptBuilder *PromptBuilder
	maxQuestions  int
	log           *zap.Logger
}

func NewConductor(llm LLMService, maxQuestions int, log *zap.Logger) Conductor {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &conductor{
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		maxQuestions:  maxQuestions,
		log:           log,
	}
}

func (c *conductor) MaxQuestions() int {
	return c.maxQuestions
}

// Prepare implements Conductor. The question count is the number of
// assistant messages already in the history plus the reply being produced.
func (c *conductor) Prepare(in TurnInput) PreparedTurn {
	count := models.CountRole(in.Messages, models.RoleAssistant) + 1
	turn := PreparedTurn{
		QuestionCount: count,
		Complete:      count >= c.maxQuestions,
	}

	switch in.Mode {
	case ModeStructured:
		messages := in.Messages
		if len(messages) <= 1 {
			messages = UserPrompt(c.promptBuilder.StructuredKickoff())
		}
		turn.Request = ChatRequest{
			System:      c.promptBuilder.BuildStructuredSystemPrompt(in.JobDescription, in.CVText),
			Messages:    messages,
			Temperature: Temperature(0.7),
		}
	default:
		messages := in.Messages
		if !models.HasSystemMessage(messages) {
			system := models.Message{
				Role:    models.RoleSystem,
				Content: c.promptBuilder.BuildConversationalSystemPrompt(in.JobDescription, in.CVText, c.maxQuestions),
			}
			messages = append([]models.Message{system}, messages...)
		}
		turn.Request = ChatRequest{
			Messages:    messages,
			Temperature: Temperature(0.7),
			MaxTokens:   1000,
		}
	}

	return turn
}

// Stream implements Conductor.
func (c *conductor) Stream(ctx context.Context, turn PreparedTurn) iter.Seq2[string, error] {
	c.log.Debug("interview turn",
		zap.Int("question_count", turn.QuestionCount),
		zap.Bool("complete", turn.Complete),
	)
	return c.llm.Stream(ctx, turn.Request)
}

// Reply implements Conductor.
func (c *conductor) Reply(ctx context.Context, in TurnInput) (*models.TurnResponse, error) {
	turn := c.Prepare(in)

	reply, err := c.llm.Generate(ctx, turn.Request)
	if err != nil {
		return nil, fmt.Errorf("failed to generate interview reply: %w", err)
	}

	return turn.Result(strings.TrimSpace(reply)), nil
}

// Session runs one interview in-process. It owns the transcript and the
// timing of each answer.
type Session struct {
	mu             sync.Mutex
	conductor      Conductor
	mode           Mode
	jobDescription string
	cvText         string
	history        []models.Message
	tracker        *TimingTracker
	questionCount  int
	started        bool
	complete       bool
	now            func() time.Time
}

func (c *conductor) NewSession(mode Mode, jobDescription, cvText string) *Session {
	return &Session{
		conductor:      c,
		mode:           mode,
		jobDescription: jobDescription,
		cvText:         cvText,
		tracker:        NewTimingTracker(),
		now:            time.Now,
	}
}

// Start asks the first question.
func (s *Session) Start(ctx context.Context) (*models.TurnResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil, errors.New("interview session already started")
	}

	resp, err := s.replyLocked(ctx, s.history)
	if err != nil {
		return nil, err
	}
	s.started = true
	s.commitLocked(s.history, resp)
	return resp, nil
}

// Answer records the candidate's answer and returns the next question.
// Nothing is recorded when the reply fails, so the answer can be retried.
func (s *Session) Answer(ctx context.Context, text string) (*models.TurnResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil, ErrSessionNotStarted
	}
	if s.complete {
		return nil, ErrInterviewComplete
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("answer must not be empty")
	}

	msg := models.Message{Role: models.RoleUser, Content: text, Timestamp: s.stamp()}
	timing, timingErr := s.tracker.Lap(strconv.Itoa(s.questionCount))
	if timingErr == nil {
		d := timing.Duration
		msg.ResponseTime = &d
	}
	history := append(slices.Clone(s.history), msg)

	resp, err := s.replyLocked(ctx, history)
	if err != nil {
		return nil, err
	}

	if timingErr == nil {
		s.tracker.Record(timing)
	}
	s.commitLocked(history, resp)
	return resp, nil
}

func (s *Session) replyLocked(ctx context.Context, history []models.Message) (*models.TurnResponse, error) {
	return s.conductor.Reply(ctx, TurnInput{
		Mode:           s.mode,
		Messages:       history,
		JobDescription: s.jobDescription,
		CVText:         s.cvText,
	})
}

func (s *Session) commitLocked(history []models.Message, resp *models.TurnResponse) {
	s.history = append(history, models.Message{Role: models.RoleAssistant, Content: resp.Reply, Timestamp: s.stamp()})
	s.questionCount = resp.QuestionCount

	if resp.Complete {
		s.complete = true
		s.history = append(s.history, models.Message{Role: models.RoleAssistant, Content: resp.ClosingMessage, Timestamp: s.stamp()})
		return
	}

	s.tracker.Start(strconv.Itoa(s.questionCount))
}

func (s *Session) stamp() *int64 {
	ms := s.now().UnixMilli()
	return &ms
}

// History returns a copy of the transcript.
func (s *Session) History() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) Timings() []models.ResponseTiming {
	return s.tracker.Timings()
}

func (s *Session) Complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.complete
}

func (s *Session) QuestionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionCount
}
