package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrEmptyResume = errors.New("the PDF appears to be empty or couldn't be parsed")

// ResumeExtractor turns an uploaded PDF résumé into structured text.
type ResumeExtractor interface {
	ExtractText(ctx context.Context, file *multipart.FileHeader) (string, error)
	Structure(ctx context.Context, text string) (string, error)
}

type resumeExtractor struct {
	backendURL    string
	httpClient    *http.Client
	storage       StorageService
	pdfParser     PDFParserService
	llm           LLMService
	promptBuilder *PromptBuilder
	maxRetries    int
	log           *zap.Logger
}

// NewResumeExtractor forwards uploads to backendURL when it is set and
// otherwise parses them locally.
func NewResumeExtractor(
	backendURL string,
	storage StorageService,
	pdfParser PDFParserService,
	llm LLMService,
	maxRetries int,
	log *zap.Logger,
) ResumeExtractor {
	return &resumeExtractor{
		backendURL:    strings.TrimRight(backendURL, "/"),
		httpClient:    &http.Client{Timeout: 60 * time.Second},
		storage:       storage,
		pdfParser:     pdfParser,
		llm:           llm,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		log:           log,
	}
}

// ExtractText implements ResumeExtractor. It returns ErrEmptyResume when
// no text could be recovered.
func (r *resumeExtractor) ExtractText(ctx context.Context, file *multipart.FileHeader) (string, error) {
	var (
		text string
		err  error
	)
	if r.backendURL != "" {
		text, err = r.extractRemote(ctx, file)
	} else {
		text, err = r.extractLocal(file)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResume
	}

	r.log.Debug("resume text extracted", zap.Int("chars", len(text)), zap.Bool("remote", r.backendURL != ""))
	return text, nil
}

// Structure implements ResumeExtractor.
func (r *resumeExtractor) Structure(ctx context.Context, text string) (string, error) {
	response, err := GenerateWithRetry(ctx, r.llm, ChatRequest{
		System:   r.promptBuilder.ResumeExtractionSystem(),
		Messages: UserPrompt(r.promptBuilder.BuildResumeExtractionPrompt(text)),
	}, r.maxRetries, r.log)
	if err != nil {
		return "", fmt.Errorf("failed to structure resume: %w", err)
	}

	return strings.TrimSpace(response), nil
}

func (r *resumeExtractor) extractLocal(file *multipart.FileHeader) (string, error) {
	path, err := r.storage.SaveUpload(file, "resume")
	if err != nil {
		return "", err
	}
	defer func() {
		if err := r.storage.Remove(path); err != nil {
			r.log.Warn("failed to remove upload", zap.String("path", path), zap.Error(err))
		}
	}()

	text, err := r.pdfParser.ExtractText(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEmptyResume, err)
	}

	return text, nil
}

type pdfDataResponse struct {
	Data struct {
		Text string `json:"text"`
	} `json:"data"`
}

func (r *resumeExtractor) extractRemote(ctx context.Context, file *multipart.FileHeader) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Filename))
	header.Set("Content-Type", "application/pdf")

	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("failed to copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.backendURL+"/pdf-data", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP error! status: %d", resp.StatusCode)
	}

	var result pdfDataResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode backend response: %w", err)
	}

	return result.Data.Text, nil
}
