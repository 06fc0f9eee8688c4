package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/logger"
)

var ErrNoJSON = errors.New("no JSON found in response")

// parseJSONResponse decodes model output into target. It first tries the
// text with markdown fences removed, then the outermost object or array.
func parseJSONResponse(response string, target any) error {
	cleaned := stripFences(response)
	if cleaned == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(cleaned), target); err == nil {
		return nil
	}

	candidate := extractJSON(cleaned)
	if candidate == "" {
		return ErrNoJSON
	}

	if err := json.Unmarshal([]byte(candidate), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return nil
}

func stripFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```JSON", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}

// extractJSON slices the outermost JSON object, or array when no object is
// present. It returns an empty string when neither is found.
func extractJSON(text string) string {
	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")

	hasObj := startObj != -1 && endObj > startObj
	hasArr := startArr != -1 && endArr > startArr

	switch {
	case hasObj && hasArr && startArr < startObj && endArr > endObj:
		return text[startArr : endArr+1]
	case hasObj:
		return text[startObj : endObj+1]
	case hasArr:
		return text[startArr : endArr+1]
	}

	return ""
}

// logFallback records that a fixed fallback replaced unparseable output.
func logFallback(log *zap.Logger, operation, raw string, err error) {
	log.Warn("using fallback result",
		zap.String("operation", operation),
		zap.Error(err),
		zap.String("raw", logger.Truncate(raw, 300)),
	)
}
