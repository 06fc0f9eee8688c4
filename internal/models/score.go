package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Score is a numeric value produced by the LLM. Models sometimes quote
// numbers, so both 85 and "85" decode to the same value.
type Score float64

func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = 0
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("score %q is not numeric", raw)
		}
		*s = Score(f)
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("score is not numeric: %w", err)
	}
	*s = Score(f)
	return nil
}

// Int rounds the score to the nearest integer.
func (s Score) Int() int {
	return int(math.Round(float64(s)))
}
