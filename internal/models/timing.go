package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// ResponseTiming records how long the candidate took to answer one
// question. All values are milliseconds.
type ResponseTiming struct {
	QuestionID string `json:"questionId"`
	StartTime  int64  `json:"startTime"`
	EndTime    int64  `json:"endTime"`
	Duration   int64  `json:"duration"`
}

// ResponseTimes is the list of timings sent by clients. Besides the
// canonical array form it also accepts an object keyed by question number
// with the duration as value, e.g. {"1": 12000, "2": 8300}.
type ResponseTimes []ResponseTiming

func (rt *ResponseTimes) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*rt = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var raw []struct {
			QuestionID json.RawMessage `json:"questionId"`
			StartTime  float64         `json:"startTime"`
			EndTime    float64         `json:"endTime"`
			Duration   float64         `json:"duration"`
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode response timings: %w", err)
		}

		list := make([]ResponseTiming, 0, len(raw))
		for _, r := range raw {
			list = append(list, ResponseTiming{
				QuestionID: questionID(r.QuestionID),
				StartTime:  int64(r.StartTime),
				EndTime:    int64(r.EndTime),
				Duration:   int64(r.Duration),
			})
		}
		*rt = list
		return nil
	case '{':
		var byQuestion map[string]float64
		if err := json.Unmarshal(trimmed, &byQuestion); err != nil {
			return fmt.Errorf("decode response times map: %w", err)
		}

		keys := make([]string, 0, len(byQuestion))
		for k := range byQuestion {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.Atoi(keys[i])
			b, errB := strconv.Atoi(keys[j])
			if errA == nil && errB == nil {
				return a < b
			}
			return keys[i] < keys[j]
		})

		list := make([]ResponseTiming, 0, len(keys))
		for _, k := range keys {
			list = append(list, ResponseTiming{
				QuestionID: k,
				Duration:   int64(byQuestion[k]),
			})
		}
		*rt = list
		return nil
	default:
		return fmt.Errorf("response times must be an array or an object")
	}
}

// questionID accepts both "3" and 3.
func questionID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// TimingStats summarizes a list of response timings in seconds.
type TimingStats struct {
	Count          int     `json:"count"`
	AverageSeconds int     `json:"averageSeconds"`
	FastestSeconds float64 `json:"fastestSeconds"`
	SlowestSeconds float64 `json:"slowestSeconds"`
}

// SummarizeTimings computes the rounded average, fastest and slowest
// durations. An empty list yields zero values.
func SummarizeTimings(timings []ResponseTiming) TimingStats {
	if len(timings) == 0 {
		return TimingStats{}
	}

	var total int64
	fastest := int64(math.MaxInt64)
	var slowest int64
	for _, t := range timings {
		total += t.Duration
		if t.Duration < fastest {
			fastest = t.Duration
		}
		if t.Duration > slowest {
			slowest = t.Duration
		}
	}

	avg := float64(total) / float64(len(timings)) / 1000

	return TimingStats{
		Count:          len(timings),
		AverageSeconds: int(math.Round(avg)),
		FastestSeconds: float64(fastest) / 1000,
		SlowestSeconds: float64(slowest) / 1000,
	}
}
