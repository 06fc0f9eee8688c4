package models

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of an interview transcript. Timestamp is a unix
// time in milliseconds and ResponseTime is the answer duration in
// milliseconds; both are optional.
type Message struct {
	Role         Role   `json:"role"`
	Content      string `json:"content"`
	Timestamp    *int64 `json:"timestamp,omitempty"`
	ResponseTime *int64 `json:"responseTime,omitempty"`
}

func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// HasSystemMessage reports whether any message carries the system role.
func HasSystemMessage(messages []Message) bool {
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			return true
		}
	}
	return false
}

// CountRole returns the number of messages with the given role.
func CountRole(messages []Message, role Role) int {
	count := 0
	for _, msg := range messages {
		if msg.Role == role {
			count++
		}
	}
	return count
}

// FormatTranscript renders non-system messages as "ROLE: content" lines
// joined by sep.
func FormatTranscript(messages []Message, sep string) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Role)), msg.Content))
	}
	return strings.Join(lines, sep)
}

// ValidateMessages checks that every message has a known role.
func ValidateMessages(messages []Message) error {
	for i, msg := range messages {
		if !msg.Role.Valid() {
			return fmt.Errorf("message %d has invalid role %q", i, msg.Role)
		}
	}
	return nil
}
