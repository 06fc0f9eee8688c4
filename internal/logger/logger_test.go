package logger

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithLLM(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	WithLLM(log, "  gemini ", "gemini-2.5-flash").Info("call")

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}

	ctx := entries[0].ContextMap()
	if ctx[FieldProvider] != "gemini" {
		t.Fatalf("expected provider gemini, got %q", ctx[FieldProvider])
	}
	if ctx[FieldModel] != "gemini-2.5-flash" {
		t.Fatalf("expected model field, got %q", ctx[FieldModel])
	}
}

func TestWithLLMSkipsEmptyFields(t *testing.T) {
	core, observed := observer.New(zapcore.InfoLevel)
	log := zap.New(core)

	WithLLM(log, "", "   ").Info("call")

	if got := len(observed.All()[0].Context); got != 0 {
		t.Fatalf("expected no fields, got %d", got)
	}

	if WithLLM(nil, "groq", "llama") == nil {
		t.Fatal("expected fallback logger for nil input")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "short", in: "  hello ", limit: 10, want: "hello"},
		{name: "cut", in: "abcdefgh", limit: 3, want: "abc..."},
		{name: "runes", in: "résumé", limit: 2, want: "ré..."},
		{name: "zero limit", in: "abc", limit: 0, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestNewWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	log, err := New(Options{JSON: true, Debug: true, File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatal("expected debug level to be enabled")
	}

	log.Info("written to file")
	_ = log.Sync()

	if !strings.HasSuffix(path, "app.log") {
		t.Fatalf("unexpected path %s", path)
	}
}
