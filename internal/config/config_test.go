package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/ai-interviewer/internal/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Fatalf("expected port 3000, got %q", cfg.Server.Port)
	}
	if cfg.LLM.Provider != ProviderGemini {
		t.Fatalf("expected gemini provider, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 5*time.Minute {
		t.Fatalf("expected 5m llm timeout, got %s", cfg.LLM.Timeout)
	}
	if cfg.Interview.MaxQuestions != 7 {
		t.Fatalf("expected 7 questions, got %d", cfg.Interview.MaxQuestions)
	}
	if cfg.Qdrant.Enabled() {
		t.Fatalf("qdrant must be disabled without QDRANT_URL")
	}
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Groq")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("QDRANT_URL", "http://localhost:6334")
	t.Setenv("RESUME_BACKEND_URL", "http://extract.local/")
	t.Setenv("WORKER_POLL_INTERVAL", "2s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.LLM.Provider != ProviderGroq {
		t.Fatalf("expected groq provider, got %q", cfg.LLM.Provider)
	}
	if cfg.GetDatabaseDSN() != cfg.Database.SQLitePath {
		t.Fatalf("expected sqlite path as dsn, got %q", cfg.GetDatabaseDSN())
	}
	if !cfg.Qdrant.Enabled() {
		t.Fatalf("expected qdrant to be enabled")
	}
	if cfg.Storage.ResumeBackendURL != "http://extract.local" {
		t.Fatalf("expected trailing slash to be trimmed, got %q", cfg.Storage.ResumeBackendURL)
	}
	if cfg.Worker.PollInterval != 2*time.Second {
		t.Fatalf("expected 2s poll interval, got %s", cfg.Worker.PollInterval)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "interviewer.yaml")
	content := "LLM_PROVIDER: ollama\nINTERVIEW_MAX_QUESTIONS: 5\nPORT: \"8080\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.Provider != ProviderOllama || cfg.Interview.MaxQuestions != 5 || cfg.Server.Port != "8080" {
		t.Fatalf("config file values were not applied: %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Driver: DriverPostgres},
			LLM:       LLMConfig{Provider: ProviderGemini},
			Interview: InterviewConfig{MaxQuestions: 7},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown provider", mutate: func(c *Config) { c.LLM.Provider = "openai" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "mysql" }, wantErr: true},
		{name: "too few questions", mutate: func(c *Config) { c.Interview.MaxQuestions = 4 }, wantErr: true},
		{name: "too many questions", mutate: func(c *Config) { c.Interview.MaxQuestions = 8 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatalf("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateClampsCounters(t *testing.T) {
	cfg := &Config{
		Database:  DatabaseConfig{Driver: DriverSQLite},
		LLM:       LLMConfig{Provider: ProviderOllama},
		Interview: InterviewConfig{MaxQuestions: 6},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.LLM.MaxRetries != 1 || cfg.Worker.Concurrency != 1 {
		t.Fatalf("expected retries and concurrency clamped to 1, got %d and %d", cfg.LLM.MaxRetries, cfg.Worker.Concurrency)
	}
}

func TestInitDatabaseSQLite(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Env: "test"},
		Database: DatabaseConfig{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "test.db")},
	}

	db, err := InitDatabase(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("InitDatabase: %v", err)
	}
	if !db.Migrator().HasTable(&models.Interview{}) {
		t.Fatalf("expected interviews table to be migrated")
	}
}
