package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Qdrant    QdrantConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Interview InterviewConfig
	Telemetry TelemetryConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type LogConfig struct {
	JSON  bool
	Debug bool
	File  string
}

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type LLMConfig struct {
	Provider     string
	Model        string
	MaxRetries   int
	Timeout      time.Duration
	GeminiAPIKey string
	GroqAPIKey   string
	GroqBaseURL  string
	OllamaHost   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

// Enabled reports whether a vector store is configured.
func (q QdrantConfig) Enabled() bool {
	return strings.TrimSpace(q.URL) != ""
}

type CacheConfig struct {
	Path string
}

type StorageConfig struct {
	UploadPath       string
	MaxFileSize      int64
	ResumeBackendURL string
}

type WorkerConfig struct {
	Concurrency  int
	PollInterval time.Duration
}

type InterviewConfig struct {
	MaxQuestions int
}

type TelemetryConfig struct {
	Enabled bool
	Dir     string
}

const (
	ProviderGemini = "gemini"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var defaults = map[string]any{
	"PORT":                    "3000",
	"ENV":                     "development",
	"LOG_JSON":                false,
	"LOG_DEBUG":               false,
	"LOG_FILE":                "",
	"DB_DRIVER":               DriverPostgres,
	"DB_HOST":                 "localhost",
	"DB_PORT":                 "5432",
	"DB_USER":                 "postgres",
	"DB_PASSWORD":             "postgres",
	"DB_NAME":                 "ai_interviewer",
	"SQLITE_PATH":             "./ai_interviewer.db",
	"LLM_PROVIDER":            ProviderGemini,
	"LLM_MODEL":               "",
	"LLM_MAX_RETRIES":         1,
	"LLM_TIMEOUT":             "5m",
	"GEMINI_API_KEY":          "",
	"GROQ_API_KEY":            "",
	"GROQ_BASE_URL":           "https://api.groq.com/openai/v1",
	"OLLAMA_HOST":             "http://localhost:11434",
	"QDRANT_URL":              "",
	"QDRANT_API_KEY":          "",
	"QDRANT_COLLECTION":       "interview_knowledge",
	"CACHE_PATH":              "",
	"UPLOAD_PATH":             "./uploads",
	"MAX_FILE_SIZE":           10485760,
	"RESUME_BACKEND_URL":      "",
	"WORKER_CONCURRENCY":      3,
	"WORKER_POLL_INTERVAL":    "10s",
	"INTERVIEW_MAX_QUESTIONS": 7,
	"TELEMETRY_ENABLED":       false,
	"TELEMETRY_DIR":           "logs",
}

// Load reads .env, the process environment and, when cfgFile is set, a
// config file whose keys use the same names as the environment variables.
func Load(cfgFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgFile, err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Log: LogConfig{
			JSON:  v.GetBool("LOG_JSON"),
			Debug: v.GetBool("LOG_DEBUG"),
			File:  v.GetString("LOG_FILE"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
			Host:       v.GetString("DB_HOST"),
			Port:       v.GetString("DB_PORT"),
			User:       v.GetString("DB_USER"),
			Password:   v.GetString("DB_PASSWORD"),
			DBName:     v.GetString("DB_NAME"),
			SQLitePath: v.GetString("SQLITE_PATH"),
		},
		LLM: LLMConfig{
			Provider:     strings.ToLower(v.GetString("LLM_PROVIDER")),
			Model:        v.GetString("LLM_MODEL"),
			MaxRetries:   v.GetInt("LLM_MAX_RETRIES"),
			Timeout:      v.GetDuration("LLM_TIMEOUT"),
			GeminiAPIKey: v.GetString("GEMINI_API_KEY"),
			GroqAPIKey:   v.GetString("GROQ_API_KEY"),
			GroqBaseURL:  v.GetString("GROQ_BASE_URL"),
			OllamaHost:   v.GetString("OLLAMA_HOST"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Cache: CacheConfig{
			Path: v.GetString("CACHE_PATH"),
		},
		Storage: StorageConfig{
			UploadPath:       v.GetString("UPLOAD_PATH"),
			MaxFileSize:      v.GetInt64("MAX_FILE_SIZE"),
			ResumeBackendURL: strings.TrimRight(v.GetString("RESUME_BACKEND_URL"), "/"),
		},
		Worker: WorkerConfig{
			Concurrency:  v.GetInt("WORKER_CONCURRENCY"),
			PollInterval: v.GetDuration("WORKER_POLL_INTERVAL"),
		},
		Interview: InterviewConfig{
			MaxQuestions: v.GetInt("INTERVIEW_MAX_QUESTIONS"),
		},
		Telemetry: TelemetryConfig{
			Enabled: v.GetBool("TELEMETRY_ENABLED"),
			Dir:     v.GetString("TELEMETRY_DIR"),
		},
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderGroq, ProviderOllama:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.Database.Driver)
	}

	if c.Interview.MaxQuestions < 5 || c.Interview.MaxQuestions > 7 {
		return fmt.Errorf("INTERVIEW_MAX_QUESTIONS must be between 5 and 7, got %d", c.Interview.MaxQuestions)
	}

	if c.LLM.MaxRetries < 1 {
		c.LLM.MaxRetries = 1
	}

	if c.Worker.Concurrency < 1 {
		c.Worker.Concurrency = 1
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	if c.Database.Driver == DriverSQLite {
		return c.Database.SQLitePath
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}
