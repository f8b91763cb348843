package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv names the environment variable holding an optional YAML config path.
const ConfigEnv = "QUIZGEN_CONFIG"

type Config struct {
	Port          int           `yaml:"port"`
	DBPath        string        `yaml:"db_path"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	LogMode       string        `yaml:"log_mode"`
	TranscriptDir string        `yaml:"transcript_dir"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	// RateLimit is the number of quiz creations allowed per client IP per minute.
	RateLimit int `yaml:"rate_limit"`
	Workers   int `yaml:"workers"`
	// JobTimeout bounds one quiz generation run. Zero means no limit.
	JobTimeout time.Duration   `yaml:"job_timeout"`
	Translate  TranslateConfig `yaml:"translate"`
	Generate   GenerateConfig  `yaml:"generate"`
	Whisper    WhisperConfig   `yaml:"whisper"`
	Quiz       QuizConfig      `yaml:"quiz"`
}

type TranslateConfig struct {
	Engine            string  `yaml:"engine"`
	MaxChunkSize      int     `yaml:"max_chunk_size"`
	Concurrency       int     `yaml:"concurrency"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Preset            string  `yaml:"preset"`
	GoogleURL         string  `yaml:"google_url"`
	DeepLAPIKey       string  `yaml:"deepl_api_key"`
	OpenAIAPIKey      string  `yaml:"openai_api_key"`
	OpenAIModel       string  `yaml:"openai_model"`
	GeminiAPIKey      string  `yaml:"gemini_api_key"`
	GeminiModel       string  `yaml:"gemini_model"`
}

type GenerateConfig struct {
	Engine        string `yaml:"engine"`
	GradioURL     string `yaml:"gradio_url"`
	GradioAPIName string `yaml:"gradio_api_name"`
	HFToken       string `yaml:"hf_token"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIModel   string `yaml:"openai_model"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiModel   string `yaml:"gemini_model"`
}

type WhisperConfig struct {
	OpenAIAPIKey string `yaml:"openai_api_key"`
	Model        string `yaml:"model"`
	Language     string `yaml:"language"`
}

type QuizConfig struct {
	DefaultQuestions int    `yaml:"default_questions"`
	MinQuestions     int    `yaml:"min_questions"`
	MaxQuestions     int    `yaml:"max_questions"`
	DefaultLanguage  string `yaml:"default_language"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:        8080,
		CORSOrigins: []string{"*"},
		LogMode:     "dev",
		SessionTTL:  2 * time.Hour,
		RateLimit:   10,
		Workers:     2,
		JobTimeout:  10 * time.Minute,
		Translate: TranslateConfig{
			Engine:       "google",
			MaxChunkSize: 500,
			Concurrency:  1,
			Preset:       "general",
		},
		Generate: GenerateConfig{
			GradioAPIName: "predict",
		},
		Quiz: QuizConfig{
			DefaultQuestions: 10,
			MinQuestions:     5,
			MaxQuestions:     20,
			DefaultLanguage:  "en",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or $QUIZGEN_CONFIG when path is empty), then environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigEnv)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := parseYAML(data, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)
	cfg.resolveEngines()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse config: %w", err)
	}
	var extra yaml.Node
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		if err == nil {
			return fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.CORSOrigins = getEnvList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.LogMode = getEnv("LOG_MODE", cfg.LogMode)
	cfg.TranscriptDir = getEnv("TRANSCRIPT_DIR", cfg.TranscriptDir)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.RateLimit = getEnvInt("RATE_LIMIT", cfg.RateLimit)
	cfg.Workers = getEnvInt("WORKERS", cfg.Workers)
	cfg.JobTimeout = getEnvDuration("JOB_TIMEOUT", cfg.JobTimeout)

	t := &cfg.Translate
	t.Engine = getEnv("TRANSLATE_ENGINE", t.Engine)
	t.MaxChunkSize = getEnvInt("TRANSLATE_MAX_CHUNK", t.MaxChunkSize)
	t.Concurrency = getEnvInt("TRANSLATE_CONCURRENCY", t.Concurrency)
	t.RequestsPerSecond = getEnvFloat("TRANSLATE_RPS", t.RequestsPerSecond)
	t.Preset = getEnv("TRANSLATE_PRESET", t.Preset)
	t.GoogleURL = getEnv("GOOGLE_TRANSLATE_URL", t.GoogleURL)
	t.DeepLAPIKey = getEnv("DEEPL_API_KEY", t.DeepLAPIKey)
	t.OpenAIAPIKey = getEnv("OPENAI_API_KEY", t.OpenAIAPIKey)
	t.OpenAIModel = getEnv("TRANSLATE_OPENAI_MODEL", t.OpenAIModel)
	t.GeminiAPIKey = getEnv("GEMINI_API_KEY", t.GeminiAPIKey)
	t.GeminiModel = getEnv("TRANSLATE_GEMINI_MODEL", t.GeminiModel)

	g := &cfg.Generate
	g.Engine = getEnv("GENERATE_ENGINE", g.Engine)
	// CLIENT is the Gradio Space name the original deployment read.
	g.GradioURL = getEnv("GRADIO_URL", getEnv("CLIENT", g.GradioURL))
	g.GradioAPIName = getEnv("GRADIO_API_NAME", g.GradioAPIName)
	g.HFToken = getEnv("HF_TOKEN", g.HFToken)
	g.OpenAIAPIKey = getEnv("OPENAI_API_KEY", g.OpenAIAPIKey)
	g.OpenAIModel = getEnv("GENERATE_OPENAI_MODEL", g.OpenAIModel)
	g.GeminiAPIKey = getEnv("GEMINI_API_KEY", g.GeminiAPIKey)
	g.GeminiModel = getEnv("GENERATE_GEMINI_MODEL", g.GeminiModel)

	w := &cfg.Whisper
	w.OpenAIAPIKey = getEnv("WHISPER_API_KEY", w.OpenAIAPIKey)
	if w.OpenAIAPIKey == "" {
		w.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	w.Model = getEnv("WHISPER_MODEL", w.Model)
	w.Language = getEnv("WHISPER_LANGUAGE", w.Language)

	q := &cfg.Quiz
	q.DefaultQuestions = getEnvInt("QUIZ_QUESTIONS", q.DefaultQuestions)
	q.DefaultLanguage = getEnv("QUIZ_LANGUAGE", q.DefaultLanguage)
}

// resolveEngines picks a generation engine when none is configured: the
// Gradio app if one is set, then OpenAI, then Gemini.
func (c *Config) resolveEngines() {
	if c.Generate.Engine != "" {
		return
	}
	switch {
	case c.Generate.GradioURL != "":
		c.Generate.Engine = "gradio"
	case c.Generate.OpenAIAPIKey != "":
		c.Generate.Engine = "openai"
	case c.Generate.GeminiAPIKey != "":
		c.Generate.Engine = "gemini"
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Port < 1 || c.Port > 65535 {
		add("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Workers < 1 {
		add("workers must be at least 1, got %d", c.Workers)
	}
	if c.RateLimit < 0 {
		add("rate_limit must not be negative")
	}
	switch c.Translate.Engine {
	case "google", "deepl", "openai", "gemini":
	default:
		add("translate.engine %q is not one of google, deepl, openai, gemini", c.Translate.Engine)
	}
	if c.Translate.MaxChunkSize < 1 {
		add("translate.max_chunk_size must be positive, got %d", c.Translate.MaxChunkSize)
	}
	if c.Translate.Concurrency < 1 {
		add("translate.concurrency must be at least 1, got %d", c.Translate.Concurrency)
	}
	if c.Translate.RequestsPerSecond < 0 {
		add("translate.requests_per_second must not be negative")
	}
	switch c.Generate.Engine {
	case "", "gradio", "openai", "gemini":
	default:
		add("generate.engine %q is not one of gradio, openai, gemini", c.Generate.Engine)
	}
	q := c.Quiz
	if q.MinQuestions < 1 || q.MinQuestions > q.MaxQuestions {
		add("quiz bounds must satisfy 1 <= min_questions <= max_questions, got %d..%d", q.MinQuestions, q.MaxQuestions)
	} else if q.DefaultQuestions < q.MinQuestions || q.DefaultQuestions > q.MaxQuestions {
		add("quiz.default_questions %d is outside %d..%d", q.DefaultQuestions, q.MinQuestions, q.MaxQuestions)
	}
	if strings.TrimSpace(q.DefaultLanguage) == "" {
		add("quiz.default_language is required")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

// getEnvList reads a comma-separated list, dropping blank entries.
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
