package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	ErrMissingAIKey     = errors.New("generative ai api key not configured")
	ErrUnknownProvider  = errors.New("unknown llm provider")
	ErrInvalidRetryRule = errors.New("analysis max_attempts must be positive")
)

type Config struct {
	App      AppConfig      `toml:"app"`
	LLM      LLMConfig      `toml:"llm"`
	Analysis AnalysisConfig `toml:"analysis"`
	Maps     MapsConfig     `toml:"maps"`
	Upload   UploadConfig   `toml:"upload"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

// LLMConfig selects the model backend. Gemini is the default; the openai
// provider talks to any OpenAI-compatible endpoint.
type LLMConfig struct {
	Provider       string   `toml:"provider"`
	GeminiAPIKey   string   `toml:"gemini_api_key"`
	GeminiModel    string   `toml:"gemini_model"`
	BaseURL        string   `toml:"base_url"`
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	RequestTimeout Duration `toml:"request_timeout"`
}

type AnalysisConfig struct {
	MaxAttempts int      `toml:"max_attempts"`
	RetryDelay  Duration `toml:"retry_delay"`
}

type MapsConfig struct {
	APIKey     string   `toml:"api_key"`
	BaseURL    string   `toml:"base_url"`
	MaxResults int      `toml:"max_results"`
	Timeout    Duration `toml:"timeout"`
}

type UploadConfig struct {
	TempDir       string `toml:"temp_dir"`
	MaxImageBytes int64  `toml:"max_image_bytes"`
	MaxPDFBytes   int64  `toml:"max_pdf_bytes"`
}

// RedisConfig is optional; an empty Addr disables the analyze rate limiter.
type RedisConfig struct {
	Addr          string   `toml:"addr"`
	Password      string   `toml:"password"`
	DB            int      `toml:"db"`
	RateLimit     int      `toml:"rate_limit"`
	RateLimitSpan Duration `toml:"rate_limit_span"`
}

// RabbitMQConfig is optional; an empty URL disables analysis events.
type RabbitMQConfig struct {
	URL         string `toml:"url"`
	EventsQueue string `toml:"events_queue"`
}

// Duration decodes TOML strings such as "2s" or "90s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parse duration %q failed: %w", string(text), err)
	}
	d.Duration = parsed
	return nil
}

func Load() (*Config, error) {
	// .env is a convenience for local runs; a missing file is fine.
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

// Validate reports configuration faults that must stop the process. A missing
// maps key is not one of them: doctor lookup degrades to an explanatory message.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini:
		if strings.TrimSpace(c.LLM.GeminiAPIKey) == "" {
			return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAIKey)
		}
	case ProviderOpenAI:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return fmt.Errorf("%w: set LLM_API_KEY", ErrMissingAIKey)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, c.LLM.Provider)
	}
	if c.Analysis.MaxAttempts <= 0 {
		return ErrInvalidRetryRule
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) IsDev() bool {
	return c.App.Env == "dev"
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "health-diagnosis",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		LLM: LLMConfig{
			Provider:       ProviderGemini,
			GeminiModel:    "gemini-1.5-flash",
			BaseURL:        "https://dashscope.aliyuncs.com/compatible-mode/v1",
			Model:          "qwen-vl-max",
			RequestTimeout: Duration{90 * time.Second},
		},
		Analysis: AnalysisConfig{
			MaxAttempts: 3,
			RetryDelay:  Duration{2 * time.Second},
		},
		Maps: MapsConfig{
			BaseURL:    "https://maps.googleapis.com",
			MaxResults: 5,
			Timeout:    Duration{10 * time.Second},
		},
		Upload: UploadConfig{
			TempDir:       "",
			MaxImageBytes: 5 << 20,
			MaxPDFBytes:   10 << 20,
		},
		Redis: RedisConfig{
			RateLimit:     10,
			RateLimitSpan: Duration{time.Minute},
		},
		RabbitMQ: RabbitMQConfig{
			EventsQueue: "report.analysis.events",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", cfg.LLM.Provider))
	cfg.LLM.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.LLM.GeminiAPIKey)
	cfg.LLM.GeminiModel = getEnv("GEMINI_MODEL", cfg.LLM.GeminiModel)
	cfg.LLM.BaseURL = getEnv("LLM_BASE_URL", cfg.LLM.BaseURL)
	cfg.LLM.APIKey = getEnv("LLM_API_KEY", cfg.LLM.APIKey)
	cfg.LLM.Model = getEnv("LLM_MODEL", cfg.LLM.Model)
	cfg.LLM.RequestTimeout.Duration = getEnvAsDuration("LLM_REQUEST_TIMEOUT", cfg.LLM.RequestTimeout.Duration)

	cfg.Analysis.MaxAttempts = getEnvAsInt("ANALYSIS_MAX_ATTEMPTS", cfg.Analysis.MaxAttempts)
	cfg.Analysis.RetryDelay.Duration = getEnvAsDuration("ANALYSIS_RETRY_DELAY", cfg.Analysis.RetryDelay.Duration)

	cfg.Maps.APIKey = getEnv("GOOGLE_MAPS_API_KEY", cfg.Maps.APIKey)
	cfg.Maps.BaseURL = getEnv("GOOGLE_MAPS_BASE_URL", cfg.Maps.BaseURL)
	cfg.Maps.MaxResults = getEnvAsInt("GOOGLE_MAPS_MAX_RESULTS", cfg.Maps.MaxResults)
	cfg.Maps.Timeout.Duration = getEnvAsDuration("GOOGLE_MAPS_TIMEOUT", cfg.Maps.Timeout.Duration)

	cfg.Upload.TempDir = getEnv("UPLOAD_TEMP_DIR", cfg.Upload.TempDir)
	cfg.Upload.MaxImageBytes = int64(getEnvAsInt("UPLOAD_MAX_IMAGE_BYTES", int(cfg.Upload.MaxImageBytes)))
	cfg.Upload.MaxPDFBytes = int64(getEnvAsInt("UPLOAD_MAX_PDF_BYTES", int(cfg.Upload.MaxPDFBytes)))

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.RateLimit = getEnvAsInt("REDIS_RATE_LIMIT", cfg.Redis.RateLimit)
	cfg.Redis.RateLimitSpan.Duration = getEnvAsDuration("REDIS_RATE_LIMIT_SPAN", cfg.Redis.RateLimitSpan.Duration)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.EventsQueue = getEnv("RABBITMQ_EVENTS_QUEUE", cfg.RabbitMQ.EventsQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
