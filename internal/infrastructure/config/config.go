package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxSearchResults is the most places one search may return
const MaxSearchResults = 20

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	LLM       LLMConfig
	Maps      MapsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// LLMConfig configures the Ollama-compatible chat endpoint and the turn budgets.
type LLMConfig struct {
	BaseURL              string        `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	Model                string        `envconfig:"LLM_MODEL" default:"llama3.2:1b"`
	IntentTimeout        time.Duration `envconfig:"LLM_INTENT_TIMEOUT" default:"3s"`
	IntentMaxTokens      int           `envconfig:"LLM_INTENT_MAX_TOKENS" default:"50"`
	NarrationTimeout     time.Duration `envconfig:"LLM_NARRATION_TIMEOUT" default:"10s"`
	NarrationMaxTokens   int           `envconfig:"LLM_NARRATION_MAX_TOKENS" default:"150"`
	NarrationTemperature float64       `envconfig:"LLM_NARRATION_TEMPERATURE" default:"0.7"`
	PromptsFile          string        `envconfig:"LLM_PROMPTS_FILE"`
}

// MapsConfig configures the Google Maps web services gateway.
type MapsConfig struct {
	APIKey            string  `envconfig:"GOOGLE_MAPS_API_KEY"`
	BaseURL           string  `envconfig:"MAPS_BASE_URL" default:"https://maps.googleapis.com/maps/api"`
	Language          string  `envconfig:"MAPS_LANGUAGE" default:"en"`
	Radius            int     `envconfig:"MAPS_RADIUS" default:"5000"`
	MaxResults        int     `envconfig:"MAPS_MAX_RESULTS" default:"20"`
	RequestsPerSecond float64 `envconfig:"MAPS_RPS" default:"10"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds allowed origins; "*" allows any.
type CORSConfig struct {
	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// Load reads an optional .env file (ENV_FILE or ./.env) and then the environment.
// Variables already set in the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			BaseURL:              "http://localhost:11434",
			Model:                "llama3.2:1b",
			IntentTimeout:        3 * time.Second,
			IntentMaxTokens:      50,
			NarrationTimeout:     10 * time.Second,
			NarrationMaxTokens:   150,
			NarrationTemperature: 0.7,
		},
		Maps: MapsConfig{
			BaseURL:           "https://maps.googleapis.com/maps/api",
			Language:          "en",
			Radius:            5000,
			MaxResults:        20,
			RequestsPerSecond: 10,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// Validate rejects values the server cannot run with. A missing maps API key
// is allowed; lookups then degrade instead of failing startup.
func (c *Config) Validate() error {
	var errs []error

	if _, err := url.ParseRequestURI(c.LLM.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("OLLAMA_URL: %w", err))
	}
	if _, err := url.ParseRequestURI(c.Maps.BaseURL); err != nil {
		errs = append(errs, fmt.Errorf("MAPS_BASE_URL: %w", err))
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		errs = append(errs, errors.New("LLM_MODEL must not be empty"))
	}
	if c.LLM.IntentTimeout <= 0 || c.LLM.NarrationTimeout <= 0 {
		errs = append(errs, errors.New("LLM timeouts must be positive"))
	}
	if c.LLM.IntentMaxTokens <= 0 || c.LLM.NarrationMaxTokens <= 0 {
		errs = append(errs, errors.New("LLM token limits must be positive"))
	}
	if c.Maps.Radius <= 0 || c.Maps.Radius > 50000 {
		errs = append(errs, fmt.Errorf("MAPS_RADIUS %d out of range (1-50000)", c.Maps.Radius))
	}
	if c.Maps.MaxResults <= 0 || c.Maps.MaxResults > MaxSearchResults {
		errs = append(errs, fmt.Errorf("MAPS_MAX_RESULTS %d out of range (1-%d)", c.Maps.MaxResults, MaxSearchResults))
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rps and burst must be positive when enabled"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil
		}
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
