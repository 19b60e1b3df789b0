package config

import (
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
)

// Config holds runtime configuration values for the Pagesmith server.
type Config struct {
	DBPath            string
	ServerPort        int
	LogLevel          string
	LLMEndpoint       string
	LLMAPIKey         string
	LLMModel          string
	GenerationTimeout time.Duration
	SentryDSN         string
	Environment       string
	ShutdownGrace     time.Duration
	RateLimitPerSec   float64
	RateLimitBurst    int
	RateLimitTTL      time.Duration
}

const (
	defaultDBPath            = "./data/pagesmith.db"
	defaultServerPort        = 8080
	defaultLogLevel          = "info"
	defaultGenerationTimeout = 60 * time.Second
	defaultShutdownGrace     = 10 * time.Second
	defaultRateLimitPerSec   = 2.0
	defaultRateLimitBurst    = 5
	defaultRateLimitTTL      = 10 * time.Minute
)

// Load reads configuration values from environment variables, applying defaults where necessary.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:            getEnv("DB_PATH", defaultDBPath),
		LogLevel:          getEnv("LOG_LEVEL", defaultLogLevel),
		LLMEndpoint:       os.Getenv("LLM_ENDPOINT"),
		LLMAPIKey:         os.Getenv("LLM_API_KEY"),
		LLMModel:          os.Getenv("LLM_MODEL"),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
		Environment:       os.Getenv("ENV"),
		GenerationTimeout: defaultGenerationTimeout,
		ShutdownGrace:     defaultShutdownGrace,
		RateLimitPerSec:   defaultRateLimitPerSec,
		RateLimitBurst:    defaultRateLimitBurst,
		RateLimitTTL:      defaultRateLimitTTL,
	}

	portValue := getEnv("SERVER_PORT", strconv.Itoa(defaultServerPort))
	port, err := strconv.Atoi(portValue)
	if err != nil {
		return nil, eris.Wrapf(err, "invalid SERVER_PORT value: %s", portValue)
	}
	cfg.ServerPort = port

	if raw := os.Getenv("GENERATION_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid GENERATION_TIMEOUT value: %s", raw)
		}
		if timeout <= 0 {
			return nil, eris.Errorf("GENERATION_TIMEOUT must be positive, got %s", raw)
		}
		cfg.GenerationTimeout = timeout
	}

	if raw := os.Getenv("RATE_LIMIT_PER_SECOND"); raw != "" {
		perSec, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_PER_SECOND value: %s", raw)
		}
		if perSec <= 0 {
			return nil, eris.Errorf("RATE_LIMIT_PER_SECOND must be positive, got %s", raw)
		}
		cfg.RateLimitPerSec = perSec
	}

	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		burst, err := strconv.Atoi(raw)
		if err != nil {
			return nil, eris.Wrapf(err, "invalid RATE_LIMIT_BURST value: %s", raw)
		}
		if burst <= 0 {
			return nil, eris.Errorf("RATE_LIMIT_BURST must be positive, got %s", raw)
		}
		cfg.RateLimitBurst = burst
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
