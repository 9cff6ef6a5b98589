// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the TTS router service.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8000"`

	// Codec configuration
	FFmpegPath          string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	CodecTimeoutSeconds int    `envconfig:"CODEC_TIMEOUT_SECONDS" default:"30"`
	MaxConcurrentCodecs int64  `envconfig:"MAX_CONCURRENT_CODECS" default:"4"`

	// Provider credentials. A provider with no credential configured is
	// simply not registered.
	ElevenLabsAPIKey  string `envconfig:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `envconfig:"ELEVENLABS_VOICE_ID"`
	OpenAIAPIKey      string `envconfig:"OPENAI_API_KEY"`

	// Observability configuration
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// CodecTimeout returns the per-invocation codec deadline.
func (c *Config) CodecTimeout() time.Duration {
	return time.Duration(c.CodecTimeoutSeconds) * time.Second
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads configuration directly from environment variables
// without consulting a .env file.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.MaxConcurrentCodecs < 1 {
		return nil, fmt.Errorf("MAX_CONCURRENT_CODECS must be at least 1, got %d", cfg.MaxConcurrentCodecs)
	}
	return &cfg, nil
}
