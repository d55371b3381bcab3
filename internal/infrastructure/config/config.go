package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	AI        AIConfig
	Storage   StorageConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	AutoSave  AutoSaveConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
	Dev  bool   `envconfig:"DEV" default:"false"`
}

// AIConfig selects and tunes the assistant provider.
type AIConfig struct {
	Provider     string        `envconfig:"AI_PROVIDER" default:"openai"`
	Model        string        `envconfig:"AI_MODEL"`
	Temperature  float64       `envconfig:"AI_TEMPERATURE" default:"0.7"`
	OpenAIKey    string        `envconfig:"OPENAI_API_KEY"`
	AnthropicKey string        `envconfig:"ANTHROPIC_API_KEY"`
	GoogleKey    string        `envconfig:"GOOGLE_API_KEY"`
	OllamaURL    string        `envconfig:"OLLAMA_URL"`
	Timeout      time.Duration `envconfig:"AI_TIMEOUT" default:"60s"`
	RPS          float64       `envconfig:"AI_RPS" default:"0"`
}

// StorageConfig holds on-disk locations.
type StorageConfig struct {
	Root          string `envconfig:"STORAGE_ROOT" default:"./data"`
	DocumentsRoot string `envconfig:"DOCUMENTS_ROOT" default:"."`
	SettingsFile  string `envconfig:"SETTINGS_FILE" default:"./data/settings.yaml"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	File        string `envconfig:"LOG_FILE"`
}

// RateLimitConfig holds inbound rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	// Global shares one bucket across all clients instead of one per IP
	Global bool `envconfig:"RATE_LIMIT_GLOBAL" default:"false"`
}

// AutoSaveConfig seeds the workspace auto-save policy.
type AutoSaveConfig struct {
	Enabled  bool          `envconfig:"AUTOSAVE_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"60s"`
}

// Public is the configuration safe to show a client. It never carries keys.
type Public struct {
	AIProvider    string  `json:"aiProvider"`
	AIModel       string  `json:"aiModel"`
	AITemperature float64 `json:"aiTemperature"`
	UseRealAI     bool    `json:"useRealAI"`
}

// Load reads .env files (missing ones are skipped) and then the environment.
// Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
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
			Port: "8000",
			Host: "127.0.0.1",
		},
		AI: AIConfig{
			Provider:    "openai",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		Storage: StorageConfig{
			Root:          "./data",
			DocumentsRoot: ".",
			SettingsFile:  "./data/settings.yaml",
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		AutoSave: AutoSaveConfig{
			Enabled:  true,
			Interval: 60 * time.Second,
		},
	}
}

// Address returns host:port for the HTTP listener.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}
