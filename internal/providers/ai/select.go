package ai

import (
	"strings"
	"time"

	"github.com/GriffinCanCode/DocStudio/backend/internal/providers/http/client"
)

// Config selects the completer
type Config struct {
	Provider     string
	Model        string
	Temperature  float64
	OpenAIKey    string
	AnthropicKey string
	GoogleKey    string
	OllamaURL    string
	// BaseURL overrides the selected provider's endpoint
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// UsableKey reports whether key looks like a real credential. Empty keys
// and the "your-...-api-key-here" placeholders from sample .env files are
// not usable.
func UsableKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	lower := strings.ToLower(key)
	return !(strings.HasPrefix(lower, "your-") && strings.HasSuffix(lower, "-here"))
}

// Select returns the completer for cfg.Provider, or false when that
// provider has no usable credentials. Only the named provider is
// considered.
func Select(cfg Config, c *client.Client) (Completer, bool) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAI:
		if UsableKey(cfg.OpenAIKey) {
			return NewOpenAI(c, cfg.BaseURL, cfg.OpenAIKey, cfg.Model, cfg.Temperature), true
		}
	case ProviderAnthropic:
		if UsableKey(cfg.AnthropicKey) {
			return NewAnthropic(c, cfg.BaseURL, cfg.AnthropicKey, cfg.Model), true
		}
	case ProviderGoogle:
		if UsableKey(cfg.GoogleKey) {
			return NewGoogle(c, cfg.BaseURL, cfg.GoogleKey, cfg.Model, cfg.Temperature), true
		}
	case ProviderOllama:
		base := cfg.BaseURL
		if base == "" {
			base = cfg.OllamaURL
		}
		if base != "" {
			return NewOllama(c, base, cfg.Model, cfg.Temperature), true
		}
	}
	return nil, false
}
