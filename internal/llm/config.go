package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config selects and configures one provider.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string // OpenAI-compatible endpoints only

	Retry RetryConfig

	// Timeout bounds one explanation request, retries included.
	Timeout time.Duration
}

// RetryConfig configures backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// defaultModels are used when no model is configured.
var defaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
	ProviderMock:       "mock",
}

// discoveryOrder is the priority for generic *_API_KEY discovery.
var discoveryOrder = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}

// DefaultConfig returns defaults for provider.
func DefaultConfig(provider string) Config {
	return Config{
		Provider: provider,
		Model:    defaultModels[provider],
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv reads STUDYHALL_LLM_PROVIDER and the matching
// STUDYHALL_<PROVIDER>_API_KEY, STUDYHALL_LLM_MODEL and
// STUDYHALL_LLM_BASE_URL. It reports false when no provider is selected.
func ConfigFromEnv() (Config, bool) {
	p := strings.ToLower(strings.TrimSpace(os.Getenv("STUDYHALL_LLM_PROVIDER")))
	if p == "" {
		return Config{}, false
	}
	cfg := DefaultConfig(p)
	cfg.APIKey = os.Getenv(keyEnv(p))
	if m := os.Getenv("STUDYHALL_LLM_MODEL"); m != "" {
		cfg.Model = m
	}
	if u := os.Getenv("STUDYHALL_LLM_BASE_URL"); u != "" {
		cfg.BaseURL = u
	}
	if d, err := time.ParseDuration(os.Getenv("STUDYHALL_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg, true
}

// DiscoverConfig probes the vendors' standard API key variables and returns
// a config for the first one found.
func DiscoverConfig() (Config, bool) {
	for _, p := range discoveryOrder {
		if k := os.Getenv(strings.ToUpper(p) + "_API_KEY"); k != "" {
			cfg := DefaultConfig(p)
			cfg.APIKey = k
			return cfg, true
		}
	}
	return Config{}, false
}

// Resolve prefers explicit STUDYHALL_ settings and falls back to discovery.
func Resolve() (Config, bool) {
	if cfg, ok := ConfigFromEnv(); ok {
		return cfg, true
	}
	return DiscoverConfig()
}

// Validate checks that the provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.APIKey == "" {
			return fmt.Errorf("%s is required for the %s provider", keyEnv(c.Provider), c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
}

func keyEnv(provider string) string {
	return "STUDYHALL_" + strings.ToUpper(provider) + "_API_KEY"
}
