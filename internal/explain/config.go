package explain

import "time"

// Config holds explanation generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Timeout bounds one Explain call. Zero means no extra bound beyond the
	// caller's context.
	Timeout time.Duration
}

// DefaultConfig returns defaults for explanation generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   600,
		Temperature: 0.3,
		Timeout:     30 * time.Second,
	}
}
