package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all completion-service configuration.
type Config struct {
	// Provider selects the backend.
	// Values: "ollama", "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Ollama     OllamaConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single completion call including retries.
	Timeout time.Duration
}

// OllamaConfig targets a local Ollama server through its OpenAI-compatible API.
type OllamaConfig struct {
	Model   string // Default: "deepseek-r1:1.5b"
	BaseURL string // Default: "http://localhost:11434/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
	AppName string // Sent as X-Title. Default: "quizforge"
	SiteURL string // Sent as HTTP-Referer when set.
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config targeting a local Ollama model. Question
// generation prompts are long, so the timeout is generous.
func DefaultConfig() Config {
	return Config{
		Provider: "ollama",
		Ollama: OllamaConfig{
			Model:   "deepseek-r1:1.5b",
			BaseURL: defaultOllamaBaseURL,
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 5 * time.Minute,
	}
}

// ConfigFromEnv builds a Config from QUIZFORGE_* environment variables,
// falling back to defaults for unset values. When QUIZFORGE_LLM_PROVIDER is
// not set, the standard vendor key variables are checked (see DiscoverConfig).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if _, ok := os.LookupEnv("QUIZFORGE_LLM_PROVIDER"); !ok {
		if discovered, found := DiscoverConfig(); found {
			cfg = discovered
		}
	}

	setFromEnv(&cfg.Provider, "QUIZFORGE_LLM_PROVIDER")

	setFromEnv(&cfg.Ollama.Model, "QUIZFORGE_OLLAMA_MODEL")
	setFromEnv(&cfg.Ollama.BaseURL, "QUIZFORGE_OLLAMA_BASE_URL")

	setFromEnv(&cfg.Anthropic.APIKey, "QUIZFORGE_ANTHROPIC_API_KEY")
	setFromEnv(&cfg.Anthropic.Model, "QUIZFORGE_ANTHROPIC_MODEL")

	setFromEnv(&cfg.OpenAI.APIKey, "QUIZFORGE_OPENAI_API_KEY")
	setFromEnv(&cfg.OpenAI.Model, "QUIZFORGE_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "QUIZFORGE_OPENAI_BASE_URL")

	setFromEnv(&cfg.Gemini.APIKey, "QUIZFORGE_GEMINI_API_KEY")
	setFromEnv(&cfg.Gemini.Model, "QUIZFORGE_GEMINI_MODEL")

	setFromEnv(&cfg.OpenRouter.APIKey, "QUIZFORGE_OPENROUTER_API_KEY")
	setFromEnv(&cfg.OpenRouter.Model, "QUIZFORGE_OPENROUTER_MODEL")
	setFromEnv(&cfg.OpenRouter.BaseURL, "QUIZFORGE_OPENROUTER_BASE_URL")
	setFromEnv(&cfg.OpenRouter.AppName, "QUIZFORGE_OPENROUTER_APP_NAME")
	setFromEnv(&cfg.OpenRouter.SiteURL, "QUIZFORGE_OPENROUTER_SITE_URL")

	if v := os.Getenv("QUIZFORGE_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// DiscoverConfig checks standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has what it needs to connect.
func (c Config) Validate() error {
	switch c.Provider {
	case "ollama":
		if c.Ollama.Model == "" {
			return fmt.Errorf("QUIZFORGE_OLLAMA_MODEL is required for the ollama provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("QUIZFORGE_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
