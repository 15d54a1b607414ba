package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects the tutor's provider. Only the section named by Provider
// is used.
type Config struct {
	// Provider is "openai", "anthropic", "gemini", "openrouter" or "mock".
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds a single tutor request.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // for OpenAI-compatible servers
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig uses OpenAI's gpt-4o with a one minute timeout.
func DefaultConfig() Config {
	return Config{
		Provider:   "openai",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "openai/gpt-4o-mini"},
		Timeout:    60 * time.Second,
	}
}

// settings maps each EXAMPREP_* variable to the field it sets.
func (c *Config) settings() map[string]*string {
	return map[string]*string{
		"EXAMPREP_LLM_PROVIDER":       &c.Provider,
		"EXAMPREP_OPENAI_API_KEY":     &c.OpenAI.APIKey,
		"EXAMPREP_OPENAI_MODEL":       &c.OpenAI.Model,
		"EXAMPREP_OPENAI_BASE_URL":    &c.OpenAI.BaseURL,
		"EXAMPREP_ANTHROPIC_API_KEY":  &c.Anthropic.APIKey,
		"EXAMPREP_ANTHROPIC_MODEL":    &c.Anthropic.Model,
		"EXAMPREP_GEMINI_API_KEY":     &c.Gemini.APIKey,
		"EXAMPREP_GEMINI_MODEL":       &c.Gemini.Model,
		"EXAMPREP_OPENROUTER_API_KEY": &c.OpenRouter.APIKey,
		"EXAMPREP_OPENROUTER_MODEL":   &c.OpenRouter.Model,
	}
}

// ConfigFromEnv applies the EXAMPREP_* variables that are set on top of
// DefaultConfig. EXAMPREP_LLM_TIMEOUT takes a Go duration such as "30s".
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for name, field := range cfg.settings() {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
	if d, err := time.ParseDuration(os.Getenv("EXAMPREP_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// vendorKeys are the vendors' own key variables, in the order they are
// tried when nothing is configured explicitly.
var vendorKeys = []struct {
	env      string
	provider string
}{
	{"OPENAI_API_KEY", "openai"},
	{"ANTHROPIC_API_KEY", "anthropic"},
	{"GEMINI_API_KEY", "gemini"},
	{"OPENROUTER_API_KEY", "openrouter"},
}

// DiscoverConfig picks the first provider whose vendor key variable is
// set. ok is false when none is.
func DiscoverConfig() (cfg Config, ok bool) {
	cfg = DefaultConfig()
	for _, v := range vendorKeys {
		key := os.Getenv(v.env)
		if key == "" {
			continue
		}
		cfg.Provider = v.provider
		*cfg.apiKey() = key
		return cfg, true
	}
	return Config{}, false
}

// apiKey points at the key field of the selected provider, or nil for
// providers that need none.
func (c *Config) apiKey() *string {
	switch c.Provider {
	case "openai":
		return &c.OpenAI.APIKey
	case "anthropic":
		return &c.Anthropic.APIKey
	case "gemini":
		return &c.Gemini.APIKey
	case "openrouter":
		return &c.OpenRouter.APIKey
	}
	return nil
}

// Validate checks that the selected provider is known and has its key.
func (c Config) Validate() error {
	if c.Provider == "mock" {
		return nil
	}
	key := c.apiKey()
	if key == nil {
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if *key == "" {
		return fmt.Errorf("the %s provider needs an API key; set EXAMPREP_%s_API_KEY", c.Provider, strings.ToUpper(c.Provider))
	}
	return nil
}

// Resolve prefers a valid EXAMPREP_* configuration and falls back to
// DiscoverConfig. ok is false when no provider is usable.
func Resolve() (Config, bool) {
	if cfg := ConfigFromEnv(); cfg.Validate() == nil {
		return cfg, true
	}
	return DiscoverConfig()
}
