// Package config provides the configuration schema, loader, and provider
// registry for tubesage.
package config

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for tubesage.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Agent      AgentConfig      `yaml:"agent"`
	Provider   ProviderEntry    `yaml:"provider"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Server     ServerConfig     `yaml:"server"`
}

// AgentConfig describes the agent's identity and behaviour.
type AgentConfig struct {
	// Name is the agent's display name, shown in the welcome banner.
	Name string `yaml:"name"`

	// Instructions is the system prompt injected into every turn. When empty,
	// a built-in default is used.
	Instructions string `yaml:"instructions"`
}

// ProviderEntry selects and configures the LLM backend. The Name field is
// used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation (e.g., "openai", "ollama").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any. When
	// empty, the provider falls back to its conventional environment variable
	// (e.g. OPENAI_API_KEY).
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by the
	// standard fields above. Values may be strings, numbers, booleans, or nested maps.
	Options map[string]any `yaml:"options"`
}

// TranscriptConfig tunes transcript retrieval.
type TranscriptConfig struct {
	// Languages lists caption language codes in preference order
	// (e.g., ["en", "de"]). Defaults to ["en"] when empty.
	Languages []string `yaml:"languages"`
}

// ServerConfig holds logging and operational endpoint settings.
type ServerConfig struct {
	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the TCP address the Prometheus /metrics endpoint listens
	// on (e.g., ":9090"). When empty, no metrics endpoint is started.
	MetricsAddr string `yaml:"metrics_addr"`
}
