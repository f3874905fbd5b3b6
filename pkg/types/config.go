// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that call
// upstream services.
type HTTPConfig struct {
	// Timeout bounds each upstream HTTP call, retries included. A call that
	// exceeds it is reported as a transient failure. Zero means only
	// router.timeout applies.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 and 5xx responses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond limits outbound request rate; 0 disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// AIConfig holds settings for the Generative AI API that backs the
// classify, research, analyze, and summarize capabilities.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Model is the AI model identifier.
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the messages endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxTokens caps each response (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`
}

// SearchConfig holds settings for the web search capability.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// APIKey is the search provider key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// MaxResults is the maximum number of hits requested (default 5).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LookupBackend selects the entity data source.
type LookupBackend string

const (
	LookupPokeAPI LookupBackend = "pokeapi"
	LookupDex     LookupBackend = "dex"
	LookupChain   LookupBackend = "chain"
)

// LookupConfig holds settings for the entity lookup adapter.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Backend selects pokeapi, dex, or chain (dex first, then pokeapi).
	Backend LookupBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// BaseURL is the entity endpoint; the lower-cased name is appended.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// DexPath is the SQLite file used by the dex backend.
	DexPath string `json:"dex_path" yaml:"dex_path" mapstructure:"dex_path"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ReadTimeout     time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// RouterConfig holds request routing settings.
type RouterConfig struct {
	// Timeout bounds every capability call made while routing a request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`
}

// Config groups all settings. It is built once at process start and passed
// to every component; nothing below cmd/ reads the environment.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Router RouterConfig `json:"router" yaml:"router" mapstructure:"router"`
	AI     AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Lookup LookupConfig `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}
