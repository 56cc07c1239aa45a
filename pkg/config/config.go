// Package config loads webpilot settings. Values come from built-in
// defaults, then a YAML file, then WEBPILOT_* environment variables; later
// sources override earlier ones.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// EnvPrefix is the prefix of environment overrides, e.g. WEBPILOT_LLM_MODEL.
	EnvPrefix = "WEBPILOT"

	// DefaultFileName is looked up in the working directory and ~/.webpilot.
	DefaultFileName = "webpilot.yaml"
)

// Config is the full application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Agent   AgentConfig   `mapstructure:"agent" yaml:"agent"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// LLMConfig configures the reasoning client.
type LLMConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	Model   string `mapstructure:"model" yaml:"model"`

	// Models are offered by the TUI model selector, in cycling order.
	Models []string `mapstructure:"models" yaml:"models"`
}

// BrowserConfig configures the Playwright driver.
type BrowserConfig struct {
	Headless      bool     `mapstructure:"headless" yaml:"headless"`
	Width         int      `mapstructure:"width" yaml:"width"`
	Height        int      `mapstructure:"height" yaml:"height"`
	PositionX     int      `mapstructure:"position_x" yaml:"position_x"`
	PositionY     int      `mapstructure:"position_y" yaml:"position_y"`
	SlowMoMS      int      `mapstructure:"slow_mo_ms" yaml:"slow_mo_ms"`
	StateFile     string   `mapstructure:"state_file" yaml:"state_file"`
	MaxTextLength int      `mapstructure:"max_text_length" yaml:"max_text_length"`
	StartURL      string   `mapstructure:"start_url" yaml:"start_url"`
	Blocklist     []string `mapstructure:"blocklist" yaml:"blocklist"`
	SkipInstall   bool     `mapstructure:"skip_install" yaml:"skip_install"`
}

// SlowMo returns the configured Playwright slow-motion delay.
func (b BrowserConfig) SlowMo() time.Duration {
	return time.Duration(b.SlowMoMS) * time.Millisecond
}

// AgentConfig configures the orchestrator.
type AgentConfig struct {
	MaxIterations int  `mapstructure:"max_iterations" yaml:"max_iterations"`
	PageGrounding bool `mapstructure:"page_grounding" yaml:"page_grounding"`
	BufferSize    int  `mapstructure:"buffer_size" yaml:"buffer_size"`
}

// LoggingConfig configures the rotating log file.
type LoggingConfig struct {
	Dir        string `mapstructure:"dir" yaml:"dir"`
	Level      string `mapstructure:"level" yaml:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// MetricsConfig configures the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-5.1")
	v.SetDefault("llm.models", []string{"gpt-5.1", "o4-mini", "gpt-4o", "o1-mini"})

	v.SetDefault("browser.headless", false)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 900)
	v.SetDefault("browser.position_x", 0)
	v.SetDefault("browser.position_y", 0)
	v.SetDefault("browser.slow_mo_ms", 100)
	v.SetDefault("browser.state_file", filepath.Join("user_data", "state.json"))
	v.SetDefault("browser.max_text_length", 25000)
	v.SetDefault("browser.start_url", "")
	v.SetDefault("browser.blocklist", []string{})
	v.SetDefault("browser.skip_install", false)

	v.SetDefault("agent.max_iterations", 25)
	v.SetDefault("agent.page_grounding", true)
	v.SetDefault("agent.buffer_size", 10)

	v.SetDefault("logging.dir", "")
	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)

	v.SetDefault("metrics.addr", "")
}

// NewViper returns a viper instance with defaults and environment bindings.
// If path is empty, DefaultFileName is searched in the working directory and
// in ~/.webpilot.
func NewViper(path string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(strings.TrimSuffix(DefaultFileName, filepath.Ext(DefaultFileName)))
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".webpilot"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// the OpenAI variables are honoured as fallbacks
	_ = v.BindEnv("llm.api_key", EnvPrefix+"_LLM_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.base_url", EnvPrefix+"_LLM_BASE_URL", "OPENAI_BASE_URL")
	return v
}

// Load reads the configuration. A missing file is not an error when path is
// empty; an explicitly named file must exist.
func Load(path string) (*Config, error) {
	v := NewViper(path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper unmarshals and validates the configuration held by v.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// defaults always decode
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the configuration for sane values. The API key is not
// required here: commands that need it check it themselves.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if c.Agent.BufferSize < 0 {
		return fmt.Errorf("agent.buffer_size must not be negative")
	}
	if c.Browser.Width <= 0 || c.Browser.Height <= 0 {
		return fmt.Errorf("browser window size must be positive, got %dx%d", c.Browser.Width, c.Browser.Height)
	}
	if c.Browser.MaxTextLength <= 0 {
		return fmt.Errorf("browser.max_text_length must be positive")
	}
	if c.Browser.SlowMoMS < 0 {
		return fmt.Errorf("browser.slow_mo_ms must not be negative")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	return nil
}

// ModelChoices returns the selectable models with the default model first.
func (c *Config) ModelChoices() []string {
	out := []string{c.LLM.Model}
	for _, m := range c.LLM.Models {
		if m != "" && m != c.LLM.Model {
			out = append(out, m)
		}
	}
	return out
}

// WriteFile writes cfg as YAML. The API key is never written. An existing
// file is only replaced when overwrite is set.
func WriteFile(path string, cfg *Config, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	out := *cfg
	out.LLM.APIKey = ""
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
