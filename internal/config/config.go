// Package config loads mathdaily settings from an optional YAML file,
// MATHDAILY_* environment variables and the standard provider key
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/logger"
)

// EnvPrefix is prepended to every automatically bound variable.
const EnvPrefix = "MATHDAILY"

type Config struct {
	LLM        llm.Config       `mapstructure:"llm"`
	Generation GenerationConfig `mapstructure:"generation"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        logger.Config    `mapstructure:"log"`
	Server     ServerConfig     `mapstructure:"server"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
}

type GenerationConfig struct {
	ChunkSize      int           `mapstructure:"chunk_size"`
	BatchTimeout   time.Duration `mapstructure:"batch_timeout"`
	RewriteTimeout time.Duration `mapstructure:"rewrite_timeout"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Temperature    float64       `mapstructure:"temperature"`
	WorksheetSize  int           `mapstructure:"worksheet_size"`
}

type StoreConfig struct {
	// DSN is a SQLite path/URI or a postgres:// URL. Empty means the
	// default per-user SQLite file.
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

// Load reads configuration. An explicit path must exist; without one,
// mathdaily.yaml is looked up in the working directory and the user
// config directory and silently skipped when absent.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("mathdaily")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "mathdaily"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = discoverProvider(cfg.LLM)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no file or env is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks the settings every command depends on. LLM credentials
// are checked separately through LLM.Validate by the commands that need
// a provider.
func (c *Config) Validate() error {
	if c.Generation.ChunkSize < 1 {
		return &llm.ConfigError{Field: "generation.chunk_size", Reason: "must be at least 1"}
	}
	if c.Generation.BatchTimeout <= 0 {
		return &llm.ConfigError{Field: "generation.batch_timeout", Reason: "must be positive"}
	}
	if c.Generation.WorksheetSize < 1 {
		return &llm.ConfigError{Field: "generation.worksheet_size", Reason: "must be at least 1"}
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		return &llm.ConfigError{Field: "log.mode", Reason: fmt.Sprintf("must be dev or prod, got %q", c.Log.Mode)}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := llm.DefaultConfig()

	// llm.provider has no default so discovery can tell "unset" apart.
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", d.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", d.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.openai.response_format", "")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", d.Gemini.Model)
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", d.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.openrouter.response_format", "")
	v.SetDefault("llm.openrouter.app_name", "mathdaily")
	v.SetDefault("llm.openrouter.app_url", "")
	v.SetDefault("llm.retry.max_attempts", d.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", d.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", d.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", d.Retry.Multiplier)
	v.SetDefault("llm.timeout", d.Timeout)

	v.SetDefault("generation.chunk_size", 3)
	v.SetDefault("generation.batch_timeout", 60*time.Second)
	v.SetDefault("generation.rewrite_timeout", 30*time.Second)
	v.SetDefault("generation.max_tokens", 4096)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.worksheet_size", 10)

	v.SetDefault("store.dsn", "")

	v.SetDefault("log.mode", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})

	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", 10*time.Minute)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "mathdaily")
}

// bindEnv maps the short and conventional variable names. Explicit names
// win over the prefixed automatic ones, which are listed first.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("llm.provider", "MATHDAILY_LLM_PROVIDER")
	_ = v.BindEnv("llm.anthropic.api_key", "MATHDAILY_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.anthropic.model", "MATHDAILY_ANTHROPIC_MODEL")
	_ = v.BindEnv("llm.anthropic.base_url", "MATHDAILY_ANTHROPIC_BASE_URL")
	_ = v.BindEnv("llm.openai.api_key", "MATHDAILY_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.openai.model", "MATHDAILY_OPENAI_MODEL")
	_ = v.BindEnv("llm.openai.base_url", "MATHDAILY_OPENAI_BASE_URL")
	_ = v.BindEnv("llm.gemini.api_key", "MATHDAILY_GEMINI_API_KEY", "GEMINI_API_KEY")
	_ = v.BindEnv("llm.gemini.model", "MATHDAILY_GEMINI_MODEL")
	_ = v.BindEnv("llm.openrouter.api_key", "MATHDAILY_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")
	_ = v.BindEnv("llm.openrouter.model", "MATHDAILY_OPENROUTER_MODEL")

	_ = v.BindEnv("store.dsn", "MATHDAILY_DB", "DATABASE_URL")
	_ = v.BindEnv("cache.redis_url", "MATHDAILY_REDIS_URL", "REDIS_URL")
	_ = v.BindEnv("server.addr", "MATHDAILY_SERVER_ADDR", "MATHDAILY_ADDR")
	_ = v.BindEnv("log.level", "MATHDAILY_LOG_LEVEL")
	_ = v.BindEnv("log.mode", "MATHDAILY_LOG_MODE")
}

// discoverProvider picks the first provider with a key, in the order
// Gemini, OpenAI, Anthropic, OpenRouter.
func discoverProvider(c llm.Config) string {
	switch {
	case c.Gemini.APIKey != "":
		return "gemini"
	case c.OpenAI.APIKey != "":
		return "openai"
	case c.Anthropic.APIKey != "":
		return "anthropic"
	case c.OpenRouter.APIKey != "":
		return "openrouter"
	}
	return ""
}
