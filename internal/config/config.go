package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Model     ModelConfig     `yaml:"model" mapstructure:"model"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Gemini    GeminiConfig    `yaml:"gemini" mapstructure:"gemini"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Worker    WorkerConfig    `yaml:"worker" mapstructure:"worker"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Queue     QueueConfig     `yaml:"queue" mapstructure:"queue"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "postgres" or "sqlite"
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
}

// ModelConfig selects the document model provider and bounds its input.
type ModelConfig struct {
	Provider         string  `yaml:"provider" mapstructure:"provider"` // "anthropic" or "gemini"
	MaxTokens        int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature      float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxDocumentBytes int64   `yaml:"max_document_bytes" mapstructure:"max_document_bytes"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// GeminiConfig holds Google Gemini API settings.
type GeminiConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// FetchConfig configures outbound HTTP for pages and documents.
type FetchConfig struct {
	UserAgent        string          `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs      int             `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts      int             `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int             `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int             `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64         `yaml:"multiplier" mapstructure:"multiplier"`
	MaxBodyBytes     int64           `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RateLimits       []HostRateLimit `yaml:"rate_limits" mapstructure:"rate_limits"`
}

// HostRateLimit caps requests per second to a single host.
type HostRateLimit struct {
	Host string  `yaml:"host" mapstructure:"host"`
	RPS  float64 `yaml:"rps" mapstructure:"rps"`
}

// Timeout returns the per-attempt fetch timeout.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// WorkerConfig configures a single enrichment invocation.
type WorkerConfig struct {
	NarrativePreview int `yaml:"narrative_preview" mapstructure:"narrative_preview"`
}

// ServerConfig configures the HTTP invocation endpoint.
type ServerConfig struct {
	Port                int `yaml:"port" mapstructure:"port"`
	ShutdownTimeoutSecs int `yaml:"shutdown_timeout_secs" mapstructure:"shutdown_timeout_secs"`
}

// QueueConfig configures the Redis-backed task queue.
type QueueConfig struct {
	RedisAddr     string `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int    `yaml:"redis_db" mapstructure:"redis_db"`
	Name          string `yaml:"name" mapstructure:"name"`
	Concurrency   int    `yaml:"concurrency" mapstructure:"concurrency"`
	MaxRetry      int    `yaml:"max_retry" mapstructure:"max_retry"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// secretKeys have no default but must still be readable from the
// environment when unmarshaling.
var secretKeys = []string{
	"store.database_url",
	"anthropic.key",
	"gemini.key",
	"queue.redis_password",
}

// Load reads configuration from an optional .env file, config.yaml, and
// SUMMONS_-prefixed environment variables, in increasing precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, eris.Wrap(err, "config: load .env")
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SUMMONS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, eris.Wrapf(err, "config: bind env %s", key)
		}
	}

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.table", "summons")
	v.SetDefault("model.provider", "anthropic")
	v.SetDefault("model.max_tokens", 2048)
	v.SetDefault("model.temperature", 0.0)
	v.SetDefault("model.max_document_bytes", 20<<20)
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "")
	v.SetDefault("fetch.user_agent", "summons-enricher/1.0")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.initial_backoff_ms", 1000)
	v.SetDefault("fetch.max_backoff_ms", 10000)
	v.SetDefault("fetch.multiplier", 2.0)
	v.SetDefault("fetch.max_body_bytes", 32<<20)
	v.SetDefault("worker.narrative_preview", 100)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout_secs", 15)
	v.SetDefault("queue.redis_addr", "localhost:6379")
	v.SetDefault("queue.redis_db", 0)
	v.SetDefault("queue.name", "summons")
	v.SetDefault("queue.concurrency", 4)
	v.SetDefault("queue.max_retry", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings required by a command mode: "enrich",
// "serve", "worker", "enqueue" or "migrate". All problems are reported
// together.
func (c *Config) Validate(mode string) error {
	var errs []string

	needStore := func() {
		switch c.Store.Driver {
		case "postgres", "sqlite":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q is not supported", c.Store.Driver))
		}
		if c.Store.DatabaseURL == "" {
			errs = append(errs, "store.database_url is required")
		}
	}
	needQueue := func() {
		if c.Queue.RedisAddr == "" {
			errs = append(errs, "queue.redis_addr is required")
		}
	}
	needEnrichment := func() {
		needStore()
		switch c.Model.Provider {
		case "anthropic":
			if c.Anthropic.Key == "" {
				errs = append(errs, "anthropic.key is required")
			}
		case "gemini":
			if c.Gemini.Key == "" {
				errs = append(errs, "gemini.key is required")
			}
		default:
			errs = append(errs, fmt.Sprintf("model.provider %q is not supported", c.Model.Provider))
		}
		if c.Model.MaxDocumentBytes <= 0 {
			errs = append(errs, "model.max_document_bytes must be > 0")
		}
		if c.Fetch.MaxAttempts < 1 {
			errs = append(errs, "fetch.max_attempts must be >= 1")
		}
	}

	switch mode {
	case "enrich":
		needEnrichment()
	case "serve":
		needEnrichment()
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "worker":
		needEnrichment()
		needQueue()
		if c.Queue.Concurrency < 1 {
			errs = append(errs, "queue.concurrency must be >= 1")
		}
	case "enqueue":
		needQueue()
	case "migrate":
		needStore()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
