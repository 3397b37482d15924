// Package config loads skillbuilder settings from defaults, an optional
// config.yaml, a .env file and SKILLBUILDER_ prefixed environment
// variables, in increasing order of precedence.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/skillbuilder/skillbuilder/pkg/library"
	"github.com/skillbuilder/skillbuilder/pkg/ratelimit"
	"github.com/skillbuilder/skillbuilder/pkg/telemetry"
	llmtypes "github.com/skillbuilder/skillbuilder/pkg/types/llm"
)

const (
	// EnvPrefix is prepended to every environment override
	EnvPrefix = "SKILLBUILDER"
	// DefaultPort matches the port the bundled frontend proxies to
	DefaultPort = 3001
)

// RateLimitConfig selects the limiter backend and its two rules
type RateLimitConfig struct {
	Backend   string         `mapstructure:"backend"`
	RedisAddr string         `mapstructure:"redis_addr"`
	General   ratelimit.Rule `mapstructure:"general"`
	Generate  ratelimit.Rule `mapstructure:"generate"`
}

// Config is the fully resolved application configuration
type Config struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
	StaticDir   string `mapstructure:"static_dir"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`

	LLM       llmtypes.Config  `mapstructure:"llm"`
	Library   library.Config   `mapstructure:"library"`
	RateLimit RateLimitConfig  `mapstructure:"ratelimit"`
	Tracing   telemetry.Config `mapstructure:"tracing"`
}

// SetDefaults registers every known key so that environment overrides
// are picked up by Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", DefaultPort)
	v.SetDefault("environment", "development")
	v.SetDefault("static_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("llm.provider", llmtypes.ProviderAnthropic)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.max_tokens", llmtypes.DefaultMaxTokens)
	v.SetDefault("llm.timeout", llmtypes.DefaultTimeout)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")

	v.SetDefault("library.store", library.StoreTypeJSON)
	v.SetDefault("library.path", "")
	v.SetDefault("library.unique_ids", true)

	v.SetDefault("ratelimit.backend", ratelimit.BackendMemory)
	v.SetDefault("ratelimit.redis_addr", "localhost:6379")
	v.SetDefault("ratelimit.general.max", 100)
	v.SetDefault("ratelimit.general.window", 15*time.Minute)
	v.SetDefault("ratelimit.generate.max", 1000)
	v.SetDefault("ratelimit.generate.window", time.Hour)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "skillbuilder")
	v.SetDefault("tracing.sampler", "ratio")
	v.SetDefault("tracing.ratio", 1.0)
}

// Init wires environment variables, defaults and the config file into v.
// An explicit configFile must exist; otherwise config.yaml is looked up in
// $HOME/.skillbuilder and the working directory and may be absent.
func Init(v *viper.Viper, configFile string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("port", EnvPrefix+"_PORT", "PORT")
	_ = v.BindEnv("environment", EnvPrefix+"_ENVIRONMENT", "ENVIRONMENT", "NODE_ENV")

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to read config file %s", configFile)
		}
		return nil
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.skillbuilder")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return errors.Wrap(err, "failed to read config file")
		}
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment
// without overriding variables that are already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load %s", path)
		}
	}
	return nil
}

// Load decodes v into a Config and validates it
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "failed to decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	switch c.LogFormat {
	case "", "text", "fmt", "json":
	default:
		return errors.Errorf("unsupported log format: %s", c.LogFormat)
	}

	switch c.LLM.Provider {
	case llmtypes.ProviderAnthropic, llmtypes.ProviderOpenAI, llmtypes.ProviderGoogle:
	default:
		return errors.Errorf("unsupported llm provider: %s", c.LLM.Provider)
	}

	switch c.Library.Store {
	case library.StoreTypeJSON, library.StoreTypeSQLite:
	default:
		return errors.Errorf("unsupported library store: %s", c.Library.Store)
	}

	switch c.RateLimit.Backend {
	case ratelimit.BackendMemory:
	case ratelimit.BackendRedis:
		if c.RateLimit.RedisAddr == "" {
			return errors.New("ratelimit.redis_addr is required for the redis backend")
		}
	default:
		return errors.Errorf("unsupported rate limit backend: %s", c.RateLimit.Backend)
	}
	if err := c.RateLimit.General.Validate(); err != nil {
		return errors.Wrap(err, "ratelimit.general")
	}
	if err := c.RateLimit.Generate.Validate(); err != nil {
		return errors.Wrap(err, "ratelimit.generate")
	}

	return nil
}

// IsProduction reports whether the static frontend should be served
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
