// Package config loads brightpath settings from flags, BRIGHTPATH_*
// environment variables and an optional brightpath.yaml, in that order of
// precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/abhisek/brightpath/internal/course"
	"github.com/abhisek/brightpath/internal/llm"
	"github.com/abhisek/brightpath/internal/performance"
	"github.com/abhisek/brightpath/internal/store"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config is the complete application configuration.
type Config struct {
	DBPath string      `mapstructure:"db"`
	Store  StoreConfig `mapstructure:"store"`
	Events EventConfig `mapstructure:"events"`
	HTTP   HTTPConfig  `mapstructure:"http"`
	Log    LogConfig   `mapstructure:"log"`

	LLM    llm.Config         `mapstructure:"llm"`
	Course course.Config      `mapstructure:"course"`
	Engine performance.Config `mapstructure:"engine"`
}

// StoreConfig selects where performance records live. Events and rewards
// always go to SQLite.
type StoreConfig struct {
	Backend       string `mapstructure:"backend" validate:"oneof=sqlite mongo"`
	MongoURI      string `mapstructure:"mongo_uri" validate:"required_if=Backend mongo"`
	MongoDatabase string `mapstructure:"mongo_database" validate:"required_if=Backend mongo"`
}

// EventConfig configures event publishing. An empty AMQPURL logs events
// instead.
type EventConfig struct {
	AMQPURL  string `mapstructure:"amqp_url" validate:"omitempty,url"`
	Exchange string `mapstructure:"exchange" validate:"required"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	// AllowedOrigins enables CORS for browser clients. Empty disables it.
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"dive,required"`
}

// LogConfig configures the default slog logger.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":             "db",
	"store":          "store.backend",
	"mongo-uri":      "store.mongo_uri",
	"mongo-database": "store.mongo_database",
	"amqp-url":       "events.amqp_url",
	"amqp-exchange":  "events.exchange",
	"addr":           "http.addr",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// Load reads configuration. flags may be nil; only flags named in flagKeys
// are bound. configFile overrides the brightpath.yaml search.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	v := viper.New()
	if err := setDefaults(v); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("BRIGHTPATH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("brightpath")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/brightpath")
		v.AddConfigPath("/etc/brightpath")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = llm.ConfigFromEnv().Providers
	}
	if cfg.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.DBPath = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints, the engine tunables and the LLM setup.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("invalid llm config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) error {
	v.SetDefault("db", "")
	v.SetDefault("store.backend", BackendSQLite)
	v.SetDefault("store.mongo_uri", "")
	v.SetDefault("store.mongo_database", "brightpath")
	v.SetDefault("events.amqp_url", "")
	v.SetDefault("events.exchange", "brightpath.events")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.allowed_origins", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	lc := llm.DefaultConfig()
	v.SetDefault("llm.timeout", lc.Timeout)
	v.SetDefault("llm.retry.max_attempts", lc.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial_wait", lc.Retry.InitialWait)
	v.SetDefault("llm.retry.max_wait", lc.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", lc.Retry.Multiplier)

	cc := course.DefaultConfig()
	v.SetDefault("course.max_tokens", cc.MaxTokens)
	v.SetDefault("course.temperature", cc.Temperature)

	// Engine keys share their names with the JSON encoding, so a round
	// trip gives the nested defaults viper needs for env lookups.
	b, err := json.Marshal(performance.DefaultConfig())
	if err != nil {
		return fmt.Errorf("encode engine defaults: %w", err)
	}
	var engine map[string]any
	if err := json.Unmarshal(b, &engine); err != nil {
		return fmt.Errorf("decode engine defaults: %w", err)
	}
	for k, val := range engine {
		v.SetDefault("engine."+k, val)
	}
	return nil
}
