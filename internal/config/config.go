// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Exa     ExaConfig     `mapstructure:"exa"`
	DB      DBConfig      `mapstructure:"db"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	Archive ArchiveConfig `mapstructure:"archive"`
	PubSub  PubSubConfig  `mapstructure:"pubsub"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig guards the ingestion trigger endpoint.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// ExaConfig configures the content-discovery client.
type ExaConfig struct {
	APIKey         string `mapstructure:"api_key"`
	BaseURL        string `mapstructure:"base_url"`
	Query          string `mapstructure:"query"`
	NumResults     int    `mapstructure:"num_results"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// IngestConfig governs the periodic ingestion poller.
type IngestConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes"`
}

// ArchiveConfig selects where raw search responses are archived.
type ArchiveConfig struct {
	Provider string `mapstructure:"provider"` // gcs, local or noop
	Bucket   string `mapstructure:"bucket"`
	Dir      string `mapstructure:"dir"`
	Prefix   string `mapstructure:"prefix"`
}

// PubSubConfig selects the ingestion event publisher.
type PubSubConfig struct {
	Provider  string `mapstructure:"provider"` // pubsub or noop
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("exa.base_url", "https://api.exa.ai")
	v.SetDefault("exa.query", "Bangladesh-related news coverage by Indian Media")
	v.SetDefault("exa.num_results", 100)
	v.SetDefault("exa.timeout_seconds", 60)
	v.SetDefault("db.max_conns", 8)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("ingest.enabled", true)
	v.SetDefault("ingest.interval_minutes", 60)
	v.SetDefault("archive.provider", "noop")
	v.SetDefault("archive.prefix", "exa-responses")
	v.SetDefault("pubsub.provider", "noop")
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.DB.DSN == "" {
		return fmt.Errorf("db.dsn is required")
	}
	if c.Exa.APIKey == "" {
		return fmt.Errorf("exa.api_key is required")
	}
	if c.Exa.NumResults <= 0 || c.Exa.NumResults > 100 {
		return fmt.Errorf("exa.num_results must be in (0, 100]")
	}
	if c.Ingest.Enabled && c.Ingest.IntervalMinutes <= 0 {
		return fmt.Errorf("ingest.interval_minutes must be > 0 when ingest is enabled")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	switch c.Archive.Provider {
	case "gcs":
		if c.Archive.Bucket == "" {
			return fmt.Errorf("archive.bucket is required for the gcs provider")
		}
	case "local":
		if c.Archive.Dir == "" {
			return fmt.Errorf("archive.dir is required for the local provider")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown archive provider %q", c.Archive.Provider)
	}
	switch c.PubSub.Provider {
	case "pubsub":
		if c.PubSub.ProjectID == "" || c.PubSub.Topic == "" {
			return fmt.Errorf("pubsub.project_id and pubsub.topic are required for the pubsub provider")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown pubsub provider %q", c.PubSub.Provider)
	}
	return nil
}

// ExaTimeout converts the configured timeout into a duration.
func (c Config) ExaTimeout() time.Duration {
	return time.Duration(c.Exa.TimeoutSeconds) * time.Second
}

// IngestInterval converts the configured poll interval into a duration.
func (c Config) IngestInterval() time.Duration {
	return time.Duration(c.Ingest.IntervalMinutes) * time.Minute
}
