package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	Scoring   ScoringConfig   `mapstructure:"scoring"`
	Temporal  TemporalConfig  `mapstructure:"temporal"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	ReadTimeout    int `mapstructure:"read_timeout"`
	WriteTimeout   int `mapstructure:"write_timeout"`
	BodyLimitMB    int `mapstructure:"body_limit_mb"`
	RateLimitPerIP int `mapstructure:"rate_limit_per_ip"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// StorageConfig selects the road store. Backend is "postgres" or "memory".
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
}

type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	Enabled        bool          `mapstructure:"enabled"`
	PublishTimeout time.Duration `mapstructure:"publish_timeout"`
}

type ValkeyConfig struct {
	Addr    string `mapstructure:"addr"`
	Enabled bool   `mapstructure:"enabled"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MatchingConfig tunes road matching.
type MatchingConfig struct {
	BufferHalfWidthMeters float64 `mapstructure:"buffer_half_width_meters"`
	RegionRadiusMeters    float64 `mapstructure:"region_radius_meters"`
	MaxCandidates         int     `mapstructure:"max_candidates"`
	NearestLimit          int     `mapstructure:"nearest_limit"`
}

// ScoringConfig selects the condition provider. Provider is "static" or
// "http".
type ScoringConfig struct {
	Provider        string        `mapstructure:"provider"`
	StaticCondition float64       `mapstructure:"static_condition"`
	URL             string        `mapstructure:"url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RatePerSecond   float64       `mapstructure:"rate_per_second"`
	Burst           int           `mapstructure:"burst"`
	MaxAttempts     int           `mapstructure:"max_attempts"`
}

type TemporalConfig struct {
	HostPort  string `mapstructure:"host_port"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
	Enabled   bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: ROADPULSE_DATABASE_HOST → database.host
	v.SetEnvPrefix("ROADPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.body_limit_mb", 10)
	v.SetDefault("server.rate_limit_per_ip", 100)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "roadpulse")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "roadpulse")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 50)
	v.SetDefault("storage.backend", "postgres")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.enabled", true)
	v.SetDefault("nats.publish_timeout", 2*time.Second)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("valkey.enabled", true)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("matching.buffer_half_width_meters", 50.0)
	v.SetDefault("matching.region_radius_meters", 10000.0)
	v.SetDefault("matching.max_candidates", 500)
	v.SetDefault("matching.nearest_limit", 5)
	v.SetDefault("scoring.provider", "static")
	v.SetDefault("scoring.static_condition", 96.0)
	v.SetDefault("scoring.timeout", 30*time.Second)
	v.SetDefault("scoring.rate_per_second", 5.0)
	v.SetDefault("scoring.burst", 5)
	v.SetDefault("scoring.max_attempts", 2)
	v.SetDefault("temporal.host_port", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "condition-reports")
	v.SetDefault("temporal.enabled", false)
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Storage.Backend {
	case "memory":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("storage.backend must be postgres or memory, got %q", c.Storage.Backend))
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Enabled && c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if c.Matching.BufferHalfWidthMeters <= 0 {
		errs = append(errs, "matching.buffer_half_width_meters must be positive")
	}
	if c.Matching.RegionRadiusMeters <= 0 {
		errs = append(errs, "matching.region_radius_meters must be positive")
	}
	if c.Matching.MaxCandidates < 0 {
		errs = append(errs, "matching.max_candidates must not be negative")
	}

	switch c.Scoring.Provider {
	case "static":
	case "http":
		if c.Scoring.URL == "" {
			errs = append(errs, "scoring.url is required for the http provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("scoring.provider must be static or http, got %q", c.Scoring.Provider))
	}

	if c.Scoring.MaxAttempts < 1 {
		errs = append(errs, "scoring.max_attempts must be at least 1")
	}

	if c.Temporal.Enabled && c.Temporal.HostPort == "" {
		errs = append(errs, "temporal.host_port is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
