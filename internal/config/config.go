package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Env        string
	LogLevel   string
	Database   DatabaseConfig
	HTTP       HTTPConfig
	GRPC       GRPCConfig
	Auth       AuthConfig
	Oracle     OracleConfig
	Transcript TranscriptConfig
	Booking    BookingConfig
}

// DatabaseConfig selects and locates the store.
type DatabaseConfig struct {
	Driver string // "memory" or "sqlite"
	Path   string // SQLite database file path
	Seed   bool   // load the default roster into an empty store
}

// HTTPConfig contains REST server settings.
type HTTPConfig struct {
	Address            string
	RateLimitPerMinute int
}

// GRPCConfig contains gRPC health server settings. An empty address disables it.
type GRPCConfig struct {
	Address string
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret string // JWT signing secret
}

// OracleConfig configures the Gemini model.
type OracleConfig struct {
	APIKey        string
	Model         string
	Timeout       time.Duration
	RatePerMinute int
	HistoryTurns  int
	Cooldown      time.Duration
}

// TranscriptConfig configures server-side chat history.
type TranscriptConfig struct {
	MaxTurns      int
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// BookingConfig holds engine settings.
type BookingConfig struct {
	ReleaseInterval time.Duration
}

const devSecret = "dev-secret-change-me"

var defaults = map[string]any{
	"ENV":                    "development",
	"LOG_LEVEL":              "info",
	"STORE_DRIVER":           "memory",
	"DB_PATH":                "skylark.db",
	"SEED_ROSTER":            true,
	"HTTP_ADDRESS":           ":8000",
	"RATE_LIMIT_PER_MINUTE":  120,
	"GRPC_ADDRESS":           ":50051",
	"JWT_SECRET":             "",
	"GEMINI_API_KEY":         "",
	"GEMINI_MODEL":           "gemini-2.0-flash",
	"ORACLE_TIMEOUT":         "30s",
	"ORACLE_RATE_PER_MINUTE": 15,
	"ORACLE_HISTORY_TURNS":   6,
	"RATE_LIMIT_COOLDOWN":    "60s",
	"TRANSCRIPT_TURNS":       10,
	"TRANSCRIPT_TTL":         "24h",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"RELEASE_INTERVAL":       "1h",
}

// Load reads configuration from defaults, an optional config.yaml in . or
// ./config, and environment variables, in increasing precedence.
// JWT_SECRET is required.
func Load() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set; required for production")
	}
	return cfg, nil
}

// LoadWithDefaults is like Load but uses a development default for JWT_SECRET.
// WARNING: Only use in development! Use Load() in production.
func LoadWithDefaults() (*Config, error) {
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = devSecret
	}
	return cfg, nil
}

func load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{
		Env:      v.GetString("ENV"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("STORE_DRIVER")),
			Path:   v.GetString("DB_PATH"),
			Seed:   v.GetBool("SEED_ROSTER"),
		},
		HTTP: HTTPConfig{
			Address:            v.GetString("HTTP_ADDRESS"),
			RateLimitPerMinute: v.GetInt("RATE_LIMIT_PER_MINUTE"),
		},
		GRPC: GRPCConfig{Address: v.GetString("GRPC_ADDRESS")},
		Auth: AuthConfig{JWTSecret: v.GetString("JWT_SECRET")},
		Oracle: OracleConfig{
			APIKey:        v.GetString("GEMINI_API_KEY"),
			Model:         v.GetString("GEMINI_MODEL"),
			Timeout:       v.GetDuration("ORACLE_TIMEOUT"),
			RatePerMinute: v.GetInt("ORACLE_RATE_PER_MINUTE"),
			HistoryTurns:  v.GetInt("ORACLE_HISTORY_TURNS"),
			Cooldown:      v.GetDuration("RATE_LIMIT_COOLDOWN"),
		},
		Transcript: TranscriptConfig{
			MaxTurns:      v.GetInt("TRANSCRIPT_TURNS"),
			TTL:           v.GetDuration("TRANSCRIPT_TTL"),
			RedisAddr:     v.GetString("REDIS_ADDR"),
			RedisPassword: v.GetString("REDIS_PASSWORD"),
			RedisDB:       v.GetInt("REDIS_DB"),
		},
		Booking: BookingConfig{ReleaseInterval: v.GetDuration("RELEASE_INTERVAL")},
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: want memory or sqlite", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		return errors.New("DB_PATH must be set for the sqlite driver")
	}
	if c.HTTP.Address == "" {
		return errors.New("HTTP_ADDRESS must not be empty")
	}
	if c.Oracle.HistoryTurns < 0 || c.Transcript.MaxTurns < 0 {
		return errors.New("ORACLE_HISTORY_TURNS and TRANSCRIPT_TURNS must not be negative")
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// String returns a string representation of the config (sensitive values are masked).
func (c *Config) String() string {
	return fmt.Sprintf("Config{Env: %s, Store: %s(%s), HTTP: %s, gRPC: %s, Oracle: %s configured=%t, Redis: %q, Auth: *** (masked) ***}",
		c.Env, c.Database.Driver, c.Database.Path, c.HTTP.Address, c.GRPC.Address,
		c.Oracle.Model, c.Oracle.APIKey != "", c.Transcript.RedisAddr)
}
