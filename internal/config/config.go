// Package config loads the server configuration.
//
// PRECEDENCE (lowest to highest):
//  1. Defaults()
//  2. YAML file (path argument, or CONFIG_PATH)
//  3. Environment variables, including those from a .env file
//
// A .env file never overrides a variable that is already set in the process
// environment; that is godotenv's behaviour.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// MinSecretLength matches auth.MinSecretLength. It is repeated here so a bad
// secret is reported as a config error before anything is constructed.
const MinSecretLength = 16

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig controls token keys and password hashing. TokenTTL 0 means
// keys never expire.
type AuthConfig struct {
	TokenSecret string        `yaml:"token_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BcryptCost  int           `yaml:"bcrypt_cost"`
}

// RedisConfig enables the token cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Defaults is the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			CORSOrigins:     []string{"http://localhost:3000"},
			ShutdownTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Path: "data/club-roster.db"},
		Auth:     AuthConfig{BcryptCost: 12},
		Redis:    RedisConfig{TTL: 5 * time.Minute},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration. path may be empty; CONFIG_PATH is used
// then, and no file at all is fine.
func Load(path string) (*Config, error) {
	// .env first, so CONFIG_PATH may come from it too
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: loading .env: %w", err)
	}

	cfg := Defaults()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overrides fields from the environment. A set but unparsable
// variable is an error rather than a silent fallback.
func (c *Config) applyEnv() error {
	var errs []error
	intVar := func(key string, dst *int) {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	durationVar := func(key string, dst *time.Duration) {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s=%q is not a duration", key, v))
				return
			}
			*dst = d
		}
	}
	stringVar := func(dst *string, keys ...string) {
		for _, key := range keys {
			if v, ok := os.LookupEnv(key); ok {
				*dst = v
				return
			}
		}
	}

	intVar("PORT", &c.Server.Port)
	if v, ok := os.LookupEnv("CORS_ORIGINS"); ok {
		c.Server.CORSOrigins = splitList(v)
	}
	durationVar("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	stringVar(&c.Database.Path, "DB_PATH")

	stringVar(&c.Auth.TokenSecret, "TOKEN_SECRET", "JWT_SECRET")
	durationVar("TOKEN_TTL", &c.Auth.TokenTTL)
	intVar("BCRYPT_COST", &c.Auth.BcryptCost)

	stringVar(&c.Redis.Addr, "REDIS_ADDR")
	stringVar(&c.Redis.Password, "REDIS_PASSWORD")
	intVar("REDIS_DB", &c.Redis.DB)
	durationVar("CACHE_TTL", &c.Redis.TTL)

	stringVar(&c.Log.Level, "LOG_LEVEL")
	stringVar(&c.Log.Format, "LOG_FORMAT")

	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: port %d out of range", c.Server.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("config: database path is required"))
	}
	if len(c.Auth.TokenSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("config: token secret must be at least %d characters (set TOKEN_SECRET)", MinSecretLength))
	}
	if c.Auth.TokenTTL < 0 {
		errs = append(errs, errors.New("config: token ttl must not be negative"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("config: bcrypt cost %d outside [4, 31]", c.Auth.BcryptCost))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("config: log format %q must be text or json", f))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level the way slog does ("debug", "INFO", "warn+2").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", l.Level, err)
	}
	return level, nil
}
