package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/TechX-demo/easy-pay-cart/internal/db"
	"github.com/spf13/viper"
)

// Config holds runtime configuration parsed from environment variables and
// an optional env file named by CONFIG_FILE.
type Config struct {
	HTTPAddr        string `mapstructure:"HTTP_ADDR"`
	DBConnString    string `mapstructure:"DB_DSN"`
	SettingsBackend string `mapstructure:"SETTINGS_BACKEND"`
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	PaymentMethod   string `mapstructure:"PAYMENT_METHOD"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`

	PaymentDelayMS         int `mapstructure:"PAYMENT_DELAY_MS"`
	SessionTTLMinutes      int `mapstructure:"SESSION_TTL_MINUTES"`
	ShutdownTimeoutSeconds int `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	CatalogReloadSeconds   int `mapstructure:"CATALOG_RELOAD_SECONDS"`
	DBMaxConns             int `mapstructure:"DB_MAX_CONNS"`
}

var defaults = map[string]any{
	"HTTP_ADDR":                ":8080",
	"DB_DSN":                   "",
	"SETTINGS_BACKEND":         "memory",
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_PASSWORD":           "",
	"PAYMENT_METHOD":           "card",
	"LOG_LEVEL":                "info",
	"CORS_ORIGINS":             "*",
	"PAYMENT_DELAY_MS":         2000,
	"SESSION_TTL_MINUTES":      180,
	"SHUTDOWN_TIMEOUT_SECONDS": 10,
	"CATALOG_RELOAD_SECONDS":   60,
	"DB_MAX_CONNS":             8,
}

// FromEnv builds Config with defaults, overridden by the env file and then by
// environment variables.
func FromEnv() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.SettingsBackend {
	case "memory", "postgres", "redis":
	default:
		return fmt.Errorf("SETTINGS_BACKEND must be memory, postgres or redis, got %q", c.SettingsBackend)
	}
	if c.SettingsBackend == "postgres" && c.DBConnString == "" {
		return fmt.Errorf("SETTINGS_BACKEND=postgres requires DB_DSN")
	}
	switch c.PaymentMethod {
	case "card", "alipay":
	default:
		return fmt.Errorf("PAYMENT_METHOD must be card or alipay, got %q", c.PaymentMethod)
	}
	if c.CatalogReloadSeconds < 0 {
		return fmt.Errorf("CATALOG_RELOAD_SECONDS must not be negative")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("DB_MAX_CONNS must be at least 1")
	}
	if c.PaymentDelayMS < 0 {
		return fmt.Errorf("PAYMENT_DELAY_MS must not be negative")
	}
	return nil
}

func (c Config) PaymentDelay() time.Duration {
	return time.Duration(c.PaymentDelayMS) * time.Millisecond
}

func (c Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

func (c Config) PoolSettings() db.PoolSettings {
	return db.PoolSettings{MaxConns: int32(c.DBMaxConns)}
}

// CatalogReload is the catalog refresh interval; zero disables it.
func (c Config) CatalogReload() time.Duration {
	return time.Duration(c.CatalogReloadSeconds) * time.Second
}

func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
