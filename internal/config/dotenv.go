package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Env                      string        `env:"ENV"`
	Port                     string        `env:"PORT"`
	DatabaseURL              string        `env:"DATABASE_URL"`
	AutoMigrate              bool          `env:"AUTO_MIGRATE"`
	DBMaxOpenConns           int           `env:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int           `env:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeSeconds int           `env:"DB_CONN_MAX_LIFETIME_SECONDS"`
	DBConnMaxIdleTimeSeconds int           `env:"DB_CONN_MAX_IDLE_SECONDS"`
	JWTSecret                string        `env:"JWT_SECRET"`
	JWTExpiry                time.Duration `env:"JWT_EXPIRY"`
	JWTRefreshSecret         string        `env:"JWT_REFRESH_SECRET"`
	JWTRefreshExpiry         time.Duration `env:"JWT_REFRESH_EXPIRY"`
	RequestTimeout           time.Duration `env:"REQUEST_TIMEOUT"`
	InflightTTL              time.Duration `env:"INFLIGHT_TTL"`
	Timezone                 string        `env:"APP_TIMEZONE"`
	LogDebug                 bool          `env:"LOG_DEBUG"`
}

func Default() Config {
	return Config{
		Env:                      "development",
		Port:                     "8080",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		JWTSecret:                "dev-access-secret",
		JWTExpiry:                24 * time.Hour,
		JWTRefreshSecret:         "dev-refresh-secret",
		JWTRefreshExpiry:         7 * 24 * time.Hour,
		RequestTimeout:           10 * time.Second,
		InflightTTL:              10 * time.Second,
		Timezone:                 "UTC",
	}
}

// Load overlays environment variables on top of Default. Unset variables keep
// their default values.
func Load() (Config, error) {
	cfg := Default()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Env == "production" {
		if c.JWTSecret == Default().JWTSecret || c.JWTRefreshSecret == Default().JWTRefreshSecret {
			return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must be set in production")
		}
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTExpiry <= 0 || c.JWTRefreshExpiry <= 0 {
		return fmt.Errorf("token expiry must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the timezone used to decide what "today" means for game
// dates.
func (c Config) Location() (*time.Location, error) {
	name := strings.TrimSpace(c.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	port := strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
	if port == "" {
		port = Default().Port
	}
	return ":" + port
}

func (c Config) ConnMaxLifetime() time.Duration {
	return time.Duration(c.DBConnMaxLifetimeSeconds) * time.Second
}

func (c Config) ConnMaxIdleTime() time.Duration {
	return time.Duration(c.DBConnMaxIdleTimeSeconds) * time.Second
}
