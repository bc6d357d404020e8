package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const minJWTSecretLen = 32

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	AppEnv  string `env:"APP_ENV" envDefault:"development"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	GoogleClientID     string `env:"GOOGLE_CLIENT_ID,required,notEmpty"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET,required,notEmpty"`
	GoogleCallbackURL  string `env:"GOOGLE_CALLBACK_URL,required,notEmpty"`

	AppJWTSecret string `env:"APP_JWT_SECRET,required,notEmpty"`
	JWTIssuer    string `env:"JWT_ISSUER" envDefault:"signin-service"`
	JWTAudience  string `env:"JWT_AUDIENCE" envDefault:"signin-service"`

	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// DatabaseURL is the pooled connection used at runtime; DirectURL,
	// when set, bypasses the pooler for migrations.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	DirectURL   string `env:"DIRECT_URL"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.AppJWTSecret) < minJWTSecretLen {
		return fmt.Errorf("APP_JWT_SECRET must be at least %d bytes", minJWTSecretLen)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// MigrationURL returns the DSN migrations should run against.
func (c Config) MigrationURL() string {
	if c.DirectURL != "" {
		return c.DirectURL
	}
	return c.DatabaseURL
}
