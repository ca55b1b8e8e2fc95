package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppName         = "Identra"
	defaultAppEnv          = "development"
	defaultPort            = "8080"
	defaultLogLevel        = "info"
	defaultBaseURL         = "http://localhost:8080"
	defaultShutdownDelay   = 10 * time.Second
	defaultSessionTTL      = 24 * time.Hour
	defaultProviderTimeout = 10 * time.Second
	sessionTTLSecondsVar   = "SESSION_TTL_SECONDS"
	sessionTTLDurVar       = "SESSION_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// ProviderCredentials holds one federated provider's client id and secret.
// A provider with an empty ID is not wired into the registry.
type ProviderCredentials struct {
	ID     string
	Secret string
}

// Config captures application runtime configuration loaded from environment
// variables.
type Config struct {
	AppName         string
	AppEnv          string
	Port            string
	LogLevel        string
	BaseURL         string
	DatabaseURL     string
	RedisURL        string
	S3Region        string
	S3Bucket        string
	Google          ProviderCredentials
	Facebook        ProviderCredentials
	Line            ProviderCredentials
	SessionTTL      time.Duration
	ProviderTimeout time.Duration
	ShutdownPeriod  time.Duration
}

// Load reads configuration values from the environment and populates a
// Config instance.
func Load() (Config, error) {
	cfg := Config{
		AppName:         getEnv("APP_NAME", defaultAppName),
		AppEnv:          getEnv("APP_ENV", defaultAppEnv),
		Port:            getEnv("PORT", defaultPort),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		BaseURL:         strings.TrimSuffix(getEnv("BASE_URL", defaultBaseURL), "/"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		S3Region:        os.Getenv("S3_REGION"),
		S3Bucket:        os.Getenv("S3_BUCKET"),
		Google:          ProviderCredentials{ID: os.Getenv("GOOGLE_CLIENT_ID"), Secret: os.Getenv("GOOGLE_CLIENT_SECRET")},
		Facebook:        ProviderCredentials{ID: os.Getenv("FACEBOOK_CLIENT_ID"), Secret: os.Getenv("FACEBOOK_CLIENT_SECRET")},
		Line:            ProviderCredentials{ID: os.Getenv("LINE_CHANNEL_ID"), Secret: os.Getenv("LINE_CHANNEL_SECRET")},
		SessionTTL:      defaultSessionTTL,
		ProviderTimeout: defaultProviderTimeout,
		ShutdownPeriod:  defaultShutdownDelay,
	}

	if d, err := durationEnv(sessionTTLSecondsVar, sessionTTLDurVar); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.SessionTTL = d
	}

	if d, err := durationEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar); err != nil {
		return Config{}, err
	} else if d > 0 {
		cfg.ShutdownPeriod = d
	}

	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROVIDER_TIMEOUT: %w", err)
		}
		cfg.ProviderTimeout = d
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must be set")
	}

	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("REDIS_URL must be set")
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// CallbackURL returns the registered redirect URL for a provider.
func (c Config) CallbackURL(provider string) string {
	return fmt.Sprintf("%s/auth/%s/callback", c.BaseURL, provider)
}

// durationEnv reads a duration from either a seconds variable or a
// time.ParseDuration variable, preferring the former.
func durationEnv(secondsVar, durationVar string) (time.Duration, error) {
	if v := os.Getenv(secondsVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", secondsVar, err)
		}
		return time.Duration(seconds) * time.Second, nil
	}
	if v := os.Getenv(durationVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationVar, err)
		}
		return d, nil
	}
	return 0, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
