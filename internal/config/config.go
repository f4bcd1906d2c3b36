package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/joho/godotenv"
)

const devJWTSecret = "phoneauth-development-secret-change-me"

// Config holds the process settings of the phoneauth server.
type Config struct {
	Env      string
	HTTPAddr string
	LogLevel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// DatabaseURL selects the Postgres user store. Empty means in-memory.
	DatabaseURL string

	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	RateLimitLimit  int64
	RateLimitPeriod time.Duration

	OTPTimezoneOffset time.Duration

	// Warnings collects non-fatal findings for the caller to log once the
	// logger exists.
	Warnings []string
}

// Production reports whether APP_ENV is "production".
func (c *Config) Production() bool {
	return c != nil && c.Env == "production"
}

// Load reads envFile when it exists and then the process environment.
// Values already set in the environment win over the file.
func Load(envFile string) (*Config, error) {
	cfg := &Config{}
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}

	cfg.Env = getEnv("APP_ENV", "development")
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisPrefix = getEnv("REDIS_PREFIX", "pa:")
	cfg.DatabaseURL = getEnv("DATABASE_URL", "")
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "phoneauth")

	var err error
	if cfg.RedisDB, err = parseInt("REDIS_DB", "0"); err != nil {
		return nil, err
	}
	if cfg.AccessTokenTTL, err = parseDuration("ACCESS_TOKEN_TTL", "24h"); err != nil {
		return nil, err
	}
	limit, err := parseInt("RATE_LIMIT_LIMIT", "60")
	if err != nil {
		return nil, err
	}
	cfg.RateLimitLimit = int64(limit)
	if cfg.RateLimitPeriod, err = parseDuration("RATE_LIMIT_PERIOD", "1m"); err != nil {
		return nil, err
	}
	if cfg.OTPTimezoneOffset, err = parseDuration("OTP_TIMEZONE_OFFSET", "8h"); err != nil {
		return nil, err
	}

	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	if cfg.Production() {
		if len(cfg.JWTSecret) < 32 {
			return nil, errors.New("config: JWT_SECRET must be at least 32 bytes in production")
		}
		if cfg.RedisAddr == "" {
			return nil, errors.New("config: REDIS_ADDR is required in production")
		}
	} else if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
		cfg.Warnings = append(cfg.Warnings, "JWT_SECRET not set, using the development secret")
	}

	return cfg, nil
}

// Engine maps the process settings onto the library configuration.
func (c *Config) Engine() phoneAuth.Config {
	out := phoneAuth.DefaultConfig()
	out.JWT.PrivateKey = []byte(c.JWTSecret)
	out.JWT.Issuer = c.JWTIssuer
	out.JWT.AccessTTL = c.AccessTokenTTL
	out.OTP.TimezoneOffset = c.OTPTimezoneOffset
	out.Audit.Enabled = true
	out.Metrics.Enabled = true
	out.Metrics.EnableLatencyHistograms = true
	out.Security.ProductionMode = c.Production()
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid duration %q: %w", key, raw, err)
	}
	return d, nil
}

func parseInt(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s: invalid integer %q: %w", key, raw, err)
	}
	return n, nil
}
