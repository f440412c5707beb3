package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"

	DefaultAdminPassword = "admin"
)

type Config struct {
	Port          string
	DBDriver      string
	DatabaseURL   string
	SecretKey     string
	SessionStore  string
	RedisURL      string
	SessionTTL    time.Duration
	SecureCookies bool
	Location      *time.Location
	LoginRate     float64
	LoginBurst    int
	AdminPassword string
	LogLevel      log.Lvl

	// GeneratedSecret reports that SECRET_KEY was unset and a random key
	// is in use, so sessions do not survive a restart.
	GeneratedSecret bool
}

// Load reads a .env file when one exists and builds the configuration
// from the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		log.Info("no .env file, reading the process environment only")
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:          env("PORT", "5000"),
		DBDriver:      strings.ToLower(env("DB_DRIVER", DriverSQLite)),
		DatabaseURL:   env("DATABASE_URL", "./database.db"),
		SecretKey:     os.Getenv("SECRET_KEY"),
		SessionStore:  strings.ToLower(env("SESSION_STORE", SessionStoreDatabase)),
		RedisURL:      os.Getenv("REDIS_URL"),
		AdminPassword: env("ADMIN_PASSWORD", DefaultAdminPassword),
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	switch cfg.SessionStore {
	case SessionStoreDatabase:
	case SessionStoreRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("REDIS_URL is required when SESSION_STORE=redis")
		}
	default:
		return nil, fmt.Errorf("unsupported SESSION_STORE %q", cfg.SessionStore)
	}

	var err error
	if cfg.SessionTTL, err = time.ParseDuration(env("SESSION_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("SESSION_TTL must be positive")
	}

	if cfg.SecureCookies, err = strconv.ParseBool(env("SECURE_COOKIES", "false")); err != nil {
		return nil, fmt.Errorf("parse SECURE_COOKIES: %w", err)
	}

	if cfg.Location, err = time.LoadLocation(env("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("load TIMEZONE: %w", err)
	}

	if cfg.LoginRate, err = strconv.ParseFloat(env("LOGIN_RATE_LIMIT", "5"), 64); err != nil {
		return nil, fmt.Errorf("parse LOGIN_RATE_LIMIT: %w", err)
	}
	if cfg.LoginBurst, err = strconv.Atoi(env("LOGIN_RATE_BURST", "10")); err != nil {
		return nil, fmt.Errorf("parse LOGIN_RATE_BURST: %w", err)
	}

	if cfg.LogLevel, err = parseLevel(env("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomSecret()
		cfg.GeneratedSecret = true
	}
	return cfg, nil
}

func (c *Config) UsesDefaultAdminPassword() bool {
	return c.AdminPassword == DefaultAdminPassword
}

func parseLevel(s string) (log.Lvl, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG, nil
	case "info":
		return log.INFO, nil
	case "warn", "warning":
		return log.WARN, nil
	case "error":
		return log.ERROR, nil
	case "off":
		return log.OFF, nil
	}
	return 0, fmt.Errorf("unsupported LOG_LEVEL %q", s)
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
