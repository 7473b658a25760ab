package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const devJWTSecret = "dev-secret-change-in-production"

var (
	ErrDevSecretInProduction     = errors.New("JWT_SECRET must be set in production environment")
	ErrAdminPasswordInProduction = errors.New("ADMIN_PASSWORD must be set with ADMIN_EMAIL in production environment")
)

type Config struct {
	Port           string
	Env            string
	LogLevel       string
	Store          string
	DatabaseDSN    string
	JWTSecret      string
	JWTExpiry      time.Duration
	RequestTimeout time.Duration

	Redis RedisConfig
	S3    S3Config
	Admin AdminConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether enough settings are present to presign uploads.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load resolves configuration from the environment, falling back to defaults.
// When CONFIG_FILE is set, values from that file are used beneath the environment.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "5000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORE", "mysql")
	v.SetDefault("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/recipebox?parseTime=true")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "90d")
	v.SetDefault("REQUEST_TIMEOUT", "5s")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("ADMIN_USERNAME", "admin")

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	expiry, err := ParseDuration(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return Config{}, fmt.Errorf("JWT_EXPIRES_IN: %w", err)
	}
	timeout, err := ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	ttl, err := ParseDuration(v.GetString("CACHE_TTL"))
	if err != nil {
		return Config{}, fmt.Errorf("CACHE_TTL: %w", err)
	}

	cfg := Config{
		Port:           v.GetString("PORT"),
		Env:            v.GetString("ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		Store:          v.GetString("STORE"),
		DatabaseDSN:    v.GetString("DATABASE_DSN"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTExpiry:      expiry,
		RequestTimeout: timeout,
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			TTL:      ttl,
		},
		S3: S3Config{
			Bucket:    v.GetString("S3_BUCKET"),
			Region:    v.GetString("S3_REGION"),
			Endpoint:  v.GetString("S3_ENDPOINT"),
			AccessKey: v.GetString("S3_ACCESS_KEY"),
			SecretKey: v.GetString("S3_SECRET_KEY"),
		},
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
	}

	if cfg.Env == "production" && cfg.JWTSecret == devJWTSecret {
		return Config{}, ErrDevSecretInProduction
	}
	if cfg.Env == "production" && cfg.Admin.Email != "" && cfg.Admin.Password == "" {
		return Config{}, ErrAdminPasswordInProduction
	}

	return cfg, nil
}

// ParseDuration accepts anything time.ParseDuration does plus a whole-day
// suffix such as "90d".
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}
