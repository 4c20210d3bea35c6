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
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Redis      RedisConfig
	Attendance AttendanceConfig
	RateLimit  RateLimitConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	MaxRetries int
}

const (
	DebounceMemory = "memory"
	DebounceRedis  = "redis"
)

// AttendanceConfig controls scanning and day boundaries.
type AttendanceConfig struct {
	// ScanCooldown rejects the same badge scanned again within this window.
	ScanCooldown     time.Duration
	DebounceBackend  string
	Timezone         *time.Location
	HousekeepingTick time.Duration
	BadgeIssuer      string
}

// RateLimitConfig limits scan requests per device.
type RateLimitConfig struct {
	ScansPerSecond float64
	Burst          int
}

// Load reads configuration from the environment. A .env file, when present,
// is loaded first and never overrides variables already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Debug("No .env file found, using environment only")
	}

	var errs []error
	config := &Config{}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "AutoParts"),
		Port:           getEnvInt("APP_PORT", 8080, &errs),
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432, &errs),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance_payroll"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvInt("DB_MAX_CONNS", 25, &errs)),
		MinConns: int32(getEnvInt("DB_MIN_CONNS", 5, &errs)),
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnvDuration("JWT_ACCESS_EXPIRATION_TIME", 12*time.Hour, &errs),
	}

	config.Redis = RedisConfig{
		Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
		Password:   getEnv("REDIS_PASSWORD", ""),
		DB:         getEnvInt("REDIS_DB", 0, &errs),
		MaxRetries: getEnvInt("REDIS_MAX_RETRIES", 5, &errs),
	}

	tz, err := time.LoadLocation(getEnv("ATTENDANCE_TIMEZONE", "Asia/Colombo"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid ATTENDANCE_TIMEZONE: %w", err))
		tz = time.UTC
	}

	config.Attendance = AttendanceConfig{
		ScanCooldown:     getEnvDuration("ATTENDANCE_SCAN_COOLDOWN", 5*time.Second, &errs),
		DebounceBackend:  strings.ToLower(getEnv("ATTENDANCE_DEBOUNCE_BACKEND", DebounceMemory)),
		Timezone:         tz,
		HousekeepingTick: getEnvDuration("ATTENDANCE_HOUSEKEEPING_INTERVAL", time.Minute, &errs),
		BadgeIssuer:      getEnv("ATTENDANCE_BADGE_ISSUER", "AutoParts"),
	}

	config.RateLimit = RateLimitConfig{
		ScansPerSecond: getEnvFloat("SCAN_RATE_LIMIT_PER_SECOND", 2, &errs),
		Burst:          getEnvInt("SCAN_RATE_LIMIT_BURST", 5, &errs),
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.Attendance.ScanCooldown < 0 {
		return fmt.Errorf("ATTENDANCE_SCAN_COOLDOWN must not be negative")
	}
	if c.Attendance.DebounceBackend != DebounceMemory && c.Attendance.DebounceBackend != DebounceRedis {
		return fmt.Errorf("ATTENDANCE_DEBOUNCE_BACKEND must be %q or %q", DebounceMemory, DebounceRedis)
	}
	if c.RateLimit.ScansPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("SCAN_RATE_LIMIT_PER_SECOND and SCAN_RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64, errs *[]error) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
