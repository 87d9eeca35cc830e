package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset. It is
// only accepted in development and test.
const DefaultJWTSecret = "change-me"

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment     string
	ServerPort      string
	StorageDriver   string
	MongoURI        string
	MongoDatabase   string
	MySQLDSN        string
	RedisAddr       string
	RedisDB         int
	RedisPass       string
	JWTSecret       string
	JWTExpiry       time.Duration
	SMTP            SMTPConfig
	DefaultTimezone string
	AuthRateLimit   float64
	TrustedProxies  []string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogEncoding     string
	SwaggerHost     string
}

// SMTPConfig describes the outgoing mail server used for password reset codes.
// An empty Host disables delivery.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Load builds Config from environment (and an optional .env file) with sensible defaults.
func Load() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Environment:     getEnv("APP_ENV", "development"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		StorageDriver:   getEnv("STORAGE_DRIVER", DriverMongo),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "goaltracker"),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/goaltracker?charset=utf8mb4&parseTime=True&loc=UTC"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		JWTExpiry:       getEnvDuration("JWT_EXPIRY", 24*time.Hour),
		DefaultTimezone: getEnv("DEFAULT_TIMEZONE", "UTC"),
		AuthRateLimit:   getEnvFloat("AUTH_RATE_LIMIT", 5),
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogEncoding:     getEnv("LOG_ENCODING", "json"),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			Sender:   getEnv("SMTP_SENDER", "Goal Tracker <no-reply@goaltracker.local>"),
		},
	}

	// test runs get their own database
	if cfg.Environment == "test" {
		cfg.MongoURI = getEnv("MONGO_URI_TEST", cfg.MongoURI)
		cfg.MongoDatabase = getEnv("MONGO_DATABASE_TEST", cfg.MongoDatabase+"_test")
	}

	return cfg
}

// IsDevelopment reports whether the app runs in development or test.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "test"
}

// UsesDefaultSecret reports whether tokens are signed with the placeholder secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.JWTSecret == "" || c.JWTSecret == DefaultJWTSecret
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if c.UsesDefaultSecret() && !c.IsDevelopment() {
		return fmt.Errorf("JWT_SECRET must be set when APP_ENV=%s", c.Environment)
	}
	if c.StorageDriver != DriverMongo && c.StorageDriver != DriverMySQL && c.StorageDriver != DriverMemory {
		return errors.New("STORAGE_DRIVER must be one of mongo, mysql, memory")
	}
	return nil
}

// Location resolves DefaultTimezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(v); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return def
}
