// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
	Kafka    KafkaConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
}

// DatabaseConfig selects the driver and holds its connection settings.
type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
	Retries    int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev            bool
	Migrations     bool
	Seed           bool
	SessionSecret  string
	SessionTTL     time.Duration
	DefaultTaxRate decimal.Decimal
	AdminEmail     string
	AdminPassword  string
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// KafkaConfig configures the billing event relay. Empty Brokers disables it.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
}

// Enabled reports whether billing events should be written and relayed.
func (k KafkaConfig) Enabled() bool { return len(k.Brokers) > 0 }

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "inventory"),
			Password:   getEnv("DB_PASSWORD", "inventory123"),
			DBName:     getEnv("DB_NAME", "inventory"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "inventory.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
			Retries:    getEnvInt("DB_CONNECT_RETRIES", 10),
		},
		App: AppConfig{
			Dev:            getEnvBool("DEV", true),
			Migrations:     getEnvBool("MIGRATIONS", false),
			Seed:           getEnvBool("DB_SEED", false),
			SessionSecret:  getEnv("SESSION_SECRET", "devsessionsecret"),
			SessionTTL:     getEnvDuration("SESSION_TTL", 14*24*time.Hour),
			DefaultTaxRate: getEnvDecimal("DEFAULT_TAX_RATE", decimal.Zero),
			AdminEmail:     getEnv("ADMIN_EMAIL", ""),
			AdminPassword:  getEnv("ADMIN_PASSWORD", ""),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvList("KAFKA_BROKERS", nil),
			Topic:        getEnv("KAFKA_BILLING_TOPIC", "billing-events"),
			PollInterval: getEnvDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    getEnvInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  getEnvInt("OUTBOX_MAX_ATTEMPTS", 5),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER: unsupported driver %q", c.Database.Driver))
	}
	if c.Database.Driver == "sqlite" && c.App.Migrations {
		errs = append(errs, errors.New("MIGRATIONS: SQL migrations require the postgres driver"))
	}
	if !c.App.Dev && c.App.SessionSecret == "devsessionsecret" {
		errs = append(errs, errors.New("SESSION_SECRET: must be set outside dev mode"))
	}
	if c.App.DefaultTaxRate.IsNegative() || c.App.DefaultTaxRate.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, errors.New("DEFAULT_TAX_RATE: must be between 0 and 1"))
	}
	if (c.App.AdminEmail == "") != (c.App.AdminPassword == "") {
		errs = append(errs, errors.New("ADMIN_EMAIL and ADMIN_PASSWORD must be set together"))
	}
	if c.Kafka.Enabled() && c.Kafka.BatchSize < 1 {
		errs = append(errs, errors.New("OUTBOX_BATCH_SIZE: must be positive"))
	}
	if c.Kafka.Enabled() && c.Kafka.MaxAttempts < 1 {
		errs = append(errs, errors.New("OUTBOX_MAX_ATTEMPTS: must be positive"))
	}
	return errors.Join(errs...)
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvDuration accepts Go durations ("15s") or a bare number of seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if n, err := strconv.Atoi(value); err == nil {
		return time.Duration(n) * time.Second
	}
	return defaultValue
}

func getEnvDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
