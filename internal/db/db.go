// Package db opens the gorm connection, applies the schema and seeds
// bootstrap data.
package db

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/diewo77/go-inventory/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured driver, retrying postgres while it boots.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		log.Info("opening sqlite database", zap.String("path", cfg.SQLitePath))
		return OpenSQLite("file:"+cfg.SQLitePath+"?_foreign_keys=on", cfg.Debug)
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}

	dsn := cfg.DSN()
	log.Info("connecting to database", zap.String("dsn", maskDSN(dsn)))

	retries := max(cfg.Retries, 1)
	var (
		conn *gorm.DB
		err  error
	)
	for attempt := 1; attempt <= retries; attempt++ {
		conn, err = gorm.Open(postgres.Open(dsn), gormConfig(cfg.Debug))
		if err == nil {
			err = conn.Exec("SELECT 1").Error
		}
		if err == nil {
			return conn, nil
		}
		log.Warn("database not ready", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < retries {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("connect database after %d attempts: %w", retries, err)
}

// OpenSQLite opens a sqlite database. A single connection serializes writers,
// which sqlite requires for transactions to behave like postgres ones.
func OpenSQLite(dsn string, debug bool) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(debug))
	if err != nil {
		return nil, err
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return conn, nil
}

func gormConfig(debug bool) *gorm.Config {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	return &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// IsPostgres reports whether row locks and savepoints behave like postgres.
func IsPostgres(conn *gorm.DB) bool {
	return conn.Dialector.Name() == "postgres"
}

// Ping verifies the connection is usable.
func Ping(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	if sqlDB == nil {
		return errors.New("no sql connection")
	}
	return sqlDB.Ping()
}

var passwordRe = regexp.MustCompile(`(password=)(\S+)`)

func maskDSN(dsn string) string {
	return passwordRe.ReplaceAllString(dsn, `${1}***`)
}
