package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-inventory/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// requiredTables must exist once the schema has been applied.
var requiredTables = []string{"users", "customers", "inventory_items", "invoices", "invoice_items", "payments", "outbox_events"}

// AutoMigrate creates or updates tables from the gorm models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return checkTables(conn)
}

// MigrateSQL applies the embedded versioned migrations to a postgres URL.
func MigrateSQL(databaseURL string) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}
	return nil
}

// Migrate applies the schema: versioned SQL when useSQL is set, AutoMigrate
// otherwise.
func Migrate(conn *gorm.DB, databaseURL string, useSQL bool) error {
	if !useSQL {
		return AutoMigrate(conn)
	}
	if err := MigrateSQL(databaseURL); err != nil {
		return err
	}
	return checkTables(conn)
}

func checkTables(conn *gorm.DB) error {
	for _, table := range requiredTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
