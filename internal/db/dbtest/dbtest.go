// Package dbtest opens isolated in-memory sqlite databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/diewo77/go-inventory/internal/db"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	conn, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name), false)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
