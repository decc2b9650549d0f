// Package dbtest opens isolated SQLite databases for tests.
package dbtest

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shashiranjanraj/stockroom/app/models"
	"github.com/shashiranjanraj/stockroom/pkg/database"
	"gorm.io/gorm"
)

var seq atomic.Int64

// New returns a migrated in-memory database private to t, served over a
// single connection.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	return open(t, dsn, 1)
}

// NewFile returns a migrated database file under t's temp dir with a pool of
// conns connections, so transactions really run side by side.
func NewFile(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	return open(t, filepath.Join(t.TempDir(), "stockroom.db"), conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver:       "sqlite",
		DSN:          dsn,
		MaxOpenConns: conns,
		MaxIdleConns: conns,
	})
	if err != nil {
		t.Fatalf("dbtest: open: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("dbtest: migrate: %v", err)
	}
	return db
}
