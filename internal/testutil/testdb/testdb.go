// Package testdb opens migrated in-memory SQLite databases for tests. It only
// depends on internal/db so repository and booking tests can import it.
package testdb

import (
	"database/sql"
	"strings"
	"testing"

	"droneOpsBooking/internal/db"
)

// Open opens an in-memory SQLite database named after name and applies
// migrations. The DB is closed via t.Cleanup.
func Open(t *testing.T, name string) *sql.DB {
	t.Helper()
	// Shared cache so every connection sees the same database.
	d, err := db.Open("file:" + strings.ReplaceAll(name, "/", "_") + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}
