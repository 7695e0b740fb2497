package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/elms/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Memory)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func openSeededDB(t *testing.T) *sql.DB {
	t.Helper()
	db := openTestDB(t)
	if err := database.SeedDemo(db); err != nil {
		t.Fatalf("seed demo: %v", err)
	}
	return db
}
