package database

import (
	"database/sql"
	_ "embed"
	"fmt"
)

//go:embed seed/demo.sql
var demoSeed string

// SeedDemo loads the demo catalogue: courses, sections, teachers,
// students, materials, calendar events and class chat. It expects freshly
// migrated, empty tables.
func SeedDemo(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(demoSeed); err != nil {
		return fmt.Errorf("seed demo data: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}
