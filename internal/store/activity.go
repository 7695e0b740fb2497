package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/elms/internal/model"
)

type ActivityStore struct {
	db *sql.DB
}

func NewActivityStore(db *sql.DB) *ActivityStore {
	return &ActivityStore{db: db}
}

func (s *ActivityStore) Record(actor, action, entity string, entityID int64, summary string) error {
	_, err := s.db.Exec(
		`INSERT INTO activity_log (actor, action, entity, entity_id, summary) VALUES (?, ?, ?, ?, ?)`,
		actor, action, entity, entityID, summary,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *ActivityStore) Recent(limit int) ([]model.Activity, error) {
	rows, err := s.db.Query(
		`SELECT id, actor, action, entity, entity_id, summary, created_at
		 FROM activity_log ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()

	var entries []model.Activity
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.Actor, &a.Action, &a.Entity, &a.EntityID, &a.Summary, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		entries = append(entries, a)
	}
	return entries, rows.Err()
}
