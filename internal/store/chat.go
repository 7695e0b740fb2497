package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/elms/internal/model"
)

type ChatStore struct {
	db *sql.DB
}

func NewChatStore(db *sql.DB) *ChatStore {
	return &ChatStore{db: db}
}

func (s *ChatStore) Post(sender, message string) (*model.ChatMessage, error) {
	result, err := s.db.Exec(
		`INSERT INTO chat_messages (sender, message) VALUES (?, ?)`,
		sender, message,
	)
	if err != nil {
		return nil, fmt.Errorf("insert chat message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	var m model.ChatMessage
	err = s.db.QueryRow(
		`SELECT id, sender, message, created_at FROM chat_messages WHERE id = ?`, id,
	).Scan(&m.ID, &m.Sender, &m.Message, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get chat message: %w", err)
	}
	return &m, nil
}

// List returns the most recent messages, oldest first.
func (s *ChatStore) List(limit int) ([]model.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT id, sender, message, created_at FROM (
			SELECT id, sender, message, created_at FROM chat_messages
			ORDER BY created_at DESC, id DESC LIMIT ?
		 ) ORDER BY created_at ASC, id ASC`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	var messages []model.ChatMessage
	for rows.Next() {
		var m model.ChatMessage
		if err := rows.Scan(&m.ID, &m.Sender, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
