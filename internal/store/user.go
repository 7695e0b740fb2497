package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/elms/internal/model"
)

type UserStore struct {
	db *sql.DB
}

func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Section, &u.CreatedAt, &u.CourseCount)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userSelect = `SELECT u.id, u.name, u.email, u.role, u.section, u.created_at,
	(SELECT COUNT(*) FROM course_teachers ct WHERE ct.user_id = u.id)
	FROM users u`

// Upsert creates the user for email or, when one exists, updates its name
// and role. Mock login goes through here on every sign-in.
func (s *UserStore) Upsert(email, name string, role model.Role) (*model.User, error) {
	_, err := s.db.Exec(
		`INSERT INTO users (email, name, role) VALUES (?, ?, ?)
		 ON CONFLICT(email) DO UPDATE SET name = excluded.name, role = excluded.role`,
		email, name, role,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}
	return s.GetByEmail(email)
}

func (s *UserStore) GetByID(id int64) (*model.User, error) {
	row := s.db.QueryRow(userSelect+` WHERE u.id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByEmail(email string) (*model.User, error) {
	row := s.db.QueryRow(userSelect+` WHERE u.email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListByRole returns users with the given role ordered by name.
func (s *UserStore) ListByRole(role model.Role) ([]model.User, error) {
	rows, err := s.db.Query(userSelect+` WHERE u.role = ? ORDER BY u.name ASC, u.id ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *UserStore) CountByRole(role model.Role) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *UserStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
