package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

const dateLayout = "2006-01-02"

type MaterialStore struct {
	db *sql.DB
}

func NewMaterialStore(db *sql.DB) *MaterialStore {
	return &MaterialStore{db: db}
}

const materialCols = `id, course_id, title, description, type, url, size, upload_date, created_at`

func scanMaterial(scanner interface{ Scan(...any) error }) (*model.Material, error) {
	var m model.Material
	var uploadDate string
	err := scanner.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Type, &m.URL, &m.Size, &uploadDate, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	m.UploadDate, err = time.Parse(dateLayout, uploadDate)
	if err != nil {
		return nil, fmt.Errorf("parse upload date %q: %w", uploadDate, err)
	}
	return &m, nil
}

func (s *MaterialStore) Create(courseID int64, title, description string, typ model.MaterialType, url, size string, uploadDate time.Time) (*model.Material, error) {
	result, err := s.db.Exec(
		`INSERT INTO materials (course_id, title, description, type, url, size, upload_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		courseID, title, description, typ, url, size, uploadDate.Format(dateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert material: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *MaterialStore) GetByID(id int64) (*model.Material, error) {
	row := s.db.QueryRow(`SELECT `+materialCols+` FROM materials WHERE id = ?`, id)
	m, err := scanMaterial(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	return m, nil
}

// List returns materials newest upload first. A nil courseID lists every
// course.
func (s *MaterialStore) List(courseID *int64) ([]model.Material, error) {
	query := `SELECT ` + materialCols + ` FROM materials`
	var args []any
	if courseID != nil {
		query += ` WHERE course_id = ?`
		args = append(args, *courseID)
	}
	query += ` ORDER BY upload_date DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	defer rows.Close()

	var materials []model.Material
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scan material: %w", err)
		}
		materials = append(materials, *m)
	}
	return materials, rows.Err()
}

// CountByCourse maps course id to number of materials.
func (s *MaterialStore) CountByCourse() (map[int64]int, error) {
	rows, err := s.db.Query(`SELECT course_id, COUNT(*) FROM materials GROUP BY course_id`)
	if err != nil {
		return nil, fmt.Errorf("count materials: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan material count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *MaterialStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}
