package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/elms/internal/model"
)

type CourseStore struct {
	db *sql.DB
}

func NewCourseStore(db *sql.DB) *CourseStore {
	return &CourseStore{db: db}
}

const courseCols = `id, title, description, color, enrolled_students, created_at, updated_at`

func scanCourse(scanner interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	err := scanner.Scan(&c.ID, &c.Title, &c.Description, &c.Color, &c.EnrolledStudents, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CourseStore) Create(title, description, color string, enrolled int) (*model.Course, error) {
	result, err := s.db.Exec(
		`INSERT INTO courses (title, description, color, enrolled_students) VALUES (?, ?, ?, ?)`,
		title, description, color, enrolled,
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// GetByID returns the course with its sections and teachers, or nil if it
// does not exist.
func (s *CourseStore) GetByID(id int64) (*model.Course, error) {
	row := s.db.QueryRow(`SELECT `+courseCols+` FROM courses WHERE id = ?`, id)
	c, err := scanCourse(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	courses := []model.Course{*c}
	if err := s.attach(courses); err != nil {
		return nil, err
	}
	return &courses[0], nil
}

// List returns all courses ordered by id.
func (s *CourseStore) List() ([]model.Course, error) {
	return s.list(`SELECT ` + courseCols + ` FROM courses ORDER BY id ASC`)
}

// ListForTeacher returns the courses the user is assigned to.
func (s *CourseStore) ListForTeacher(userID int64) ([]model.Course, error) {
	return s.list(
		`SELECT `+courseCols+` FROM courses
		 WHERE id IN (SELECT course_id FROM course_teachers WHERE user_id = ?)
		 ORDER BY id ASC`,
		userID,
	)
}

func (s *CourseStore) list(query string, args ...any) ([]model.Course, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	var courses []model.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, *c)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	if err := s.attach(courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// attach loads sections and teachers for courses. Rows of the course query
// must be closed first: the in-memory database has a single connection.
func (s *CourseStore) attach(courses []model.Course) error {
	if len(courses) == 0 {
		return nil
	}
	pos := make(map[int64]int, len(courses))
	for i := range courses {
		pos[courses[i].ID] = i
		courses[i].Sections = []model.Section{}
		courses[i].Teachers = []model.User{}
	}

	sections, err := s.allSections()
	if err != nil {
		return err
	}
	for _, sec := range sections {
		if i, ok := pos[sec.CourseID]; ok {
			courses[i].Sections = append(courses[i].Sections, sec)
		}
	}

	rows, err := s.db.Query(
		`SELECT ct.course_id, u.id, u.name, u.email, u.role
		 FROM course_teachers ct JOIN users u ON u.id = ct.user_id
		 ORDER BY u.name ASC`,
	)
	if err != nil {
		return fmt.Errorf("query course teachers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var courseID int64
		var u model.User
		if err := rows.Scan(&courseID, &u.ID, &u.Name, &u.Email, &u.Role); err != nil {
			return fmt.Errorf("scan course teacher: %w", err)
		}
		if i, ok := pos[courseID]; ok {
			courses[i].Teachers = append(courses[i].Teachers, u)
		}
	}
	return rows.Err()
}

func (s *CourseStore) Update(id int64, title, description, color string, enrolled int) (*model.Course, error) {
	_, err := s.db.Exec(
		`UPDATE courses
		 SET title = ?, description = ?, color = ?, enrolled_students = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, description, color, enrolled, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return s.GetByID(id)
}

func (s *CourseStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

func (s *CourseStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return n, nil
}

// Sections

func (s *CourseStore) allSections() ([]model.Section, error) {
	rows, err := s.db.Query(`SELECT id, course_id, name, created_at FROM course_sections ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	var sections []model.Section
	for rows.Next() {
		var sec model.Section
		if err := rows.Scan(&sec.ID, &sec.CourseID, &sec.Name, &sec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

func (s *CourseStore) CreateSection(courseID int64, name string) (*model.Section, error) {
	result, err := s.db.Exec(
		`INSERT INTO course_sections (course_id, name) VALUES (?, ?)`,
		courseID, name,
	)
	if err != nil {
		return nil, fmt.Errorf("insert section: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSection(id)
}

func (s *CourseStore) GetSection(id int64) (*model.Section, error) {
	var sec model.Section
	err := s.db.QueryRow(
		`SELECT id, course_id, name, created_at FROM course_sections WHERE id = ?`, id,
	).Scan(&sec.ID, &sec.CourseID, &sec.Name, &sec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}
	return &sec, nil
}

// SectionNameExists checks whether a section name is already taken.
func (s *CourseStore) SectionNameExists(name string) (bool, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM course_sections WHERE name = ? COLLATE NOCASE`, name).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check section name: %w", err)
	}
	return n > 0, nil
}

func (s *CourseStore) DeleteSection(id int64) error {
	_, err := s.db.Exec(`DELETE FROM course_sections WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	return nil
}

func (s *CourseStore) CountSections() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM course_sections`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sections: %w", err)
	}
	return n, nil
}

// Teacher assignment

// AssignTeacher links a teacher to a course. Assigning twice is a no-op.
func (s *CourseStore) AssignTeacher(courseID, userID int64) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO course_teachers (course_id, user_id) VALUES (?, ?)`,
		courseID, userID,
	)
	if err != nil {
		return fmt.Errorf("assign teacher: %w", err)
	}
	return nil
}

func (s *CourseStore) UnassignTeacher(courseID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM course_teachers WHERE course_id = ? AND user_id = ?`,
		courseID, userID,
	)
	if err != nil {
		return fmt.Errorf("unassign teacher: %w", err)
	}
	return nil
}

// TitlesByID maps every course id to its title.
func (s *CourseStore) TitlesByID() (map[int64]string, error) {
	rows, err := s.db.Query(`SELECT id, title FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("query course titles: %w", err)
	}
	defer rows.Close()

	titles := make(map[int64]string)
	for rows.Next() {
		var id int64
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan course title: %w", err)
		}
		titles[id] = title
	}
	return titles, rows.Err()
}
