package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

const eventCols = `id, title, event_date, category, course_id, rrule, created_at, updated_at`

func scanEvent(scanner interface{ Scan(...any) error }) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	var date string
	var courseID sql.NullInt64

	err := scanner.Scan(&e.ID, &e.Title, &date, &e.Category, &courseID, &e.RRule, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.Date, err = time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("parse event date %q: %w", date, err)
	}
	if courseID.Valid {
		e.CourseID = &courseID.Int64
	}
	return &e, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func (s *EventStore) Create(title string, date time.Time, category model.EventCategory, courseID *int64, rrule string) (*model.CalendarEvent, error) {
	result, err := s.db.Exec(
		`INSERT INTO calendar_events (title, event_date, category, course_id, rrule)
		 VALUES (?, ?, ?, ?, ?)`,
		title, date.Format(dateLayout), category, nullableID(courseID), rrule,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

// CreateMany inserts events in one transaction. Either every event is
// stored or none is.
func (s *EventStore) CreateMany(events []model.CalendarEvent) ([]model.CalendarEvent, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ids := make([]int64, 0, len(events))
	for _, e := range events {
		result, err := tx.Exec(
			`INSERT INTO calendar_events (title, event_date, category, course_id, rrule)
			 VALUES (?, ?, ?, ?, ?)`,
			e.Title, e.Date.Format(dateLayout), e.Category, nullableID(e.CourseID), e.RRule,
		)
		if err != nil {
			return nil, fmt.Errorf("insert calendar event %q: %w", e.Title, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	created := make([]model.CalendarEvent, 0, len(ids))
	for _, id := range ids {
		e, err := s.GetByID(id)
		if err != nil {
			return nil, err
		}
		created = append(created, *e)
	}
	return created, nil
}

func (s *EventStore) GetByID(id int64) (*model.CalendarEvent, error) {
	row := s.db.QueryRow(`SELECT `+eventCols+` FROM calendar_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar event: %w", err)
	}
	return e, nil
}

// ListByDateRange returns events dated in [start, end) plus every recurring
// event that starts before end, since those may recur inside the range.
// Dates compare by calendar day.
func (s *EventStore) ListByDateRange(start, end time.Time) ([]model.CalendarEvent, error) {
	from := start.Format(dateLayout)
	to := end.Format(dateLayout)
	return s.list(
		`SELECT `+eventCols+` FROM calendar_events
		 WHERE (event_date >= ? AND event_date < ?) OR (rrule != '' AND event_date < ?)
		 ORDER BY event_date ASC, id ASC`,
		from, to, to,
	)
}

// List returns every event ordered by date.
func (s *EventStore) List() ([]model.CalendarEvent, error) {
	return s.list(`SELECT ` + eventCols + ` FROM calendar_events ORDER BY event_date ASC, id ASC`)
}

func (s *EventStore) list(query string, args ...any) ([]model.CalendarEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

func (s *EventStore) Update(id int64, title string, date time.Time, category model.EventCategory, courseID *int64, rrule string) (*model.CalendarEvent, error) {
	_, err := s.db.Exec(
		`UPDATE calendar_events
		 SET title = ?, event_date = ?, category = ?, course_id = ?, rrule = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, date.Format(dateLayout), category, nullableID(courseID), rrule, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar event: %w", err)
	}

	return s.GetByID(id)
}

func (s *EventStore) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM calendar_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}
