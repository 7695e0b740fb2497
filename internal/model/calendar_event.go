package model

import "time"

// EventCategory is the kind of item shown on the academic calendar.
type EventCategory string

const (
	CategoryAssignment EventCategory = "assignment"
	CategoryExam       EventCategory = "exam"
	CategoryClass      EventCategory = "class"
	CategoryMeeting    EventCategory = "meeting"
)

// Valid reports whether c is one of the known categories.
func (c EventCategory) Valid() bool {
	switch c {
	case CategoryAssignment, CategoryExam, CategoryClass, CategoryMeeting:
		return true
	}
	return false
}

// IsDeadline reports whether events of this category are due dates.
func (c EventCategory) IsDeadline() bool {
	return c == CategoryAssignment || c == CategoryExam
}

// CalendarEvent is a dated item on the academic calendar. Date has day
// granularity: only its year, month and day are meaningful.
type CalendarEvent struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Date      time.Time     `json:"date"`
	Category  EventCategory `json:"category"`
	CourseID  *int64        `json:"course_id"`
	RRule     string        `json:"rrule,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
