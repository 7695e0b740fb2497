package calendar

import (
	"fmt"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

const (
	GeneralCourse = "General"
	UnknownCourse = "Unknown Course"
)

// DaysBetween returns the number of whole calendar days from a to b. It is
// negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(dayNumber(b) - dayNumber(a))
}

// dayNumber counts days since the Unix epoch for t's civil date. Midnight
// UTC is always a whole multiple of a day, so the division is exact.
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / (24 * 60 * 60)
}

// Countdown renders how far date is from today.
func Countdown(today, date time.Time) string {
	n := DaysBetween(today, date)
	switch {
	case n < 0:
		return fmt.Sprintf("%d days ago", -n)
	case n == 0:
		return "Today"
	case n == 1:
		return "Tomorrow"
	}
	return fmt.Sprintf("%d days left", n)
}

// Describe renders the sentence shown when hovering over a day. courseTitle
// should already be resolved to GeneralCourse or UnknownCourse when the
// event has no usable course.
func Describe(e model.CalendarEvent, courseTitle string, today time.Time) string {
	date := e.Date.Format("1/2/2006")
	left := Countdown(today, e.Date)

	switch e.Category {
	case model.CategoryAssignment:
		return fmt.Sprintf("Your %s's assignment \"%s\" deadline is %s! %s to submit it.", courseTitle, e.Title, date, left)
	case model.CategoryExam:
		return fmt.Sprintf("Your %s's exam \"%s\" is scheduled for %s! %s to prepare.", courseTitle, e.Title, date, left)
	case model.CategoryClass:
		return fmt.Sprintf("%s class \"%s\" is scheduled for %s. %s.", courseTitle, e.Title, date, left)
	case model.CategoryMeeting:
		return fmt.Sprintf("\"%s\" meeting is scheduled for %s. %s.", e.Title, date, left)
	}
	return fmt.Sprintf("\"%s\" is scheduled for %s. %s.", e.Title, date, left)
}
