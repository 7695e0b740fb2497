// Package calendar builds the month grid shown on the dashboards and answers
// which events fall on a given day.
//
// All comparisons are on the civil date (year, month, day) of each value in
// its own location. Event dates are stored at day granularity, so an event
// on 2024-03-16 matches the grid cell 2024-03-16 whatever zones the two
// values carry.
package calendar

import (
	"time"

	"github.com/dukerupert/elms/internal/model"
)

// GridSize is the number of cells in a month grid: six weeks of seven days.
const GridSize = 42

// Tag summarises the events on a single day for highlighting.
type Tag string

const (
	TagNone          Tag = "none"
	TagDeadline      Tag = "deadline"
	TagInformational Tag = "informational"
)

// DaysForMonth returns the 42 consecutive days of the grid for the anchor's
// month, starting on the Sunday on or before the 1st. Only the anchor's
// civil year and month are used. Cells are civil dates at midnight UTC, the
// same form CivilDate produces, so zones whose clocks skip midnight cannot
// repeat or drop a day.
func DaysForMonth(anchor time.Time) []time.Time {
	year, month, _ := anchor.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(first.Weekday())

	days := make([]time.Time, GridSize)
	for i := range days {
		days[i] = time.Date(year, month, 1-offset+i, 0, 0, 0, 0, time.UTC)
	}
	return days
}

// CivilDate returns t's calendar date as midnight UTC, the form events are
// stored in. Pass t already converted to the zone that defines the day.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether a and b fall on the same civil date.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// EventsOnDay returns the events whose date is day, in input order.
func EventsOnDay(events []model.CalendarEvent, day time.Time) []model.CalendarEvent {
	out := []model.CalendarEvent{}
	for _, e := range events {
		if SameDay(e.Date, day) {
			out = append(out, e)
		}
	}
	return out
}

// Classify tags day by the events that fall on it. Any assignment or exam
// makes it a deadline day.
func Classify(day time.Time, events []model.CalendarEvent) Tag {
	return tagFor(EventsOnDay(events, day))
}

func tagFor(matching []model.CalendarEvent) Tag {
	if len(matching) == 0 {
		return TagNone
	}
	for _, e := range matching {
		if e.Category.IsDeadline() {
			return TagDeadline
		}
	}
	return TagInformational
}
