package calendar

import (
	"sort"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// Index groups events by civil date. It is read-only after construction and
// safe for concurrent use.
type Index struct {
	byDay map[dayKey][]model.CalendarEvent
}

// NewIndex builds an index over events. Events sharing a day keep their
// relative input order.
func NewIndex(events []model.CalendarEvent) *Index {
	idx := &Index{byDay: make(map[dayKey][]model.CalendarEvent)}
	for _, e := range events {
		k := keyOf(e.Date)
		idx.byDay[k] = append(idx.byDay[k], e)
	}
	return idx
}

// On returns the events on day. The result is a copy.
func (idx *Index) On(day time.Time) []model.CalendarEvent {
	if idx == nil {
		return []model.CalendarEvent{}
	}
	matching := idx.byDay[keyOf(day)]
	out := make([]model.CalendarEvent, len(matching))
	copy(out, matching)
	return out
}

// Classify tags day using the indexed events.
func (idx *Index) Classify(day time.Time) Tag {
	if idx == nil {
		return TagNone
	}
	return tagFor(idx.byDay[keyOf(day)])
}

// DayCell is one square of the month grid.
type DayCell struct {
	Date    time.Time             `json:"date"`
	InMonth bool                  `json:"in_month"`
	IsToday bool                  `json:"is_today"`
	Tag     Tag                   `json:"tag"`
	Events  []model.CalendarEvent `json:"events"`
}

// MonthView is the rendered grid for one month.
type MonthView struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Label string     `json:"label"`
	Start time.Time  `json:"start"`
	End   time.Time  `json:"end"`
	Cells []DayCell  `json:"cells"`
}

// Month lays out the grid for anchor's month and fills each cell from idx.
// today only drives the IsToday flag.
func Month(anchor time.Time, idx *Index, today time.Time) MonthView {
	days := DaysForMonth(anchor)
	cells := make([]DayCell, len(days))
	for i, d := range days {
		cells[i] = DayCell{
			Date:    d,
			InMonth: d.Month() == anchor.Month(),
			IsToday: SameDay(d, today),
			Tag:     idx.Classify(d),
			Events:  idx.On(d),
		}
	}
	return MonthView{
		Year:  anchor.Year(),
		Month: anchor.Month(),
		Label: anchor.Format("January 2006"),
		Start: days[0],
		End:   days[len(days)-1],
		Cells: cells,
	}
}

// Upcoming returns the deadlines dated from today up to horizonDays ahead,
// earliest first. Events on the same day keep their input order.
func Upcoming(events []model.CalendarEvent, today time.Time, horizonDays int) []model.CalendarEvent {
	out := []model.CalendarEvent{}
	if horizonDays < 0 {
		return out
	}
	for _, e := range events {
		if !e.Category.IsDeadline() {
			continue
		}
		n := DaysBetween(today, e.Date)
		if n >= 0 && n <= horizonDays {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return DaysBetween(out[i].Date, out[j].Date) > 0
	})
	return out
}
