package recurrence

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/dukerupert/elms/internal/model"
)

// Occurrences returns the dates on which a rule starting at start recurs
// within [from, to). start itself counts as the first occurrence.
func (r Rule) Occurrences(start, from, to time.Time) ([]time.Time, error) {
	if !from.Before(to) {
		return nil, nil
	}

	opt := r.opt
	opt.Dtstart = start
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("build rule: %w", err)
	}

	var out []time.Time
	for _, t := range rr.Between(from, to, true) {
		if !t.Before(to) {
			break
		}
		out = append(out, t)
		if len(out) >= maxOccurrences {
			break
		}
	}
	return out, nil
}

// ExpandEvents returns the events that fall in [from, to), with every
// recurring event replaced by one copy per occurrence. Copies keep the
// parent's ID and carry the occurrence as Date. Events whose rule cannot be
// parsed are kept as single events.
func ExpandEvents(events []model.CalendarEvent, from, to time.Time) []model.CalendarEvent {
	out := make([]model.CalendarEvent, 0, len(events))
	for _, e := range events {
		if e.RRule == "" {
			if !e.Date.Before(from) && e.Date.Before(to) {
				out = append(out, e)
			}
			continue
		}

		rule, err := Parse(e.RRule)
		if err != nil {
			if !e.Date.Before(from) && e.Date.Before(to) {
				out = append(out, e)
			}
			continue
		}
		dates, err := rule.Occurrences(e.Date, from, to)
		if err != nil {
			continue
		}
		for _, d := range dates {
			occ := e
			occ.Date = d
			out = append(out, occ)
		}
	}
	return out
}
