// Package recurrence expands recurring calendar events (weekly class
// sessions, mostly) into single-day occurrences.
package recurrence

import (
	"fmt"
	"strings"

	"github.com/teambition/rrule-go"
)

// maxOccurrences caps a single expansion so an unbounded DAILY rule over a
// wide range stays cheap.
const maxOccurrences = 1000

// Rule is a parsed RRULE. The zero value is not usable; use Parse.
type Rule struct {
	opt rrule.ROption
	raw string
}

// Parse parses an RFC 5545 rule such as "FREQ=WEEKLY;BYDAY=MO,WE". A
// leading "RRULE:" is accepted. Sub-daily frequencies are rejected because
// calendar events have day granularity.
func Parse(s string) (Rule, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), "RRULE:")
	if raw == "" {
		return Rule{}, fmt.Errorf("empty rule")
	}

	opt, err := rrule.StrToROption(raw)
	if err != nil {
		return Rule{}, fmt.Errorf("parse rule: %w", err)
	}
	switch opt.Freq {
	case rrule.DAILY, rrule.WEEKLY, rrule.MONTHLY, rrule.YEARLY:
	default:
		return Rule{}, fmt.Errorf("unsupported frequency in %q", raw)
	}
	if opt.Interval < 0 || opt.Count < 0 {
		return Rule{}, fmt.Errorf("invalid rule %q", raw)
	}

	return Rule{opt: *opt, raw: raw}, nil
}

// String returns the rule as given to Parse, without any "RRULE:" prefix.
func (r Rule) String() string {
	return r.raw
}

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Describe returns a human-readable description of the rule.
func (r Rule) Describe() string {
	interval := r.opt.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.opt.Freq {
	case rrule.DAILY:
		if interval > 1 {
			return fmt.Sprintf("Repeats every %d days", interval)
		}
		return "Repeats daily"
	case rrule.WEEKLY:
		prefix := "Repeats weekly"
		if interval > 1 {
			prefix = fmt.Sprintf("Repeats every %d weeks", interval)
		}
		if len(r.opt.Byweekday) > 0 {
			names := make([]string, 0, len(r.opt.Byweekday))
			for i := range r.opt.Byweekday {
				names = append(names, weekdayNames[r.opt.Byweekday[i].Day()])
			}
			return prefix + " on " + strings.Join(names, ", ")
		}
		return prefix
	case rrule.MONTHLY:
		if interval > 1 {
			return fmt.Sprintf("Repeats every %d months", interval)
		}
		return "Repeats monthly"
	case rrule.YEARLY:
		if interval > 1 {
			return fmt.Sprintf("Repeats every %d years", interval)
		}
		return "Repeats yearly"
	}
	return ""
}
