package recurrence

import (
	"testing"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestParse(t *testing.T) {
	for _, input := range []string{
		"FREQ=DAILY",
		"FREQ=WEEKLY;INTERVAL=2",
		"FREQ=WEEKLY;BYDAY=MO,WE,FR",
		"RRULE:FREQ=MONTHLY",
		"FREQ=DAILY;COUNT=5",
		"FREQ=WEEKLY;UNTIL=20240501T000000Z",
	} {
		r, err := Parse(input)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", input, err)
			continue
		}
		if r.String() == "" {
			t.Errorf("Parse(%q).String() is empty", input)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"RRULE:",
		"FREQ=HOURLY",
		"FREQ=MINUTELY",
		"FREQ=NEVER",
		"BYDAY=XX;FREQ=WEEKLY",
	} {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) should error", input)
		}
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"FREQ=DAILY", "Repeats daily"},
		{"FREQ=WEEKLY", "Repeats weekly"},
		{"FREQ=WEEKLY;INTERVAL=2", "Repeats every 2 weeks"},
		{"FREQ=WEEKLY;BYDAY=MO,WE,FR", "Repeats weekly on Mon, Wed, Fri"},
		{"FREQ=MONTHLY", "Repeats monthly"},
		{"FREQ=YEARLY;INTERVAL=4", "Repeats every 4 years"},
	}

	for _, tt := range tests {
		r, err := Parse(tt.rule)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.rule, err)
		}
		if got := r.Describe(); got != tt.want {
			t.Errorf("Describe(%q) = %q, want %q", tt.rule, got, tt.want)
		}
	}
}

func TestOccurrencesWeekly(t *testing.T) {
	// Every Friday from 2024-03-22 (a Friday).
	r, err := Parse("FREQ=WEEKLY")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	got, err := r.Occurrences(day(2024, 3, 22), day(2024, 3, 1), day(2024, 4, 13))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	want := []time.Time{day(2024, 3, 22), day(2024, 3, 29), day(2024, 4, 5), day(2024, 4, 12)}
	if len(got) != len(want) {
		t.Fatalf("got %d occurrences, want %d", len(got), len(want))
	}
	for i := range want {
		if !got[i].Equal(want[i]) {
			t.Errorf("occ[%d] = %s, want %s", i, got[i].Format("2006-01-02"), want[i].Format("2006-01-02"))
		}
	}
}

func TestOccurrencesExcludesRangeEnd(t *testing.T) {
	r, _ := Parse("FREQ=DAILY")
	got, err := r.Occurrences(day(2024, 3, 1), day(2024, 3, 1), day(2024, 3, 4))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d occurrences, want 3", len(got))
	}
}

func TestOccurrencesCount(t *testing.T) {
	r, _ := Parse("FREQ=WEEKLY;COUNT=2")
	got, err := r.Occurrences(day(2024, 3, 4), day(2024, 3, 1), day(2024, 6, 1))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d occurrences, want 2", len(got))
	}
}

func TestOccurrencesEmptyRange(t *testing.T) {
	r, _ := Parse("FREQ=DAILY")
	got, err := r.Occurrences(day(2024, 3, 1), day(2024, 3, 5), day(2024, 3, 5))
	if err != nil {
		t.Fatalf("occurrences: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d occurrences, want 0", len(got))
	}
}

func TestExpandEvents(t *testing.T) {
	events := []model.CalendarEvent{
		{ID: 1, Title: "Assignment", Date: day(2024, 3, 16), Category: model.CategoryAssignment},
		{ID: 2, Title: "Lab", Date: day(2024, 3, 4), Category: model.CategoryClass, RRule: "FREQ=WEEKLY;BYDAY=MO"},
		{ID: 3, Title: "Old", Date: day(2024, 1, 2), Category: model.CategoryMeeting},
		{ID: 4, Title: "Broken", Date: day(2024, 3, 9), Category: model.CategoryClass, RRule: "FREQ=NEVER"},
	}

	got := ExpandEvents(events, day(2024, 3, 1), day(2024, 4, 1))

	counts := map[int64]int{}
	for _, e := range got {
		counts[e.ID]++
	}
	if counts[1] != 1 {
		t.Errorf("single event count = %d, want 1", counts[1])
	}
	// Mondays 4, 11, 18, 25 March.
	if counts[2] != 4 {
		t.Errorf("recurring event count = %d, want 4", counts[2])
	}
	if counts[3] != 0 {
		t.Errorf("out of range event count = %d, want 0", counts[3])
	}
	if counts[4] != 1 {
		t.Errorf("unparseable rule count = %d, want 1", counts[4])
	}
	for _, e := range got {
		if e.ID == 2 && e.Date.Weekday() != time.Monday {
			t.Errorf("occurrence on %s, want Monday", e.Date.Weekday())
		}
	}
}
