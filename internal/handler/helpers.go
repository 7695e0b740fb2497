package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/model"
)

// Clock decides what today is for calendar views and dashboards.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// SystemClock reads the wall clock in loc.
func SystemClock(loc *time.Location) Clock {
	return Clock{Location: loc, Now: time.Now}
}

func (c Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Today returns the current civil date in the clock's zone as midnight UTC.
func (c Clock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return calendar.CivilDate(c.now().In(loc))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func parseIDParam(r *http.Request) (int64, error) {
	return parsePathID(r, "id")
}

func parsePathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.PathValue(name), 10, 64)
}

// parseFlexibleTime accepts RFC3339 or YYYY-MM-DD.
func parseFlexibleTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// parseDay parses s as a calendar date. RFC3339 values keep the civil date
// written in their own offset.
func parseDay(s string) (time.Time, error) {
	t, err := parseFlexibleTime(strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, err
	}
	return calendar.CivilDate(t), nil
}

// courseTitle resolves the label shown next to an event.
func courseTitle(e model.CalendarEvent, titles map[int64]string) string {
	if e.CourseID == nil {
		return calendar.GeneralCourse
	}
	if t, ok := titles[*e.CourseID]; ok {
		return t
	}
	return calendar.UnknownCourse
}
