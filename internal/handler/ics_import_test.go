package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/dukerupert/elms/internal/model"
)

const importFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Registrar//Term Calendar//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:lab-1@registrar\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240325\r\n" +
	"SUMMARY:Networking Lab\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=4\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:final-1@registrar\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART:20240410T230000Z\r\n" +
	"SUMMARY:Final Exam\r\n" +
	"CATEGORIES:EXAM\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:broken@registrar\r\n" +
	"DTSTAMP:20240301T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240412\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestCalendarImport(t *testing.T) {
	env := newTestEnv(t)
	env.clock.Location = time.FixedZone("UTC+2", 2*60*60)
	h := newCalendarEventHandler(env)

	rec := serve(h.Import, newRequest(http.MethodPost, "/api/calendar/import?course_id=3", importFeed, &asSarah))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	resp := decode[importResponse](t, rec)
	if len(resp.Imported) != 2 || len(resp.Skipped) != 1 {
		t.Fatalf("imported %d, skipped %d", len(resp.Imported), len(resp.Skipped))
	}

	lab, final := resp.Imported[0], resp.Imported[1]
	if lab.Category != model.CategoryClass || lab.RRule != "FREQ=WEEKLY;COUNT=4" || lab.Date.Format("2006-01-02") != "2024-03-25" {
		t.Errorf("lab = %+v", lab)
	}
	// 23:00 UTC is already the next day two hours east.
	if final.Category != model.CategoryExam || final.Date.Format("2006-01-02") != "2024-04-11" {
		t.Errorf("final = %+v", final)
	}
	if final.CourseID == nil || *final.CourseID != 3 {
		t.Errorf("course = %v, want 3", final.CourseID)
	}
	if resp.Skipped[0].Reason != "missing SUMMARY" {
		t.Errorf("skip reason = %q", resp.Skipped[0].Reason)
	}
}

func TestCalendarImportRejects(t *testing.T) {
	env := newTestEnv(t)
	h := newCalendarEventHandler(env)

	tests := []struct {
		name, query, body string
	}{
		{"bad category", "?category=party", importFeed},
		{"missing course", "?course_id=99", importFeed},
		{"not a calendar", "", "hello"},
		{"empty body", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h.Import, newRequest(http.MethodPost, "/api/calendar/import"+tt.query, tt.body, &asSarah))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}

	if all, _ := env.events.List(); len(all) != 5 {
		t.Errorf("events = %d, want the 5 seeded ones", len(all))
	}
}
