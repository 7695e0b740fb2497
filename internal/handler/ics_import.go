package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	goical "github.com/emersion/go-ical"

	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/recurrence"
	"github.com/dukerupert/elms/internal/websocket"
)

const maxImportBytes = 1 << 20

type skippedEvent struct {
	Summary string `json:"summary"`
	Reason  string `json:"reason"`
}

type importResponse struct {
	Imported []model.CalendarEvent `json:"imported"`
	Skipped  []skippedEvent        `json:"skipped"`
}

// Import reads an iCalendar body and stores each VEVENT as a calendar
// event. category sets the category of events without a recognised
// CATEGORIES value (default class); course_id attaches them to a course.
func (h *CalendarEventHandler) Import(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fallback := model.CategoryClass
	if s := q.Get("category"); s != "" {
		fallback = model.EventCategory(strings.ToLower(s))
		if !fallback.Valid() {
			writeError(w, http.StatusBadRequest, "category must be assignment, exam, class, or meeting")
			return
		}
	}

	var courseID *int64
	if s := q.Get("course_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid course_id")
			return
		}
		course, err := h.courseStore.GetByID(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check course")
			return
		}
		if course == nil {
			writeError(w, http.StatusBadRequest, "course not found")
			return
		}
		courseID = &id
	}

	var components []*goical.Component
	dec := goical.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes))
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid iCalendar: "+err.Error())
			return
		}
		for _, comp := range cal.Children {
			if comp.Name == goical.CompEvent {
				components = append(components, comp)
			}
		}
	}
	if len(components) == 0 {
		writeError(w, http.StatusBadRequest, "no events found")
		return
	}

	resp := importResponse{Imported: []model.CalendarEvent{}, Skipped: []skippedEvent{}}
	var pending []model.CalendarEvent
	for _, comp := range components {
		e, err := h.eventFromComponent(comp, fallback)
		if err != nil {
			resp.Skipped = append(resp.Skipped, skippedEvent{Summary: propValue(comp, goical.PropSummary), Reason: err.Error()})
			continue
		}
		e.CourseID = courseID
		pending = append(pending, e)
	}
	if len(pending) > 0 {
		created, err := h.eventStore.CreateMany(pending)
		if err != nil {
			h.logger.Error("import calendar events", "count", len(pending), "error", err)
			writeError(w, http.StatusInternalServerError, "failed to import events")
			return
		}
		resp.Imported = created
	}

	status := http.StatusOK
	if len(resp.Imported) > 0 {
		status = http.StatusCreated
		h.notifier.Changed(r, websocket.EntityEvent, "imported", 0, fmt.Sprintf("%d events", len(resp.Imported)))
	}
	h.logger.Info("calendar import", "imported", len(resp.Imported), "skipped", len(resp.Skipped))
	writeJSON(w, status, resp)
}

// eventFromComponent maps a VEVENT onto an event. Timed starts keep the
// date they fall on in the clock's zone.
func (h *CalendarEventHandler) eventFromComponent(comp *goical.Component, fallback model.EventCategory) (model.CalendarEvent, error) {
	var e model.CalendarEvent

	e.Title = strings.TrimSpace(propValue(comp, goical.PropSummary))
	if e.Title == "" {
		return e, fmt.Errorf("missing SUMMARY")
	}

	start := comp.Props.Get(goical.PropDateTimeStart)
	if start == nil {
		return e, fmt.Errorf("missing DTSTART")
	}
	loc := h.clock.Location
	if loc == nil {
		loc = h.clock.now().Location()
	}
	t, err := start.DateTime(loc)
	if err != nil {
		return e, fmt.Errorf("invalid DTSTART: %w", err)
	}
	e.Date = calendar.CivilDate(t.In(loc))

	e.Category = fallback
	for _, c := range strings.Split(propValue(comp, goical.PropCategories), ",") {
		if cat := model.EventCategory(strings.ToLower(strings.TrimSpace(c))); cat.Valid() {
			e.Category = cat
			break
		}
	}

	if raw := propValue(comp, goical.PropRecurrenceRule); raw != "" {
		rule, err := recurrence.Parse(raw)
		if err != nil {
			return e, fmt.Errorf("unsupported RRULE: %w", err)
		}
		e.RRule = rule.String()
	}
	return e, nil
}

func propValue(comp *goical.Component, name string) string {
	if p := comp.Props.Get(name); p != nil {
		return p.Value
	}
	return ""
}
