package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/recurrence"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

type CalendarEventHandler struct {
	eventStore  *store.EventStore
	courseStore *store.CourseStore
	notifier    *Notifier
	clock       Clock
	logger      *slog.Logger
}

func NewCalendarEventHandler(es *store.EventStore, cs *store.CourseStore, n *Notifier, clock Clock, logger *slog.Logger) *CalendarEventHandler {
	return &CalendarEventHandler{eventStore: es, courseStore: cs, notifier: n, clock: clock, logger: logger}
}

type eventRequest struct {
	Title    string              `json:"title" validate:"notblank,max=200"`
	Date     string              `json:"date" validate:"required"`
	Category model.EventCategory `json:"category" validate:"oneof=assignment exam class meeting"`
	CourseID *int64              `json:"course_id"`
	RRule    string              `json:"rrule" validate:"max=500"`
}

func (h *CalendarEventHandler) parseAndValidate(r *http.Request, w http.ResponseWriter) (*eventRequest, time.Time, bool) {
	var req eventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return nil, time.Time{}, false
	}

	req.Title = strings.TrimSpace(req.Title)
	req.RRule = strings.TrimSpace(req.RRule)
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return nil, time.Time{}, false
	}

	date, err := parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD format")
		return nil, time.Time{}, false
	}

	if req.CourseID != nil {
		course, err := h.courseStore.GetByID(*req.CourseID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check course")
			return nil, time.Time{}, false
		}
		if course == nil {
			writeError(w, http.StatusBadRequest, "course not found")
			return nil, time.Time{}, false
		}
	}

	if req.RRule != "" {
		rule, err := recurrence.Parse(req.RRule)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid rrule: "+err.Error())
			return nil, time.Time{}, false
		}
		req.RRule = rule.String()
	}

	return &req, date, true
}

func (h *CalendarEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, date, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.eventStore.Create(req.Title, date, req.Category, req.CourseID, req.RRule)
	if err != nil {
		h.logger.Error("create calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.notifier.Changed(r, websocket.EntityEvent, "created", event.ID, event.Title)
	writeJSON(w, http.StatusCreated, event)
}

// List returns the occurrences in [start, end), recurring events expanded.
func (h *CalendarEventHandler) List(w http.ResponseWriter, r *http.Request) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" || endStr == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}

	start, err := parseDay(startStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start must be RFC3339 or YYYY-MM-DD format")
		return
	}

	end, err := parseDay(endStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end must be RFC3339 or YYYY-MM-DD format")
		return
	}
	if !start.Before(end) {
		writeError(w, http.StatusBadRequest, "start must be before end")
		return
	}

	events, err := h.occurrences(start, end)
	if err != nil {
		h.logger.Error("list calendar events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}

	writeJSON(w, http.StatusOK, events)
}

func (h *CalendarEventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	req, date, ok := h.parseAndValidate(r, w)
	if !ok {
		return
	}

	event, err := h.eventStore.Update(existing.ID, req.Title, date, req.Category, req.CourseID, req.RRule)
	if err != nil {
		h.logger.Error("update calendar event", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.notifier.Changed(r, websocket.EntityEvent, "updated", event.ID, event.Title)
	writeJSON(w, http.StatusOK, event)
}

func (h *CalendarEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	if err := h.eventStore.Delete(existing.ID); err != nil {
		h.logger.Error("delete calendar event", "id", existing.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.notifier.Changed(r, websocket.EntityEvent, "deleted", existing.ID, existing.Title)
	w.WriteHeader(http.StatusNoContent)
}

// Month renders the 42-cell grid for the month containing date (default
// today).
func (h *CalendarEventHandler) Month(w http.ResponseWriter, r *http.Request) {
	today := h.clock.Today()
	anchor, ok := dateParam(w, r, today)
	if !ok {
		return
	}

	days := calendar.DaysForMonth(anchor)
	events, err := h.occurrences(days[0], days[len(days)-1].AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("load month events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}

	writeJSON(w, http.StatusOK, calendar.Month(anchor, calendar.NewIndex(events), today))
}

type dayEntry struct {
	Event       model.CalendarEvent `json:"event"`
	CourseTitle string              `json:"course_title"`
	Countdown   string              `json:"countdown"`
	Message     string              `json:"message"`
	Repeats     string              `json:"repeats,omitempty"`
}

type dayResponse struct {
	Date    string       `json:"date"`
	Tag     calendar.Tag `json:"tag"`
	IsToday bool         `json:"is_today"`
	Entries []dayEntry   `json:"entries"`
}

// Day returns the events on date with their tag and hover messages.
func (h *CalendarEventHandler) Day(w http.ResponseWriter, r *http.Request) {
	today := h.clock.Today()
	day, ok := dateParam(w, r, today)
	if !ok {
		return
	}

	events, err := h.occurrences(day, day.AddDate(0, 0, 1))
	if err != nil {
		h.logger.Error("load day events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}
	titles, err := h.courseStore.TitlesByID()
	if err != nil {
		h.logger.Error("load course titles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load calendar")
		return
	}

	matching := calendar.EventsOnDay(events, day)
	resp := dayResponse{
		Date:    day.Format("2006-01-02"),
		Tag:     calendar.Classify(day, events),
		IsToday: calendar.SameDay(day, today),
		Entries: make([]dayEntry, 0, len(matching)),
	}
	for _, e := range matching {
		title := courseTitle(e, titles)
		resp.Entries = append(resp.Entries, dayEntry{
			Event:       e,
			CourseTitle: title,
			Countdown:   calendar.Countdown(today, e.Date),
			Message:     calendar.Describe(e, title, today),
			Repeats:     repeats(e.RRule),
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// repeats renders a stored rule for display, or "" for one-off events.
func repeats(rule string) string {
	if rule == "" {
		return ""
	}
	r, err := recurrence.Parse(rule)
	if err != nil {
		return ""
	}
	return r.Describe()
}

// occurrences loads the stored events touching [from, to) and expands
// recurring ones into single-day occurrences.
func (h *CalendarEventHandler) occurrences(from, to time.Time) ([]model.CalendarEvent, error) {
	stored, err := h.eventStore.ListByDateRange(from, to)
	if err != nil {
		return nil, err
	}
	return recurrence.ExpandEvents(stored, from, to), nil
}

func (h *CalendarEventHandler) loadEvent(w http.ResponseWriter, r *http.Request) (*model.CalendarEvent, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return nil, false
	}

	event, err := h.eventStore.GetByID(id)
	if err != nil {
		h.logger.Error("get calendar event", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return nil, false
	}
	if event == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return nil, false
	}
	return event, true
}

// dateParam reads the date query parameter, falling back to def.
func dateParam(w http.ResponseWriter, r *http.Request, def time.Time) (time.Time, bool) {
	s := r.URL.Query().Get("date")
	if s == "" {
		return def, true
	}
	d, err := parseDay(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be RFC3339 or YYYY-MM-DD format")
		return time.Time{}, false
	}
	return d, true
}
