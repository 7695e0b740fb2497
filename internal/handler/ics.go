package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/dukerupert/elms/internal/model"
)

const icsProductID = "-//ELMS//Academic Calendar//EN"

// Export serves the academic calendar as an iCalendar subscription feed.
// Recurring events keep their RRULE so clients expand them. An optional
// course_id narrows the feed to one course.
func (h *CalendarEventHandler) Export(w http.ResponseWriter, r *http.Request) {
	var courseID *int64
	if s := r.URL.Query().Get("course_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid course_id")
			return
		}
		courseID = &id
	}

	events, err := h.eventStore.List()
	if err != nil {
		h.logger.Error("export calendar", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}
	titles, err := h.courseStore.TitlesByID()
	if err != nil {
		h.logger.Error("export calendar titles", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export calendar")
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(icsProductID)
	cal.SetXWRCalName("ELMS Academic Calendar")
	cal.SetXPublishedTTL("PT1H")

	stamp := h.clock.now().UTC()
	for _, e := range events {
		if courseID != nil && (e.CourseID == nil || *e.CourseID != *courseID) {
			continue
		}
		addICSEvent(cal, e, courseTitle(e, titles), stamp)
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(cal.Serialize()))
}

func addICSEvent(cal *ical.Calendar, e model.CalendarEvent, course string, stamp time.Time) {
	ev := cal.AddEvent(fmt.Sprintf("event-%d@elms", e.ID))
	ev.SetDtStampTime(stamp)
	ev.SetAllDayStartAt(e.Date)
	ev.SetAllDayEndAt(e.Date.AddDate(0, 0, 1))
	ev.SetSummary(e.Title)
	ev.SetDescription(fmt.Sprintf("%s %s", course, e.Category))
	ev.AddProperty(ical.ComponentPropertyCategories, strings.ToUpper(string(e.Category)))
	if e.RRule != "" {
		ev.AddProperty(ical.ComponentPropertyRrule, e.RRule)
	}
}
