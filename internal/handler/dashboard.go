package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/elms/internal/auth"
	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/recurrence"
	"github.com/dukerupert/elms/internal/store"
)

const dashboardActivityLimit = 10

// DashboardHandler builds the landing summary for each role.
type DashboardHandler struct {
	courseStore   *store.CourseStore
	eventStore    *store.EventStore
	materialStore *store.MaterialStore
	userStore     *store.UserStore
	activityStore *store.ActivityStore
	clock         Clock
	horizonDays   int
	logger        *slog.Logger
}

func NewDashboardHandler(
	cs *store.CourseStore,
	es *store.EventStore,
	ms *store.MaterialStore,
	us *store.UserStore,
	as *store.ActivityStore,
	clock Clock,
	horizonDays int,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		courseStore:   cs,
		eventStore:    es,
		materialStore: ms,
		userStore:     us,
		activityStore: as,
		clock:         clock,
		horizonDays:   horizonDays,
		logger:        logger,
	}
}

type courseSummary struct {
	model.Course
	MaterialCount int `json:"material_count"`
}

type studentDashboard struct {
	Role      model.Role            `json:"role"`
	Today     string                `json:"today"`
	Courses   []model.Course        `json:"courses"`
	Upcoming  []dayEntry            `json:"upcoming"`
	TodayTag  calendar.Tag          `json:"today_tag"`
	TodayList []model.CalendarEvent `json:"today_events"`
}

type teacherDashboard struct {
	Role     model.Role       `json:"role"`
	Today    string           `json:"today"`
	Courses  []courseSummary  `json:"courses"`
	Upcoming []dayEntry       `json:"upcoming"`
	Activity []model.Activity `json:"activity"`
}

type adminDashboard struct {
	Role     model.Role       `json:"role"`
	Today    string           `json:"today"`
	Courses  int              `json:"courses"`
	Sections int              `json:"sections"`
	Teachers int              `json:"teachers"`
	Students int              `json:"students"`
	Activity []model.Activity `json:"activity"`
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())
	today := h.clock.Today()

	var (
		body any
		err  error
	)
	switch ac.Role {
	case model.RoleAdmin:
		body, err = h.admin(today)
	case model.RoleTeacher:
		body, err = h.teacher(ac.UserID, today)
	default:
		body, err = h.student(today)
	}
	if err != nil {
		h.logger.Error("build dashboard", "role", ac.Role, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *DashboardHandler) student(today time.Time) (*studentDashboard, error) {
	courses, err := h.courseStore.List()
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []model.Course{}
	}
	events, upcoming, err := h.upcoming(today)
	if err != nil {
		return nil, err
	}
	return &studentDashboard{
		Role:      model.RoleStudent,
		Today:     today.Format("2006-01-02"),
		Courses:   courses,
		Upcoming:  upcoming,
		TodayTag:  calendar.Classify(today, events),
		TodayList: calendar.EventsOnDay(events, today),
	}, nil
}

func (h *DashboardHandler) teacher(userID int64, today time.Time) (*teacherDashboard, error) {
	courses, err := h.courseStore.ListForTeacher(userID)
	if err != nil {
		return nil, err
	}
	counts, err := h.materialStore.CountByCourse()
	if err != nil {
		return nil, err
	}
	summaries := make([]courseSummary, 0, len(courses))
	for _, c := range courses {
		summaries = append(summaries, courseSummary{Course: c, MaterialCount: counts[c.ID]})
	}

	_, upcoming, err := h.upcoming(today)
	if err != nil {
		return nil, err
	}
	activity, err := h.recentActivity()
	if err != nil {
		return nil, err
	}
	return &teacherDashboard{
		Role:     model.RoleTeacher,
		Today:    today.Format("2006-01-02"),
		Courses:  summaries,
		Upcoming: upcoming,
		Activity: activity,
	}, nil
}

func (h *DashboardHandler) admin(today time.Time) (*adminDashboard, error) {
	d := &adminDashboard{Role: model.RoleAdmin, Today: today.Format("2006-01-02")}
	var err error
	if d.Courses, err = h.courseStore.Count(); err != nil {
		return nil, err
	}
	if d.Sections, err = h.courseStore.CountSections(); err != nil {
		return nil, err
	}
	if d.Teachers, err = h.userStore.CountByRole(model.RoleTeacher); err != nil {
		return nil, err
	}
	if d.Students, err = h.userStore.CountByRole(model.RoleStudent); err != nil {
		return nil, err
	}
	if d.Activity, err = h.recentActivity(); err != nil {
		return nil, err
	}
	return d, nil
}

// upcoming returns the expanded events of the horizon window and the
// deadlines among them with their popup text.
func (h *DashboardHandler) upcoming(today time.Time) ([]model.CalendarEvent, []dayEntry, error) {
	end := today.AddDate(0, 0, h.horizonDays+1)
	stored, err := h.eventStore.ListByDateRange(today, end)
	if err != nil {
		return nil, nil, err
	}
	titles, err := h.courseStore.TitlesByID()
	if err != nil {
		return nil, nil, err
	}

	events := recurrence.ExpandEvents(stored, today, end)
	due := calendar.Upcoming(events, today, h.horizonDays)
	entries := make([]dayEntry, 0, len(due))
	for _, e := range due {
		title := courseTitle(e, titles)
		entries = append(entries, dayEntry{
			Event:       e,
			CourseTitle: title,
			Countdown:   calendar.Countdown(today, e.Date),
			Message:     calendar.Describe(e, title, today),
		})
	}
	return events, entries, nil
}

func (h *DashboardHandler) recentActivity() ([]model.Activity, error) {
	entries, err := h.activityStore.Recent(dashboardActivityLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.Activity{}
	}
	return entries, nil
}
