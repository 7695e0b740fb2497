package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/elms/internal/config"
	"github.com/dukerupert/elms/internal/handler"
	"github.com/dukerupert/elms/internal/middleware"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/store"
	ws "github.com/dukerupert/elms/internal/websocket"
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	dashboardH     *handler.DashboardHandler
	courseH        *handler.CourseHandler
	materialH      *handler.MaterialHandler
	calendarEventH *handler.CalendarEventHandler
	chatH          *handler.ChatHandler
	chatbotH       *handler.ChatbotHandler
	adminH         *handler.AdminHandler
	activityH      *handler.ActivityHandler
	userStore      *store.UserStore
	sessionStore   *store.SessionStore
	eventStore     *store.EventStore
	rateLimiter    *middleware.RateLimiter
	allowedOrigins []string
	logger         *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, clock handler.Clock, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db, cfg.SessionTTL)
	courseStore := store.NewCourseStore(db)
	materialStore := store.NewMaterialStore(db)
	eventStore := store.NewEventStore(db)
	chatStore := store.NewChatStore(db)
	activityStore := store.NewActivityStore(db)

	notifier := handler.NewNotifier(hub, activityStore, logger.With("component", "activity"))

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(userStore, sessionStore, cfg.SessionTTL, cfg.AdminPINHash, logger.With("component", "auth")),
		dashboardH:     handler.NewDashboardHandler(courseStore, eventStore, materialStore, userStore, activityStore, clock, cfg.ReminderHorizonDays, logger.With("component", "dashboard")),
		courseH:        handler.NewCourseHandler(courseStore, userStore, notifier, logger.With("component", "course")),
		materialH:      handler.NewMaterialHandler(materialStore, courseStore, notifier, clock, logger.With("component", "material")),
		calendarEventH: handler.NewCalendarEventHandler(eventStore, courseStore, notifier, clock, logger.With("component", "calendar")),
		chatH:          handler.NewChatHandler(chatStore, hub, logger.With("component", "chat")),
		chatbotH:       handler.NewChatbotHandler(eventStore, clock, cfg.ReminderHorizonDays, logger.With("component", "chatbot")),
		adminH:         handler.NewAdminHandler(userStore, notifier, logger.With("component", "admin")),
		activityH:      handler.NewActivityHandler(activityStore, logger.With("component", "activity")),
		userStore:      userStore,
		sessionStore:   sessionStore,
		eventStore:     eventStore,
		rateLimiter:    middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute),
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	}
}

// Hub returns the dashboard sync hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// EventStore returns the event store for the reminder job.
func (s *Server) EventStore() *store.EventStore {
	return s.eventStore
}

// RateLimiter returns the login rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("POST /login", middleware.RateLimit(s.rateLimiter)(http.HandlerFunc(s.authH.Login)))
	outerMux.HandleFunc("GET /api/calendar.ics", s.calendarEventH.Export)

	// Everything else needs a session
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	admin := middleware.RequireAdmin
	staff := middleware.RequireRole(model.RoleTeacher, model.RoleAdmin)

	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /api/me", s.authH.Me)
	mux.HandleFunc("GET /api/dashboard", s.dashboardH.Get)

	// Courses
	mux.HandleFunc("GET /api/courses", s.courseH.List)
	mux.HandleFunc("GET /api/courses/{id}", s.courseH.Get)
	mux.Handle("POST /api/courses", admin(http.HandlerFunc(s.courseH.Create)))
	mux.Handle("PUT /api/courses/{id}", admin(http.HandlerFunc(s.courseH.Update)))
	mux.Handle("DELETE /api/courses/{id}", admin(http.HandlerFunc(s.courseH.Delete)))
	mux.Handle("POST /api/courses/{id}/sections", admin(http.HandlerFunc(s.courseH.CreateSection)))
	mux.Handle("DELETE /api/sections/{id}", admin(http.HandlerFunc(s.courseH.DeleteSection)))
	mux.Handle("POST /api/courses/{id}/teachers/{user_id}", admin(http.HandlerFunc(s.courseH.AssignTeacher)))
	mux.Handle("DELETE /api/courses/{id}/teachers/{user_id}", admin(http.HandlerFunc(s.courseH.UnassignTeacher)))

	// Materials
	mux.HandleFunc("GET /api/materials", s.materialH.List)
	mux.Handle("POST /api/courses/{id}/materials", staff(http.HandlerFunc(s.materialH.Create)))
	mux.Handle("DELETE /api/materials/{id}", staff(http.HandlerFunc(s.materialH.Delete)))

	// Calendar events
	mux.HandleFunc("GET /api/events", s.calendarEventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.calendarEventH.Get)
	mux.Handle("POST /api/events", staff(http.HandlerFunc(s.calendarEventH.Create)))
	mux.Handle("PUT /api/events/{id}", staff(http.HandlerFunc(s.calendarEventH.Update)))
	mux.Handle("DELETE /api/events/{id}", staff(http.HandlerFunc(s.calendarEventH.Delete)))
	mux.HandleFunc("GET /api/calendar/month", s.calendarEventH.Month)
	mux.HandleFunc("GET /api/calendar/day", s.calendarEventH.Day)
	mux.Handle("POST /api/calendar/import", staff(http.HandlerFunc(s.calendarEventH.Import)))

	// Chat
	mux.HandleFunc("GET /api/chat/messages", s.chatH.List)
	mux.HandleFunc("POST /api/chat/messages", s.chatH.Post)
	mux.HandleFunc("POST /api/chatbot", s.chatbotH.Ask)

	// Admin
	mux.Handle("GET /api/admin/teachers", admin(http.HandlerFunc(s.adminH.Teachers)))
	mux.Handle("GET /api/admin/students", admin(http.HandlerFunc(s.adminH.Students)))
	mux.Handle("DELETE /api/admin/teachers/{id}", admin(http.HandlerFunc(s.adminH.DeleteTeacher)))
	mux.Handle("GET /api/activity", staff(http.HandlerFunc(s.activityH.List)))

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"), s.allowedOrigins))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	body := map[string]any{"status": "ok", "clients": s.hub.ClientCount()}
	if err := s.db.PingContext(r.Context()); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
