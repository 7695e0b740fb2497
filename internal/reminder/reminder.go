// Package reminder runs the background jobs: the daily deadline digest
// pushed to open dashboards and the hourly cleanup of expired sessions
// and rate-limit buckets.
package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dukerupert/elms/internal/calendar"
	"github.com/dukerupert/elms/internal/model"
	"github.com/dukerupert/elms/internal/recurrence"
	"github.com/dukerupert/elms/internal/store"
	"github.com/dukerupert/elms/internal/websocket"
)

const cleanupSpec = "@hourly"

// Broadcaster is the part of the websocket hub the digest needs.
type Broadcaster interface {
	Broadcast(msg websocket.Message)
}

// Pruner is anything holding state that expires.
type Pruner interface {
	Cleanup() int
}

type Options struct {
	// DigestSpec is a five-field cron expression, evaluated in Location.
	DigestSpec  string
	HorizonDays int
	Location    *time.Location
	Now         func() time.Time
}

// Scheduler owns the cron runner.
type Scheduler struct {
	mu       sync.Mutex
	cron     *cron.Cron
	events   *store.EventStore
	sessions *store.SessionStore
	limiter  Pruner
	hub      Broadcaster
	opts     Options
	logger   *slog.Logger
}

func New(events *store.EventStore, sessions *store.SessionStore, limiter Pruner, hub Broadcaster, opts Options, logger *slog.Logger) (*Scheduler, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	cl := cronLogger{logger}
	c := cron.New(
		cron.WithLocation(opts.Location),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{
		cron:     c,
		events:   events,
		sessions: sessions,
		limiter:  limiter,
		hub:      hub,
		opts:     opts,
		logger:   logger,
	}

	if _, err := c.AddFunc(opts.DigestSpec, func() { s.Digest() }); err != nil {
		return nil, fmt.Errorf("schedule digest %q: %w", opts.DigestSpec, err)
	}
	if _, err := c.AddFunc(cleanupSpec, s.Cleanup); err != nil {
		return nil, fmt.Errorf("schedule cleanup: %w", err)
	}
	return s, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.logger.Info("reminders started", "digest", s.opts.DigestSpec, "horizon_days", s.opts.HorizonDays)
}

// Stop prevents new runs and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	<-s.cron.Stop().Done()
}

// Digest collects the deadlines within the horizon and pushes them to
// connected clients. It returns what it sent.
func (s *Scheduler) Digest() []model.CalendarEvent {
	today := calendar.CivilDate(s.opts.Now().In(s.opts.Location))
	end := today.AddDate(0, 0, s.opts.HorizonDays+1)

	stored, err := s.events.ListByDateRange(today, end)
	if err != nil {
		s.logger.Error("digest: list events", "error", err)
		return nil
	}
	due := calendar.Upcoming(recurrence.ExpandEvents(stored, today, end), today, s.opts.HorizonDays)
	if len(due) == 0 {
		s.logger.Debug("digest: nothing due", "today", today.Format("2006-01-02"))
		return due
	}

	items := make([]map[string]any, 0, len(due))
	for _, e := range due {
		items = append(items, map[string]any{
			"id":        e.ID,
			"title":     e.Title,
			"date":      e.Date.Format("2006-01-02"),
			"category":  e.Category,
			"countdown": calendar.Countdown(today, e.Date),
		})
	}
	if s.hub != nil {
		s.hub.Broadcast(websocket.NewMessage(websocket.EntityReminder, "digest", 0, map[string]any{
			"today":     today.Format("2006-01-02"),
			"deadlines": items,
		}))
	}
	s.logger.Info("digest sent", "deadlines", len(due))
	return due
}

// Cleanup drops expired sessions and idle rate-limit buckets.
func (s *Scheduler) Cleanup() {
	if s.sessions != nil {
		n, err := s.sessions.DeleteExpired()
		if err != nil {
			s.logger.Error("cleanup: expired sessions", "error", err)
		} else if n > 0 {
			s.logger.Info("cleanup: expired sessions", "deleted", n)
		}
	}
	if s.limiter != nil {
		if n := s.limiter.Cleanup(); n > 0 {
			s.logger.Debug("cleanup: rate limit buckets", "deleted", n)
		}
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
