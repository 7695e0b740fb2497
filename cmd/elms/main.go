package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dukerupert/elms/internal/config"
	"github.com/dukerupert/elms/internal/database"
	"github.com/dukerupert/elms/internal/handler"
	"github.com/dukerupert/elms/internal/logging"
	"github.com/dukerupert/elms/internal/reminder"
	"github.com/dukerupert/elms/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "hash-pin" {
		if err := hashPIN(); err != nil {
			fmt.Fprintln(os.Stderr, "elms:", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "elms:", err)
		os.Exit(1)
	}
}

func run() error {
	envFile := flag.String("env-file", ".env", "optional KEY=value file exported before reading ELMS_* overrides")
	configPath := flag.String("config", "", "path to a YAML config file (default $ELMS_CONFIG)")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		return err
	}
	if *configPath == "" {
		*configPath = os.Getenv("ELMS_CONFIG")
	}

	cfg, err := config.Load(*configPath, os.Getenv)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	db, err := database.Open(database.Memory)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if cfg.SeedDemo {
		if err := database.SeedDemo(db); err != nil {
			return err
		}
		logger.Info("demo data loaded")
	}

	srv := server.New(db, cfg, handler.SystemClock(loc), logger)

	reminders, err := reminder.New(srv.EventStore(), srv.SessionStore(), srv.RateLimiter(), srv.Hub(), reminder.Options{
		DigestSpec:  cfg.ReminderCron,
		HorizonDays: cfg.ReminderHorizonDays,
		Location:    loc,
	}, logger.With("component", "reminder"))
	if err != nil {
		return err
	}
	reminders.Start()
	defer reminders.Stop()

	httpServer := &http.Server{
		Addr:         cfg.Listen,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("elms listening", "addr", cfg.Listen, "timezone", loc.String())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}

// hashPIN reads a PIN from stdin and prints the bcrypt hash to put in
// admin_pin_hash.
func hashPIN() error {
	fmt.Fprint(os.Stderr, "Admin PIN: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read PIN: %w", err)
	}
	hash, err := handler.HashPIN(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
