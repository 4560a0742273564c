// Command plannerd is the Planner server daemon.
// It opens the SQLite stores, wires the scheduling engine and service layer,
// and serves the REST API.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/GoCodeAlone/planner/config"
	"github.com/GoCodeAlone/planner/internal/version"
	"github.com/GoCodeAlone/planner/project"
	"github.com/GoCodeAlone/planner/schedule"
	"github.com/GoCodeAlone/planner/server"
	"github.com/GoCodeAlone/planner/task"
	"github.com/GoCodeAlone/planner/tracker"
	"github.com/GoCodeAlone/planner/user"
)

var configPath = flag.String("config", "planner.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("Failed to load config %s: %v", *configPath, err)
		}
		cfg = config.DefaultConfig()
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	logger.Info("starting plannerd",
		"version", version.Version,
		"commit", version.Commit,
	)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data dir %s: %v", cfg.DataDir, err)
	}

	tasks, err := task.NewSQLiteStore(filepath.Join(cfg.DataDir, "tasks.db"))
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	defer tasks.Close()

	projects, err := project.NewSQLiteStore(filepath.Join(cfg.DataDir, "projects.db"))
	if err != nil {
		log.Fatalf("Failed to open project store: %v", err)
	}
	defer projects.Close()

	users, err := user.NewSQLiteStore(filepath.Join(cfg.DataDir, "users.db"))
	if err != nil {
		log.Fatalf("Failed to open user store: %v", err)
	}
	defer users.Close()

	clock := schedule.SystemClock{}
	engine := schedule.NewEngine(tasks, projects, clock, logger)
	svc := tracker.NewService(tasks, projects, users, engine, clock, logger)

	srv := server.New(*cfg, version.Version, logger)
	srv.SetService(svc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		logger.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(ctx); err != nil {
		logger.Error("server stop error", "error", err)
	}
	logger.Info("shutdown complete")
}
