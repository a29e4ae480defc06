package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/fretlog/internal/api"
	"github.com/vytor/fretlog/internal/config"
	"github.com/vytor/fretlog/internal/db"
	"github.com/vytor/fretlog/internal/logger"
	"github.com/vytor/fretlog/internal/outbox"
	"github.com/vytor/fretlog/internal/remote"
	"github.com/vytor/fretlog/internal/services"
	"github.com/vytor/fretlog/internal/store"
	"github.com/vytor/fretlog/internal/sync"
	"github.com/vytor/fretlog/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Fretlog Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("remote_base_url=%s", cfg.RemoteBaseURL)
	log.Debug("sync_interval=%s", cfg.SyncInterval)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("decay_sweep_interval=%s", cfg.DecaySweepInterval)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	hub := store.NewHub()
	st := store.New(database, hub)
	queue := outbox.NewQueue(database, cfg.UserID)

	// The sync engine and its connectivity gate only exist when a
	// remote backend is configured; without one the app runs purely
	// local. The pool always runs, it also carries the decay sweep.
	pool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	var (
		engine *sync.Engine
		gate   *sync.Gate
	)
	if cfg.RemoteBaseURL != "" {
		rem := remote.New(cfg.RemoteBaseURL, cfg.RemoteAPIKey, cfg.UserID)
		gate = sync.NewGate(true)
		engine = sync.NewEngine(st, queue, rem,
			sync.WithInterval(cfg.SyncInterval),
			sync.WithConnectivity(gate.Online),
		)
	} else {
		log.Info("no remote backend configured, running local-only")
	}

	songService := services.NewSongService(st)
	srv := &api.Server{
		DB:              database,
		SongService:     songService,
		PracticeService: services.NewPracticeService(st),
		DeckService:     services.NewDeckService(st),
		BackupService:   services.NewBackupService(st),
		Queue:           queue,
		Engine:          engine,
		Gate:            gate,
		SyncPool:        pool,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	if engine != nil {
		engine.Start()
	}

	// Periodic decay sweep keeps stats fresh even when nothing reads
	// the library for days.
	go func() {
		ticker := time.NewTicker(cfg.DecaySweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pool.TrySubmit(&worker.DecaySweepJob{Songs: songService})
			}
		}
	}()

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown HTTP server first so no new work arrives mid-teardown.
	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	cancel()
	log.Debug("stopping worker pool")
	pool.Stop()
	if engine != nil {
		log.Debug("stopping sync engine")
		engine.Stop()
	}

	log.Info("===========================================")
	log.Info("Fretlog Server Stopped")
	log.Info("===========================================")
}
