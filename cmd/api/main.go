package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/npc-engine/internal/admin"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/middleware"
	"github.com/jwebster45206/npc-engine/internal/seed"
	"github.com/jwebster45206/npc-engine/internal/services/audit"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/items"
	"github.com/jwebster45206/npc-engine/pkg/world"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"seed_file", cfg.SeedFile)

	client, err := storage.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	store := storage.NewRedisStorage(client, cfg.SnapshotKey, log)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}

	// Maps and regions always come from the seed file. The dialogue graph,
	// items and NPC positions come from the last snapshot when there is one.
	s, err := seed.LoadFile(cfg.SeedFile)
	if err != nil {
		log.Error("Failed to load seed file", "error", err)
		os.Exit(1)
	}

	broadcaster := events.NewBroadcaster(client, log)
	placement := world.NewPlacement(s.World, broadcaster, log, world.PlacementConfig{
		ViewRange: cfg.ViewRange,
		QueueSize: cfg.NotifyQueueSize,
	})

	graph, catalog := s.Store, s.Catalog
	snap, err := store.LoadSnapshot(storageCtx)
	if err != nil {
		log.Error("Failed to load snapshot", "error", err)
		os.Exit(1)
	}
	if snap != nil {
		if graph, err = dialogue.Restore(snap.Dialogue); err != nil {
			log.Error("Failed to restore dialogue graph", "error", err)
			os.Exit(1)
		}
		if catalog, err = items.Restore(snap.Items); err != nil {
			log.Error("Failed to restore item catalog", "error", err)
			os.Exit(1)
		}
		skipped := placement.Restore(snap.Placement, func(npcID int) bool {
			return graph.NPC(npcID) != nil
		})
		log.Info("Snapshot restored",
			"saved_at", snap.SavedAt,
			"npcs", len(graph.NPCs()),
			"items", len(catalog.Items()),
			"offline", len(skipped))
		if report := graph.Validate(); !report.OK() {
			log.Warn("Dialogue graph has integrity problems",
				"dangling", len(report.Dangling),
				"unindexed", len(report.Unindexed),
				"unreachable", len(report.Unreachable))
		}
	} else {
		offline := s.Place(placement, log)
		log.Info("World seeded",
			"npcs", len(graph.NPCs()),
			"items", len(catalog.Items()),
			"offline", len(offline))
	}

	auditSink := audit.NewSink(client, cfg.AuditKey, cfg.AuditMaxLines, log)
	svc := admin.NewService(admin.Deps{
		Store:     graph,
		World:     s.World,
		Placement: placement,
		Catalog:   catalog,
		Storage:   store,
		Audit:     auditSink,
		Logger:    log,
	})

	runCtx, stop := context.WithCancel(context.Background())
	defer stop()
	go placement.Run(runCtx)

	mux := http.NewServeMux()
	mux.Handle("GET /health", handlers.NewHealthHandler(store, log))
	handlers.NewAdminHandler(svc, log).Register(mux)
	mux.Handle("GET /v1/admin/audit", handlers.NewAuditHandler(auditSink, log))
	mux.Handle("GET /v1/events/maps/{mapID}", handlers.NewEventsHandler(client, svc, log))

	handler := middleware.Logger(log, middleware.Tier(mux))
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout removed so websocket connections stay open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}
	stop()

	if err := svc.Save(shutdownCtx); err != nil {
		log.Error("Failed to save snapshot on shutdown", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
