package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/focustrack/backend/internal/analysis"
	"github.com/focustrack/backend/internal/api"
	"github.com/focustrack/backend/internal/auth"
	"github.com/focustrack/backend/internal/blob"
	"github.com/focustrack/backend/internal/config"
	"github.com/focustrack/backend/internal/db"
	"github.com/focustrack/backend/internal/profile"
)

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	os.MkdirAll(cfg.DataPath, 0755)

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure a usable account exists
	if err := database.EnsureUser(cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create initial user: %v", err)
	}
	log.Printf("Initial account ensured: %s", cfg.AdminEmail)

	// Blob store for videos and profile pictures
	blobs, err := blob.NewStore(cfg.BlobPath, cfg.PublicBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	// Video pipeline: single current video + processing schedule
	pipeline := analysis.NewPipeline(database, blobs, cfg.ProcessingDelay, func(err error) bool {
		return errors.Is(err, db.ErrNotFound)
	})
	defer pipeline.Stop()
	if removed, err := pipeline.ReconcileOrphans(); err != nil {
		log.Printf("Orphan reconciliation failed: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d orphaned video files", removed)
	}

	// Services
	profiles := profile.NewService(database, blobs)
	jwtService := auth.NewJWTService(cfg.JWTSecret)

	// Create router
	router := api.NewRouter(database, jwtService, cfg, blobs, profiles, pipeline)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Printf("Starting server on %s", addr)
	log.Printf("Blob path: %s", cfg.BlobPath)
	log.Printf("Processing delay: %s, grouping timezone: %s", cfg.ProcessingDelay, cfg.Location)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		pipeline.Stop()
		database.Close()
		os.Exit(0)
	}()

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
