package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neochat/relay/internal/buildinfo"
	"github.com/neochat/relay/internal/config"
	"github.com/neochat/relay/internal/database"
	"github.com/neochat/relay/internal/directory"
	"github.com/neochat/relay/internal/handlers"
	"github.com/neochat/relay/internal/kv"
	"github.com/neochat/relay/internal/mailbox"
	"github.com/neochat/relay/internal/models"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Open the key-value store
	var (
		store kv.Store
		db    *database.DB
	)
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err = database.Connect(cfg.Database)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}

		log.Println("🚀 Synchronizing database schema...")
		if err := db.AutoMigrate(&models.KVEntry{}); err != nil {
			log.Fatalf("Failed to migrate kv_entries: %v", err)
		}
		log.Println("✅ Schema synchronized successfully")

		pgStore := kv.NewPostgresStore(db.DB)

		if cfg.Relay.PurgeInterval > 0 {
			go pgStore.RunPurger(ctx, cfg.Relay.PurgeInterval)
			log.Printf("✅ Expired-entry purger running every %s", cfg.Relay.PurgeInterval)
		}
		store = pgStore
	default:
		log.Println("📦 Storage: [Memory] - envelopes and profiles are lost on exit")
		store = kv.NewMemoryStore()
	}

	// 3. Set up HTTP router
	router := handlers.NewRouter(
		directory.NewService(store),
		mailbox.NewService(store, mailbox.Config{
			TTL:                 cfg.Relay.MessageTTL,
			PollLimit:           cfg.Relay.PollLimit,
			MinRecipientHashLen: cfg.Relay.MinRecipientHashLen,
		}),
		handlers.Options{ExposeInternalErrors: cfg.Relay.ExposeInternalErrors},
	)

	// 4. Start server with graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		log.Printf("🚀 %s v%s (commit %s, built %s) starting on port %s", buildinfo.ServiceName, buildinfo.Version, buildinfo.CommitHash, buildinfo.BuildTime, cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	sig := <-shutdown
	log.Printf("⚠️  Received signal: %v. Shutting down gracefully...", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// Stop the purger before the connection goes away
	cancel()

	if db != nil {
		log.Println("🛑 Closing database connection...")
		if err := db.Close(); err != nil {
			log.Printf("Database close error: %v", err)
		}
	}

	log.Println("✅ Shutdown complete")
}
