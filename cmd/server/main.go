package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codyseavey/card-portfolio/internal/api"
	"github.com/codyseavey/card-portfolio/internal/config"
	"github.com/codyseavey/card-portfolio/internal/database"
	"github.com/codyseavey/card-portfolio/internal/services"
)

func main() {
	cfg := config.Load()

	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	store := database.NewStore(database.GetDB())

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	market := services.NewMarketplaceService(
		cfg.MarketplaceBaseURL,
		cfg.MarketplaceAPIKey,
		cfg.FetchTimeout,
		cfg.FetchMinInterval,
		cfg.FetchMaxAttempts,
	)
	cache := services.NewListingCache(cfg.CacheSize, cfg.CacheTTL, cfg.CacheEmptyTTL)
	comp := services.NewCompEngine()
	snapshots := services.NewSnapshotService(store)
	worker := services.NewRefreshWorker(ctx, store, cache, market, comp, snapshots, cfg.CohortPlayers, cfg.RefreshConcurrency)

	router := api.SetupRouter(store, worker, snapshots, cfg.CORSAllowedOrigins)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
