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

	"github.com/joho/godotenv"
	"github.com/spf13/afero"

	"github.com/dom/cyprine-heroes/internal/api"
	"github.com/dom/cyprine-heroes/internal/config"
	"github.com/dom/cyprine-heroes/internal/logger"
	"github.com/dom/cyprine-heroes/internal/repository/postgres"
	"github.com/dom/cyprine-heroes/internal/service"
	"github.com/dom/cyprine-heroes/internal/storage"
)

func main() {
	// A missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logg.Sync()

	// Initialize database
	db, err := postgres.NewConnection(context.Background(), cfg.DatabaseURL, cfg.DBConnectTimeout, logg)
	if err != nil {
		logg.Fatalw("failed to connect to database", "error", err)
	}

	// Initialize repositories
	repos := postgres.NewRepositories(db)

	images, err := storage.NewImageStore(afero.NewOsFs(), cfg.UploadDir)
	if err != nil {
		logg.Fatalw("failed to prepare upload directory", "dir", cfg.UploadDir, "error", err)
	}

	// Initialize services
	services, err := service.NewServices(repos, images, cfg, logg)
	if err != nil {
		logg.Fatalw("failed to initialize services", "error", err)
	}

	router := api.NewRouter(services, images, cfg, logg)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logg.Infow("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatalw("failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logg.Fatalw("server forced to shutdown", "error", err)
	}

	logg.Info("server stopped")
}
