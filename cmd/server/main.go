package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gloggi/ausbildung-api/internal/auth"
	"github.com/gloggi/ausbildung-api/internal/config"
	"github.com/gloggi/ausbildung-api/internal/database"
	"github.com/gloggi/ausbildung-api/internal/handlers"
	"github.com/gloggi/ausbildung-api/internal/logger"
	"github.com/gloggi/ausbildung-api/internal/migrations"
	"github.com/gloggi/ausbildung-api/internal/notifier"
	"github.com/gloggi/ausbildung-api/internal/store"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.Init(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zap.L().Sync()

	if err := run(cfg); err != nil {
		zap.L().Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}

	// The schema belongs to the migration steps. Refuse to serve an outdated
	// database unless told to bring it up to date.
	seq, err := migrations.NewSequencer(db, migrations.Steps())
	if err != nil {
		return err
	}
	current, err := seq.Current(context.Background())
	if err != nil {
		return err
	}
	if current < seq.Latest() {
		if !cfg.MigrateOnStart {
			return fmt.Errorf("database is at version %d, latest is %d: run the migrate command or set MIGRATE_ON_START", current, seq.Latest())
		}
		applied, err := seq.Up(context.Background(), seq.Latest())
		if err != nil {
			return err
		}
		zap.L().Info("applied migrations", zap.Ints("versions", applied))
	}

	stores := store.New(db, cfg.Location(), time.Now)

	var n notifier.Notifier
	discordNotifier, err := notifier.NewFromConfig(cfg)
	if err != nil {
		zap.L().Warn("Discord notifier not initialized", zap.Error(err))
	} else {
		n = discordNotifier
	}

	authHandler := auth.NewAuthHandler(cfg, stores.Users)
	r := chi.NewRouter()
	handlers.RegisterRoutes(r, cfg, handlers.Handlers{
		Auth:          authHandler,
		Courses:       handlers.NewCourseHandler(stores, authHandler),
		Units:         handlers.NewUnitHandler(stores, authHandler),
		Registrations: handlers.NewRegistrationHandler(stores, n, authHandler),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		zap.L().Info("Starting server", zap.String("port", cfg.Port))
		serverErrors <- srv.ListenAndServe()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("srv.ListenAndServe -> %w", err)
		}
	case sig := <-signals:
		zap.L().Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("srv.Shutdown -> %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	return nil
}
