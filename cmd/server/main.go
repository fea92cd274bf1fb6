// Command server runs the leadgen auto-responder: it serves the Facebook
// webhook and management API, and keeps the local ad catalog in sync with
// the Marketing API on a fixed interval.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/leadpilot/go-leadgen-backend/internal/config"
	"github.com/leadpilot/go-leadgen-backend/internal/graph"
	httpapi "github.com/leadpilot/go-leadgen-backend/internal/http"
	"github.com/leadpilot/go-leadgen-backend/internal/observability"
	"github.com/leadpilot/go-leadgen-backend/internal/repo"
	"github.com/leadpilot/go-leadgen-backend/internal/scheduler"
	"github.com/leadpilot/go-leadgen-backend/internal/services"
	"github.com/leadpilot/go-leadgen-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.OTEL.ServiceName).Logger()

	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("database tracing setup failed")
		}
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	fb := graph.NewClient(cfg.Facebook, &http.Client{Timeout: 30 * time.Second})

	// Periodic ad sync, skipped while a previous run is still in flight.
	adSvc := &services.AdService{DB: db, Graph: fb}
	sched := scheduler.New(cfg.AdSyncInterval, func(ctx context.Context) error {
		_, err := adSvc.Sync(ctx)
		return err
	})
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	engine := gin.New()
	httpapi.RegisterRoutes(engine, db, fb, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("base_path", cfg.APIBasePath).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown error")
	}

	// Wait for any in-flight ad sync before closing the process.
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn().Msg("timed out waiting for ad sync to finish")
	}

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown error")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info().Msg("bye")
}
