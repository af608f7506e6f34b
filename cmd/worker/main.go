package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nflcache/ingestion/internal/app"
	"nflcache/ingestion/internal/config"
	"nflcache/ingestion/internal/metrics"
	"nflcache/ingestion/internal/scheduler"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	setupLogger()

	log.Info().Msg("Starting NFL player cache worker")

	cfg := config.MustLoad()
	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize worker")
	}
	defer a.Close()

	var srv *statusServer
	if cfg.EnableMetrics {
		srv = newStatusServer(cfg.MetricsPort, a.Health, lastReport(a))
		go srv.listen()
	}

	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				a.DB.PoolStats()
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.NewScheduler(cfg.RebuildCron, a.Orchestrator)

	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	waitInitial := func() {}
	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial cache rebuild...")
		waitInitial = background(func() {
			if _, err := sched.RunNow(ctx); err != nil {
				log.Error().Err(err).Msg("Initial rebuild failed, continuing anyway...")
			}
		})
	}

	<-ctx.Done()

	// the rebuild still writes its count and report after cancellation
	waitInitial()

	if cfg.EnableScheduler {
		sched.Stop()
	}
	if srv != nil {
		srv.shutdown()
	}

	log.Info().Msg("Worker shutdown complete")
}

// background runs fn in a goroutine and returns a func that blocks until fn returns
func background(fn func()) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	return func() { <-done }
}

// lastReport reads the latest rebuild report from Redis, or nil without a cache
func lastReport(a *app.App) func(ctx context.Context, out any) error {
	if a.Cache == nil {
		return nil
	}
	return a.Cache.LastReport
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}
