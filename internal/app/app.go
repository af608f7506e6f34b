// Package app wires the player cache components from configuration.
package app

import (
	"context"
	"fmt"
	"strconv"

	"nflcache/ingestion/internal/cache"
	"nflcache/ingestion/internal/client"
	"nflcache/ingestion/internal/config"
	"nflcache/ingestion/internal/ingest"
	"nflcache/ingestion/internal/normalize"
	"nflcache/ingestion/internal/pacer"
	"nflcache/ingestion/internal/players"
	"nflcache/ingestion/internal/repository"

	"github.com/rs/zerolog/log"
)

// App holds the constructed components. Cache is nil when Redis is disabled
// or unreachable.
type App struct {
	Config       *config.Config
	DB           *repository.Database
	Cache        *cache.RedisCache
	Client       *client.Client
	Pacer        *pacer.Pacer
	Orchestrator *ingest.Orchestrator
	Players      *players.Service
}

// New connects to the database and Redis and builds the service graph
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := repository.NewDatabase(ctx, cfg.DatabaseConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DatabaseAutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	a := &App{
		Config: cfg,
		DB:     db,
		Client: client.NewClient(cfg.SportRadarBaseURL, cfg.SportRadarAPIKey, cfg.SportRadarTimeout),
		Pacer:  pacer.New(cfg.PacerConfig()),
	}
	log.Info().Str("base_url", cfg.SportRadarBaseURL).Msg("SportRadar client initialized")

	if cfg.RedisEnabled {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			a.Cache = redisCache
			log.Info().Str("addr", cfg.RedisAddr()).Msg("Redis cache connected")
		}
	}

	orchestratorOpts := []ingest.Option{ingest.WithRunTimeout(cfg.RebuildTimeout)}
	serviceOpts := []players.Option{
		players.WithBackfillConcurrency(cfg.BackfillConcurrency),
		players.WithBackfillTimeout(cfg.BackfillTimeout),
		players.WithEmptyTTL(cfg.BackfillEmptyTTL),
		players.WithFailureTTL(cfg.BackfillFailureTTL),
	}
	if a.Cache != nil {
		orchestratorOpts = append(orchestratorOpts, ingest.WithReportSink(a.Cache))
		serviceOpts = append(serviceOpts, players.WithBackfillMemo(a.Cache))
	}

	a.Orchestrator = ingest.New(a.Client, db.Players, a.Pacer, orchestratorOpts...)
	a.Players = players.NewService(
		db.Players,
		db.Stats,
		a.Client,
		normalize.New(db.Stats),
		a.Orchestrator,
		serviceOpts...,
	)

	return a, nil
}

// Close releases Redis and database connections
func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
	a.DB.Close()
}

// Health checks the database and, when connected, Redis
func (a *App) Health(ctx context.Context) map[string]string {
	status := map[string]string{"database": "healthy"}
	if err := a.DB.Health(ctx); err != nil {
		status["database"] = err.Error()
	}

	if a.Cache == nil {
		status["redis"] = "disabled"
	} else if err := a.Cache.Health(ctx); err != nil {
		status["redis"] = err.Error()
	} else {
		status["redis"] = "healthy"
	}

	return status
}

// Healthy reports whether every connected dependency is healthy
func Healthy(status map[string]string) bool {
	for _, v := range status {
		if v != "healthy" && v != "disabled" {
			return false
		}
	}
	return true
}
