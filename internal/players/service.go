// Package players is the cache-first query path: name search with lazy stat
// backfill, lookups by id, and the rebuild entry point.
package players

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/ingest"
	"nflcache/ingestion/internal/metrics"
	"nflcache/ingestion/internal/models"
	"nflcache/ingestion/internal/normalize"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// MinTermLength is the shortest accepted search term, in characters
const MinTermLength = 2

// PlayerStore is the player side of the cache store
type PlayerStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) (bool, error)
	SearchByName(ctx context.Context, term string) ([]*models.Player, error)
}

// StatStore reads stored season rows
type StatStore interface {
	ListByPlayer(ctx context.Context, playerID int) ([]*models.SeasonStat, error)
}

// ProfileProvider fetches player profiles from the provider
type ProfileProvider interface {
	FetchPlayerProfile(ctx context.Context, playerID string) (*models.ProfileInput, error)
}

// Normalizer writes regular-season rows for a player
type Normalizer interface {
	Normalize(ctx context.Context, playerID int, seasons []models.SeasonInput) (normalize.Result, error)
}

// Rebuilder runs a bulk cache rebuild
type Rebuilder interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// BackfillMemo remembers recent backfill attempts across searches
type BackfillMemo interface {
	Remember(ctx context.Context, externalID string, ttl time.Duration) error
	Recent(ctx context.Context, externalID string) (bool, error)
}

// Service answers player queries from the cache store
type Service struct {
	store      PlayerStore
	stats      StatStore
	provider   ProfileProvider
	normalizer Normalizer
	rebuilder  Rebuilder

	memo        BackfillMemo
	concurrency int
	timeout     time.Duration
	emptyTTL    time.Duration
	failureTTL  time.Duration

	flights singleflight.Group
}

// Option customizes a Service
type Option func(*Service)

// WithBackfillConcurrency caps concurrent profile fetches per search
func WithBackfillConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithBackfillTimeout bounds each profile fetch and normalization
func WithBackfillTimeout(d time.Duration) Option {
	return func(s *Service) {
		s.timeout = d
	}
}

// WithBackfillMemo skips players whose backfill was attempted recently
func WithBackfillMemo(memo BackfillMemo) Option {
	return func(s *Service) {
		s.memo = memo
	}
}

// WithEmptyTTL sets how long a profile without regular seasons is not refetched
func WithEmptyTTL(d time.Duration) Option {
	return func(s *Service) {
		s.emptyTTL = d
	}
}

// WithFailureTTL sets how long a failed backfill is not retried
func WithFailureTTL(d time.Duration) Option {
	return func(s *Service) {
		s.failureTTL = d
	}
}

// NewService creates a Service
func NewService(store PlayerStore, stats StatStore, provider ProfileProvider, normalizer Normalizer, rebuilder Rebuilder, opts ...Option) *Service {
	s := &Service{
		store:       store,
		stats:       stats,
		provider:    provider,
		normalizer:  normalizer,
		rebuilder:   rebuilder,
		concurrency: 4,
		timeout:     10 * time.Second,
		emptyTTL:    6 * time.Hour,
		failureTTL:  5 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search finds players by name and backfills missing stats
func (s *Service) Search(ctx context.Context, term string) ([]*models.Player, error) {
	return s.SearchWithStats(ctx, term, true)
}

// SearchWithStats finds players whose name contains term. Each player carries
// its latest season; with fetchStats, players without any stored season are
// backfilled from the provider first and then carry every season. A failed
// backfill leaves that player without stats.
func (s *Service) SearchWithStats(ctx context.Context, term string, fetchStats bool) ([]*models.Player, error) {
	term = strings.TrimSpace(term)
	if utf8.RuneCountInString(term) < MinTermLength {
		metrics.RecordSearch("invalid")
		return nil, apperr.Validation(fmt.Sprintf("search term must be at least %d characters", MinTermLength))
	}

	found, err := s.store.SearchByName(ctx, term)
	if err != nil {
		metrics.RecordSearch("error")
		metrics.RecordError("players", string(apperr.KindOf(err)))
		return nil, err
	}

	if fetchStats {
		s.backfillMissing(ctx, found)
	}

	metrics.RecordSearch("success")
	log.Debug().
		Str("term", term).
		Int("results", len(found)).
		Bool("fetch_stats", fetchStats).
		Msg("Player search served")

	if found == nil {
		found = []*models.Player{}
	}
	return found, nil
}

// backfillMissing fetches stats for stat-less players with bounded concurrency
// and waits for all of them.
func (s *Service) backfillMissing(ctx context.Context, found []*models.Player) {
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for _, player := range found {
		if player.HasStats() {
			continue
		}

		g.Go(func() error {
			stats, err := s.backfill(ctx, player)
			if err != nil {
				log.Warn().
					Err(err).
					Int("player_id", player.ID).
					Str("external_id", player.ExternalID).
					Msg("Stat backfill failed, returning player without stats")
				return nil
			}
			if len(stats) > 0 {
				player.Stats = stats
			}
			return nil
		})
	}

	_ = g.Wait()
}

// backfill loads stats for one player, sharing in-flight work with concurrent
// searches for the same player.
func (s *Service) backfill(ctx context.Context, player *models.Player) ([]*models.SeasonStat, error) {
	if s.memo != nil {
		recent, err := s.memo.Recent(ctx, player.ExternalID)
		if err != nil {
			log.Warn().Err(err).Str("external_id", player.ExternalID).Msg("Backfill memo unavailable")
		} else if recent {
			metrics.RecordBackfill("memoized")
			return nil, nil
		}
	}

	v, err, shared := s.flights.Do(player.ExternalID, func() (interface{}, error) {
		return s.loadStats(context.WithoutCancel(ctx), player)
	})
	if shared {
		metrics.RecordBackfill("shared")
	}
	if err != nil {
		return nil, err
	}
	return v.([]*models.SeasonStat), nil
}

func (s *Service) loadStats(ctx context.Context, player *models.Player) ([]*models.SeasonStat, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// an earlier flight may have finished between the search and this one
	if stats, err := s.stats.ListByPlayer(ctx, player.ID); err == nil && len(stats) > 0 {
		return stats, nil
	}

	start := time.Now()
	profile, err := s.provider.FetchPlayerProfile(ctx, player.ExternalID)
	if err != nil {
		s.remember(ctx, player.ExternalID, s.failureTTL)
		metrics.RecordBackfill("failed")
		return nil, err
	}

	result, err := s.normalizer.Normalize(ctx, player.ID, profile.Seasons)
	if err != nil {
		s.remember(ctx, player.ExternalID, s.failureTTL)
		metrics.RecordBackfill("failed")
		return nil, err
	}

	stats, err := s.stats.ListByPlayer(ctx, player.ID)
	if err != nil {
		metrics.RecordBackfill("failed")
		return nil, err
	}

	if len(stats) == 0 {
		s.remember(ctx, player.ExternalID, s.emptyTTL)
		metrics.RecordBackfill("empty")
	} else {
		metrics.RecordBackfill("success")
	}

	log.Info().
		Int("player_id", player.ID).
		Str("name", player.Name).
		Int("written", result.Written).
		Int("seasons", len(stats)).
		Dur("duration", time.Since(start)).
		Msg("Backfilled player stats")

	return stats, nil
}

func (s *Service) remember(ctx context.Context, externalID string, ttl time.Duration) {
	if s.memo == nil {
		return
	}
	if err := s.memo.Remember(context.WithoutCancel(ctx), externalID, ttl); err != nil {
		log.Warn().Err(err).Str("external_id", externalID).Msg("Failed to record backfill memo")
	}
}

// GetByID returns a player with every stored season, newest first
func (s *Service) GetByID(ctx context.Context, id int) (*models.Player, error) {
	if id <= 0 {
		return nil, apperr.Validation("player id must be positive")
	}
	return s.store.GetByID(ctx, id)
}

// FetchStatsForPlayer refreshes a player's seasons from the provider. Seasons
// already stored are kept as they are.
func (s *Service) FetchStatsForPlayer(ctx context.Context, id int) (*models.Player, error) {
	player, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.provider.FetchPlayerProfile(fetchCtx, player.ExternalID)
	if err != nil {
		metrics.RecordError("players", string(apperr.KindOf(err)))
		return nil, err
	}

	if _, err := s.normalizer.Normalize(fetchCtx, player.ID, profile.Seasons); err != nil {
		metrics.RecordError("players", string(apperr.KindOf(err)))
		return nil, err
	}

	return s.store.GetByID(ctx, player.ID)
}

// FetchAndCachePlayer returns the cached player for externalID, creating it
// from the provider profile when absent. An existing player is returned unchanged.
func (s *Service) FetchAndCachePlayer(ctx context.Context, externalID string) (*models.Player, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, apperr.Validation("external id is required")
	}

	existing, err := s.store.GetByExternalID(ctx, externalID)
	if err == nil {
		return s.store.GetByID(ctx, existing.ID)
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profile, err := s.provider.FetchPlayerProfile(fetchCtx, externalID)
	if err != nil {
		metrics.RecordError("players", string(apperr.KindOf(err)))
		return nil, err
	}

	player := profile.ToPlayer()
	created, err := s.store.Create(ctx, player)
	if err != nil {
		return nil, err
	}

	if created {
		if _, err := s.normalizer.Normalize(fetchCtx, player.ID, profile.Seasons); err != nil {
			log.Warn().Err(err).Str("external_id", externalID).Msg("Failed to cache profile seasons")
		}
		log.Info().
			Int("player_id", player.ID).
			Str("external_id", externalID).
			Str("team", player.Team).
			Msg("Player cached from profile")
	}

	return s.store.GetByID(ctx, player.ID)
}

// RebuildCache runs a bulk rebuild and returns its report
func (s *Service) RebuildCache(ctx context.Context) (*ingest.Report, error) {
	return s.rebuilder.Run(ctx)
}
