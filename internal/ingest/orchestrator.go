// Package ingest rebuilds the player cache from the provider's team rosters.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/metrics"
	"nflcache/ingestion/internal/models"
	"nflcache/ingestion/internal/pacer"

	"github.com/rs/zerolog/log"
)

// countTimeout bounds the final store count, which runs even after cancellation
const countTimeout = 10 * time.Second

// Provider is the part of the provider client a rebuild needs
type Provider interface {
	FetchTeams(ctx context.Context) ([]models.TeamInput, error)
	FetchRoster(ctx context.Context, teamID string) (*models.RosterInput, error)
}

// PlayerStore is the find-or-create contract of the cache store
type PlayerStore interface {
	GetByExternalID(ctx context.Context, externalID string) (*models.Player, error)
	Create(ctx context.Context, player *models.Player) (bool, error)
	Count(ctx context.Context) (int, error)
}

// Pacer sequences provider calls
type Pacer interface {
	Wait(ctx context.Context) error
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReportSink persists the last run report
type ReportSink interface {
	SaveReport(ctx context.Context, report any) error
}

// Orchestrator walks teams, rosters and players, caching each player once
type Orchestrator struct {
	provider   Provider
	store      PlayerStore
	pacer      Pacer
	sink       ReportSink
	runTimeout time.Duration
}

// Option customizes an Orchestrator
type Option func(*Orchestrator)

// WithRunTimeout bounds a whole run
func WithRunTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		o.runTimeout = d
	}
}

// WithReportSink stores every finished report
func WithReportSink(sink ReportSink) Option {
	return func(o *Orchestrator) {
		o.sink = sink
	}
}

// New creates an Orchestrator
func New(provider Provider, store PlayerStore, p Pacer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: provider,
		store:    store,
		pacer:    p,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs one rebuild. Only a failure to list teams aborts the run; team
// and player failures are recorded in the report. A failed final count returns
// the report together with the store error.
func (o *Orchestrator) Run(ctx context.Context) (*Report, error) {
	if o.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runTimeout)
		defer cancel()
	}

	start := time.Now()
	report := &Report{StartedAt: start.UTC()}

	log.Info().Msg("Starting player cache rebuild")

	teams, err := o.fetchTeams(ctx)
	if err != nil {
		metrics.RecordSync("rebuild", "failed", time.Since(start).Seconds())
		metrics.RecordError("ingest", string(apperr.KindOf(err)))
		log.Error().Err(err).Msg("Failed to fetch teams, aborting rebuild")
		return nil, err
	}

	log.Info().Int("teams", len(teams)).Msg("Fetched team list")

	for _, team := range teams {
		result := o.syncTeam(ctx, team)
		metrics.RecordTeam(string(result.Status))
		report.add(result)
	}

	countCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), countTimeout)
	defer cancel()

	total, err := o.store.Count(countCtx)
	report.Duration = time.Since(start)
	if err != nil {
		metrics.RecordSync("rebuild", "failed", report.Duration.Seconds())
		metrics.RecordError("ingest", string(apperr.KindOf(err)))
		log.Error().Err(err).Msg("Failed to count cached players")
		o.save(ctx, report)
		return report, fmt.Errorf("failed to count players: %w", err)
	}
	report.TotalInStore = total
	metrics.UpdatePlayersInStore(total)

	status := "success"
	if !report.Complete() {
		status = "partial"
	}
	metrics.RecordSync("rebuild", status, report.Duration.Seconds())

	log.Info().
		Int("processed", report.Processed).
		Int("newly_cached", report.NewlyCached).
		Int("total_in_store", report.TotalInStore).
		Int("players_failed", report.PlayersFailed).
		Int("teams_succeeded", report.TeamsSucceeded).
		Int("teams_failed", report.TeamsFailed).
		Int("teams_skipped", report.TeamsSkipped).
		Dur("duration", report.Duration).
		Msg("Player cache rebuild completed")

	o.save(ctx, report)
	return report, nil
}

func (o *Orchestrator) fetchTeams(ctx context.Context) ([]models.TeamInput, error) {
	if err := o.pacer.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rebuild cancelled before listing teams: %w", err)
	}
	return o.provider.FetchTeams(ctx)
}

// syncTeam fetches one roster through the pacer and caches its players
func (o *Orchestrator) syncTeam(ctx context.Context, team models.TeamInput) TeamResult {
	result := TeamResult{TeamID: team.ID, TeamName: team.Name}

	if err := ctx.Err(); err != nil {
		result.Status = StatusSkipped
		result.Err = err
		return result
	}

	var roster *models.RosterInput
	err := o.pacer.Do(ctx, func(ctx context.Context) error {
		var err error
		roster, err = o.provider.FetchRoster(ctx, team.ID)
		return err
	})

	switch {
	case errors.Is(err, pacer.ErrCircuitOpen), err != nil && ctx.Err() != nil:
		result.Status = StatusSkipped
		result.Err = err
		log.Warn().
			Err(err).
			Str("team_id", team.ID).
			Str("team", team.DisplayName()).
			Msg("Skipping team")
		return result
	case err != nil:
		result.Status = StatusFailed
		result.Err = err
		metrics.RecordError("ingest", string(apperr.KindOf(err)))
		log.Error().
			Err(err).
			Str("team_id", team.ID).
			Str("team", team.DisplayName()).
			Msg("Failed to fetch roster")
		return result
	}

	if roster.Name != "" {
		result.TeamName = roster.Name
	}

	for _, rp := range roster.Players {
		if err := ctx.Err(); err != nil {
			result.Status = StatusFailed
			result.Err = err
			return result
		}

		created, err := o.cachePlayer(ctx, rp, result.TeamName)
		if err != nil {
			result.Failed++
			metrics.RecordPlayer("failed")
			metrics.RecordError("ingest", string(apperr.KindOf(err)))
			log.Warn().
				Err(err).
				Str("team_id", team.ID).
				Str("player_id", rp.ID).
				Msg("Failed to cache player")
			continue
		}

		result.Processed++
		if created {
			result.NewlyCached++
			metrics.RecordPlayer("created")
		} else {
			metrics.RecordPlayer("existing")
		}
	}

	result.Status = StatusSuccess
	log.Info().
		Str("team_id", team.ID).
		Str("team", team.DisplayName()).
		Int("players", len(roster.Players)).
		Int("newly_cached", result.NewlyCached).
		Int("failed", result.Failed).
		Msg("Team roster synced")

	return result
}

// cachePlayer finds a player by external id or creates it from the roster
// entry. A concurrent insert of the same id reports created=false.
func (o *Orchestrator) cachePlayer(ctx context.Context, rp models.RosterPlayerInput, teamName string) (bool, error) {
	if err := rp.Validate(); err != nil {
		return false, apperr.Validation(err.Error())
	}

	_, err := o.store.GetByExternalID(ctx, rp.ID)
	if err == nil {
		return false, nil
	}
	if !apperr.IsNotFound(err) {
		return false, err
	}

	return o.store.Create(ctx, rp.ToPlayer(teamName))
}

func (o *Orchestrator) save(ctx context.Context, report *Report) {
	if o.sink == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), countTimeout)
	defer cancel()

	if err := o.sink.SaveReport(ctx, report); err != nil {
		log.Warn().Err(err).Msg("Failed to store rebuild report")
	}
}
