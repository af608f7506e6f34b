// Package normalize maps a player's profile seasons onto canonical season rows.
package normalize

import (
	"context"
	"fmt"

	"nflcache/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// StatStore persists season rows without overwriting existing ones
type StatStore interface {
	CreateIfAbsent(ctx context.Context, stat *models.SeasonStat) (bool, error)
}

// Result counts what a Normalize call did
type Result struct {
	Written  int // new rows
	Existing int // rows already present for (player, season)
	Skipped  int // regular seasons without a statistics block
}

// Normalizer writes regular-season statistics for a player
type Normalizer struct {
	stats StatStore
}

// New creates a Normalizer
func New(stats StatStore) *Normalizer {
	return &Normalizer{stats: stats}
}

// Normalize writes one row per regular season of seasons. Only the first team
// context of a season is read; a mid-season team change is not aggregated.
// Existing rows are left untouched, so calling it again is a no-op.
func (n *Normalizer) Normalize(ctx context.Context, playerID int, seasons []models.SeasonInput) (Result, error) {
	var result Result

	for _, season := range RegularSeasons(seasons) {
		stats := firstTeamStatistics(season)
		if stats == nil {
			result.Skipped++
			log.Debug().
				Int("player_id", playerID).
				Int("season", season.Year).
				Msg("Season has no statistics block")
			continue
		}

		row := stats.ToSeasonStat(playerID, season.Year)
		created, err := n.stats.CreateIfAbsent(ctx, row)
		if err != nil {
			return result, fmt.Errorf("failed to save season %d for player %d: %w", season.Year, playerID, err)
		}

		if created {
			result.Written++
			log.Debug().
				Int("player_id", playerID).
				Int("season", season.Year).
				Msg("Season stats cached")
		} else {
			result.Existing++
		}
	}

	return result, nil
}

// RegularSeasons filters seasons to the regular-season type, keeping order
func RegularSeasons(seasons []models.SeasonInput) []models.SeasonInput {
	var out []models.SeasonInput
	for _, season := range seasons {
		if season.Type == models.RegularSeason {
			out = append(out, season)
		}
	}
	return out
}

func firstTeamStatistics(season models.SeasonInput) *models.StatisticsInput {
	if len(season.Teams) == 0 {
		return nil
	}
	return season.Teams[0].Statistics
}
