package app

import (
	"context"
	"database/sql"
	"fmt"

	"nflcache/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// PlayerCreator creates players idempotently
type PlayerCreator interface {
	Create(ctx context.Context, player *models.Player) (bool, error)
}

// StatCreator creates season rows idempotently
type StatCreator interface {
	CreateIfAbsent(ctx context.Context, stat *models.SeasonStat) (bool, error)
}

// SeedResult counts rows written by Seed
type SeedResult struct {
	Players int `json:"players"`
	Stats   int `json:"stats"`
}

type seedPlayer struct {
	externalID string
	name       string
	position   string
	team       string
	jersey     int32
}

var samplePlayers = []seedPlayer{
	{"mahomes-15", "Patrick Mahomes", "QB", "KC", 15},
	{"mccaffrey-23", "Christian McCaffrey", "RB", "SF", 23},
	{"jefferson-18", "Justin Jefferson", "WR", "MIN", 18},
	{"allen-17", "Josh Allen", "QB", "BUF", 17},
	{"hill-10", "Tyreek Hill", "WR", "MIA", 10},
}

func sampleStat(playerID int) *models.SeasonStat {
	n := func(v int32) sql.NullInt32 { return sql.NullInt32{Int32: v, Valid: true} }
	return &models.SeasonStat{
		PlayerID:          playerID,
		Season:            2024,
		PassingYards:      n(4250),
		PassingTouchdowns: n(35),
		Interceptions:     n(12),
		RushingYards:      n(280),
		RushingTouchdowns: n(4),
	}
}

// Seed loads a handful of sample players and one season line for the first
// of them. Running it again writes nothing.
func Seed(ctx context.Context, playerStore PlayerCreator, stats StatCreator) (SeedResult, error) {
	var result SeedResult

	for n, sp := range samplePlayers {
		player := &models.Player{
			ExternalID:   sp.externalID,
			Name:         sp.name,
			Position:     sp.position,
			Team:         sp.team,
			JerseyNumber: sql.NullInt32{Int32: sp.jersey, Valid: true},
		}

		created, err := playerStore.Create(ctx, player)
		if err != nil {
			return result, fmt.Errorf("failed to seed %s: %w", sp.externalID, err)
		}
		if created {
			result.Players++
		}

		if n > 0 {
			continue
		}

		created, err = stats.CreateIfAbsent(ctx, sampleStat(player.ID))
		if err != nil {
			return result, fmt.Errorf("failed to seed stats for %s: %w", sp.externalID, err)
		}
		if created {
			result.Stats++
		}
	}

	log.Info().
		Int("players", result.Players).
		Int("stats", result.Stats).
		Msg("Sample data seeded")

	return result, nil
}
