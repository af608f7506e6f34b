package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// SeasonStatRepository handles season stat database operations
type SeasonStatRepository struct {
	db *Database
}

// CreateIfAbsent inserts a season row unless (player, season) is already
// stored. Existing rows are never modified.
func (r *SeasonStatRepository) CreateIfAbsent(ctx context.Context, stat *models.SeasonStat) (bool, error) {
	fields := stat.Fields()

	columns := make([]string, 0, len(fields)+2)
	placeholders := make([]string, 0, len(fields)+2)
	args := make([]any, 0, len(fields)+2)

	columns = append(columns, "player_id", "season")
	args = append(args, stat.PlayerID, stat.Season)
	for _, field := range fields {
		columns = append(columns, field.Column)
		args = append(args, field.Value())
	}
	for n := range args {
		placeholders = append(placeholders, fmt.Sprintf("$%d", n+1))
	}

	query := fmt.Sprintf(`
		INSERT INTO season_stats (%s)
		VALUES (%s)
		ON CONFLICT (player_id, season) DO NOTHING
		RETURNING id, created_at
	`, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	start := time.Now()
	err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&stat.ID, &stat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("insert", "season_stats", start, nil)
		return false, nil
	}
	observe("insert", "season_stats", start, err)
	if err != nil {
		return false, apperr.Store("create season stat", err)
	}

	log.Debug().
		Int("player_id", stat.PlayerID).
		Int("season", stat.Season).
		Msg("Season stat created")

	return true, nil
}

// ListByPlayer returns every season row of a player, newest first
func (r *SeasonStatRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.SeasonStat, error) {
	query := fmt.Sprintf(`
		SELECT id, player_id, season, created_at, %s
		FROM season_stats
		WHERE player_id = $1
		ORDER BY season DESC
	`, strings.Join(models.StatColumns(), ", "))

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, playerID)
	if err != nil {
		observe("select", "season_stats", start, err)
		return nil, apperr.Store("list season stats", err)
	}
	defer rows.Close()

	var stats []*models.SeasonStat
	for rows.Next() {
		var stat models.SeasonStat
		targets := []any{&stat.ID, &stat.PlayerID, &stat.Season, &stat.CreatedAt}
		for _, field := range stat.Fields() {
			targets = append(targets, field.Target())
		}

		if err := rows.Scan(targets...); err != nil {
			observe("select", "season_stats", start, err)
			return nil, apperr.Store("scan season stat", err)
		}
		stats = append(stats, &stat)
	}

	err = rows.Err()
	observe("select", "season_stats", start, err)
	if err != nil {
		return nil, apperr.Store("list season stats", err)
	}

	return stats, nil
}
