package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const playerColumns = `
	p.id, p.external_id, p.name, p.position, p.team, p.jersey_number,
	p.height, p.weight, p.college, p.experience, p.created_at, p.updated_at`

// PlayerRepository handles player database operations
type PlayerRepository struct {
	db *Database
}

func playerTargets(p *models.Player) []any {
	return []any{
		&p.ID, &p.ExternalID, &p.Name, &p.Position, &p.Team, &p.JerseyNumber,
		&p.Height, &p.Weight, &p.College, &p.Experience, &p.CreatedAt, &p.UpdatedAt,
	}
}

// GetByExternalID retrieves a player by provider id, without stats
func (r *PlayerRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players p WHERE p.external_id = $1`

	start := time.Now()
	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, externalID).Scan(playerTargets(&player)...)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("select", "players", start, nil)
		return nil, apperr.NotFound("player", externalID)
	}
	observe("select", "players", start, err)
	if err != nil {
		return nil, apperr.Store("get player by external id", err)
	}

	return &player, nil
}

// GetByID retrieves a player with every stored season, newest first
func (r *PlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT` + playerColumns + ` FROM players p WHERE p.id = $1`

	start := time.Now()
	var player models.Player
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(playerTargets(&player)...)
	if errors.Is(err, pgx.ErrNoRows) {
		observe("select", "players", start, nil)
		return nil, apperr.NotFound("player", id)
	}
	observe("select", "players", start, err)
	if err != nil {
		return nil, apperr.Store("get player", err)
	}

	stats, err := r.db.Stats.ListByPlayer(ctx, player.ID)
	if err != nil {
		return nil, err
	}
	player.Stats = stats

	return &player, nil
}

// Create inserts a player unless its external id is already stored. When it
// is, p is overwritten with the stored row and created is false.
func (r *PlayerRepository) Create(ctx context.Context, p *models.Player) (bool, error) {
	query := `
		INSERT INTO players (
			external_id, name, position, team, jersey_number,
			height, weight, college, experience
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id, created_at, updated_at
	`

	start := time.Now()
	err := r.db.Pool.QueryRow(
		ctx, query,
		p.ExternalID, p.Name, p.Position, p.Team, p.JerseyNumber,
		p.Height, p.Weight, p.College, p.Experience,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		observe("insert", "players", start, nil)

		existing, err := r.GetByExternalID(ctx, p.ExternalID)
		if err != nil {
			return false, err
		}
		*p = *existing
		return false, nil
	}
	observe("insert", "players", start, err)
	if err != nil {
		return false, apperr.Store("create player", err)
	}

	log.Debug().
		Int("id", p.ID).
		Str("external_id", p.ExternalID).
		Str("name", p.Name).
		Str("team", p.Team).
		Msg("Player created")

	return true, nil
}

// Count returns the number of stored players
func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	start := time.Now()
	var count int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM players`).Scan(&count)
	observe("count", "players", start, err)
	if err != nil {
		return 0, apperr.Store("count players", err)
	}
	return count, nil
}

// SearchByName returns players whose name contains term, case-insensitively,
// ordered by name. Each player carries at most its latest season.
func (r *PlayerRepository) SearchByName(ctx context.Context, term string) ([]*models.Player, error) {
	statColumns := models.StatColumns()
	latest := make([]string, len(statColumns))
	for n, col := range statColumns {
		latest[n] = "s." + col
	}

	query := fmt.Sprintf(`
		SELECT %s, s.id, s.season, s.created_at, %s
		FROM players p
		LEFT JOIN LATERAL (
			SELECT * FROM season_stats ss
			WHERE ss.player_id = p.id
			ORDER BY ss.season DESC
			LIMIT 1
		) s ON TRUE
		WHERE p.name ILIKE $1 ESCAPE '\'
		ORDER BY p.name, p.id
	`, playerColumns, strings.Join(latest, ", "))

	start := time.Now()
	rows, err := r.db.Pool.Query(ctx, query, "%"+escapeLike(term)+"%")
	if err != nil {
		observe("select", "players", start, err)
		return nil, apperr.Store("search players", err)
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		var (
			player    models.Player
			stat      models.SeasonStat
			statID    sql.NullInt32
			season    sql.NullInt32
			createdAt sql.NullTime
		)

		targets := append(playerTargets(&player), &statID, &season, &createdAt)
		for _, field := range stat.Fields() {
			targets = append(targets, field.Target())
		}

		if err := rows.Scan(targets...); err != nil {
			observe("select", "players", start, err)
			return nil, apperr.Store("scan player", err)
		}

		if statID.Valid {
			stat.ID = int(statID.Int32)
			stat.PlayerID = player.ID
			stat.Season = int(season.Int32)
			stat.CreatedAt = createdAt.Time
			player.Stats = []*models.SeasonStat{&stat}
		}

		players = append(players, &player)
	}

	err = rows.Err()
	observe("select", "players", start, err)
	if err != nil {
		return nil, apperr.Store("search players", err)
	}

	log.Debug().
		Str("term", term).
		Int("matches", len(players)).
		Msg("Player search completed")

	return players, nil
}

// escapeLike makes LIKE wildcards in term match literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
