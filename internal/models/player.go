package models

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// UnknownTeam is stamped on players created from a profile that carries no team
const UnknownTeam = "Unknown"

// Player represents a cached NFL player
type Player struct {
	ID           int             `db:"id" json:"id"`
	ExternalID   string          `db:"external_id" json:"externalId"`
	Name         string          `db:"name" json:"name"`
	Position     string          `db:"position" json:"position"`
	Team         string          `db:"team" json:"team"`
	JerseyNumber sql.NullInt32   `db:"jersey_number" json:"-"`
	Height       sql.NullString  `db:"height" json:"-"`
	Weight       sql.NullFloat64 `db:"weight" json:"-"`
	College      sql.NullString  `db:"college" json:"-"`
	Experience   sql.NullInt32   `db:"experience" json:"-"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`

	// Stats is populated by reads that join season rows; newest season first
	Stats []*SeasonStat `db:"-" json:"stats"`
}

// HasStats reports whether any season row is attached
func (p *Player) HasStats() bool {
	return len(p.Stats) > 0
}

// MarshalJSON renders optional attributes as null when absent
func (p *Player) MarshalJSON() ([]byte, error) {
	type alias Player
	stats := p.Stats
	if stats == nil {
		stats = []*SeasonStat{}
	}
	return json.Marshal(struct {
		*alias
		JerseyNumber *int32        `json:"jerseyNumber"`
		Height       *string       `json:"height"`
		Weight       *float64      `json:"weight"`
		College      *string       `json:"college"`
		Experience   *int32        `json:"experience"`
		Stats        []*SeasonStat `json:"stats"`
	}{
		alias:        (*alias)(p),
		JerseyNumber: nullInt(p.JerseyNumber),
		Height:       nullString(p.Height),
		Weight:       nullFloat(p.Weight),
		College:      nullString(p.College),
		Experience:   nullInt(p.Experience),
		Stats:        stats,
	})
}

func nullInt(v sql.NullInt32) *int32 {
	if !v.Valid {
		return nil
	}
	return &v.Int32
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

// RosterPlayerInput is a player entry of a team roster document
type RosterPlayerInput struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Position   string    `json:"position"`
	Jersey     LooseInt  `json:"jersey"`
	Height     LooseText `json:"height"`
	Weight     *float64  `json:"weight,omitempty"`
	College    string    `json:"college,omitempty"`
	Experience LooseInt  `json:"experience"`
}

// ToPlayer converts a roster entry into a baseline Player.
// The team comes from the enclosing roster, never from the player entry.
func (rp *RosterPlayerInput) ToPlayer(teamName string) *Player {
	return buildPlayer(rp.ID, rp.Name, rp.Position, teamName, rp.Jersey, rp.Height, rp.Weight, rp.College, rp.Experience)
}

// ProfileInput is the player profile document
type ProfileInput struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Position   string        `json:"position"`
	Jersey     LooseInt      `json:"jersey"`
	Height     LooseText     `json:"height"`
	Weight     *float64      `json:"weight,omitempty"`
	College    string        `json:"college,omitempty"`
	Experience LooseInt      `json:"experience"`
	Team       *TeamRefInput `json:"team,omitempty"`
	Seasons    []SeasonInput `json:"seasons"`
}

// TeamRefInput is the current team reference embedded in a profile
type TeamRefInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Alias  string `json:"alias"`
}

// ToPlayer converts a profile into a Player, stamping UnknownTeam when no team is present
func (pi *ProfileInput) ToPlayer() *Player {
	team := UnknownTeam
	if pi.Team != nil && pi.Team.Name != "" {
		team = pi.Team.Name
	}
	return buildPlayer(pi.ID, pi.Name, pi.Position, team, pi.Jersey, pi.Height, pi.Weight, pi.College, pi.Experience)
}

func buildPlayer(id, name, position, team string, jersey LooseInt, height LooseText, weight *float64, college string, experience LooseInt) *Player {
	player := &Player{
		ExternalID: id,
		Name:       name,
		Position:   position,
		Team:       team,
	}

	if n, ok := jersey.Number(); ok {
		player.JerseyNumber = sql.NullInt32{Int32: int32(n), Valid: true}
	}
	if height != "" {
		player.Height = sql.NullString{String: string(height), Valid: true}
	}
	if weight != nil {
		player.Weight = sql.NullFloat64{Float64: *weight, Valid: true}
	}
	if college != "" {
		player.College = sql.NullString{String: college, Valid: true}
	}
	if n, ok := experience.Number(); ok {
		player.Experience = sql.NullInt32{Int32: int32(n), Valid: true}
	}

	return player
}

// LooseText is a value the provider sends as a string or a number, kept as text
type LooseText string

// UnmarshalJSON accepts a JSON string, number or null
func (t *LooseText) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return err
	}
	*t = LooseText(s)
	return nil
}

// LooseInt is an integer the provider sends as a string or as a number
// depending on the feed (jersey, experience).
type LooseInt string

// UnmarshalJSON accepts a JSON string, number or null
func (j *LooseInt) UnmarshalJSON(data []byte) error {
	s, err := looseString(data)
	if err != nil {
		return err
	}
	*j = LooseInt(s)
	return nil
}

// Number parses the value; anything non-numeric, negative or beyond int32 is absent
func (j LooseInt) Number() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(string(j)))
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, false
	}
	return n, true
}

func looseString(data []byte) (string, error) {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		return "", nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case strings.HasPrefix(raw, "{"), strings.HasPrefix(raw, "["):
		return "", fmt.Errorf("expected string or number, got %.20s", raw)
	default:
		return raw, nil
	}
}
