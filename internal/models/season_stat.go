package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// SeasonStat is one regular-season line for a player. Every stat is optional
// and an absent value is never stored as zero.
type SeasonStat struct {
	ID       int `db:"id"`
	PlayerID int `db:"player_id"`
	Season   int `db:"season"`

	// Games
	GamesPlayed  sql.NullInt32
	GamesStarted sql.NullInt32

	// Passing
	PassingAttempts      sql.NullInt32
	PassingCompletions   sql.NullInt32
	CompletionPercentage sql.NullFloat64
	PassingYards         sql.NullInt32
	PassingTouchdowns    sql.NullInt32
	Interceptions        sql.NullInt32
	PasserRating         sql.NullFloat64
	Sacks                sql.NullInt32
	SackYards            sql.NullInt32
	LongestPass          sql.NullInt32
	AirYards             sql.NullInt32
	NetPassingYards      sql.NullInt32

	// Rushing
	RushingAttempts   sql.NullInt32
	RushingYards      sql.NullInt32
	RushingTouchdowns sql.NullInt32
	YardsPerCarry     sql.NullFloat64
	LongestRush       sql.NullInt32
	RushingFirstDowns sql.NullInt32
	Fumbles           sql.NullInt32
	FumblesLost       sql.NullInt32

	// Receiving
	Targets             sql.NullInt32
	Receptions          sql.NullInt32
	ReceivingYards      sql.NullInt32
	ReceivingTouchdowns sql.NullInt32
	YardsPerReception   sql.NullFloat64
	LongestReception    sql.NullInt32
	ReceivingFirstDowns sql.NullInt32
	Drops               sql.NullInt32

	// Defense
	Tackles             sql.NullInt32
	SoloTackles         sql.NullInt32
	Assists             sql.NullInt32
	SacksMade           sql.NullFloat64
	SackYardsMade       sql.NullFloat64
	InterceptionsMade   sql.NullInt32
	PassesDefended      sql.NullInt32
	ForcedFumbles       sql.NullInt32
	FumbleRecoveries    sql.NullInt32
	DefensiveTouchdowns sql.NullInt32
	QuarterbackHits     sql.NullInt32
	TacklesForLoss      sql.NullInt32

	// Special teams
	PuntReturns          sql.NullInt32
	PuntReturnYards      sql.NullInt32
	PuntReturnTouchdowns sql.NullInt32
	KickReturns          sql.NullInt32
	KickReturnYards      sql.NullInt32
	KickReturnTouchdowns sql.NullInt32

	// Kicking
	Punts                sql.NullInt32
	PuntYards            sql.NullInt32
	FieldGoalsMade       sql.NullInt32
	FieldGoalsAttempted  sql.NullInt32
	FieldGoalPercentage  sql.NullFloat64
	ExtraPointsMade      sql.NullInt32
	ExtraPointsAttempted sql.NullInt32

	CreatedAt time.Time `db:"created_at"`
}

// StatField binds one stat column to its JSON name and storage
type StatField struct {
	Column string
	JSON   string
	Int    *sql.NullInt32
	Float  *sql.NullFloat64
}

// Valid reports whether the field holds a value
func (f StatField) Valid() bool {
	if f.Int != nil {
		return f.Int.Valid
	}
	return f.Float.Valid
}

// Value returns the field value, or nil when absent
func (f StatField) Value() any {
	switch {
	case f.Int != nil && f.Int.Valid:
		return f.Int.Int32
	case f.Float != nil && f.Float.Valid:
		return f.Float.Float64
	}
	return nil
}

// Target returns the scan destination for the field
func (f StatField) Target() any {
	if f.Int != nil {
		return f.Int
	}
	return f.Float
}

func intField(column, name string, v *sql.NullInt32) StatField {
	return StatField{Column: column, JSON: name, Int: v}
}

func floatField(column, name string, v *sql.NullFloat64) StatField {
	return StatField{Column: column, JSON: name, Float: v}
}

// Fields lists every stat column in storage order, bound to s
func (s *SeasonStat) Fields() []StatField {
	return []StatField{
		intField("games_played", "gamesPlayed", &s.GamesPlayed),
		intField("games_started", "gamesStarted", &s.GamesStarted),

		intField("passing_attempts", "passingAttempts", &s.PassingAttempts),
		intField("passing_completions", "passingCompletions", &s.PassingCompletions),
		floatField("completion_percentage", "completionPercentage", &s.CompletionPercentage),
		intField("passing_yards", "passingYards", &s.PassingYards),
		intField("passing_touchdowns", "passingTouchdowns", &s.PassingTouchdowns),
		intField("interceptions", "interceptions", &s.Interceptions),
		floatField("passer_rating", "passerRating", &s.PasserRating),
		intField("sacks", "sacks", &s.Sacks),
		intField("sack_yards", "sackYards", &s.SackYards),
		intField("longest_pass", "longestPass", &s.LongestPass),
		intField("air_yards", "airYards", &s.AirYards),
		intField("net_passing_yards", "netPassingYards", &s.NetPassingYards),

		intField("rushing_attempts", "rushingAttempts", &s.RushingAttempts),
		intField("rushing_yards", "rushingYards", &s.RushingYards),
		intField("rushing_touchdowns", "rushingTouchdowns", &s.RushingTouchdowns),
		floatField("yards_per_carry", "yardsPerCarry", &s.YardsPerCarry),
		intField("longest_rush", "longestRush", &s.LongestRush),
		intField("rushing_first_downs", "rushingFirstDowns", &s.RushingFirstDowns),
		intField("fumbles", "fumbles", &s.Fumbles),
		intField("fumbles_lost", "fumblesLost", &s.FumblesLost),

		intField("targets", "targets", &s.Targets),
		intField("receptions", "receptions", &s.Receptions),
		intField("receiving_yards", "receivingYards", &s.ReceivingYards),
		intField("receiving_touchdowns", "receivingTouchdowns", &s.ReceivingTouchdowns),
		floatField("yards_per_reception", "yardsPerReception", &s.YardsPerReception),
		intField("longest_reception", "longestReception", &s.LongestReception),
		intField("receiving_first_downs", "receivingFirstDowns", &s.ReceivingFirstDowns),
		intField("drops", "drops", &s.Drops),

		intField("tackles", "tackles", &s.Tackles),
		intField("solo_tackles", "soloTackles", &s.SoloTackles),
		intField("assists", "assists", &s.Assists),
		floatField("sacks_made", "sacksMade", &s.SacksMade),
		floatField("sack_yards_made", "sackYardsMade", &s.SackYardsMade),
		intField("interceptions_made", "interceptionsMade", &s.InterceptionsMade),
		intField("passes_defended", "passesDefended", &s.PassesDefended),
		intField("forced_fumbles", "forcedFumbles", &s.ForcedFumbles),
		intField("fumble_recoveries", "fumbleRecoveries", &s.FumbleRecoveries),
		intField("defensive_touchdowns", "defensiveTouchdowns", &s.DefensiveTouchdowns),
		intField("quarterback_hits", "quarterbackHits", &s.QuarterbackHits),
		intField("tackles_for_loss", "tacklesForLoss", &s.TacklesForLoss),

		intField("punt_returns", "puntReturns", &s.PuntReturns),
		intField("punt_return_yards", "puntReturnYards", &s.PuntReturnYards),
		intField("punt_return_touchdowns", "puntReturnTouchdowns", &s.PuntReturnTouchdowns),
		intField("kick_returns", "kickReturns", &s.KickReturns),
		intField("kick_return_yards", "kickReturnYards", &s.KickReturnYards),
		intField("kick_return_touchdowns", "kickReturnTouchdowns", &s.KickReturnTouchdowns),

		intField("punts", "punts", &s.Punts),
		intField("punt_yards", "puntYards", &s.PuntYards),
		intField("field_goals_made", "fieldGoalsMade", &s.FieldGoalsMade),
		intField("field_goals_attempted", "fieldGoalsAttempted", &s.FieldGoalsAttempted),
		floatField("field_goal_percentage", "fieldGoalPercentage", &s.FieldGoalPercentage),
		intField("extra_points_made", "extraPointsMade", &s.ExtraPointsMade),
		intField("extra_points_attempted", "extraPointsAttempted", &s.ExtraPointsAttempted),
	}
}

// StatColumns returns the stat column names in storage order
func StatColumns() []string {
	fields := (&SeasonStat{}).Fields()
	cols := make([]string, len(fields))
	for n, field := range fields {
		cols[n] = field.Column
	}
	return cols
}

// HasAnyValue reports whether at least one stat is present
func (s *SeasonStat) HasAnyValue() bool {
	for _, field := range s.Fields() {
		if field.Valid() {
			return true
		}
	}
	return false
}

// MarshalJSON renders present stats as numbers and absent ones as null
func (s *SeasonStat) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"id":        s.ID,
		"playerId":  s.PlayerID,
		"season":    s.Season,
		"createdAt": s.CreatedAt,
	}
	for _, field := range s.Fields() {
		out[field.JSON] = field.Value()
	}
	return json.Marshal(out)
}
