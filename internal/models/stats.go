package models

import (
	"database/sql"
	"math"
)

// RegularSeason is the season type tag selected for normalization
const RegularSeason = "REG"

// SeasonInput is one season entry of a player profile
type SeasonInput struct {
	ID    string            `json:"id"`
	Year  int               `json:"year"`
	Type  string            `json:"type"`
	Teams []SeasonTeamInput `json:"teams"`
}

// SeasonTeamInput is the per-team context of a season; a mid-season trade
// produces more than one.
type SeasonTeamInput struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Alias      string           `json:"alias"`
	Statistics *StatisticsInput `json:"statistics,omitempty"`
}

// StatisticsInput is the statistics block of a season team context
type StatisticsInput struct {
	GamesPlayed  *int `json:"games_played,omitempty"`
	GamesStarted *int `json:"games_started,omitempty"`

	Passing   *PassingInput   `json:"passing,omitempty"`
	Rushing   *RushingInput   `json:"rushing,omitempty"`
	Receiving *ReceivingInput `json:"receiving,omitempty"`
	Defense   *DefenseInput   `json:"defense,omitempty"`
	Fumbles   *FumblesInput   `json:"fumbles,omitempty"`
	Returns   *ReturnsInput   `json:"returns,omitempty"`
	Kicking   *KickingInput   `json:"kicking,omitempty"`
}

type PassingInput struct {
	Attempts      *int     `json:"attempts,omitempty"`
	Completions   *int     `json:"completions,omitempty"`
	CmpPct        *float64 `json:"cmp_pct,omitempty"`
	Yards         *int     `json:"yards,omitempty"`
	Touchdowns    *int     `json:"touchdowns,omitempty"`
	Interceptions *int     `json:"interceptions,omitempty"`
	Rating        *float64 `json:"rating,omitempty"`
	Sacks         *int     `json:"sacks,omitempty"`
	SackYards     *int     `json:"sack_yards,omitempty"`
	Longest       *int     `json:"longest,omitempty"`
	AirYards      *int     `json:"air_yards,omitempty"`
	NetYards      *int     `json:"net_yards,omitempty"`
}

type RushingInput struct {
	Attempts   *int     `json:"attempts,omitempty"`
	Yards      *int     `json:"yards,omitempty"`
	Touchdowns *int     `json:"touchdowns,omitempty"`
	AvgYards   *float64 `json:"avg_yards,omitempty"`
	Longest    *int     `json:"longest,omitempty"`
	FirstDowns *int     `json:"first_downs,omitempty"`
}

type ReceivingInput struct {
	Targets       *int     `json:"targets,omitempty"`
	Receptions    *int     `json:"receptions,omitempty"`
	Yards         *int     `json:"yards,omitempty"`
	Touchdowns    *int     `json:"touchdowns,omitempty"`
	AvgYards      *float64 `json:"avg_yards,omitempty"`
	Longest       *int     `json:"longest,omitempty"`
	FirstDowns    *int     `json:"first_downs,omitempty"`
	DroppedPasses *int     `json:"dropped_passes,omitempty"`
}

type DefenseInput struct {
	Tackles             *int     `json:"tackles,omitempty"`
	SoloTackles         *int     `json:"solo_tackles,omitempty"`
	Assists             *int     `json:"assists,omitempty"`
	Sacks               *float64 `json:"sacks,omitempty"`
	SackYards           *float64 `json:"sack_yards,omitempty"`
	Interceptions       *int     `json:"interceptions,omitempty"`
	PassesDefended      *int     `json:"passes_defended,omitempty"`
	ForcedFumbles       *int     `json:"forced_fumbles,omitempty"`
	FumbleRecoveries    *int     `json:"fumble_recoveries,omitempty"`
	DefensiveTouchdowns *int     `json:"defensive_touchdowns,omitempty"`
	QBHits              *int     `json:"qb_hits,omitempty"`
	TLoss               *int     `json:"tloss,omitempty"`
}

type FumblesInput struct {
	Fumbles     *int `json:"fumbles,omitempty"`
	LostFumbles *int `json:"lost_fumbles,omitempty"`
}

type ReturnsInput struct {
	PuntReturns          *int `json:"punt_returns,omitempty"`
	PuntReturnYards      *int `json:"punt_return_yards,omitempty"`
	PuntReturnTouchdowns *int `json:"punt_return_touchdowns,omitempty"`
	KickReturns          *int `json:"kick_returns,omitempty"`
	KickReturnYards      *int `json:"kick_return_yards,omitempty"`
	KickReturnTouchdowns *int `json:"kick_return_touchdowns,omitempty"`
}

type KickingInput struct {
	Punts                *int     `json:"punts,omitempty"`
	PuntYards            *int     `json:"punt_yards,omitempty"`
	FieldGoalsMade       *int     `json:"field_goals_made,omitempty"`
	FieldGoalsAttempted  *int     `json:"field_goals_attempted,omitempty"`
	FieldGoalPercentage  *float64 `json:"field_goal_percentage,omitempty"`
	ExtraPointsMade      *int     `json:"extra_points_made,omitempty"`
	ExtraPointsAttempted *int     `json:"extra_points_attempted,omitempty"`
}

// ToSeasonStat maps a statistics block onto the canonical row. Every field is
// mapped independently; a category missing from the block leaves its fields absent.
func (si *StatisticsInput) ToSeasonStat(playerID, season int) *SeasonStat {
	stat := &SeasonStat{
		PlayerID: playerID,
		Season:   season,
	}

	setInt(&stat.GamesPlayed, si.GamesPlayed)
	setInt(&stat.GamesStarted, si.GamesStarted)

	if p := si.Passing; p != nil {
		setInt(&stat.PassingAttempts, p.Attempts)
		setInt(&stat.PassingCompletions, p.Completions)
		setFloat(&stat.CompletionPercentage, p.CmpPct)
		setInt(&stat.PassingYards, p.Yards)
		setInt(&stat.PassingTouchdowns, p.Touchdowns)
		setInt(&stat.Interceptions, p.Interceptions)
		setFloat(&stat.PasserRating, p.Rating)
		setInt(&stat.Sacks, p.Sacks)
		setInt(&stat.SackYards, p.SackYards)
		setInt(&stat.LongestPass, p.Longest)
		setInt(&stat.AirYards, p.AirYards)
		setInt(&stat.NetPassingYards, p.NetYards)
	}

	if r := si.Rushing; r != nil {
		setInt(&stat.RushingAttempts, r.Attempts)
		setInt(&stat.RushingYards, r.Yards)
		setInt(&stat.RushingTouchdowns, r.Touchdowns)
		setFloat(&stat.YardsPerCarry, r.AvgYards)
		setInt(&stat.LongestRush, r.Longest)
		setInt(&stat.RushingFirstDowns, r.FirstDowns)
	}

	if fm := si.Fumbles; fm != nil {
		setInt(&stat.Fumbles, fm.Fumbles)
		setInt(&stat.FumblesLost, fm.LostFumbles)
	}

	if r := si.Receiving; r != nil {
		setInt(&stat.Targets, r.Targets)
		setInt(&stat.Receptions, r.Receptions)
		setInt(&stat.ReceivingYards, r.Yards)
		setInt(&stat.ReceivingTouchdowns, r.Touchdowns)
		setFloat(&stat.YardsPerReception, r.AvgYards)
		setInt(&stat.LongestReception, r.Longest)
		setInt(&stat.ReceivingFirstDowns, r.FirstDowns)
		setInt(&stat.Drops, r.DroppedPasses)
	}

	if d := si.Defense; d != nil {
		setInt(&stat.Tackles, d.Tackles)
		setInt(&stat.SoloTackles, d.SoloTackles)
		setInt(&stat.Assists, d.Assists)
		setFloat(&stat.SacksMade, d.Sacks)
		setFloat(&stat.SackYardsMade, d.SackYards)
		setInt(&stat.InterceptionsMade, d.Interceptions)
		setInt(&stat.PassesDefended, d.PassesDefended)
		setInt(&stat.ForcedFumbles, d.ForcedFumbles)
		setInt(&stat.FumbleRecoveries, d.FumbleRecoveries)
		setInt(&stat.DefensiveTouchdowns, d.DefensiveTouchdowns)
		setInt(&stat.QuarterbackHits, d.QBHits)
		setInt(&stat.TacklesForLoss, d.TLoss)
	}

	if r := si.Returns; r != nil {
		setInt(&stat.PuntReturns, r.PuntReturns)
		setInt(&stat.PuntReturnYards, r.PuntReturnYards)
		setInt(&stat.PuntReturnTouchdowns, r.PuntReturnTouchdowns)
		setInt(&stat.KickReturns, r.KickReturns)
		setInt(&stat.KickReturnYards, r.KickReturnYards)
		setInt(&stat.KickReturnTouchdowns, r.KickReturnTouchdowns)
	}

	if k := si.Kicking; k != nil {
		setInt(&stat.Punts, k.Punts)
		setInt(&stat.PuntYards, k.PuntYards)
		setInt(&stat.FieldGoalsMade, k.FieldGoalsMade)
		setInt(&stat.FieldGoalsAttempted, k.FieldGoalsAttempted)
		setFloat(&stat.FieldGoalPercentage, k.FieldGoalPercentage)
		setInt(&stat.ExtraPointsMade, k.ExtraPointsMade)
		setInt(&stat.ExtraPointsAttempted, k.ExtraPointsAttempted)
	}

	return stat
}

// setInt leaves values outside the int32 range absent
func setInt(dst *sql.NullInt32, v *int) {
	if v != nil && *v >= math.MinInt32 && *v <= math.MaxInt32 {
		*dst = sql.NullInt32{Int32: int32(*v), Valid: true}
	}
}

func setFloat(dst *sql.NullFloat64, v *float64) {
	if v != nil {
		*dst = sql.NullFloat64{Float64: *v, Valid: true}
	}
}
