package testutil

import "nflcache/ingestion/internal/models"

// RosterPlayer builds a roster entry with a jersey
func RosterPlayer(id, name, position, jersey string) models.RosterPlayerInput {
	return models.RosterPlayerInput{ID: id, Name: name, Position: position, Jersey: models.LooseInt(jersey)}
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v
func FloatPtr(v float64) *float64 { return &v }

// Season builds a profile season with a single team context
func Season(year int, seasonType string, stats *models.StatisticsInput) models.SeasonInput {
	return models.SeasonInput{
		Year: year,
		Type: seasonType,
		Teams: []models.SeasonTeamInput{
			{Name: "Chiefs", Statistics: stats},
		},
	}
}

// QuarterbackStats is a typical passing line
func QuarterbackStats(yards, touchdowns int) *models.StatisticsInput {
	return &models.StatisticsInput{
		GamesPlayed:  IntPtr(17),
		GamesStarted: IntPtr(17),
		Passing: &models.PassingInput{
			Attempts:    IntPtr(597),
			Completions: IntPtr(401),
			CmpPct:      FloatPtr(67.2),
			Yards:       IntPtr(yards),
			Touchdowns:  IntPtr(touchdowns),
		},
		Rushing: &models.RushingInput{
			Attempts: IntPtr(75),
			Yards:    IntPtr(389),
		},
	}
}

// MahomesProfile is a profile with two regular seasons and one postseason
func MahomesProfile(externalID string) *models.ProfileInput {
	return &models.ProfileInput{
		ID:       externalID,
		Name:     "Patrick Mahomes",
		Position: "QB",
		Jersey:   "15",
		Team:     &models.TeamRefInput{Name: "Chiefs"},
		Seasons: []models.SeasonInput{
			Season(2022, models.RegularSeason, QuarterbackStats(5250, 41)),
			Season(2023, models.RegularSeason, QuarterbackStats(4183, 27)),
			Season(2023, "PST", QuarterbackStats(1051, 6)),
		},
	}
}
