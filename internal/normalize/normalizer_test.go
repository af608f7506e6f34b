package normalize

import (
	"context"
	"errors"
	"testing"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"
	"nflcache/ingestion/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededPlayer(t *testing.T, store *testutil.MemoryStore) *models.Player {
	t.Helper()
	return store.Seed(&models.Player{ExternalID: "p-15", Name: "Patrick Mahomes", Position: "QB", Team: "Chiefs"})
}

func TestNormalize_RegularSeasonsOnly(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := seededPlayer(t, store)

	result, err := New(store).Normalize(context.Background(), player.ID, testutil.MahomesProfile("p-15").Seasons)
	require.NoError(t, err)

	assert.Equal(t, Result{Written: 2}, result)

	stats, err := store.ListByPlayer(context.Background(), player.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 2023, stats[0].Season)
	assert.Equal(t, int32(4183), stats[0].PassingYards.Int32, "postseason line must not replace the regular season")
	assert.Equal(t, 2022, stats[1].Season)
}

func TestNormalize_Idempotent(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := seededPlayer(t, store)
	n := New(store)
	seasons := testutil.MahomesProfile("p-15").Seasons

	_, err := n.Normalize(context.Background(), player.ID, seasons)
	require.NoError(t, err)

	// a changed provider line for an existing season is not applied
	seasons[1] = testutil.Season(2023, models.RegularSeason, testutil.QuarterbackStats(9999, 99))

	result, err := n.Normalize(context.Background(), player.ID, seasons)
	require.NoError(t, err)
	assert.Equal(t, Result{Existing: 2}, result)
	assert.Equal(t, 2, store.StatCount(player.ID))

	stats, err := store.ListByPlayer(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Equal(t, int32(4183), stats[0].PassingYards.Int32)
}

func TestNormalize_FirstTeamContextOnly(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := seededPlayer(t, store)

	traded := models.SeasonInput{
		Year: 2021,
		Type: models.RegularSeason,
		Teams: []models.SeasonTeamInput{
			{Name: "Raiders", Statistics: &models.StatisticsInput{GamesPlayed: testutil.IntPtr(7)}},
			{Name: "Chiefs", Statistics: &models.StatisticsInput{GamesPlayed: testutil.IntPtr(10)}},
		},
	}

	_, err := New(store).Normalize(context.Background(), player.ID, []models.SeasonInput{traded})
	require.NoError(t, err)

	stats, _ := store.ListByPlayer(context.Background(), player.ID)
	require.Len(t, stats, 1)
	assert.Equal(t, int32(7), stats[0].GamesPlayed.Int32)
}

func TestNormalize_KickerSparseRow(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := store.Seed(&models.Player{ExternalID: "k-7", Name: "Harrison Butker", Position: "K", Team: "Chiefs"})

	kicking := &models.StatisticsInput{
		Kicking: &models.KickingInput{
			FieldGoalsMade:      testutil.IntPtr(33),
			FieldGoalsAttempted: testutil.IntPtr(35),
		},
	}

	_, err := New(store).Normalize(context.Background(), player.ID, []models.SeasonInput{
		testutil.Season(2023, models.RegularSeason, kicking),
	})
	require.NoError(t, err)

	stats, _ := store.ListByPlayer(context.Background(), player.ID)
	require.Len(t, stats, 1)
	row := stats[0]

	assert.Equal(t, int32(33), row.FieldGoalsMade.Int32)
	assert.False(t, row.PassingYards.Valid)
	assert.False(t, row.RushingYards.Valid)
	assert.False(t, row.Receptions.Valid)
	assert.False(t, row.Tackles.Valid)
	assert.False(t, row.GamesPlayed.Valid)
}

func TestNormalize_SkipsSeasonsWithoutStatistics(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := seededPlayer(t, store)

	seasons := []models.SeasonInput{
		{Year: 2019, Type: models.RegularSeason},
		testutil.Season(2020, models.RegularSeason, nil),
		testutil.Season(2020, "PRE", testutil.QuarterbackStats(100, 1)),
	}

	result, err := New(store).Normalize(context.Background(), player.ID, seasons)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 2}, result)
	assert.Equal(t, 0, store.StatCount(player.ID))
}

func TestNormalize_StoreErrorStops(t *testing.T) {
	store := testutil.NewMemoryStore()
	player := seededPlayer(t, store)
	store.StatsErr = errors.New("disk full")

	_, err := New(store).Normalize(context.Background(), player.ID, testutil.MahomesProfile("p-15").Seasons)
	require.Error(t, err)
	assert.True(t, apperr.IsStore(err))
}

func TestRegularSeasons(t *testing.T) {
	seasons := []models.SeasonInput{
		{Year: 2022, Type: "PRE"},
		{Year: 2022, Type: "REG"},
		{Year: 2022, Type: "PST"},
		{Year: 2023, Type: "REG"},
	}

	regular := RegularSeasons(seasons)
	require.Len(t, regular, 2)
	assert.Equal(t, 2022, regular[0].Year)
	assert.Equal(t, 2023, regular[1].Year)
}
