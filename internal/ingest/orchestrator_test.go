package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"
	"nflcache/ingestion/internal/pacer"
	"nflcache/ingestion/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPacer(clock *testutil.FakeClock, threshold uint32) *pacer.Pacer {
	return pacer.New(pacer.Config{
		Interval:          2 * time.Second,
		Burst:             1,
		PenaltyInitial:    10 * time.Second,
		PenaltyMax:        time.Minute,
		PenaltyMultiplier: 2,
		BreakerThreshold:  threshold,
		BreakerCooldown:   time.Hour,
	}, pacer.WithClock(clock))
}

func unavailable(teamID string) error {
	return apperr.Provider("roster", 503, fmt.Errorf("roster for %s unavailable", teamID))
}

// twoTeams is 2 teams totaling 5 players
func twoTeams() *testutil.FakeProvider {
	provider := testutil.NewFakeProvider()
	provider.AddTeam("t-kc", "Kansas City", "Chiefs",
		testutil.RosterPlayer("p-15", "Patrick Mahomes", "QB", "15"),
		testutil.RosterPlayer("p-87", "Travis Kelce", "TE", "87"),
		testutil.RosterPlayer("p-7", "Harrison Butker", "K", "7"),
	)
	provider.AddTeam("t-buf", "Buffalo", "Bills",
		testutil.RosterPlayer("p-17", "Josh Allen", "QB", "17"),
		testutil.RosterPlayer("p-14", "Stefon Diggs", "WR", ""),
	)
	return provider
}

func TestRun_NewAndExistingPlayers(t *testing.T) {
	provider := twoTeams()
	store := testutil.NewMemoryStore()
	store.Seed(&models.Player{ExternalID: "p-15", Name: "Patrick Mahomes", Position: "QB", Team: "Chiefs"})

	before, err := store.Count(context.Background())
	require.NoError(t, err)

	o := New(provider, store, testPacer(testutil.NewFakeClock(), 5))
	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, report.Processed)
	assert.Equal(t, 4, report.NewlyCached)
	assert.Equal(t, before+4, report.TotalInStore)
	assert.Equal(t, 2, report.TeamsSucceeded)
	assert.True(t, report.Complete())
	require.Len(t, report.Teams, 2)
	assert.Equal(t, TeamResult{TeamID: "t-kc", TeamName: "Chiefs", Status: StatusSuccess, Processed: 3, NewlyCached: 2}, report.Teams[0])
}

func TestRun_Idempotent(t *testing.T) {
	provider := twoTeams()
	store := testutil.NewMemoryStore()
	o := New(provider, store, testPacer(testutil.NewFakeClock(), 5))

	first, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, first.NewlyCached)

	second, err := o.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, second.Processed)
	assert.Equal(t, 0, second.NewlyCached)
	assert.Equal(t, first.TotalInStore, second.TotalInStore)
}

func TestRun_RosterFailureIsIsolated(t *testing.T) {
	provider := twoTeams()
	provider.AddTeam("t-mia", "Miami", "Dolphins", testutil.RosterPlayer("p-10", "Tyreek Hill", "WR", "10"))
	provider.Teams[0], provider.Teams[1] = provider.Teams[1], provider.Teams[0]
	provider.RosterErrs["t-kc"] = unavailable("t-kc")

	store := testutil.NewMemoryStore()
	clock := testutil.NewFakeClock()
	o := New(provider, store, testPacer(clock, 5))

	report, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TeamsSucceeded)
	assert.Equal(t, 1, report.TeamsFailed)
	assert.Equal(t, 3, report.NewlyCached)
	assert.False(t, report.Complete())

	failed := report.Teams[1]
	assert.Equal(t, "t-kc", failed.TeamID)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.True(t, apperr.IsProvider(failed.Err))

	_, err = store.GetByExternalID(context.Background(), "p-10")
	assert.NoError(t, err, "teams after the failure are still cached")

	assert.Contains(t, clock.Sleeps(), 10*time.Second, "a failed unit is followed by the penalty delay")
	assert.Equal(t, 1, provider.RosterCalls("t-kc"), "a failed roster is not retried within the run")
}

func TestRun_TeamListFailureAborts(t *testing.T) {
	provider := twoTeams()
	provider.TeamsErr = apperr.Provider("teams", 500, errors.New("boom"))
	store := testutil.NewMemoryStore()

	report, err := New(provider, store, testPacer(testutil.NewFakeClock(), 5)).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, apperr.IsProvider(err))
	assert.Equal(t, 0, provider.RosterCalls("t-kc"))
}

func TestRun_PlayerFailureIsIsolated(t *testing.T) {
	provider := twoTeams()
	provider.Rosters["t-kc"].Players = append(provider.Rosters["t-kc"].Players,
		models.RosterPlayerInput{ID: "p-nameless"},
	)

	store := testutil.NewMemoryStore()
	store.CreateErrs["p-87"] = errors.New("connection reset")

	report, err := New(provider, store, testPacer(testutil.NewFakeClock(), 5)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.PlayersFailed)
	assert.Equal(t, 4, report.Processed)
	assert.Equal(t, 4, report.NewlyCached)
	assert.Equal(t, 2, report.TeamsSucceeded)
	assert.Equal(t, 2, report.Teams[0].Failed)

	_, err = store.GetByExternalID(context.Background(), "p-7")
	assert.NoError(t, err, "players after a failure are still cached")
}

func TestRun_TeamStampedFromRoster(t *testing.T) {
	provider := testutil.NewFakeProvider()
	provider.AddTeam("t-kc", "Kansas City", "Chiefs",
		models.RosterPlayerInput{ID: "p-15", Name: "Patrick Mahomes", Position: "QB", Jersey: "15"},
		models.RosterPlayerInput{ID: "p-0", Name: "Practice Squad", Position: "WR", Jersey: "TBD"},
	)
	store := testutil.NewMemoryStore()

	_, err := New(provider, store, testPacer(testutil.NewFakeClock(), 5)).Run(context.Background())
	require.NoError(t, err)

	mahomes, err := store.GetByExternalID(context.Background(), "p-15")
	require.NoError(t, err)
	assert.Equal(t, "Chiefs", mahomes.Team)
	assert.Equal(t, int32(15), mahomes.JerseyNumber.Int32)
	assert.False(t, mahomes.Height.Valid)
	assert.False(t, mahomes.College.Valid)

	squad, err := store.GetByExternalID(context.Background(), "p-0")
	require.NoError(t, err)
	assert.False(t, squad.JerseyNumber.Valid)
}

// cancellingProvider cancels the run when a given roster is requested
type cancellingProvider struct {
	*testutil.FakeProvider
	at     string
	cancel context.CancelFunc
}

func (p *cancellingProvider) FetchRoster(ctx context.Context, teamID string) (*models.RosterInput, error) {
	if teamID == p.at {
		p.cancel()
		return nil, apperr.Provider("roster", 0, ctx.Err())
	}
	return p.FakeProvider.FetchRoster(ctx, teamID)
}

func TestRun_CancellationSkipsRemainingTeams(t *testing.T) {
	fake := twoTeams()
	fake.AddTeam("t-mia", "Miami", "Dolphins", testutil.RosterPlayer("p-10", "Tyreek Hill", "WR", "10"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	provider := &cancellingProvider{FakeProvider: fake, at: "t-buf", cancel: cancel}

	store := testutil.NewMemoryStore()
	clock := testutil.NewFakeClock()
	report, err := New(provider, store, testPacer(clock, 5)).Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, report.TeamsSucceeded)
	assert.Equal(t, 2, report.TeamsSkipped)
	assert.Equal(t, StatusSkipped, report.Teams[1].Status)
	assert.ErrorIs(t, report.Teams[2].Err, context.Canceled)
	assert.Equal(t, 3, report.TotalInStore, "the store is still counted after cancellation")
	assert.Equal(t, 0, fake.RosterCalls("t-mia"))
	assert.NotContains(t, clock.Sleeps(), 10*time.Second, "cancellation is not penalized")
}

func TestRun_OpenBreakerSkipsRemainingTeams(t *testing.T) {
	provider := testutil.NewFakeProvider()
	for n := 1; n <= 4; n++ {
		id := fmt.Sprintf("t-%d", n)
		provider.AddTeam(id, "Market", fmt.Sprintf("Team %d", n), testutil.RosterPlayer("p-"+id, "Player "+id, "QB", "1"))
	}
	provider.RosterErrs["t-1"] = unavailable("t-1")
	provider.RosterErrs["t-2"] = unavailable("t-2")

	report, err := New(provider, testutil.NewMemoryStore(), testPacer(testutil.NewFakeClock(), 2)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.TeamsFailed)
	assert.Equal(t, 2, report.TeamsSkipped)
	assert.ErrorIs(t, report.Teams[3].Err, pacer.ErrCircuitOpen)
	assert.Equal(t, 0, provider.RosterCalls("t-3"))
	assert.Equal(t, 0, provider.RosterCalls("t-4"))
}

func TestRun_CountFailureReturnsPartialReport(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.CountErr = errors.New("statement timeout")

	report, err := New(twoTeams(), store, testPacer(testutil.NewFakeClock(), 5)).Run(context.Background())
	require.Error(t, err)
	assert.True(t, apperr.IsStore(err))
	require.NotNil(t, report)
	assert.Equal(t, 5, report.NewlyCached)
	assert.Zero(t, report.TotalInStore)
}

type recordingSink struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (s *recordingSink) SaveReport(ctx context.Context, report any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, report.(*Report))
	return s.err
}

func TestRun_ReportSink(t *testing.T) {
	sink := &recordingSink{err: errors.New("redis down")}
	o := New(twoTeams(), testutil.NewMemoryStore(), testPacer(testutil.NewFakeClock(), 5), WithReportSink(sink))

	report, err := o.Run(context.Background())
	require.NoError(t, err, "a sink failure does not fail the run")

	require.Len(t, sink.reports, 1)
	assert.Same(t, report, sink.reports[0])
}

func TestRun_SpacesRosterFetches(t *testing.T) {
	clock := testutil.NewFakeClock()
	_, err := New(twoTeams(), testutil.NewMemoryStore(), testPacer(clock, 5)).Run(context.Background())
	require.NoError(t, err)

	// team list, then two rosters one interval apart each
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, clock.Sleeps())
}

func TestTeamResult_JSON(t *testing.T) {
	data, err := TeamResult{TeamID: "t-kc", Status: StatusFailed, Err: errors.New("503")}.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"teamId":"t-kc","teamName":"","status":"failed","processed":0,"newlyCached":0,"failed":0,"error":"503"}`, string(data))
}
