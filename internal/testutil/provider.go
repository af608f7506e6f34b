package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/models"
)

// FakeProvider serves scripted teams, rosters and profiles and counts calls
type FakeProvider struct {
	mu sync.Mutex

	Teams    []models.TeamInput
	TeamsErr error

	Rosters    map[string]*models.RosterInput
	RosterErrs map[string]error

	Profiles    map[string]*models.ProfileInput
	ProfileErrs map[string]error

	// ProfileDelay holds each profile call for a real duration so concurrent
	// callers overlap
	ProfileDelay time.Duration

	teamCalls    int
	rosterCalls  map[string]int
	profileCalls map[string]int
	inFlight     int
	maxInFlight  int
}

// NewFakeProvider creates an empty provider
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Rosters:      make(map[string]*models.RosterInput),
		RosterErrs:   make(map[string]error),
		Profiles:     make(map[string]*models.ProfileInput),
		ProfileErrs:  make(map[string]error),
		rosterCalls:  make(map[string]int),
		profileCalls: make(map[string]int),
	}
}

// AddTeam registers a team and its roster
func (p *FakeProvider) AddTeam(id, market, name string, players ...models.RosterPlayerInput) {
	p.Teams = append(p.Teams, models.TeamInput{ID: id, Name: name, Market: market})
	p.Rosters[id] = &models.RosterInput{ID: id, Name: name, Market: market, Players: players}
}

func (p *FakeProvider) FetchTeams(ctx context.Context) ([]models.TeamInput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.teamCalls++
	if p.TeamsErr != nil {
		return nil, p.TeamsErr
	}
	return append([]models.TeamInput(nil), p.Teams...), nil
}

func (p *FakeProvider) FetchRoster(ctx context.Context, teamID string) (*models.RosterInput, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rosterCalls[teamID]++
	if err := p.RosterErrs[teamID]; err != nil {
		return nil, err
	}
	roster, ok := p.Rosters[teamID]
	if !ok {
		return nil, apperr.Provider("roster", 404, fmt.Errorf("no roster for %s", teamID))
	}
	return roster, nil
}

func (p *FakeProvider) FetchPlayerProfile(ctx context.Context, playerID string) (*models.ProfileInput, error) {
	p.mu.Lock()
	p.profileCalls[playerID]++
	p.inFlight++
	if p.inFlight > p.maxInFlight {
		p.maxInFlight = p.inFlight
	}
	delay := p.ProfileDelay
	profile, ok := p.Profiles[playerID]
	err := p.ProfileErrs[playerID]
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight--
		p.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, apperr.Provider("profile", 0, ctx.Err())
		case <-time.After(delay):
		}
	}

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Provider("profile", 404, fmt.Errorf("no profile for %s", playerID))
	}
	return profile, nil
}

// TeamCalls returns the number of team list requests
func (p *FakeProvider) TeamCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.teamCalls
}

// RosterCalls returns the number of roster requests for a team
func (p *FakeProvider) RosterCalls(teamID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rosterCalls[teamID]
}

// ProfileCalls returns the number of profile requests for a player
func (p *FakeProvider) ProfileCalls(playerID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profileCalls[playerID]
}

// TotalProfileCalls returns the number of profile requests across players
func (p *FakeProvider) TotalProfileCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.profileCalls {
		total += n
	}
	return total
}

// MaxConcurrentProfiles returns the highest number of overlapping profile requests
func (p *FakeProvider) MaxConcurrentProfiles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxInFlight
}
