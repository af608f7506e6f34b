package models

import (
	"errors"
	"fmt"
	"strings"
)

// TeamInput is a team entry of the league hierarchy. Teams are not persisted;
// they scope roster fetches and stamp Player.Team.
type TeamInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Alias  string `json:"alias"`
}

// DisplayName returns "Market Name" when a market is known
func (ti *TeamInput) DisplayName() string {
	return strings.TrimSpace(ti.Market + " " + ti.Name)
}

// TeamsResponse is the league teams document
type TeamsResponse struct {
	Teams []TeamInput `json:"teams"`
}

// Validate rejects team entries that cannot scope a roster fetch
func (tr *TeamsResponse) Validate() error {
	for n, team := range tr.Teams {
		if team.ID == "" {
			return fmt.Errorf("team %d has no id", n)
		}
		if team.Name == "" {
			return fmt.Errorf("team %s has no name", team.ID)
		}
	}
	return nil
}

// RosterInput is a team's full roster document
type RosterInput struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Market  string              `json:"market"`
	Alias   string              `json:"alias"`
	Players []RosterPlayerInput `json:"players"`
}

// Validate only checks the envelope; individual entries are checked per player
// so one bad entry does not discard the roster.
func (ri *RosterInput) Validate() error {
	if ri.ID == "" {
		return errors.New("roster has no team id")
	}
	return nil
}

// Validate checks the fields a baseline Player cannot be created without
func (rp *RosterPlayerInput) Validate() error {
	if rp.ID == "" {
		return errors.New("roster player has no id")
	}
	if strings.TrimSpace(rp.Name) == "" {
		return fmt.Errorf("roster player %s has no name", rp.ID)
	}
	return nil
}

// Validate checks the profile identity; seasons may legitimately be empty
func (pi *ProfileInput) Validate() error {
	if pi.ID == "" {
		return errors.New("profile has no id")
	}
	if strings.TrimSpace(pi.Name) == "" {
		return fmt.Errorf("profile %s has no name", pi.ID)
	}
	for _, season := range pi.Seasons {
		if season.Year <= 0 {
			return fmt.Errorf("profile %s has a season without a year", pi.ID)
		}
	}
	return nil
}
