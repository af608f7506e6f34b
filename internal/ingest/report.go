package ingest

import (
	"encoding/json"
	"time"
)

// Status is the outcome of one team unit
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// TeamResult is the outcome of one roster unit
type TeamResult struct {
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	Status      Status `json:"status"`
	Processed   int    `json:"processed"`
	NewlyCached int    `json:"newlyCached"`
	Failed      int    `json:"failed"`
	Err         error  `json:"-"`
}

// MarshalJSON adds the error text
func (r TeamResult) MarshalJSON() ([]byte, error) {
	type alias TeamResult
	var msg string
	if r.Err != nil {
		msg = r.Err.Error()
	}
	return json.Marshal(struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(r), Error: msg})
}

// Report aggregates a rebuild run
type Report struct {
	Processed      int           `json:"processed"`
	NewlyCached    int           `json:"newlyCached"`
	TotalInStore   int           `json:"totalInStore"`
	PlayersFailed  int           `json:"playersFailed"`
	TeamsSucceeded int           `json:"teamsSucceeded"`
	TeamsFailed    int           `json:"teamsFailed"`
	TeamsSkipped   int           `json:"teamsSkipped"`
	Teams          []TeamResult  `json:"teams"`
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
}

func (r *Report) add(result TeamResult) {
	r.Teams = append(r.Teams, result)
	r.Processed += result.Processed
	r.NewlyCached += result.NewlyCached
	r.PlayersFailed += result.Failed

	switch result.Status {
	case StatusSuccess:
		r.TeamsSucceeded++
	case StatusFailed:
		r.TeamsFailed++
	case StatusSkipped:
		r.TeamsSkipped++
	}
}

// Complete reports whether every team was ingested
func (r *Report) Complete() bool {
	return r.TeamsFailed == 0 && r.TeamsSkipped == 0
}
