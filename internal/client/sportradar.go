package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nflcache/ingestion/internal/apperr"
	"nflcache/ingestion/internal/metrics"
	"nflcache/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// maxErrorBody bounds how much of an error response is kept for diagnostics
const maxErrorBody = 4 << 10

// Endpoint templates, also used as metric labels
const (
	EndpointTeams   = "league/teams.json"
	EndpointRoster  = "teams/%s/full_roster.json"
	EndpointProfile = "players/%s/profile.json"
)

// Client is the SportRadar NFL API client. Every call is exactly one HTTP
// round trip; retry and pacing belong to callers.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new SportRadar API client
func NewClient(baseURL, apiKey string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Request performs one GET for endpoint and decodes the JSON body into out.
// label names the endpoint in metrics and errors.
func (c *Client) Request(ctx context.Context, label, endpoint string, out any) error {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(endpoint, "/"))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return apperr.Provider(label, 0, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "nfl-player-cache/1.0")

	log.Debug().
		Str("endpoint", label).
		Str("url", reqURL).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(label, "error", time.Since(start).Seconds())
		return apperr.Provider(label, 0, fmt.Errorf("API request failed: %w", err))
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordAPICall(label, status, time.Since(start).Seconds())

		log.Warn().
			Str("endpoint", label).
			Int("status", resp.StatusCode).
			Msg("API returned non-OK status")

		return apperr.Provider(label, resp.StatusCode, fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordAPICall(label, "decode_error", time.Since(start).Seconds())
		return apperr.Provider(label, resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	metrics.RecordAPICall(label, status, time.Since(start).Seconds())
	log.Debug().
		Str("endpoint", label).
		Dur("duration", time.Since(start)).
		Msg("API request successful")

	return nil
}

// FetchTeams fetches the league team list
func (c *Client) FetchTeams(ctx context.Context) ([]models.TeamInput, error) {
	var resp models.TeamsResponse
	if err := c.Request(ctx, "teams", EndpointTeams, &resp); err != nil {
		return nil, err
	}

	if err := resp.Validate(); err != nil {
		return nil, apperr.Provider("teams", http.StatusOK, fmt.Errorf("invalid teams document: %w", err))
	}

	return resp.Teams, nil
}

// FetchRoster fetches the full roster of a team
func (c *Client) FetchRoster(ctx context.Context, teamID string) (*models.RosterInput, error) {
	var roster models.RosterInput
	endpoint := fmt.Sprintf(EndpointRoster, url.PathEscape(teamID))
	if err := c.Request(ctx, "roster", endpoint, &roster); err != nil {
		return nil, err
	}

	if err := roster.Validate(); err != nil {
		return nil, apperr.Provider("roster", http.StatusOK, fmt.Errorf("invalid roster document for team %s: %w", teamID, err))
	}

	return &roster, nil
}

// FetchPlayerProfile fetches a player's profile including season statistics
func (c *Client) FetchPlayerProfile(ctx context.Context, playerID string) (*models.ProfileInput, error) {
	var profile models.ProfileInput
	endpoint := fmt.Sprintf(EndpointProfile, url.PathEscape(playerID))
	if err := c.Request(ctx, "profile", endpoint, &profile); err != nil {
		return nil, err
	}

	if err := profile.Validate(); err != nil {
		return nil, apperr.Provider("profile", http.StatusOK, fmt.Errorf("invalid profile document for player %s: %w", playerID, err))
	}

	return &profile, nil
}
