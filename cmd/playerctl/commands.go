package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"nflcache/ingestion/internal/app"
	"nflcache/ingestion/internal/ingest"
	"nflcache/ingestion/internal/models"
)

const usage = `usage: playerctl <command> [args]

commands:
  rebuild                  sync every team roster into the cache
  search [-no-stats] TERM  search players by name
  get ID                   show a cached player with all seasons
  stats ID                 refresh a player's seasons from the provider
  fetch EXTERNAL_ID        cache a player from its provider profile
  seed                     load sample players
`

// Service is the subset of players.Service the commands use
type Service interface {
	RebuildCache(ctx context.Context) (*ingest.Report, error)
	SearchWithStats(ctx context.Context, term string, fetchStats bool) ([]*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	FetchStatsForPlayer(ctx context.Context, id int) (*models.Player, error)
	FetchAndCachePlayer(ctx context.Context, externalID string) (*models.Player, error)
}

type operations struct {
	Service
	seedPlayers app.PlayerCreator
	seedStats   app.StatCreator
}

type command struct {
	name       string
	term       string
	id         int
	externalID string
	fetchStats bool
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errors.New("missing command")
	}

	cmd := command{name: args[0], fetchStats: true}
	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	noStats := fs.Bool("no-stats", false, "skip stat backfill")
	if err := fs.Parse(args[1:]); err != nil {
		return command{}, err
	}
	rest := fs.Args()

	switch cmd.name {
	case "rebuild", "seed":
		if len(rest) != 0 {
			return command{}, fmt.Errorf("%s takes no arguments", cmd.name)
		}
	case "search":
		if len(rest) != 1 {
			return command{}, errors.New("search requires a term")
		}
		cmd.term = rest[0]
		cmd.fetchStats = !*noStats
	case "get", "stats":
		if len(rest) != 1 {
			return command{}, fmt.Errorf("%s requires a player id", cmd.name)
		}
		id, err := strconv.Atoi(rest[0])
		if err != nil {
			return command{}, fmt.Errorf("invalid player id %q", rest[0])
		}
		cmd.id = id
	case "fetch":
		if len(rest) != 1 {
			return command{}, errors.New("fetch requires an external id")
		}
		cmd.externalID = rest[0]
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}

	return cmd, nil
}

func (c command) run(ctx context.Context, ops operations, out io.Writer) error {
	var (
		result any
		err    error
	)

	switch c.name {
	case "rebuild":
		var report *ingest.Report
		report, err = ops.RebuildCache(ctx)
		if report != nil {
			result = report
		}
	case "search":
		result, err = ops.SearchWithStats(ctx, c.term, c.fetchStats)
	case "get":
		result, err = ops.GetByID(ctx, c.id)
	case "stats":
		result, err = ops.FetchStatsForPlayer(ctx, c.id)
	case "fetch":
		result, err = ops.FetchAndCachePlayer(ctx, c.externalID)
	case "seed":
		result, err = app.Seed(ctx, ops.seedPlayers, ops.seedStats)
	}

	// a partial rebuild still prints its report
	if result != nil && (err == nil || c.name == "rebuild") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil && err == nil {
			err = encErr
		}
	}
	return err
}
