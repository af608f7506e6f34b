// Command playerctl runs one-off player cache operations against the
// configured database and provider. Results are printed as JSON on stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nflcache/ingestion/internal/app"
	"nflcache/ingestion/internal/config"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cmd, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.MustLoad()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	if err := a.DB.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	ops := operations{
		Service:     a.Players,
		seedPlayers: a.DB.Players,
		seedStats:   a.DB.Stats,
	}
	if err := cmd.run(ctx, ops, os.Stdout); err != nil {
		log.Error().Err(err).Str("command", cmd.name).Msg("Command failed")
		os.Exit(1)
	}
}
