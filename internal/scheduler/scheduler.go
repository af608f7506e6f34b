package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nflcache/ingestion/internal/ingest"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// ErrAlreadyRunning is returned by RunNow while another rebuild is in progress
var ErrAlreadyRunning = errors.New("rebuild already running")

// Rebuilder runs one cache rebuild
type Rebuilder interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Scheduler runs the nightly cache rebuild. Scheduled and manual runs never overlap.
type Scheduler struct {
	spec      string
	rebuilder Rebuilder
	cron      *cron.Cron
	running   sync.Mutex
}

// NewScheduler creates a new scheduler instance
func NewScheduler(spec string, rebuilder Rebuilder) *Scheduler {
	logger := cronLogger{}
	return &Scheduler{
		spec:      spec,
		rebuilder: rebuilder,
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
	}
}

// Start registers the rebuild job and starts the cron loop
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Info().Msg("Running scheduled cache rebuild...")
		if _, err := s.RunNow(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled cache rebuild failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule cache rebuild: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.spec).
		Msg("Cache rebuild scheduled")

	return nil
}

// Stop stops the cron loop and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}

// RunNow runs a rebuild immediately unless one is already running
func (s *Scheduler) RunNow(ctx context.Context) (*ingest.Report, error) {
	if !s.running.TryLock() {
		return nil, ErrAlreadyRunning
	}
	defer s.running.Unlock()

	start := time.Now()
	report, err := s.rebuilder.Run(ctx)
	if err != nil {
		return report, err
	}

	log.Info().
		Int("processed", report.Processed).
		Int("newly_cached", report.NewlyCached).
		Int("total_in_store", report.TotalInStore).
		Dur("duration", time.Since(start)).
		Msg("Cache rebuild finished")

	return report, nil
}

// cronLogger routes cron's own logging through zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
