// Package pacer sequences provider calls so a bulk run stays under the
// provider's throughput limit. Successful calls are spaced by a token bucket;
// failures add an exponentially growing, jittered and capped penalty; a
// circuit breaker stops issuing calls after consecutive failures.
package pacer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nflcache/ingestion/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned by Do while the breaker rejects calls
var ErrCircuitOpen = errors.New("circuit breaker open")

// Config holds the pacing policy
type Config struct {
	// Interval is the minimum spacing between calls; the fixed delay after a success
	Interval time.Duration
	Burst    int

	// Failure penalty: PenaltyInitial * PenaltyMultiplier^n, jittered by
	// ±Jitter and capped at PenaltyMax. Reset by the next success.
	PenaltyInitial    time.Duration
	PenaltyMax        time.Duration
	PenaltyMultiplier float64
	Jitter            float64

	// BreakerThreshold consecutive failures open the breaker for BreakerCooldown
	BreakerThreshold uint32
	BreakerCooldown  time.Duration
}

// DefaultConfig mirrors the provider's trial-tier limits
func DefaultConfig() Config {
	return Config{
		Interval:          2 * time.Second,
		Burst:             1,
		PenaltyInitial:    10 * time.Second,
		PenaltyMax:        2 * time.Minute,
		PenaltyMultiplier: 2,
		Jitter:            0.2,
		BreakerThreshold:  5,
		BreakerCooldown:   5 * time.Minute,
	}
}

// Clock abstracts time so pacing can be driven by a virtual clock in tests
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Pacer spaces provider calls and backs off after failures
type Pacer struct {
	cfg     Config
	clock   Clock
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker

	mu      sync.Mutex
	backoff *backoff.ExponentialBackOff
}

// Option customizes a Pacer
type Option func(*Pacer)

// WithClock replaces the wall clock
func WithClock(c Clock) Option {
	return func(p *Pacer) {
		p.clock = c
	}
}

// New creates a Pacer
func New(cfg Config, opts ...Option) *Pacer {
	p := &Pacer{
		cfg:   cfg,
		clock: realClock{},
	}

	for _, opt := range opts {
		opt(p)
	}

	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	p.limiter = rate.NewLimiter(rate.Every(cfg.Interval), burst)

	p.backoff = &backoff.ExponentialBackOff{
		InitialInterval:     cfg.PenaltyInitial,
		RandomizationFactor: cfg.Jitter,
		Multiplier:          cfg.PenaltyMultiplier,
		MaxInterval:         cfg.PenaltyMax,
		MaxElapsedTime:      0, // the breaker bounds sustained failure
		Stop:                backoff.Stop,
		Clock:               p.clock,
	}
	p.backoff.Reset()

	threshold := cfg.BreakerThreshold
	if threshold < 1 {
		threshold = 1
	}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "provider",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(int(to))
			log.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})

	return p
}

// Wait blocks until the token bucket admits one call
func (p *Pacer) Wait(ctx context.Context) error {
	now := p.clock.Now()
	r := p.limiter.ReserveN(now, 1)
	if !r.OK() {
		return fmt.Errorf("pacer burst exceeded")
	}

	delay := r.DelayFrom(now)
	if delay > 0 {
		log.Debug().Dur("delay", delay).Msg("Pacing provider call")
	}

	if err := p.clock.Sleep(ctx, delay); err != nil {
		r.CancelAt(p.clock.Now())
		return err
	}
	return nil
}

// Do runs fn as one paced unit of work. A failed unit is followed by the
// current penalty delay before Do returns its error. While the breaker is open
// fn is not called and ErrCircuitOpen is returned.
func (p *Pacer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.breaker.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}

	if err := p.Wait(ctx); err != nil {
		return err
	}

	var callErr error
	_, err := p.breaker.Execute(func() (interface{}, error) {
		callErr = fn(ctx)
		// a caller that gave up says nothing about provider health
		if callErr != nil && ctx.Err() != nil {
			return nil, nil
		}
		return nil, callErr
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}

	if err == nil && callErr == nil {
		p.mu.Lock()
		p.backoff.Reset()
		p.mu.Unlock()
		return nil
	}

	if ctx.Err() != nil {
		return callErr
	}

	penalty := p.nextPenalty()
	metrics.RecordPenalty(penalty.Seconds())
	log.Warn().
		Err(err).
		Dur("penalty", penalty).
		Str("breaker", p.breaker.State().String()).
		Msg("Provider call failed, applying penalty delay")

	_ = p.clock.Sleep(ctx, penalty)
	return err
}

func (p *Pacer) nextPenalty() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.backoff.NextBackOff()
	if d == backoff.Stop || d > p.cfg.PenaltyMax {
		d = p.cfg.PenaltyMax
	}
	return d
}

// State returns the breaker state name
func (p *Pacer) State() string {
	return p.breaker.State().String()
}

// Open reports whether the breaker currently rejects calls
func (p *Pacer) Open() bool {
	return p.breaker.State() == gobreaker.StateOpen
}
