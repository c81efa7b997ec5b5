package features

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/stitts-dev/ffreport/pkg/logger"
)

// Arrest is one scraped arrest record.
type Arrest struct {
	FullName    string `json:"full_name"`
	TeamAbbr    string `json:"team_abbr"`
	Date        string `json:"date"`
	Position    string `json:"position"`
	Case        string `json:"case"`
	Crime       string `json:"crime"`
	Description string `json:"description"`
	Outcome     string `json:"outcome"`
}

// PlayerWeight is one scraped roster entry with the listed weight in pounds.
type PlayerWeight struct {
	FullName         string   `json:"full_name"`
	TeamAbbr         string   `json:"team_abbr"`
	Position         string   `json:"position"`
	FantasyPositions []string `json:"fantasy_positions"`
	Weight           int      `json:"weight"`
}

// Fine is one scraped league fine.
type Fine struct {
	FullName  string    `json:"full_name"`
	TeamAbbr  string    `json:"team_abbr"`
	Position  string    `json:"position"`
	Violation string    `json:"violation"`
	Amount    float64   `json:"amount"`
	Date      time.Time `json:"date"`
}

// ArrestSource scrapes arrest records.
type ArrestSource interface {
	Arrests(ctx context.Context) ([]Arrest, error)
}

// WeightSource scrapes player weights.
type WeightSource interface {
	Weights(ctx context.Context) ([]PlayerWeight, error)
}

// FineSource scrapes fines for a season.
type FineSource interface {
	Fines(ctx context.Context, season int) ([]Fine, error)
}

// GuardConfig tunes the breaker and limiter shared by guarded sources.
type GuardConfig struct {
	Name             string
	RequestsPerSec   float64
	Burst            int
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial call.
	OpenTimeout time.Duration
	// FetchTimeout bounds each call; zero leaves only the caller's deadline.
	FetchTimeout time.Duration
}

// GuardedSource rate limits scraper calls and trips a circuit breaker when
// a source keeps failing, so one dead site does not stall every report.
type GuardedSource struct {
	breaker *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	logger  *logrus.Entry
}

// NewGuardedSource builds a guard. Zero values fall back to one request per
// second, a burst of one, three failures and a thirty second open state.
func NewGuardedSource(cfg GuardConfig) *GuardedSource {
	if cfg.Name == "" {
		cfg.Name = "feature-source"
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	log := logger.WithComponent("feature_source").WithField("source", cfg.Name)
	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{
				"from": from.String(),
				"to":   to.String(),
			}).Warn("Feature source circuit breaker state changed")
		},
	})

	return &GuardedSource{
		breaker: breaker,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		timeout: cfg.FetchTimeout,
		logger:  log,
	}
}

// State exposes the breaker state.
func (g *GuardedSource) State() gobreaker.State {
	return g.breaker.State()
}

func (g *GuardedSource) do(ctx context.Context, fn func(context.Context) (interface{}, error)) (interface{}, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	return g.breaker.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
}

// Arrests wraps src.
func (g *GuardedSource) Arrests(src ArrestSource) ArrestSource {
	return guardedArrests{guard: g, src: src}
}

// Weights wraps src.
func (g *GuardedSource) Weights(src WeightSource) WeightSource {
	return guardedWeights{guard: g, src: src}
}

// Fines wraps src.
func (g *GuardedSource) Fines(src FineSource) FineSource {
	return guardedFines{guard: g, src: src}
}

type guardedArrests struct {
	guard *GuardedSource
	src   ArrestSource
}

func (s guardedArrests) Arrests(ctx context.Context) ([]Arrest, error) {
	out, err := s.guard.do(ctx, func(ctx context.Context) (interface{}, error) {
		return s.src.Arrests(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Arrest), nil
}

type guardedWeights struct {
	guard *GuardedSource
	src   WeightSource
}

func (s guardedWeights) Weights(ctx context.Context) ([]PlayerWeight, error) {
	out, err := s.guard.do(ctx, func(ctx context.Context) (interface{}, error) {
		return s.src.Weights(ctx)
	})
	if err != nil {
		return nil, err
	}
	return out.([]PlayerWeight), nil
}

type guardedFines struct {
	guard *GuardedSource
	src   FineSource
}

func (s guardedFines) Fines(ctx context.Context, season int) ([]Fine, error) {
	out, err := s.guard.do(ctx, func(ctx context.Context) (interface{}, error) {
		return s.src.Fines(ctx, season)
	})
	if err != nil {
		return nil, err
	}
	return out.([]Fine), nil
}
