package seeding

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"dashseed/internal/database"
	"dashseed/internal/seed"
)

// Config tunes one seeding run.
type Config struct {
	// URLs are tried in order; the first non-empty one is used.
	URLs        []string
	MaxAttempts int
	BaseDelay   time.Duration
	BatchSize   int
	HashCost    int
}

// Result is the outcome of a successful run.
type Result struct {
	seed.Summary
	Attempts int
}

// Service wakes the database and loads the demo dataset.
type Service interface {
	Run(ctx context.Context) (Result, error)
}

type service struct {
	cfg   Config
	open  database.Opener
	timer backoff.Timer
}

// New constructs a seeding Service. A nil opener uses database.Open.
func New(cfg Config, open database.Opener) Service {
	if open == nil {
		open = database.Open
	}
	return &service{cfg: cfg, open: open}
}

func (s *service) Run(ctx context.Context) (Result, error) {
	url, err := database.ResolveURL(s.cfg.URLs...)
	if err != nil {
		return Result{}, err
	}

	retrier := &database.Retrier{
		Open:        s.open,
		MaxAttempts: s.cfg.MaxAttempts,
		Backoff:     database.Linear(s.cfg.BaseDelay),
		Timer:       s.timer,
	}

	db, attempts, err := retrier.WakeUp(ctx, database.NewConnectionConfig(url, database.SeedProfile))
	if err != nil {
		return Result{}, err
	}
	defer database.Close(ctx, db, "seed")

	var opts []seed.Option
	if s.cfg.BatchSize > 0 {
		opts = append(opts, seed.WithBatchSize(s.cfg.BatchSize))
	}
	if s.cfg.HashCost > 0 {
		opts = append(opts, seed.WithHashCost(s.cfg.HashCost))
	}

	summary, err := seed.New(db, opts...).Seed(ctx, seed.Placeholder())
	if err != nil {
		return Result{}, err
	}

	zerolog.Ctx(ctx).Info().
		Int("attempts", attempts).
		Int64("users", summary.Inserted.Users).
		Int64("customers", summary.Inserted.Customers).
		Int64("invoices", summary.Inserted.Invoices).
		Int64("revenue", summary.Inserted.Revenue).
		Msg("database seeded")

	return Result{Summary: summary, Attempts: attempts}, nil
}
