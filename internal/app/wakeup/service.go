package wakeup

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"dashseed/internal/database"
)

// SeedTrigger starts a seeding run somewhere else.
type SeedTrigger interface {
	TriggerSeed(ctx context.Context) (json.RawMessage, error)
}

// Config tunes the wake-up retrier.
type Config struct {
	URLs        []string
	MaxAttempts int
	Delay       time.Duration
}

// Result carries the attempt count and the seed endpoint's answer.
type Result struct {
	Attempts   int
	SeedResult json.RawMessage
}

// Service wakes a hibernating database and then asks for it to be seeded.
type Service interface {
	WakeAndSeed(ctx context.Context) (Result, error)
	// Wake only wakes the database.
	Wake(ctx context.Context) (int, error)
}

type service struct {
	cfg     Config
	open    database.Opener
	trigger SeedTrigger
	timer   backoff.Timer
}

// New constructs a wakeup Service. A nil opener uses database.Open.
func New(cfg Config, open database.Opener, trigger SeedTrigger) Service {
	if open == nil {
		open = database.Open
	}
	return &service{cfg: cfg, open: open, trigger: trigger}
}

func (s *service) Wake(ctx context.Context) (int, error) {
	url, err := database.ResolveURL(s.cfg.URLs...)
	if err != nil {
		return 0, err
	}

	retrier := &database.Retrier{
		Open:        s.open,
		MaxAttempts: s.cfg.MaxAttempts,
		Backoff:     backoff.NewConstantBackOff(max(s.cfg.Delay, 0)),
		Timer:       s.timer,
	}

	db, attempts, err := retrier.WakeUp(ctx, database.NewConnectionConfig(url, database.WakeProfile))
	if err != nil {
		return attempts, err
	}
	database.Close(ctx, db, "wake-up")

	zerolog.Ctx(ctx).Info().Int("attempts", attempts).Msg("database is awake")
	return attempts, nil
}

func (s *service) WakeAndSeed(ctx context.Context) (Result, error) {
	attempts, err := s.Wake(ctx)
	if err != nil {
		return Result{Attempts: attempts}, err
	}

	seedResult, err := s.trigger.TriggerSeed(ctx)
	if err != nil {
		return Result{Attempts: attempts, SeedResult: seedResult}, err
	}
	return Result{Attempts: attempts, SeedResult: seedResult}, nil
}
