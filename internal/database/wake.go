package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

// LinearBackOff waits n*Base before the n-th retry: 5s, 10s, 15s for a 5s base.
type LinearBackOff struct {
	Base time.Duration
	n    int
}

// Linear returns a LinearBackOff. A non-positive base retries immediately.
func Linear(base time.Duration) *LinearBackOff {
	return &LinearBackOff{Base: base}
}

func (b *LinearBackOff) NextBackOff() time.Duration {
	b.n++
	if b.Base <= 0 {
		return 0
	}
	return time.Duration(b.n) * b.Base
}

func (b *LinearBackOff) Reset() { b.n = 0 }

// Retrier opens a connection and keeps poking it until the instance answers.
type Retrier struct {
	Open        Opener
	MaxAttempts int
	// Backoff yields the delay after each failed attempt. Nil retries immediately.
	Backoff backoff.BackOff
	// Timer defaults to a real timer.
	Timer backoff.Timer
}

// NewRetrier returns a Retrier using Open and a linear backoff.
func NewRetrier(maxAttempts int, base time.Duration) *Retrier {
	return &Retrier{
		Open:        Open,
		MaxAttempts: maxAttempts,
		Backoff:     Linear(base),
	}
}

// WakeUp returns a live connection and the number of attempts it took. On failure the
// returned error is a KindWakeUp *Error wrapping the last cause. Config errors are
// returned as they are, without a retry.
func (r *Retrier) WakeUp(ctx context.Context, cfg ConnectionConfig) (*sql.DB, int, error) {
	open := r.Open
	if open == nil {
		open = Open
	}
	var schedule backoff.BackOff = &backoff.ZeroBackOff{}
	if r.Backoff != nil {
		schedule = r.Backoff
	}
	maxAttempts := max(r.MaxAttempts, 1)
	policy := backoff.WithContext(backoff.WithMaxRetries(schedule, uint64(maxAttempts-1)), ctx)

	logger := zerolog.Ctx(ctx)
	var (
		db       *sql.DB
		attempts int
		lastErr  error
	)

	operation := func() error {
		attempts++
		logger.Info().Int("attempt", attempts).Int("max_attempts", maxAttempts).Msg("connecting to database")

		conn, err := open(ctx, cfg)
		if err == nil {
			if err = Ping(ctx, conn); err == nil {
				db = conn
				return nil
			}
			Close(ctx, conn, "wake-up attempt")
		}
		lastErr = err
		if KindOf(err) == KindConfig {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, delay time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempts).
			Int("max_attempts", maxAttempts).
			Dur("retry_in", delay).
			Msg("database not reachable yet")
	}

	if err := backoff.RetryNotifyWithTimer(operation, policy, notify, r.Timer); err == nil {
		logger.Info().Int("attempt", attempts).Msg("database connection established")
		return db, attempts, nil
	}

	if KindOf(lastErr) == KindConfig {
		return nil, attempts, lastErr
	}
	cause := lastErr
	if ctxErr := ctx.Err(); ctxErr != nil {
		cause = errors.Join(lastErr, ctxErr)
	}
	logger.Error().Err(cause).Int("attempts", attempts).Msg("giving up on database wake-up")
	return nil, attempts, &Error{Kind: KindWakeUp, Op: "wake up database", Code: sqlState(lastErr), Attempts: attempts, Err: cause}
}
