package database

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cenkalti/backoff/v4"
)

type fakeOpener struct {
	t        *testing.T
	failures int
	calls    int
	mocks    []sqlmock.Sqlmock
	causes   []error
}

// open hands out sqlmock handles whose liveness query fails for the first f.failures calls.
func (f *fakeOpener) open(context.Context, ConnectionConfig) (*sql.DB, error) {
	f.calls++
	db, mock, err := sqlmock.New()
	if err != nil {
		f.t.Fatalf("sqlmock.New: %v", err)
	}

	expect := mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 AS test`))
	if f.calls <= f.failures {
		cause := errors.New("connection refused")
		f.causes = append(f.causes, cause)
		expect.WillReturnError(cause)
	} else {
		expect.WillReturnRows(sqlmock.NewRows([]string{"test"}).AddRow(1))
	}
	mock.ExpectClose()

	f.mocks = append(f.mocks, mock)
	return db, nil
}

func (f *fakeOpener) assertAllClosed() {
	f.t.Helper()
	for i, mock := range f.mocks {
		if err := mock.ExpectationsWereMet(); err != nil {
			f.t.Fatalf("connection %d: unmet expectations: %v", i+1, err)
		}
	}
}

// recordingTimer fires immediately and remembers every requested delay.
type recordingTimer struct {
	delays  []time.Duration
	onStart func()
	c       chan time.Time
}

func (r *recordingTimer) Start(d time.Duration) {
	r.delays = append(r.delays, d)
	if r.c == nil {
		r.c = make(chan time.Time, 1)
	}
	if r.onStart != nil {
		r.onStart()
		return
	}
	r.c <- time.Now()
}

func (r *recordingTimer) Stop() {}

func (r *recordingTimer) C() <-chan time.Time { return r.c }

func TestWakeUpSucceedsAfterFailures(t *testing.T) {
	tests := []struct {
		name     string
		failures int
	}{
		{name: "first attempt", failures: 0},
		{name: "after one failure", failures: 1},
		{name: "on last attempt", failures: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			opener := &fakeOpener{t: t, failures: tc.failures}
			timer := &recordingTimer{}
			r := &Retrier{
				Open:        opener.open,
				MaxAttempts: 3,
				Backoff:     Linear(5 * time.Second),
				Timer:       timer,
			}

			db, attempts, err := r.WakeUp(context.Background(), NewConnectionConfig("postgres://localhost/app", SeedProfile))
			if err != nil {
				t.Fatalf("WakeUp error: %v", err)
			}
			if attempts != tc.failures+1 {
				t.Fatalf("expected %d attempts, got %d", tc.failures+1, attempts)
			}
			if opener.calls != attempts {
				t.Fatalf("expected %d opens, got %d", attempts, opener.calls)
			}
			if len(timer.delays) != tc.failures {
				t.Fatalf("expected %d waits, got %v", tc.failures, timer.delays)
			}
			for i, d := range timer.delays {
				if want := time.Duration(i+1) * 5 * time.Second; d != want {
					t.Fatalf("wait %d: expected %s, got %s", i+1, want, d)
				}
			}

			if err := db.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			opener.assertAllClosed()
		})
	}
}

func TestWakeUpExhaustsAttempts(t *testing.T) {
	opener := &fakeOpener{t: t, failures: 100}
	timer := &recordingTimer{}
	r := &Retrier{
		Open:        opener.open,
		MaxAttempts: 4,
		Backoff:     Linear(time.Second),
		Timer:       timer,
	}

	db, attempts, err := r.WakeUp(context.Background(), NewConnectionConfig("postgres://db.example.com/app", SeedProfile))
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	if db != nil {
		t.Fatalf("expected nil db on failure")
	}
	if attempts != 4 || opener.calls != 4 {
		t.Fatalf("expected 4 attempts, got attempts=%d opens=%d", attempts, opener.calls)
	}

	var dbErr *Error
	if !errors.As(err, &dbErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if dbErr.Kind != KindWakeUp || dbErr.Attempts != 4 {
		t.Fatalf("unexpected error: %+v", dbErr)
	}
	last := opener.causes[len(opener.causes)-1]
	if !errors.Is(err, last) {
		t.Fatalf("expected last cause to be wrapped, got %v", err)
	}
	if errors.Is(err, opener.causes[0]) {
		t.Fatalf("expected only the last cause to be wrapped")
	}

	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second}
	if len(timer.delays) != len(want) {
		t.Fatalf("expected no wait after final attempt, got %v", timer.delays)
	}
	for i := range want {
		if timer.delays[i] != want[i] {
			t.Fatalf("wait %d: expected %s, got %s", i+1, want[i], timer.delays[i])
		}
	}

	opener.assertAllClosed()
}

func TestWakeUpOpenErrorIsRetried(t *testing.T) {
	cause := NewError(KindConnection, "parse connection string", errors.New("bad url"))
	calls := 0
	r := &Retrier{
		Open: func(context.Context, ConnectionConfig) (*sql.DB, error) {
			calls++
			return nil, cause
		},
		MaxAttempts: 2,
		Backoff:     backoff.NewConstantBackOff(10 * time.Second),
		Timer:       &recordingTimer{},
	}

	_, attempts, err := r.WakeUp(context.Background(), ConnectionConfig{})
	if attempts != 2 || calls != 2 {
		t.Fatalf("expected 2 attempts, got %d (%d calls)", attempts, calls)
	}
	if KindOf(err) != KindWakeUp {
		t.Fatalf("expected wake-up error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected open error to be wrapped")
	}
}

func TestWakeUpStopsWhenContextCancelled(t *testing.T) {
	opener := &fakeOpener{t: t, failures: 100}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Retrier{
		Open:        opener.open,
		MaxAttempts: 5,
		Backoff:     backoff.NewConstantBackOff(time.Hour),
		Timer:       &recordingTimer{onStart: cancel},
	}

	_, attempts, err := r.WakeUp(ctx, ConnectionConfig{})
	if attempts != 1 {
		t.Fatalf("expected to stop after 1 attempt, got %d", attempts)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled in chain, got %v", err)
	}
	opener.assertAllClosed()
}

func TestLinearBackOff(t *testing.T) {
	linear := Linear(5 * time.Second)
	for _, want := range []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second} {
		if got := linear.NextBackOff(); got != want {
			t.Fatalf("NextBackOff = %s, want %s", got, want)
		}
	}
	linear.Reset()
	if got := linear.NextBackOff(); got != 5*time.Second {
		t.Fatalf("expected Reset to restart the schedule, got %s", got)
	}
	if got := Linear(-time.Second).NextBackOff(); got != 0 {
		t.Fatalf("expected negative base to clamp to 0, got %s", got)
	}
}

func TestWakeUpDoesNotRetryConfigErrors(t *testing.T) {
	cause := NewError(KindConfig, "resolve connection string", ErrNoConnectionString)
	calls := 0
	timer := &recordingTimer{}
	r := &Retrier{
		Open: func(context.Context, ConnectionConfig) (*sql.DB, error) {
			calls++
			return nil, cause
		},
		MaxAttempts: 5,
		Backoff:     backoff.NewConstantBackOff(time.Second),
		Timer:       timer,
	}

	_, attempts, err := r.WakeUp(context.Background(), ConnectionConfig{})
	if attempts != 1 || calls != 1 {
		t.Fatalf("expected a single attempt, got %d (%d calls)", attempts, calls)
	}
	if KindOf(err) != KindConfig || !errors.Is(err, ErrNoConnectionString) {
		t.Fatalf("expected the config error back, got %v", err)
	}
	if len(timer.delays) != 0 {
		t.Fatalf("expected no wait, got %v", timer.delays)
	}
}

func TestMaxAttemptsFloor(t *testing.T) {
	opener := &fakeOpener{t: t}
	r := &Retrier{Open: opener.open, MaxAttempts: 0}

	db, attempts, err := r.WakeUp(context.Background(), ConnectionConfig{})
	if err != nil {
		t.Fatalf("WakeUp error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
	_ = db.Close()
	opener.assertAllClosed()
}
