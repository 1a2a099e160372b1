package seeding

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"dashseed/internal/database"
	"dashseed/internal/seed"
)

func mockOpener(t *testing.T, setup func(sqlmock.Sqlmock)) (database.Opener, *[]sqlmock.Sqlmock) {
	t.Helper()
	var mocks []sqlmock.Sqlmock
	return func(context.Context, database.ConnectionConfig) (*sql.DB, error) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("sqlmock.New: %v", err)
		}
		setup(mock)
		mocks = append(mocks, mock)
		return db, nil
	}, &mocks
}

func expectPing(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 AS test`)).
		WillReturnRows(sqlmock.NewRows([]string{"test"}).AddRow(1))
}

func TestRunSeedsPlaceholderData(t *testing.T) {
	data := seed.Placeholder()
	open, mocks := mockOpener(t, func(mock sqlmock.Sqlmock) {
		mock.MatchExpectationsInOrder(false)
		expectPing(mock)
		mock.ExpectBegin()
		mock.ExpectExec(`CREATE EXTENSION IF NOT EXISTS`).WillReturnResult(sqlmock.NewResult(0, 0))
		for _, table := range []string{"users", "customers", "invoices", "revenue"} {
			mock.ExpectExec(`CREATE TABLE IF NOT EXISTS ` + table + ` \(`).WillReturnResult(sqlmock.NewResult(0, 0))
		}
		expectInserts(mock, "users", len(data.Users))
		expectInserts(mock, "customers", len(data.Customers))
		expectInserts(mock, "invoices", len(data.Invoices))
		expectInserts(mock, "revenue", len(data.Revenue))
		mock.ExpectCommit()
		mock.ExpectClose()
	})

	svc := New(Config{
		URLs:        []string{"", "postgres://localhost/dashboard"},
		MaxAttempts: 3,
		BaseDelay:   5 * time.Second,
		HashCost:    bcrypt.MinCost,
	}, open)

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.Attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", result.Attempts)
	}
	if result.Users != 1 || result.Customers != 6 || result.Invoices != 13 || result.Revenue != 12 {
		t.Fatalf("unexpected summary: %+v", result.Summary)
	}
	if result.Inserted.Invoices != 13 {
		t.Fatalf("expected 13 invoices inserted, got %d", result.Inserted.Invoices)
	}

	for _, mock := range *mocks {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}
}

func expectInserts(mock sqlmock.Sqlmock, table string, n int) {
	for i := 0; i < n; i++ {
		mock.ExpectExec(`INSERT INTO ` + table + ` `).WillReturnResult(sqlmock.NewResult(0, 1))
	}
}

func TestRunClosesConnectionOnSeedFailure(t *testing.T) {
	cause := errors.New("permission denied to create extension")
	open, mocks := mockOpener(t, func(mock sqlmock.Sqlmock) {
		expectPing(mock)
		mock.ExpectBegin()
		mock.ExpectExec(`CREATE EXTENSION IF NOT EXISTS`).WillReturnError(cause)
		mock.ExpectRollback()
		mock.ExpectClose()
	})

	_, err := New(Config{URLs: []string{"postgres://localhost/dashboard"}, MaxAttempts: 3}, open).Run(context.Background())
	if database.KindOf(err) != database.KindSeed {
		t.Fatalf("expected seed error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain, got %v", err)
	}
	if len(*mocks) != 1 {
		t.Fatalf("expected a single connection, got %d", len(*mocks))
	}
	if err := (*mocks)[0].ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRunWithoutConnectionString(t *testing.T) {
	called := false
	open := func(context.Context, database.ConnectionConfig) (*sql.DB, error) {
		called = true
		return nil, errors.New("unexpected open")
	}

	_, err := New(Config{URLs: []string{"", " "}}, open).Run(context.Background())
	if database.KindOf(err) != database.KindConfig {
		t.Fatalf("expected config error, got %v", err)
	}
	if called {
		t.Fatalf("expected no connection attempt")
	}
}

// instantTimer fires at once and records each requested delay.
type instantTimer struct {
	delays []time.Duration
	c      chan time.Time
}

func (t *instantTimer) Start(d time.Duration) {
	t.delays = append(t.delays, d)
	if t.c == nil {
		t.c = make(chan time.Time, 1)
	}
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func TestRunGivesUpAfterMaxAttempts(t *testing.T) {
	open, mocks := mockOpener(t, func(mock sqlmock.Sqlmock) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 AS test`)).WillReturnError(errors.New("endpoint is disabled"))
		mock.ExpectClose()
	})

	svc := New(Config{URLs: []string{"postgres://db.example.com/app"}, MaxAttempts: 2, BaseDelay: time.Second}, open)
	timer := &instantTimer{}
	svc.(*service).timer = timer

	_, err := svc.Run(context.Background())
	var dbErr *database.Error
	if !errors.As(err, &dbErr) || dbErr.Kind != database.KindWakeUp || dbErr.Attempts != 2 {
		t.Fatalf("expected wake-up error after 2 attempts, got %v", err)
	}
	if delays := timer.delays; len(delays) != 1 || delays[0] != time.Second {
		t.Fatalf("unexpected delays: %v", delays)
	}
	for _, mock := range *mocks {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	}
}
