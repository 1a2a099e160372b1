package seed

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"dashseed/internal/database"
)

const (
	// DefaultBatchSize bounds how many inserts run concurrently for customers and invoices.
	DefaultBatchSize = 10
	// DefaultHashCost is the bcrypt work factor applied to user passwords.
	DefaultHashCost = 10
)

const (
	createUUIDExtension = `CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`

	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID DEFAULT uuid_generate_v4() PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL
		)
	`

	createCustomersTable = `
		CREATE TABLE IF NOT EXISTS customers (
			id UUID DEFAULT uuid_generate_v4() PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			image_url VARCHAR(255) NOT NULL
		)
	`

	createInvoicesTable = `
		CREATE TABLE IF NOT EXISTS invoices (
			id UUID DEFAULT uuid_generate_v4() PRIMARY KEY,
			customer_id UUID NOT NULL REFERENCES customers (id),
			amount INT NOT NULL,
			status VARCHAR(255) NOT NULL,
			date DATE NOT NULL
		)
	`

	createRevenueTable = `
		CREATE TABLE IF NOT EXISTS revenue (
			month VARCHAR(4) NOT NULL UNIQUE,
			revenue INT NOT NULL
		)
	`
)

// Counts holds per-table row numbers.
type Counts struct {
	Users     int64 `json:"users"`
	Customers int64 `json:"customers"`
	Invoices  int64 `json:"invoices"`
	Revenue   int64 `json:"revenue_records"`
}

// Summary reports what a seeding run processed. Inserted excludes rows that already existed.
type Summary struct {
	Users     int
	Customers int
	Invoices  int
	Revenue   int
	Inserted  Counts
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Seeder populates the dashboard tables inside a single transaction.
type Seeder struct {
	db        *sql.DB
	batchSize int
	hashCost  int
	qb        squirrel.StatementBuilderType
}

// Option customises a Seeder.
type Option func(*Seeder)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Seeder) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithHashCost overrides DefaultHashCost.
func WithHashCost(cost int) Option {
	return func(s *Seeder) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.hashCost = cost
		}
	}
}

// New returns a Seeder writing through db.
func New(db *sql.DB, opts ...Option) *Seeder {
	s := &Seeder{
		db:        db,
		batchSize: DefaultBatchSize,
		hashCost:  DefaultHashCost,
		qb:        squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed creates the tables if needed and inserts data, skipping rows whose key already exists.
// Any failure rolls back the whole run.
func (s *Seeder) Seed(ctx context.Context, data Dataset) (Summary, error) {
	logger := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Summary{}, database.NewError(database.KindSeed, "begin seed tx", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, createUUIDExtension); err != nil {
		return Summary{}, database.NewError(database.KindSeed, "create uuid extension", err)
	}

	var inserted Counts
	steps := []struct {
		name string
		run  func(context.Context, execer, Dataset) (int64, error)
		dst  *int64
	}{
		{name: "users", run: s.seedUsers, dst: &inserted.Users},
		{name: "customers", run: s.seedCustomers, dst: &inserted.Customers},
		{name: "invoices", run: s.seedInvoices, dst: &inserted.Invoices},
		{name: "revenue", run: s.seedRevenue, dst: &inserted.Revenue},
	}

	for _, step := range steps {
		logger.Info().Str("table", step.name).Msg("seeding table")
		n, err := step.run(ctx, tx, data)
		if err != nil {
			logger.Error().Err(err).Str("table", step.name).Msg("seeding failed, rolling back")
			return Summary{}, database.NewError(database.KindSeed, "seed "+step.name, err)
		}
		*step.dst = n
		logger.Info().Str("table", step.name).Int64("inserted", n).Msg("table seeded")
	}

	if err := tx.Commit(); err != nil {
		return Summary{}, database.NewError(database.KindSeed, "commit seed tx", err)
	}
	tx = nil

	return Summary{
		Users:     len(data.Users),
		Customers: len(data.Customers),
		Invoices:  len(data.Invoices),
		Revenue:   len(data.Revenue),
		Inserted:  inserted,
	}, nil
}

// seedUsers inserts one user at a time; hashing dominates and gains nothing from fan-out.
func (s *Seeder) seedUsers(ctx context.Context, tx execer, data Dataset) (int64, error) {
	if _, err := tx.ExecContext(ctx, createUsersTable); err != nil {
		return 0, fmt.Errorf("create users table: %w", err)
	}

	var inserted int64
	for _, user := range data.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.hashCost)
		if err != nil {
			return inserted, fmt.Errorf("hash password for %s: %w", user.Email, err)
		}

		query, args, err := s.qb.Insert("users").
			Columns("id", "name", "email", "password").
			Values(user.ID, user.Name, user.Email, string(hash)).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return inserted, fmt.Errorf("build user insert: %w", err)
		}

		n, err := execAffected(ctx, tx, query, args...)
		if err != nil {
			return inserted, fmt.Errorf("insert user %s: %w", user.Email, err)
		}
		inserted += n
	}
	return inserted, nil
}

func (s *Seeder) seedCustomers(ctx context.Context, tx execer, data Dataset) (int64, error) {
	if _, err := tx.ExecContext(ctx, createCustomersTable); err != nil {
		return 0, fmt.Errorf("create customers table: %w", err)
	}

	return insertInBatches(ctx, data.Customers, s.batchSize, func(ctx context.Context, c Customer) (int64, error) {
		query, args, err := s.qb.Insert("customers").
			Columns("id", "name", "email", "image_url").
			Values(c.ID, c.Name, c.Email, c.ImageURL).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build customer insert: %w", err)
		}
		n, err := execAffected(ctx, tx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert customer %s: %w", c.ID, err)
		}
		return n, nil
	})
}

func (s *Seeder) seedInvoices(ctx context.Context, tx execer, data Dataset) (int64, error) {
	if _, err := tx.ExecContext(ctx, createInvoicesTable); err != nil {
		return 0, fmt.Errorf("create invoices table: %w", err)
	}

	return insertInBatches(ctx, data.Invoices, s.batchSize, func(ctx context.Context, inv Invoice) (int64, error) {
		query, args, err := s.qb.Insert("invoices").
			Columns("id", "customer_id", "amount", "status", "date").
			Values(inv.ID().String(), inv.CustomerID, inv.Amount, inv.Status, inv.Date).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build invoice insert: %w", err)
		}
		n, err := execAffected(ctx, tx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert invoice for %s on %s: %w", inv.CustomerID, inv.Date, err)
		}
		return n, nil
	})
}

// seedRevenue issues every insert at once; the month list is small and fixed.
func (s *Seeder) seedRevenue(ctx context.Context, tx execer, data Dataset) (int64, error) {
	if _, err := tx.ExecContext(ctx, createRevenueTable); err != nil {
		return 0, fmt.Errorf("create revenue table: %w", err)
	}

	return insertInBatches(ctx, data.Revenue, 0, func(ctx context.Context, r Revenue) (int64, error) {
		query, args, err := s.qb.Insert("revenue").
			Columns("month", "revenue").
			Values(r.Month, r.Amount).
			Suffix("ON CONFLICT (month) DO NOTHING").
			ToSql()
		if err != nil {
			return 0, fmt.Errorf("build revenue insert: %w", err)
		}
		n, err := execAffected(ctx, tx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("insert revenue %s: %w", r.Month, err)
		}
		return n, nil
	})
}

func execAffected(ctx context.Context, tx execer, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
