package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Store runs the read-only dashboard queries against Postgres.
type Store struct {
	db *sql.DB
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// InvoiceRow is one line of the invoice/customer join.
type InvoiceRow struct {
	Amount int    `json:"amount"`
	Name   string `json:"name"`
}

// ServerInfo describes the connected Postgres server.
type ServerInfo struct {
	Now     time.Time
	Version string
}

// InvoicesByAmount lists invoices of exactly amount together with the customer name.
func (s *Store) InvoicesByAmount(ctx context.Context, amount int) ([]InvoiceRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT invoices.amount, customers.name
		FROM invoices
		JOIN customers ON invoices.customer_id = customers.id
		WHERE invoices.amount = $1
	`, amount)
	if err != nil {
		return nil, fmt.Errorf("select invoices: %w", err)
	}
	defer rows.Close()

	result := []InvoiceRow{}
	for rows.Next() {
		var row InvoiceRow
		if err := rows.Scan(&row.Amount, &row.Name); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}

	return result, nil
}

// ServerInfo reports the server clock and version string.
func (s *Store) ServerInfo(ctx context.Context) (ServerInfo, error) {
	var info ServerInfo
	if err := s.db.QueryRowContext(ctx, `
		SELECT NOW() AS current_time, version() AS postgres_version
	`).Scan(&info.Now, &info.Version); err != nil {
		return ServerInfo{}, fmt.Errorf("select server info: %w", err)
	}
	return info, nil
}

// PublicTables lists the tables in the public schema, sorted by name.
func (s *Store) PublicTables(ctx context.Context) ([]string, error) {
	var tables []string
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(array_agg(table_name::text ORDER BY table_name), '{}')
		FROM information_schema.tables
		WHERE table_schema = 'public'
	`).Scan(pq.Array(&tables)); err != nil {
		return nil, fmt.Errorf("list public tables: %w", err)
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}
