package invoices

import (
	"context"

	"dashseed/internal/database"
	"dashseed/internal/store"
)

// Service answers invoice lookups on a short-lived connection.
type Service interface {
	ByAmount(ctx context.Context, amount int) ([]store.InvoiceRow, error)
}

type service struct {
	urls []string
	open database.Opener
}

// New constructs an invoices Service. A nil opener uses database.Open.
func New(urls []string, open database.Opener) Service {
	if open == nil {
		open = database.Open
	}
	return &service{urls: urls, open: open}
}

func (s *service) ByAmount(ctx context.Context, amount int) ([]store.InvoiceRow, error) {
	url, err := database.ResolveURL(s.urls...)
	if err != nil {
		return nil, err
	}

	db, err := s.open(ctx, database.NewConnectionConfig(url, database.DiagnosticProfile))
	if err != nil {
		return nil, err
	}
	defer database.Close(ctx, db, "invoices")

	return store.New(db).InvoicesByAmount(ctx, amount)
}
