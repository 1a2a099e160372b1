package diagnostics

import (
	"context"
	"strings"
	"time"

	"dashseed/internal/config"
	"dashseed/internal/database"
	"dashseed/internal/store"
)

// Report describes a reachable database.
type Report struct {
	Time           time.Time
	Version        string
	Tables         []string
	Source         string
	// UsingNonPooled reports whether POSTGRES_URL_NON_POOLING is configured at all.
	UsingNonPooled bool
}

// Service checks connectivity without retrying.
type Service interface {
	Check(ctx context.Context) (Report, error)
}

type service struct {
	sources config.DatabaseConfig
	open    database.Opener
}

// New constructs a diagnostics Service. A nil opener uses database.Open.
func New(sources config.DatabaseConfig, open database.Opener) Service {
	if open == nil {
		open = database.Open
	}
	return &service{sources: sources, open: open}
}

func (s *service) Check(ctx context.Context) (Report, error) {
	url, err := database.ResolveURL(s.sources.Candidates()...)
	if err != nil {
		return Report{}, err
	}

	db, err := s.open(ctx, database.NewConnectionConfig(url, database.DiagnosticProfile))
	if err != nil {
		return Report{}, err
	}
	defer database.Close(ctx, db, "diagnostics")

	st := store.New(db)
	info, err := st.ServerInfo(ctx)
	if err != nil {
		return Report{}, database.NewError(database.KindConnection, "query server info", err)
	}
	tables, err := st.PublicTables(ctx)
	if err != nil {
		return Report{}, database.NewError(database.KindConnection, "list tables", err)
	}

	return Report{
		Time:           info.Now,
		Version:        info.Version,
		Tables:         tables,
		Source:         s.sources.Source(url),
		UsingNonPooled: strings.TrimSpace(s.sources.NonPooledURL) != "",
	}, nil
}
