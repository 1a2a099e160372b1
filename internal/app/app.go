package app

import (
	"dashseed/internal/app/diagnostics"
	"dashseed/internal/app/invoices"
	"dashseed/internal/app/seeding"
	"dashseed/internal/app/wakeup"
	"dashseed/internal/auth"
	"dashseed/internal/config"
	"dashseed/internal/database"
)

// Services bundles every use case the binaries expose.
type Services struct {
	Seeding     seeding.Service
	Diagnostics diagnostics.Service
	Invoices    invoices.Service
	Wakeup      wakeup.Service
	Tokens      *auth.Issuer
}

// NewServices wires the services from configuration. A nil opener uses database.Open.
func NewServices(cfg *config.Config, open database.Opener) Services {
	urls := cfg.Database.Candidates()
	tokens := auth.NewIssuer(cfg.Token.Secret, cfg.Token.TTL)

	return Services{
		Seeding: seeding.New(seeding.Config{
			URLs:        urls,
			MaxAttempts: cfg.Seed.MaxAttempts,
			BaseDelay:   cfg.Seed.RetryBaseDelay,
			BatchSize:   cfg.Seed.BatchSize,
		}, open),
		Diagnostics: diagnostics.New(cfg.Database, open),
		Invoices:    invoices.New(urls, open),
		Wakeup: wakeup.New(wakeup.Config{
			URLs:        urls,
			MaxAttempts: cfg.Wake.MaxAttempts,
			Delay:       cfg.Wake.RetryDelay,
		}, open, wakeup.NewClient(cfg.Server.SeedBaseURL(), tokens)),
		Tokens: tokens,
	}
}
