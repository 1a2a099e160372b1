package main

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"dashseed/internal/app"
	"dashseed/internal/config"
	"dashseed/internal/http/middleware"
	"dashseed/internal/httpapi"
)

func newHTTPHandler(cfg *config.Config, services app.Services, logger zerolog.Logger) http.Handler {
	api := httpapi.New(
		httpapi.Config{
			Port:      strconv.Itoa(cfg.Server.Port),
			SeedGuard: middleware.RequireSeedToken(services.Tokens),
		},
		services.Seeding,
		services.Diagnostics,
		services.Invoices,
		services.Wakeup,
	)

	var handler http.Handler = api.Routes()
	handler = middleware.Recovery()(handler)
	handler = middleware.CORS(cfg.CORS.AllowedOrigin)(handler)
	handler = middleware.RequestLogging(logger)(handler)
	return handler
}
