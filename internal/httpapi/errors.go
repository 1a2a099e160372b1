package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"

	"dashseed/internal/app/wakeup"
	"dashseed/internal/database"
)

var (
	hibernationSuggestions = []string{
		"Database might be hibernating (Neon free tier)",
		"Try again in a few moments",
		"Check your connection string",
		"Verify database is accessible",
	}
	configSuggestions = []string{
		"Set DATABASE_URL, POSTGRES_URL or POSTGRES_URL_NON_POOLING",
		"Check your connection string",
	}
	seedSuggestions = []string{
		"Check the Postgres error code in details.code",
		"Verify the database user can create extensions and tables",
		"Try again in a few moments",
	}
)

// errorName gives the short classification shown to operators.
func errorName(err error) string {
	var callErr *wakeup.SeedCallError
	switch {
	case database.KindOf(err) != database.KindUnknown:
		return database.KindOf(err).String()
	case errors.As(err, &callErr):
		return "SeedCallError"
	case errors.Is(err, context.DeadlineExceeded):
		return "TimeoutError"
	case errors.Is(err, context.Canceled):
		return "CanceledError"
	default:
		return "Error"
	}
}

// errorCode returns the SQLSTATE, or the upstream HTTP status for a failed seed call.
func errorCode(err error) string {
	var callErr *wakeup.SeedCallError
	if errors.As(err, &callErr) {
		return strconv.Itoa(callErr.StatusCode)
	}
	return database.CodeOf(err)
}

func errorMessage(err error) string {
	var dbErr *database.Error
	if errors.As(err, &dbErr) {
		return dbErr.Message()
	}
	return err.Error()
}

func suggestionsFor(err error) []string {
	switch database.KindOf(err) {
	case database.KindConfig:
		return configSuggestions
	case database.KindConnection, database.KindWakeUp:
		return hibernationSuggestions
	case database.KindSeed:
		return seedSuggestions
	case database.KindClose, database.KindUnknown:
		return hibernationSuggestions
	default:
		return hibernationSuggestions
	}
}

func attemptsOf(err error) int {
	var dbErr *database.Error
	if errors.As(err, &dbErr) {
		return dbErr.Attempts
	}
	return 0
}

func logFailure(ctx context.Context, err error, msg string) {
	zerolog.Ctx(ctx).Error().
		Err(err).
		Str("kind", errorName(err)).
		Str("code", errorCode(err)).
		Msg(msg)
}
