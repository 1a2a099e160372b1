package database

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// UnknownCode is reported when an error carries no Postgres SQLSTATE.
const UnknownCode = "UNKNOWN_CODE"

var (
	// ErrNoConnectionString signals that none of the configured URL sources is set.
	ErrNoConnectionString = errors.New("no database connection string configured")
	// ErrLivenessCheck is wrapped when the liveness query returns something unexpected.
	ErrLivenessCheck = errors.New("liveness query returned an unexpected value")
)

// Kind classifies failures so callers can switch on them instead of inspecting messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindConfig is fatal and never retried.
	KindConfig
	// KindConnection covers a single failed open or liveness check.
	KindConnection
	// KindWakeUp is returned once the retrier has exhausted its attempts.
	KindWakeUp
	// KindSeed aborts the seeding transaction.
	KindSeed
	// KindClose is logged, never propagated.
	KindClose
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "ConfigError"
	case KindConnection:
		return "ConnectionError"
	case KindWakeUp:
		return "WakeUpError"
	case KindSeed:
		return "SeedError"
	case KindClose:
		return "CloseError"
	default:
		return "UnknownError"
	}
}

// Error is the typed failure returned by the connection, wake-up and seeding layers.
type Error struct {
	Kind     Kind
	Op       string
	Code     string
	Attempts int
	Err      error
}

// NewError wraps err with a kind and operation name, lifting the SQLSTATE when present.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Code: sqlState(err), Err: err}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op
	}
	if e.Attempts > 0 {
		msg = fmt.Sprintf("%s after %d attempt(s)", msg, e.Attempts)
	}
	if e.Err == nil {
		return msg
	}
	return msg + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the underlying cause message without the operation prefix.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Err.Error()
}

// KindOf reports the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var dbErr *Error
	if errors.As(err, &dbErr) {
		return dbErr.Kind
	}
	return KindUnknown
}

// CodeOf returns the Postgres SQLSTATE carried by err, or UnknownCode.
func CodeOf(err error) string {
	var dbErr *Error
	if errors.As(err, &dbErr) && dbErr.Code != "" {
		return dbErr.Code
	}
	if code := sqlState(err); code != "" {
		return code
	}
	return UnknownCode
}

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	return sqlState(err) == "23505"
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
