package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dashseed/internal/app/diagnostics"
	"dashseed/internal/app/seeding"
	"dashseed/internal/app/wakeup"
	"dashseed/internal/store"
)

const (
	// LongRequestBudget bounds /seed and /wake-db, which may wait for a cold database.
	LongRequestBudget = 300 * time.Second
	// ShortRequestBudget bounds /test-db and /query.
	ShortRequestBudget = 60 * time.Second

	// DemoInvoiceAmount is the amount /query looks up when none is given.
	DemoInvoiceAmount = 666
)

// SeedService runs a full wake-and-seed cycle.
type SeedService interface {
	Run(ctx context.Context) (seeding.Result, error)
}

// DiagnosticsService reports on database connectivity.
type DiagnosticsService interface {
	Check(ctx context.Context) (diagnostics.Report, error)
}

// InvoiceService looks up invoices.
type InvoiceService interface {
	ByAmount(ctx context.Context, amount int) ([]store.InvoiceRow, error)
}

// WakeService wakes the database and triggers seeding.
type WakeService interface {
	WakeAndSeed(ctx context.Context) (wakeup.Result, error)
}

// Config carries the non-service settings of the Server.
type Config struct {
	// Port is echoed by /ping.
	Port string
	// SeedGuard wraps the /seed handler; nil leaves it open.
	SeedGuard func(http.Handler) http.Handler
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	cfg         Config
	seeder      SeedService
	diagnostics DiagnosticsService
	invoices    InvoiceService
	wake        WakeService
	now         func() time.Time
}

// New configures a Server with the given services.
func New(cfg Config, seeder SeedService, diagnostics DiagnosticsService, invoices InvoiceService, wake WakeService) *Server {
	return &Server{
		cfg:         cfg,
		seeder:      seeder,
		diagnostics: diagnostics,
		invoices:    invoices,
		wake:        wake,
		now:         time.Now,
	}
}

// Routes returns an http.Handler with all routes registered.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	var seedHandler http.Handler = http.HandlerFunc(s.handleSeed)
	if s.cfg.SeedGuard != nil {
		seedHandler = s.cfg.SeedGuard(seedHandler)
	}

	mux.HandleFunc("GET /ping", s.handlePing)
	mux.HandleFunc("GET /query", s.handleQuery)
	mux.Handle("GET /seed", seedHandler)
	mux.HandleFunc("GET /test-db", s.handleTestDB)
	mux.HandleFunc("GET /wake-db", s.handleWakeDB)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

type pingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Port      string `json:"port"`
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pingResponse{
		Message:   "API is up",
		Timestamp: s.timestamp(),
		Port:      s.cfg.Port,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	amount := DemoInvoiceAmount
	if raw := r.URL.Query().Get("amount"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount must be an integer"})
			return
		}
		amount = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), ShortRequestBudget)
	defer cancel()

	rows, err := s.invoices.ByAmount(ctx, amount)
	if err != nil {
		logFailure(ctx, err, "invoice query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) timestamp() string {
	return s.now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
