package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"dashseed/internal/seed"
)

type seedDetails struct {
	Users          int `json:"users"`
	Customers      int `json:"customers"`
	Invoices       int `json:"invoices"`
	RevenueRecords int `json:"revenue_records"`
}

type seedResponse struct {
	Message   string      `json:"message"`
	Timestamp string      `json:"timestamp"`
	Details   seedDetails `json:"details"`
	Inserted  seed.Counts `json:"inserted"`
}

type failureDetails struct {
	Message   string `json:"message"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Timestamp string `json:"timestamp"`
}

type seedFailureResponse struct {
	Error       string         `json:"error"`
	Details     failureDetails `json:"details"`
	Suggestions []string       `json:"suggestions"`
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), LongRequestBudget)
	defer cancel()

	result, err := s.seeder.Run(ctx)
	if err != nil {
		logFailure(ctx, err, "seeding failed")
		writeJSON(w, http.StatusInternalServerError, seedFailureResponse{
			Error: "Failed to seed database",
			Details: failureDetails{
				Message:   errorMessage(err),
				Name:      errorName(err),
				Code:      errorCode(err),
				Timestamp: s.timestamp(),
			},
			Suggestions: suggestionsFor(err),
		})
		return
	}

	writeJSON(w, http.StatusOK, seedResponse{
		Message:   "Database seeded successfully",
		Timestamp: s.timestamp(),
		Details: seedDetails{
			Users:          result.Users,
			Customers:      result.Customers,
			Invoices:       result.Invoices,
			RevenueRecords: result.Revenue,
		},
		Inserted: result.Inserted,
	})
}

type connectionInfo struct {
	Source         string `json:"source,omitempty"`
	UsingNonPooled bool   `json:"using_non_pooled"`
	TotalTables    int    `json:"total_tables"`
}

type testDBResponse struct {
	Success         bool           `json:"success"`
	Message         string         `json:"message"`
	DatabaseTime    time.Time      `json:"database_time"`
	DatabaseVersion string         `json:"database_version"`
	ExistingTables  []string       `json:"existing_tables"`
	ConnectionInfo  connectionInfo `json:"connection_info"`
}

type testDBFailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"details"`
}

func (s *Server) handleTestDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), ShortRequestBudget)
	defer cancel()

	report, err := s.diagnostics.Check(ctx)
	if err != nil {
		logFailure(ctx, err, "database check failed")
		resp := testDBFailureResponse{Error: errorMessage(err)}
		resp.Details.Name = errorName(err)
		resp.Details.Code = errorCode(err)
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, testDBResponse{
		Success:         true,
		Message:         "Database connection established",
		DatabaseTime:    report.Time,
		DatabaseVersion: report.Version,
		ExistingTables:  report.Tables,
		ConnectionInfo: connectionInfo{
			Source:         report.Source,
			UsingNonPooled: report.UsingNonPooled,
			TotalTables:    len(report.Tables),
		},
	})
}

type wakeResponse struct {
	Message    string          `json:"message"`
	SeedResult json.RawMessage `json:"seedResult"`
}

type wakeFailureResponse struct {
	Error   string `json:"error"`
	Details struct {
		Name     string `json:"name"`
		Code     string `json:"code"`
		Attempts int    `json:"attempts"`
	} `json:"details"`
	SeedResult json.RawMessage `json:"seedResult,omitempty"`
}

func (s *Server) handleWakeDB(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), LongRequestBudget)
	defer cancel()

	result, err := s.wake.WakeAndSeed(ctx)
	if err != nil {
		logFailure(ctx, err, "wake-up failed")
		resp := wakeFailureResponse{Error: errorMessage(err), SeedResult: result.SeedResult}
		resp.Details.Name = errorName(err)
		resp.Details.Code = errorCode(err)
		resp.Details.Attempts = max(result.Attempts, attemptsOf(err))
		writeJSON(w, http.StatusInternalServerError, resp)
		return
	}

	writeJSON(w, http.StatusOK, wakeResponse{
		Message:    "Database awakened and seeded successfully",
		SeedResult: result.SeedResult,
	})
}
