// Package api assembles the HTTP surface: routes, middleware chain, and
// operational endpoints.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finhelm/statement-api/internal/api/handlers"
	"github.com/finhelm/statement-api/internal/api/middleware"
	"github.com/finhelm/statement-api/internal/domain/reports"
	"github.com/finhelm/statement-api/internal/domain/statements"
)

// Config wires the router.
type Config struct {
	Statements *statements.Service
	Reports    *reports.Generator
	Logger     *slog.Logger

	MaxUploadBytes     int64
	RateLimitPerSecond int
	RateLimitBurst     int
	MetricsEnabled     bool
}

// NewRouter builds the full handler chain. Requests flow
// Recovery → RequestID → Logger → CORS → routes; the upload route carries an
// extra rate limit.
func NewRouter(cfg Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sh := handlers.NewStatementsHandler(cfg.Statements, cfg.MaxUploadBytes, logger)
	rh := handlers.NewReportsHandler(cfg.Reports, logger)
	ch := handlers.NewCategoriesHandler()

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	rateLimit := middleware.RateLimit(logger, cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	api.Handle("/upload", rateLimit(http.HandlerFunc(sh.Upload))).Methods(http.MethodPost)

	api.HandleFunc("/years", sh.ListYears).Methods(http.MethodGet)
	api.HandleFunc("/months/{year}", sh.ListMonths).Methods(http.MethodGet)

	api.HandleFunc("/transactions/{year}/{month}", sh.GetTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{year}/{month}", sh.AddTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{year}/{month}/process", sh.MarkProcessed).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{year}/{month}/{id}", sh.UpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{year}/{month}/{id}", sh.DeleteTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/workflow/status/{year}", sh.WorkflowStatus).Methods(http.MethodGet)

	api.HandleFunc("/categories", ch.List).Methods(http.MethodGet)
	api.HandleFunc("/categories/suggest", ch.Suggest).Methods(http.MethodGet)

	api.HandleFunc("/summary/{year}", rh.Summary).Methods(http.MethodGet)
	api.HandleFunc("/export-pdf/{year}", rh.ExportPDF).Methods(http.MethodGet)
	api.HandleFunc("/export-csv/{year}", rh.ExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/export-excel/{year}", rh.ExportExcel).Methods(http.MethodGet)

	api.HandleFunc("/search", sh.Search).Methods(http.MethodGet)
	api.HandleFunc("/statements/{year}/{month}", sh.ListArchived).Methods(http.MethodGet)

	r.HandleFunc("/health", health).Methods(http.MethodGet)
	if cfg.MetricsEnabled {
		// Runs after route matching so the duration label carries the
		// route template rather than raw paths.
		r.Use(middleware.Metrics)
		r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	return middleware.Recovery(logger)(
		middleware.RequestID(
			middleware.Logger(logger)(
				middleware.CORS()(r),
			),
		),
	)
}

func health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
