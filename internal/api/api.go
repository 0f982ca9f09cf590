package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fundlog/pkg/fundlog"
)

// Service is the portfolio backend the HTTP API exposes. *fundlog.Core
// implements it.
type Service interface {
	ListHoldings(ctx context.Context) ([]fundlog.Holding, error)
	ReplaceAllHoldings(ctx context.Context, inputs []fundlog.HoldingInput) (int, error)
	UpsertHolding(ctx context.Context, code string, quantity float64) error
	DeleteHolding(ctx context.Context, code string) (bool, error)
	Refresh(ctx context.Context) (fundlog.Snapshot, error)
	ListHistory(ctx context.Context) ([]fundlog.HistoryEntry, error)
	ListRefreshLogs(ctx context.Context, limit int) ([]fundlog.RefreshLog, error)
}

var _ Service = (*fundlog.Core)(nil)

// NewRouter builds the HTTP API router.
func NewRouter(svc Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLoggingMiddleware(logger))
	r.Use(recoveryLoggingMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	h := &handler{svc: svc}

	r.Get("/api/health", h.health)

	r.Route("/api/holdings", func(r chi.Router) {
		r.Get("/", h.getHoldings)
		r.Put("/", h.replaceHoldings)
		r.Post("/", h.upsertHolding)
		r.Delete("/{code}", h.deleteHolding)
	})

	r.Post("/api/portfolio/refresh", h.refreshPortfolio)

	r.Get("/api/history", h.getHistory)
	r.Get("/api/history/summary", h.getHistorySummary)

	r.Get("/api/refresh-logs", h.getRefreshLogs)

	return r
}

type handler struct {
	svc Service
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	setErrorMessage(w, message)
	writeJSON(w, status, map[string]string{"error": message})
}
