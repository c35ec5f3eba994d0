// Package api exposes the pricing lookups over HTTP.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP routes. metrics, when non-nil, is mounted at metricsPath.
func NewRouter(svc PricingService, metricsPath string, metrics http.Handler) http.Handler {
	h := &handlers{pricing: svc}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/pricing/sql-backup/{region}", h.sqlBackupPricing)
		r.Get("/pricing/ltr-backup/{region}", h.ltrBackupPricing)
		r.Get("/pricing/best-ltr/{region}", h.bestLTRPricing)
		r.Get("/pricing/azure-backup", h.backupPricing)
		r.Get("/regions", h.availableRegions)
		r.Get("/estimate/ltr/{region}", h.ltrEstimate)
	})
	if metrics != nil && metricsPath != "" {
		r.Method(http.MethodGet, metricsPath, metrics)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
	return r
}
