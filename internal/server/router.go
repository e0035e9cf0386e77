package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/intel/webapps-scientific-calculator/internal/calculator"
	"github.com/intel/webapps-scientific-calculator/internal/handlers"
	"github.com/intel/webapps-scientific-calculator/internal/observability"
	"github.com/intel/webapps-scientific-calculator/internal/session"
)

// NewRouter wires the middleware stack, the calculator endpoints, /health
// and /metrics (served from reg).
func NewRouter(store *session.Store, reg *prometheus.Registry) http.Handler {

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(reg))

	calculator.RegisterRoutes(r, calculator.NewHandler(store))

	return r
}
