package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Currency-Exchange-Backend/internal/api/middleware"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/config"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/metrics"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/service"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/site"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	exchangeService *service.ExchangeService,
	systemService *service.SystemService,
	m *metrics.Metrics,
	log *zap.Logger,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger(log))
	r.Use(custommiddleware.Metrics(m))
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		exchangeHandler := handlers.NewExchangeHandler(exchangeService, log.Named("exchange"))
		r.Get("/rates", exchangeHandler.Rates)
		r.Get("/convert", exchangeHandler.Convert)
		r.Get("/history", exchangeHandler.History)

		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})
	})

	r.Method(http.MethodGet, "/metrics", m.Handler())

	// Static frontend
	r.Method(http.MethodGet, "/*", site.Handler())

	return r
}
