package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/arsw/blueprints/internal/api/handler"
	"github.com/arsw/blueprints/internal/api/middleware"
	"github.com/arsw/blueprints/internal/metrics"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	Service        handler.BlueprintService
	Storage        handler.Pinger
	StoreDriver    string
	Version        string
	OpenAPI        *handler.OpenAPIHandler
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	if deps.Metrics != nil {
		r.Use(middleware.Metrics(deps.Metrics))
	}

	healthHandler := handler.NewHealthHandler(deps.Storage, deps.StoreDriver, deps.Version)
	r.Get("/health", healthHandler.ServeHTTP)

	if deps.OpenAPI != nil {
		r.Get("/openapi.json", deps.OpenAPI.ServeHTTP)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	bpHandler := handler.NewBlueprintHandler(deps.Service)
	r.Route("/api/v1/blueprints", func(r chi.Router) {
		r.Get("/", bpHandler.List)
		r.Post("/", bpHandler.Create)
		r.Get("/{author}", bpHandler.ListByAuthor)
		r.Get("/{author}/{bpname}", bpHandler.Get)
		r.Put("/{author}/{bpname}/points", bpHandler.AppendPoint)
	})

	return r
}
