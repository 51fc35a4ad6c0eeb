package routes

import (
	"net/http"

	"github.com/velora/vehicle-discovery/internal/api/handlers"
	"github.com/velora/vehicle-discovery/internal/api/middleware"
	"github.com/velora/vehicle-discovery/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler *handlers.SearchHandler
	sseHandler    *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(searchHandler *handlers.SearchHandler, metrics *observability.Metrics) *Router {
	return &Router{
		mux:           http.NewServeMux(),
		searchHandler: searchHandler,
		metrics:       metrics,
	}
}

// WithSSEHandler enables the live search event stream routes.
func (r *Router) WithSSEHandler(sseHandler *handlers.SSEHandler) *Router {
	r.sseHandler = sseHandler
	return r
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Search endpoints
	r.mux.HandleFunc("POST /api/search", r.searchHandler.Search)

	// Session endpoints
	r.mux.HandleFunc("GET /api/sessions/{id}/history", r.searchHandler.GetHistory)
	r.mux.HandleFunc("DELETE /api/sessions/{id}/history", r.searchHandler.ClearHistory)

	// Streaming endpoints, available only when an event bus is configured
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/searches", r.sseHandler.StreamSearchEvents)
	}

	// Apply middleware chain
	var handler http.Handler = r.mux
	if r.metrics != nil {
		handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.CompressionMiddleware(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
