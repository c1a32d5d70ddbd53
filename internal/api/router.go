package api

import (
	"net/http"
	"time"

	"delivery-notify-service/internal/api/handlers"
	"delivery-notify-service/internal/services"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the HTTP surface.
type Options struct {
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter wires HTTP handlers with the dispatcher and returns an http.Handler.
// This is the API composition root; handlers stay unaware of concrete adapters.
func NewRouter(svc *services.Dispatcher, opt Options) http.Handler {
	if opt.RequestTimeout <= 0 {
		opt.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		requestID,
		accessLog,
		chimw.Recoverer,
		chimw.Timeout(opt.RequestTimeout),
		cors.Handler(cors.Options{
			AllowedOrigins: opt.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}),
	)

	routes := &handlers.RouteHandler{Svc: svc}
	batches := &handlers.BatchHandler{Svc: svc}
	dispatchers := &handlers.DispatcherHandler{Svc: svc}
	messages := &handlers.MessageHandler{Svc: svc}

	r.Get("/health", handlers.Health)

	r.Route("/v1", func(v1 chi.Router) {
		v1.Post("/routes", routes.Submit)
		v1.Get("/batches/{batchID}", batches.Get)
		v1.Post("/batches/reload", batches.Reload)
		v1.Get("/dispatchers/{phone}/deliveries", dispatchers.Deliveries)
		v1.Post("/messages/inbound", messages.Inbound)
		v1.Post("/webhooks/greenapi", messages.GreenAPIWebhook)
	})

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	return r
}
