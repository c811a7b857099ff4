package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"crm-service/internal/api/handlers"
)

// NewRouter wires the CRUD handlers and the engine-backed list endpoints.
// Every list endpoint accepts filter criteria as query parameters plus an
// "ordering" parameter, e.g. GET /orders?min_products=2&ordering=-total_amount.
func NewRouter(
	customers *handlers.CustomerHandler,
	products *handlers.ProductHandler,
	orders *handlers.OrderHandler,
	log *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", customers.List)
		r.Post("/", customers.Create)
		r.Post("/bulk", customers.BulkCreate)
		r.Get("/{id}", customers.GetByID)
		r.Put("/{id}", customers.Update)
		r.Delete("/{id}", customers.Delete)
		r.Get("/{id}/orders", orders.GetByCustomer)
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Get("/{id}", products.GetByID)
		r.Put("/{id}", products.Update)
		r.Patch("/{id}/stock", products.UpdateStock)
		r.Delete("/{id}", products.Delete)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", orders.List)
		r.Post("/", orders.Create)
		r.Get("/{id}", orders.GetByID)
		r.Put("/{id}/products", orders.SetProducts)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return r
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
