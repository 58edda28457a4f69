package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saveabite/reservations/internal/idempotency"
	"github.com/saveabite/reservations/internal/observability"
	"github.com/saveabite/reservations/internal/rateLimit"
)

func SetupRouter(h *Handlers, logger observability.Logger, rl *rateLimit.RateLimiter, idemp *idempotency.Idempotency) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(TracingMiddleware)
	r.Use(IdentityMiddleware)
	r.Use(RateLimitMiddleware(rl))
	r.Use(IdempotencyMiddleware(idemp))

	r.Get("/v1/restaurants", h.ListRestaurants)
	r.Get("/v1/restaurants/{id}/packages", h.ListPackages)
	r.Post("/v1/bookings", h.CreateBooking)
	r.Get("/v1/bookings", h.ListBookings)
	r.Delete("/v1/bookings/{id}", h.CancelBooking)
	r.Get("/v1/healthz", h.Healthz)
	r.Get("/v1/readyz", h.Readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
