package httpapi

import (
	"net/http"
	"time"

	"recruit/tracker/app/internal/dedupe"
	"recruit/tracker/app/internal/domain"
	"recruit/tracker/app/internal/idempotency"
	"recruit/tracker/app/internal/metrics"
	"recruit/tracker/app/internal/ratelimit"
	"recruit/tracker/app/internal/transport/httpapi/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps is everything the router needs. Redis and Limiter are optional.
type Deps struct {
	API            *handlers.API
	Limiter        ratelimit.Limiter
	Redis          *redis.Client
	IdempotencyTTL time.Duration
	DedupeTTL      time.Duration
	Log            *zap.Logger
}

// Mount registers every endpoint of the API and /metrics.
func Mount(r chi.Router, d Deps) {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.API.Log == nil {
		d.API.Log = d.Log
	}
	metrics.Register(r)

	r.Route("/api", func(api chi.Router) {
		api.Use(requestID, requestLog(d.Log), metrics.Duration)
		if d.Limiter != nil {
			api.Use(ratelimit.Middleware(d.Limiter, ratelimit.ByHeader(handlers.UserHeader)))
		}

		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		handlers.RegisterUsers(api, d.API)

		api.Group(func(authed chi.Router) {
			authed.Use(d.API.Identify, idempotency.Middleware(d.Redis, d.IdempotencyTTL, handlers.UserHeader))
			authed.Get("/me", handlers.Me)

			authed.Route("/candidate", func(c chi.Router) {
				c.Use(handlers.RequireRole(domain.RoleCandidate))
				handlers.RegisterCandidate(c, d.API, dedupe.Middleware(d.Redis, d.DedupeTTL, handlers.UserHeader))
			})
			authed.Route("/hr", func(h chi.Router) {
				h.Use(handlers.RequireRole(domain.RoleHR, domain.RoleDirector))
				handlers.RegisterHR(h, d.API)
			})
			authed.Route("/interviewer", func(i chi.Router) {
				i.Use(handlers.RequireRole(domain.RoleInterviewer))
				handlers.RegisterInterviewer(i, d.API)
			})
		})
	})
}
