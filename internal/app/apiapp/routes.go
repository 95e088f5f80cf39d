package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/infra/metrics"
	matchessvc "github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/services/matches"
	"github.com/JeffreyG244/ai-spark-match-ideas-sub002/internal/transport/http/handlers"
)

type Dependencies struct {
	MatchService *matchessvc.Service
	Tokens       TokenParser
	Limiter      RateLimiter
	Readiness    []handlers.ReadinessCheck
	Logger       *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	candidatesHandler := handlers.NewCandidatesHandler(deps.MatchService, deps.Logger)

	r.Get("/healthz", handlers.Health)
	r.Get("/readyz", handlers.NewReadyHandler(deps.Readiness...).Handle)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Tokens, deps.Logger))
		r.Use(RateLimitMiddleware(deps.Limiter, deps.Logger))

		r.Get("/matches/candidates", candidatesHandler.Handle)
		r.Get("/matches/candidates/{id}/compatibility", candidatesHandler.Compatibility)
	})
}
