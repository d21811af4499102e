package server

import (
	"log/slog"
	"net/http"

	"universe-sim/internal/middleware"
	"universe-sim/internal/run"
	runHandlers "universe-sim/internal/run/handlers"
	serverHandlers "universe-sim/internal/server/handlers"
)

type Routes struct {
	db            serverHandlers.Pinger
	redis         serverHandlers.Pinger
	runService    *run.Service
	runDefaults   run.Request
	authenticator *middleware.Authenticator
	rateLimiter   *middleware.RateLimiter
	logger        *slog.Logger
}

func NewRoutes(
	db, redis serverHandlers.Pinger,
	runService *run.Service,
	runDefaults run.Request,
	authenticator *middleware.Authenticator,
	rateLimiter *middleware.RateLimiter,
	logger *slog.Logger,
) *Routes {
	return &Routes{
		db:            db,
		redis:         redis,
		runService:    runService,
		runDefaults:   runDefaults,
		authenticator: authenticator,
		rateLimiter:   rateLimiter,
		logger:        logger,
	}
}

func (r *Routes) Setup() *http.ServeMux {
	logger := r.logger.With("component", "routes", "operation", "setup")
	logger.Debug("Setting up application routes")

	mux := http.NewServeMux()

	healthHandler := serverHandlers.NewHealthHandler(r.db, r.redis)
	simulationHandler := runHandlers.NewSimulationHandler(r.runService, r.runDefaults)

	// Public endpoints
	mux.Handle("/api/server/health", healthHandler)
	mux.HandleFunc("GET /api/simulations", simulationHandler.GetRuns)
	mux.HandleFunc("GET /api/simulations/{id}", simulationHandler.GetRun)

	// Operator endpoints (authenticated + operator role, rate limited)
	mux.Handle("POST /api/simulations", r.rateLimiter.Middleware(
		r.authenticator.RequireOperator(http.HandlerFunc(simulationHandler.CreateRun)),
	))

	logger.Info("Routes configured successfully",
		"public_endpoints", []string{"/api/server/health", "GET /api/simulations", "GET /api/simulations/{id}"},
		"operator_endpoints", []string{"POST /api/simulations"},
	)

	return mux
}
