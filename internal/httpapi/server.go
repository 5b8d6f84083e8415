// Package httpapi is the HTTP façade in front of the deconfliction
// engine: the chi router, middleware stack, and handlers spec.md §6
// and SPEC_FULL.md §4.9 describe as the engine's external contract.
package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aerosentry/deconfliction/internal/auth"
	"github.com/aerosentry/deconfliction/internal/db"
	"github.com/aerosentry/deconfliction/internal/engine"
	"github.com/aerosentry/deconfliction/pkg/config"
	"github.com/aerosentry/deconfliction/pkg/mission"
)

// Server holds the HTTP router and every dependency its handlers need.
type Server struct {
	Router *chi.Mux

	cfg         *config.Config
	engine      *engine.Engine
	authSvc     *auth.Service
	operators   *db.OperatorRepository
	flights     *db.FlightRepository
	analyses    *db.MissionAnalysisRepository
	fixture     []*mission.Mission
	rateLimiter *ipRateLimiter
}

// Dependencies bundles everything New needs to wire up a Server. db
// and the repositories built on it may be nil, in which case the
// catalogue falls back to the static fixture list (spec.md §6,
// SPEC_FULL.md §4.8).
type Dependencies struct {
	Config     *config.Config
	DB         *sql.DB
	Operators  *db.OperatorRepository
	Flights    *db.FlightRepository
	Analyses   *db.MissionAnalysisRepository
	Fixture    []*mission.Mission
}

// New builds a Server with all routes registered.
func New(deps Dependencies) *Server {
	authSvc := auth.NewService(auth.Config{
		JWTSecret:     deps.Config.Auth.JWTSecret,
		TokenDuration: time.Duration(deps.Config.Auth.TokenDurationMinutes) * time.Minute,
	})

	s := &Server{
		Router:      chi.NewRouter(),
		cfg:         deps.Config,
		engine:      engine.New(deps.Config.Engine.GridSize),
		authSvc:     authSvc,
		operators:   deps.Operators,
		flights:     deps.Flights,
		analyses:    deps.Analyses,
		fixture:     deps.Fixture,
		rateLimiter: newIPRateLimiter(deps.Config.RateLimit.RequestsPerSecond, deps.Config.RateLimit.Burst),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.Router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.With(s.rateLimiter.middleware).Post("/analyze-mission", s.handleAnalyzeMission)
		r.Get("/simulated-flights", s.handleSimulatedFlights)

		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Post("/flights", s.handleRegisterFlight)
			r.Delete("/flights/{drone_id}", s.handleRetireFlight)
		})
	})
}

// respondJSON writes data as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
