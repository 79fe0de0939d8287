// Package api provides the HTTP API server implementation.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/models"
	"github.com/tournament-scout/internal/service"
	"github.com/tournament-scout/internal/types"
)

// Service interfaces for dependency injection and testing

// OutreachServiceInterface defines the interface for outreach operations
type OutreachServiceInterface interface {
	QueueOutreach(ctx context.Context, tournamentIDs []string) (*service.QueueResult, error)
	Suppress(ctx context.Context, tournamentIDs []string, reason string) (*service.SuppressResult, error)
	ReconcileSuppression(ctx context.Context) (int64, error)
}

// VenueServiceInterface defines the interface for venue operations
type VenueServiceInterface interface {
	Merge(ctx context.Context, sourceID, targetID string, removeSource bool) (*service.MergeResult, error)
	GetVenue(ctx context.Context, id string) (*models.Venue, error)
	ListVenues(ctx context.Context, limit, offset int) ([]*models.Venue, error)
}

// SuggestionServiceInterface defines the interface for URL suggestion operations
type SuggestionServiceInterface interface {
	Submit(ctx context.Context, tournamentID, rawURL string, submitterEmail *string, source types.SuggestionSource) (*models.URLSuggestion, error)
	Approve(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error)
	Reject(ctx context.Context, id, reviewerID string) (*models.URLSuggestion, error)
	ListPending(ctx context.Context, limit, offset int) ([]*models.URLSuggestion, error)
}

// ContactServiceInterface defines the interface for contact reveal operations
type ContactServiceInterface interface {
	Reveal(ctx context.Context, user *models.User, clientIP string, assignorIDs []string) ([]*models.RevealedContact, error)
	ListAssignors(ctx context.Context, limit, offset int) ([]*models.Assignor, error)
}

// TournamentServiceInterface defines the interface for tournament reads
type TournamentServiceInterface interface {
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context, limit, offset int) ([]*models.Tournament, error)
}

// IngestServiceInterface defines the interface for source-record ingestion
type IngestServiceInterface interface {
	Ingest(ctx context.Context, records []*models.SourceRecord) (*service.IngestResult, error)
}

// EnrichmentServiceInterface defines the interface for enrichment passes
type EnrichmentServiceInterface interface {
	DiscoverWebsites(ctx context.Context) (*service.EnrichResult, error)
	GeocodeVenues(ctx context.Context) (*service.EnrichResult, error)
}

// Pinger reports backing-store health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	router            *mux.Router
	httpServer        *http.Server
	outreachService   OutreachServiceInterface
	venueService      VenueServiceInterface
	suggestionService SuggestionServiceInterface
	contactService    ContactServiceInterface
	tournamentService TournamentServiceInterface
	ingestService     IngestServiceInterface
	enrichService     EnrichmentServiceInterface
	users             UserStore
	db                Pinger
	config            *ServerConfig
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	RequestsPerSec  int // Per-client request rate
	Burst           int
}

// ServerDeps bundles the collaborators the server routes to.
type ServerDeps struct {
	Outreach    OutreachServiceInterface
	Venues      VenueServiceInterface
	Suggestions SuggestionServiceInterface
	Contacts    ContactServiceInterface
	Tournaments TournamentServiceInterface
	Ingest      IngestServiceInterface
	Enrichment  EnrichmentServiceInterface
	Users       UserStore
	DB          Pinger
}

// NewServer creates a new API server instance.
func NewServer(config *ServerConfig, deps *ServerDeps) *Server {
	s := &Server{
		router:            mux.NewRouter(),
		outreachService:   deps.Outreach,
		venueService:      deps.Venues,
		suggestionService: deps.Suggestions,
		contactService:    deps.Contacts,
		tournamentService: deps.Tournaments,
		ingestService:     deps.Ingest,
		enrichService:     deps.Enrichment,
		users:             deps.Users,
		db:                deps.DB,
		config:            config,
	}

	s.setupRouter()

	return s
}

// setupRouter configures the router with middleware and routes
func (s *Server) setupRouter() {
	rateLimiter := NewRateLimiter(s.config.RequestsPerSec, s.config.Burst)

	// Order matters: logging first so every outcome is recorded
	s.router.Use(LoggingMiddleware)
	s.router.Use(RecoveryMiddleware)
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(rateLimiter))

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()

	// Outreach endpoints (admin)
	api.HandleFunc("/outreach/queue", s.requireAdmin(s.handleQueueOutreach)).Methods("POST")
	api.HandleFunc("/outreach/suppress", s.requireAdmin(s.handleSuppress)).Methods("POST")
	api.HandleFunc("/outreach/reconcile", s.requireAdmin(s.handleReconcile)).Methods("POST")

	// Venue endpoints
	api.HandleFunc("/venues", s.requireUser(s.handleListVenues)).Methods("GET")
	api.HandleFunc("/venues/{id}", s.requireUser(s.handleGetVenue)).Methods("GET")
	api.HandleFunc("/venues/merge", s.requireAdmin(s.handleMergeVenues)).Methods("POST")

	// Tournament endpoints
	api.HandleFunc("/tournaments", s.requireUser(s.handleListTournaments)).Methods("GET")
	api.HandleFunc("/tournaments/{id}", s.requireUser(s.handleGetTournament)).Methods("GET")

	// URL suggestion endpoints; submission is open to the public
	api.HandleFunc("/suggestions", s.handleSubmitSuggestion).Methods("POST")
	api.HandleFunc("/suggestions", s.requireAdmin(s.handleListPendingSuggestions)).Methods("GET")
	api.HandleFunc("/suggestions/{id}/approve", s.requireAdmin(s.handleApproveSuggestion)).Methods("POST")
	api.HandleFunc("/suggestions/{id}/reject", s.requireAdmin(s.handleRejectSuggestion)).Methods("POST")

	// Contact directory endpoints
	api.HandleFunc("/assignors", s.requireUser(s.handleListAssignors)).Methods("GET")
	api.HandleFunc("/contacts/reveal", s.requireUser(s.handleRevealContacts)).Methods("POST")
	api.HandleFunc("/contacts/accept-terms", s.requireUser(s.handleAcceptTerms)).Methods("POST")

	// Pipeline endpoints (admin)
	api.HandleFunc("/ingest", s.requireAdmin(s.handleIngest)).Methods("POST")
	api.HandleFunc("/enrich/websites", s.requireAdmin(s.handleDiscoverWebsites)).Methods("POST")
	api.HandleFunc("/enrich/geocode", s.requireAdmin(s.handleGeocodeVenues)).Methods("POST")
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}
	respondJSON(w, code, map[string]string{
		"status":  status,
		"service": "tournament-scout",
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	logging.GetGlobalLogger().WithField("addr", s.httpServer.Addr).Info("Starting API server")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.GetGlobalLogger().Info("Shutting down API server")
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
