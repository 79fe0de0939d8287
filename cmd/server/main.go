// Package main provides the API server entry point for the tournament scout
// service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tournament-scout/internal/adapter"
	"github.com/tournament-scout/internal/api"
	"github.com/tournament-scout/internal/config"
	"github.com/tournament-scout/internal/logging"
	"github.com/tournament-scout/internal/ratelimit"
	"github.com/tournament-scout/internal/service"
	"github.com/tournament-scout/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.GetGlobalLogger().WithError(err).Fatal("Failed to load configuration")
	}

	logging.InitGlobalLogger(
		logging.ParseLogLevel(cfg.Logging.Level),
		logging.ParseLogFormat(cfg.Logging.Format),
	)
	logger := logging.GetGlobalLogger()

	// Connect to Postgres
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	if err := storage.RunMigrations(cfg.Database.Postgres.URL(), cfg.Database.Postgres.MigrationsPath); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	// Connect to Redis; fall back to the in-process counter store when no
	// Redis is configured (single-instance deployments)
	var counterStore ratelimit.CounterStore
	redis, err := storage.NewRedisClient(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Warn("Redis unavailable, using in-memory reveal counters")
		counterStore = ratelimit.NewMemoryCounterStore()
	} else {
		defer redis.Close()
		counterStore = ratelimit.NewRedisCounterStore(redis.Client())
	}

	logger.Info("Database connections established")

	// Repositories
	tournamentRepo := storage.NewTournamentRepository(postgres)
	venueRepo := storage.NewVenueRepository(postgres)
	outreachRepo := storage.NewOutreachRepository(postgres)
	suggestionRepo := storage.NewSuggestionRepository(postgres)
	assignorRepo := storage.NewAssignorRepository(postgres)
	userRepo := storage.NewUserRepository(postgres)

	// Provider adapters
	searchClient := adapter.NewSearchClient(cfg.Providers.SearchAPIKey, cfg.Providers.SearchBaseURL, cfg.Providers.Timeout)
	placesClient := adapter.NewPlacesClient(cfg.Providers.PlacesAPIKey, cfg.Providers.PlacesBaseURL, cfg.Providers.Timeout)
	emailSender := adapter.NewEmailSender(&cfg.SMTP)

	revealLimiter := ratelimit.NewRevealLimiter(&ratelimit.RevealLimiterConfig{
		Store:     counterStore,
		UserLimit: cfg.RateLimit.RevealUserLimit,
		IPLimit:   cfg.RateLimit.RevealIPLimit,
		Window:    cfg.RateLimit.RevealWindow,
		IPSalt:    cfg.RateLimit.IPSalt,
	})

	// Services
	var notifier service.Notifier
	if emailSender != nil {
		notifier = emailSender
	}
	outreachService := service.NewOutreachService(tournamentRepo, outreachRepo, notifier, cfg.SMTP.NotifyAddress, cfg.Outreach.MaxBatchSize)
	venueService := service.NewVenueService(venueRepo)
	suggestionService := service.NewSuggestionService(suggestionRepo, tournamentRepo)
	contactService := service.NewContactService(assignorRepo, revealLimiter)
	tournamentService := service.NewTournamentService(tournamentRepo)
	ingestService := service.NewIngestService(tournamentRepo, venueRepo, cfg.Outreach.MaxBatchSize)
	enrichmentService := service.NewEnrichmentService(
		tournamentRepo,
		venueRepo,
		suggestionService,
		searchClient,
		placesClient,
		cfg.Outreach.EnrichBatchSize,
		cfg.Outreach.EnrichParallel,
	)

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RequestsPerSec:  cfg.Server.RequestsPerSec,
		Burst:           cfg.Server.RequestsPerSec,
	}

	server := api.NewServer(serverConfig, &api.ServerDeps{
		Outreach:    outreachService,
		Venues:      venueService,
		Suggestions: suggestionService,
		Contacts:    contactService,
		Tournaments: tournamentService,
		Ingest:      ingestService,
		Enrichment:  enrichmentService,
		Users:       userRepo,
		DB:          postgres,
	})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
