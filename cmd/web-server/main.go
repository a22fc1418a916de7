// Aero Scope Web Server
// Serves the flight-tracking REST API and WebSocket update stream
package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/unklstewy/aero-scope/internal/cache"
	"github.com/unklstewy/aero-scope/internal/logging"
	"github.com/unklstewy/aero-scope/internal/repository"
	"github.com/unklstewy/aero-scope/internal/tracker"
	"github.com/unklstewy/aero-scope/pkg/config"
	"github.com/unklstewy/aero-scope/pkg/fixture"
	"github.com/unklstewy/aero-scope/pkg/flight"
	"github.com/unklstewy/aero-scope/pkg/opensky"
)

var configPath = flag.String("config", "configs/config.json", "Path to configuration file")

// Server holds the HTTP server and its dependencies
type Server struct {
	router  *chi.Mux
	tracker *tracker.Service
	repo    *repository.FlightRepository
	cfg     *config.Config
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logging.Component("web-server")

	source, err := buildSource(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build data source")
	}

	repoOpts := []repository.Option{}
	if !cfg.Source.UseMockData {
		// One limiter state per upstream; every repository talking to the
		// same API shares the quota.
		repoOpts = append(repoOpts, repository.WithRateLimiter(
			opensky.NewRateLimiter(opensky.NewLimiterState())))
	}
	repo := repository.New(source, repoOpts...)
	defer repo.Close()

	store, err := buildCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open cache")
	}
	defer store.Close()

	trk := tracker.New(repo, store,
		tracker.WithCacheTTL(cfg.CacheTTL()),
		tracker.WithRefreshInterval(cfg.RefreshInterval()))

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if err := trk.Refresh(rootCtx, false); err != nil {
		log.Warn().Err(err).Msg("initial refresh failed, serving empty dataset")
	}
	if cfg.Refresh.AutoEnabled {
		trk.Start(rootCtx)
		defer trk.Stop()
	}

	srv := &Server{
		router:  chi.NewRouter(),
		tracker: trk,
		repo:    repo,
		cfg:     cfg,
	}
	srv.setupRoutes()

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", httpServer.Addr).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server stopped")
}

// buildSource selects the data source once at startup. The rest of the
// application only sees the flight.Source interface.
func buildSource(cfg *config.Config) (flight.Source, error) {
	if cfg.Source.UseMockData {
		variant, err := fixture.ParseVariant(cfg.Source.MockDataType)
		if err != nil {
			return nil, err
		}
		src := fixture.New(variant)
		src.SetDelay(cfg.MockDelay())
		return src, nil
	}
	return opensky.NewClient(opensky.WithBaseURL(cfg.Source.BaseURL)), nil
}

func buildCache(cfg *config.Config) (*cache.Store, error) {
	if !cfg.Cache.Enabled {
		return cache.OpenInMemory()
	}
	return cache.Open(cfg.Cache.Dir)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Use(throttle(rate.Limit(s.cfg.Server.RequestsPerSecond), s.cfg.Server.Burst))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/flights", s.handleGetFlights)
		r.Get("/flights/{icao}", s.handleGetFlightByICAO)
		r.Get("/statistics", s.handleGetStatistics)
		r.Get("/statistics/top", s.handleGetTopCountries)
		r.Post("/refresh", s.handleRefresh)
		r.Get("/ws", s.handleWebSocket)
	})
}

// throttle bounds inbound request rate across all clients.
func throttle(limit rate.Limit, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(limit, burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
