// Aero Scope Dashboard
// Terminal UI showing live flights, statistics and refresh status
package main

import (
	"flag"
	"os"

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

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logging.Logger()
		l.Fatal().Err(err).Msg("failed to load config")
	}
	// The terminal owns stdout, keep log noise out of the UI.
	logging.Init("error", "console")
	log := logging.Component("dashboard")

	var source flight.Source
	repoOpts := []repository.Option{}
	if cfg.Source.UseMockData {
		variant, err := fixture.ParseVariant(cfg.Source.MockDataType)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid mock data type")
		}
		src := fixture.New(variant)
		src.SetDelay(cfg.MockDelay())
		source = src
	} else {
		source = opensky.NewClient(opensky.WithBaseURL(cfg.Source.BaseURL))
		repoOpts = append(repoOpts, repository.WithRateLimiter(
			opensky.NewRateLimiter(opensky.NewLimiterState())))
	}

	repo := repository.New(source, repoOpts...)
	defer repo.Close()

	// Badger holds an exclusive lock on its directory, so a dashboard
	// sharing cfg.Cache.Dir with a running web server would fail to open.
	// The dashboard keeps its cache in memory for its own session instead.
	store, err := cache.OpenInMemory()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open cache")
	}
	defer store.Close()

	trk := tracker.New(repo, store, tracker.WithCacheTTL(cfg.CacheTTL()))

	app := NewApp(trk, cfg)
	if err := app.Run(); err != nil {
		log.Error().Err(err).Msg("dashboard exited with error")
		os.Exit(1)
	}
}
