// Package bootstrap assembles the record store, cache and services from
// configuration. Binaries share it so every entry point wires the same stack.
package bootstrap

import (
	"fmt"

	"github.com/andresuchdata/qota-finance/backend-go/internal/api"
	"github.com/andresuchdata/qota-finance/backend-go/internal/cache"
	"github.com/andresuchdata/qota-finance/backend-go/internal/config"
	"github.com/andresuchdata/qota-finance/backend-go/internal/finance"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/memory"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/qota-finance/backend-go/internal/repository/sqlite"
	"github.com/andresuchdata/qota-finance/backend-go/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// OpenStore opens the record store selected by cfg.Driver.
func OpenStore(cfg config.DatabaseConfig) (repository.Store, error) {
	switch cfg.Driver {
	case DriverPostgres:
		store, err := postgres.Open(cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverMemory:
		log.Warn().Msg("using in-memory record store, data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// OpenCache returns the redis metrics cache, or the noop cache when redis is
// disabled or unreachable.
func OpenCache(cfg config.CacheConfig) cache.MetricsCache {
	c, err := cache.NewMetricsCache(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("metrics cache unavailable, continuing without cache")
		return cache.NewNoopMetricsCache()
	}
	return c
}

// Services builds the service layer on top of store and metricsCache.
func Services(store repository.Store, metricsCache cache.MetricsCache, opts ...finance.EngineOption) *api.Services {
	return &api.Services{
		Records: service.NewRecordService(store, metricsCache),
		Metrics: service.NewMetricsService(finance.NewEngine(store, opts...), metricsCache),
	}
}
