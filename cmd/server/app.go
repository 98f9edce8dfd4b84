package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"droneOpsBooking/internal/config"
	"droneOpsBooking/internal/db"
	"droneOpsBooking/internal/logging"
	"droneOpsBooking/repository"
)

// loadConfig uses the strict loader in production so a missing JWT_SECRET
// fails fast.
func loadConfig() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.IsProduction() {
		if cfg, err = config.Load(); err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

// openStore opens the configured store and seeds it when it is empty.
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.Store, error) {
	var store repository.Store
	switch cfg.Database.Driver {
	case "sqlite":
		d, err := db.Open(cfg.Database.Path)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		store = repository.NewSQLStore(d, log)
	default:
		store = repository.NewMemoryStore(log)
	}
	if cfg.Database.Seed {
		seeded, err := repository.Seed(ctx, store, repository.DefaultRoster())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed store: %w", err)
		}
		if seeded {
			log.Info("seeded default roster", zap.String("driver", cfg.Database.Driver))
		}
	}
	return store, nil
}
