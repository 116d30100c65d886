package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// Store is an opened persistence backend plus the optional Redis cache.
type Store struct {
	Repos        repository.Set
	Redis        *redis.Client
	Dependencies []handlers.Dependency
	closers      []func()
}

// Close releases every connection in reverse opening order.
func (s *Store) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// OpenStore connects to the configured driver and applies migrations.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	store := &Store{}

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store.closers = append(store.closers, pg.Close)
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
				store.Close()
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		store.Repos = repository.NewPostgresSet(pg.PoolHandle())
		store.Dependencies = append(store.Dependencies, handlers.Dependency{Name: "postgres", Pinger: pg})
	case config.StoreDriverSQLite:
		lite, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		store.closers = append(store.closers, lite.Close)
		store.Repos = repository.NewSQLiteSet(lite.DB)
		store.Dependencies = append(store.Dependencies, handlers.Dependency{Name: "sqlite", Pinger: lite})
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}

	if rdb := persistence.NewRedis(ctx, cfg.Redis, logger); rdb != nil {
		store.closers = append(store.closers, rdb.Close)
		store.Redis = rdb.ClientHandle()
		store.Dependencies = append(store.Dependencies, handlers.Dependency{Name: "redis", Pinger: rdb})
	}
	return store, nil
}

// Ping checks every opened dependency.
func (s *Store) Ping(ctx context.Context) error {
	for _, dep := range s.Dependencies {
		if err := dep.Pinger.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", dep.Name, err)
		}
	}
	return nil
}
