package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/topicflow/internal/config"
	"github.com/aretw0/topicflow/pkg/adapters/file"
	"github.com/aretw0/topicflow/pkg/adapters/memory"
	"github.com/aretw0/topicflow/pkg/adapters/redis"
	"github.com/aretw0/topicflow/pkg/adapters/sqlstore"
	"github.com/aretw0/topicflow/pkg/ports"
)

const sqliteFile = "topicflow.db"

// openedStore is a store plus what the driver needs to release it.
type openedStore struct {
	ports.Store
	locker ports.DistributedLocker
	close  func() error
}

func noClose() error { return nil }

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*openedStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return &openedStore{Store: memory.NewStore(), close: noClose}, nil

	case config.DriverFile:
		logger.Debug("Opening file store", "path", cfg.Store.Path)
		return &openedStore{Store: file.New(cfg.Store.Path), close: noClose}, nil

	case config.DriverRedis:
		logger.Debug("Opening redis store", "addr", cfg.Redis.Addr, "prefix", cfg.Redis.Prefix)
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		out := &openedStore{Store: store, close: store.Close}
		if cfg.Redis.Lock {
			out.locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		return out, nil

	case config.DriverSQLite:
		path := cfg.Store.Path
		if filepath.Ext(path) == "" {
			path = filepath.Join(path, sqliteFile)
		}
		logger.Debug("Opening sqlite store", "path", path)
		store, err := sqlstore.Open(ctx, sqlstore.SQLite, path)
		if err != nil {
			return nil, err
		}
		return &openedStore{Store: store, close: store.Close}, nil

	case config.DriverPostgres:
		logger.Debug("Opening postgres store")
		store, err := sqlstore.Open(ctx, sqlstore.Postgres, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		return &openedStore{Store: store, close: store.Close}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
