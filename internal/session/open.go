package session

import (
	"context"
	"fmt"
	"io"

	"github.com/aditya/bakshish/internal/config"
	"github.com/aditya/bakshish/internal/database"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Session for cfg's backend. The returned Closer releases any
// connection the backend holds.
func Open(ctx context.Context, cfg *config.Config) (*Session, io.Closer, error) {
	switch cfg.SessionBackend {
	case config.SessionBackendFile:
		return New(NewFileStore(cfg.SessionFile, cfg.Profile)), nopCloser{}, nil

	case config.SessionBackendRedis:
		rdb, err := database.NewRedis(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return New(NewRedisStore(rdb.Client, cfg.Profile)), rdb, nil

	case config.SessionBackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConnections, cfg.DBMaxIdleConnections)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		store, err := NewPostgresStore(ctx, db.DB, cfg.Profile)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("prepare session table: %w", err)
		}
		return New(store), db, nil
	}
	return nil, nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
}
