package storage

import (
	"context"

	"github.com/constructsync/dashboard/internal/config"
	"github.com/constructsync/dashboard/internal/db"
	apperrors "github.com/constructsync/dashboard/internal/errors"
)

// Open returns the Store selected by cfg.Store.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Store {
	case "", "sqlite":
		database, err := db.Open()
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(database), nil
	case "redis":
		client, err := DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, "constructsync:"), nil
	default:
		return nil, apperrors.ErrUnknownStore
	}
}
