package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"admin-console/internal/config"
)

var ErrUnknownBackend = errors.New("unknown session backend")

// Open construye el Store indicado por SESSION_BACKEND. El cierre devuelto
// libera la conexión a redis cuando la hay.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Store, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(cfg.SessionBackend)) {
	case "memory":
		return NewMemoryStore(), noop, nil
	case "", "file":
		store, err := NewFileStore(cfg.SessionDir)
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("file session store", zap.String("dir", cfg.SessionDir))
		return store, noop, nil
	case "redis":
		if cfg.RedisAddr == "" {
			return nil, noop, errors.New("redis session backend requires REDIS_ADDR")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("redis session store", zap.String("addr", cfg.RedisAddr))
		return NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.SessionBackend)
	}
}
