package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"admin-console/internal/config"
	"admin-console/internal/db"
)

// OpenAudit devuelve el repositorio de auditoría en Postgres si hay
// DATABASE_URL, o uno en memoria si no.
func OpenAudit(ctx context.Context, cfg *config.Config, logger *zap.Logger) (AuditRepository, func(), error) {
	if cfg.DatabaseURL == "" {
		return NewMemoryAuditRepository(0), func() {}, nil
	}
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		return nil, func() {}, fmt.Errorf("db connect: %w", err)
	}
	if err := db.Ping(ctx, pool); err != nil {
		pool.Close()
		return nil, func() {}, fmt.Errorf("db ping: %w", err)
	}
	if err := db.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, func() {}, fmt.Errorf("audit schema: %w", err)
	}
	if logger != nil {
		logger.Info("audit log backed by postgres")
	}
	return NewPgAuditRepository(pool), pool.Close, nil
}
