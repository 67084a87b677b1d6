package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"admin-console/internal/domain"
)

// AuditRepository define el contrato de persistencia del log de llamadas.
type AuditRepository interface {
	Create(ctx context.Context, entry domain.AuditEntry) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error)
}

// PgAuditRepository implementa AuditRepository usando pgxpool.
type PgAuditRepository struct {
	pool *pgxpool.Pool
}

func NewPgAuditRepository(pool *pgxpool.Pool) *PgAuditRepository {
	return &PgAuditRepository{pool: pool}
}

func (r *PgAuditRepository) Create(ctx context.Context, entry domain.AuditEntry) error {
	const query = `
		INSERT INTO audit_log (id, method, path, status, kind, message, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		entry.Method,
		entry.Path,
		entry.Status,
		entry.Kind,
		entry.Message,
		entry.DurationMS,
		entry.CreatedAt,
	)
	return err
}

func (r *PgAuditRepository) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	const query = `
		SELECT id::text, method, path, status, kind, message, duration_ms, created_at
		FROM audit_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		if err := rows.Scan(
			&e.ID,
			&e.Method,
			&e.Path,
			&e.Status,
			&e.Kind,
			&e.Message,
			&e.DurationMS,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// MemoryAuditRepository guarda el log en memoria cuando no hay DATABASE_URL.
type MemoryAuditRepository struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	max     int
}

// NewMemoryAuditRepository conserva como máximo max entradas (0 = 1000).
func NewMemoryAuditRepository(max int) *MemoryAuditRepository {
	if max <= 0 {
		max = 1000
	}
	return &MemoryAuditRepository{max: max}
}

func (r *MemoryAuditRepository) Create(_ context.Context, entry domain.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	if over := len(r.entries) - r.max; over > 0 {
		r.entries = append([]domain.AuditEntry(nil), r.entries[over:]...)
	}
	return nil
}

func (r *MemoryAuditRepository) ListRecent(_ context.Context, limit int) ([]domain.AuditEntry, error) {
	r.mu.Lock()
	out := append([]domain.AuditEntry(nil), r.entries...)
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
