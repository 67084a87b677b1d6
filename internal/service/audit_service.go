package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
	"admin-console/internal/repository"
)

var ErrAuditNotConfigured = errors.New("audit service not configured")

const auditWriteTimeout = 2 * time.Second

// AuditService persiste el resultado de cada llamada del gateway. Implementa
// gateway.Observer; un fallo al escribir se loguea y no afecta la llamada.
type AuditService struct {
	repo   repository.AuditRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewAuditService(repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, logger: logger, now: time.Now}
}

func (s *AuditService) Observe(ctx context.Context, call gateway.Call) {
	entry := domain.AuditEntry{
		Method:     call.Method,
		Path:       call.Path,
		Status:     call.Status,
		Message:    call.Message,
		DurationMS: call.Duration.Milliseconds(),
	}
	if call.Kind != 0 {
		entry.Kind = call.Kind.String()
	}
	// La escritura sobrevive a la cancelación de la petición original.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditWriteTimeout)
	defer cancel()
	if err := s.Record(writeCtx, entry); err != nil {
		s.logger.Warn("audit write failed",
			zap.String("method", call.Method),
			zap.String("path", call.Path),
			zap.Error(err),
		)
	}
}

func (s *AuditService) Record(ctx context.Context, entry domain.AuditEntry) error {
	if s == nil || s.repo == nil {
		return ErrAuditNotConfigured
	}
	entry.Method = strings.ToUpper(strings.TrimSpace(entry.Method))
	entry.Path = strings.TrimSpace(entry.Path)
	if entry.Method == "" || entry.Path == "" {
		return ErrInvalidInput
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}
	return s.repo.Create(ctx, entry)
}

func (s *AuditService) Recent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if s == nil || s.repo == nil {
		return nil, ErrAuditNotConfigured
	}
	return s.repo.ListRecent(ctx, limit)
}
