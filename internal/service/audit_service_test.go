package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
	"admin-console/internal/repository"
)

type failingAuditRepo struct {
	calls int
}

func (f *failingAuditRepo) Create(_ context.Context, _ domain.AuditEntry) error {
	f.calls++
	return errors.New("db down")
}

func (f *failingAuditRepo) ListRecent(_ context.Context, _ int) ([]domain.AuditEntry, error) {
	return nil, errors.New("db down")
}

func TestAuditService_ObserveFillsDefaults(t *testing.T) {
	repo := repository.NewMemoryAuditRepository(0)
	svc := NewAuditService(repo, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc.Observe(ctx, gateway.Call{
		Method:   "put",
		Path:     "/admin/membership/plans/7",
		Status:   200,
		Kind:     gateway.KindBusiness,
		Message:  "套餐编码已存在",
		Duration: 1500 * time.Millisecond,
	})

	entries, err := svc.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry even with a cancelled request context, got %d", len(entries))
	}
	e := entries[0]
	if e.ID == "" || !e.CreatedAt.Equal(fixed) {
		t.Fatalf("expected generated id and timestamp, got %+v", e)
	}
	if e.Method != "PUT" || e.Kind != "business" || e.DurationMS != 1500 {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestAuditService_SuccessHasNoKind(t *testing.T) {
	repo := repository.NewMemoryAuditRepository(0)
	svc := NewAuditService(repo, nil)
	svc.Observe(context.Background(), gateway.Call{Method: "GET", Path: "/admin/accounts", Status: 200})
	entries, _ := repo.ListRecent(context.Background(), 0)
	if len(entries) != 1 || entries[0].Kind != "" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestAuditService_WriteFailureIsSwallowed(t *testing.T) {
	repo := &failingAuditRepo{}
	svc := NewAuditService(repo, nil)
	svc.Observe(context.Background(), gateway.Call{Method: "GET", Path: "/admin/accounts"})
	if repo.calls != 1 {
		t.Fatalf("expected one write attempt, got %d", repo.calls)
	}
}

func TestAuditService_Validation(t *testing.T) {
	var nilSvc *AuditService
	if err := nilSvc.Record(context.Background(), domain.AuditEntry{}); !errors.Is(err, ErrAuditNotConfigured) {
		t.Fatalf("expected ErrAuditNotConfigured, got %v", err)
	}
	svc := NewAuditService(repository.NewMemoryAuditRepository(0), nil)
	if err := svc.Record(context.Background(), domain.AuditEntry{Method: "GET"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
