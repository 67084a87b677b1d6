package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"admin-console/internal/domain"
)

// fileDocument replica las dos claves que la consola web guarda en el
// almacenamiento del navegador: token y adminUser.
type fileDocument struct {
	Token     string              `json:"token"`
	AdminUser domain.AdminProfile `json:"adminUser"`
	ExpiresAt *time.Time          `json:"expiresAt,omitempty"`
}

var scopePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type fileStore struct {
	mu  sync.Mutex
	dir string
}

// NewFileStore guarda cada scope en <dir>/<scope>.json con permisos 0600.
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(scope string) (string, error) {
	if !scopePattern.MatchString(scope) {
		return "", fmt.Errorf("invalid session scope %q", scope)
	}
	return filepath.Join(s.dir, scope+".json"), nil
}

func (s *fileStore) Get(_ context.Context, scope string) (domain.Session, bool, error) {
	p, err := s.path(scope)
	if err != nil {
		return domain.Session{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("read session: %w", err)
	}
	var doc fileDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		// Un archivo corrupto equivale a no tener sesión.
		_ = os.Remove(p)
		return domain.Session{}, false, nil
	}
	if doc.Token == "" {
		return domain.Session{}, false, nil
	}
	return domain.Session{
		Token:       doc.Token,
		AdminUserID: doc.AdminUser.ID,
		DisplayName: doc.AdminUser.DisplayName,
		TenantID:    doc.AdminUser.TenantID,
		ExpiresAt:   doc.ExpiresAt,
	}, true, nil
}

func (s *fileStore) Put(_ context.Context, scope string, session domain.Session) error {
	p, err := s.path(scope)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(fileDocument{
		Token:     session.Token,
		AdminUser: session.Profile(),
		ExpiresAt: session.ExpiresAt,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *fileStore) Delete(_ context.Context, scope string) error {
	p, err := s.path(scope)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
