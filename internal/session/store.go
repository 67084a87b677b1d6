package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

// Store guarda como mucho una sesión por scope (un navegador, un perfil de CLI).
type Store interface {
	Get(ctx context.Context, scope string) (domain.Session, bool, error)
	Put(ctx context.Context, scope string, session domain.Session) error
	Delete(ctx context.Context, scope string) error
}

var ErrEmptyScope = errors.New("session scope is empty")

type memoryStore struct {
	mu    sync.Mutex
	items map[string]domain.Session
}

func NewMemoryStore() Store {
	return &memoryStore{
		items: make(map[string]domain.Session),
	}
}

func (s *memoryStore) Get(_ context.Context, scope string) (domain.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.items[scope]
	return session, ok, nil
}

func (s *memoryStore) Put(_ context.Context, scope string, session domain.Session) error {
	if strings.TrimSpace(scope) == "" {
		return ErrEmptyScope
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[scope] = session
	return nil
}

func (s *memoryStore) Delete(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, scope)
	return nil
}

// Scoped ata un Store a un scope e implementa gateway.SessionProvider.
type Scoped struct {
	store Store
	scope string
	now   func() time.Time
}

func NewScoped(store Store, scope string) *Scoped {
	return &Scoped{store: store, scope: scope, now: time.Now}
}

func (s *Scoped) Scope() string {
	return s.scope
}

// Current devuelve la sesión del scope. Una sesión vencida se borra y se
// informa como gateway.ErrSessionExpired para que no se envíe.
func (s *Scoped) Current(ctx context.Context) (domain.Session, bool, error) {
	session, ok, err := s.store.Get(ctx, s.scope)
	if err != nil || !ok {
		return domain.Session{}, false, err
	}
	if !session.Valid(s.now()) {
		if err := s.store.Delete(ctx, s.scope); err != nil {
			return domain.Session{}, false, err
		}
		return domain.Session{}, false, gateway.ErrSessionExpired
	}
	return session, true, nil
}

func (s *Scoped) Save(ctx context.Context, session domain.Session) error {
	if session.ExpiresAt == nil {
		session.ExpiresAt = TokenExpiry(session.Token)
	}
	return s.store.Put(ctx, s.scope, session)
}

func (s *Scoped) Destroy(ctx context.Context) error {
	return s.store.Delete(ctx, s.scope)
}

// TokenExpiry lee exp de un token JWT sin verificar la firma; la consola no
// tiene la clave, sólo quiere evitar enviar tokens ya vencidos. Devuelve nil
// para tokens opacos o sin exp.
func TokenExpiry(token string) *time.Time {
	if strings.Count(token, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	t := exp.Time.UTC()
	return &t
}
