package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"admin-console/internal/domain"
)

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStore struct {
	client redisKV
	prefix string
	ttl    time.Duration
}

// NewRedisStore comparte las sesiones entre instancias de la consola. ttl es
// el máximo de vida de una clave; si el token trae exp se usa el menor.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{
		client: client,
		prefix: "console:session:",
		ttl:    ttl,
	}
}

func (s *redisStore) Get(ctx context.Context, scope string) (domain.Session, bool, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return domain.Session{}, false, nil
	}
	raw, err := s.client.Get(ctx, s.prefix+scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("redis get session: %w", err)
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		// Un valor corrupto equivale a no tener sesión.
		if err := s.client.Del(ctx, s.prefix+scope).Err(); err != nil {
			return domain.Session{}, false, fmt.Errorf("redis delete corrupt session: %w", err)
		}
		return domain.Session{}, false, nil
	}
	return session, session.Token != "", nil
}

func (s *redisStore) Put(ctx context.Context, scope string, session domain.Session) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return ErrEmptyScope
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := s.ttl
	if session.ExpiresAt != nil {
		if until := time.Until(*session.ExpiresAt); until > 0 && until < ttl {
			ttl = until
		}
	}
	return s.client.Set(ctx, s.prefix+scope, raw, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, scope string) error {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+scope).Err()
}
