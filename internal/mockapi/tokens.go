package mockapi

import (
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

const tokenIssuer = "admin-console-mock"

// Claims son los claims de los tokens que emite el backend simulado.
type Claims struct {
	AdminUserID int64  `json:"adminUserId"`
	TenantID    string `json:"tenantId"`
	jwt.RegisteredClaims
}

// tokenService firma tokens HS256 y lleva la lista de jti revocados.
type tokenService struct {
	secret  []byte
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex
	revoked map[string]struct{}
}

func newTokenService(secret string, ttl time.Duration) *tokenService {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &tokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]struct{}),
	}
}

func (s *tokenService) Issue(adminID int64, tenantID string) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	now := s.now().UTC()
	claims := Claims{
		AdminUserID: adminID,
		TenantID:    tenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(adminID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) Parse(tokenString string) (Claims, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrTokenInvalid
	}
	var claims Claims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if claims.Issuer != tokenIssuer || claims.ID == "" {
		return Claims{}, ErrTokenInvalid
	}
	s.mu.Lock()
	_, revoked := s.revoked[claims.ID]
	s.mu.Unlock()
	if revoked {
		return Claims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *tokenService) Revoke(jti string) {
	s.mu.Lock()
	s.revoked[jti] = struct{}{}
	s.mu.Unlock()
}
