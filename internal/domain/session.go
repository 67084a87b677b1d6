package domain

import (
	"strings"
	"time"
)

// Session es la prueba de autenticación que guarda el cliente.
type Session struct {
	Token       string     `json:"token"`
	AdminUserID ID         `json:"adminUserId"`
	DisplayName string     `json:"displayName"`
	TenantID    ID         `json:"tenantId"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
}

// Valid indica si la sesión puede usarse para autenticar una llamada.
func (s Session) Valid(now time.Time) bool {
	if strings.TrimSpace(s.Token) == "" {
		return false
	}
	if s.ExpiresAt != nil && !now.Before(*s.ExpiresAt) {
		return false
	}
	return true
}

// AdminProfile es el perfil cacheado junto al token (clave adminUser).
type AdminProfile struct {
	ID          ID     `json:"id"`
	DisplayName string `json:"displayName"`
	TenantID    ID     `json:"tenantId"`
}

func (s Session) Profile() AdminProfile {
	return AdminProfile{
		ID:          s.AdminUserID,
		DisplayName: s.DisplayName,
		TenantID:    s.TenantID,
	}
}
