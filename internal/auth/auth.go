package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"admin-console/internal/domain"
	"admin-console/internal/gateway"
)

const (
	loginPath  = "/admin/auth/login"
	logoutPath = "/admin/auth/logout"

	MsgLoginFailed  = "登录失败，请检查用户名或密码"
	MsgLoginSuccess = "登录成功"
	MsgMissingToken = "登录响应缺少令牌"
)

var ErrInvalidInput = errors.New("username and password are required")

// SessionHolder es el almacenamiento de sesión de un scope.
type SessionHolder interface {
	Current(ctx context.Context) (domain.Session, bool, error)
	Save(ctx context.Context, session domain.Session) error
	Destroy(ctx context.Context) error
}

// LoginError es un rechazo del endpoint de login.
type LoginError struct {
	Message string
	Status  int
}

func (e *LoginError) Error() string {
	return e.Message
}

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse es el contrato propio del login, sin sobre. Algunos despliegues
// sí lo envuelven; Data cubre ese caso.
type loginResponse struct {
	Token       string    `json:"token"`
	AdminUserID domain.ID `json:"adminUserId"`
	DisplayName string    `json:"displayName"`
	TenantID    domain.ID `json:"tenantId"`
	Message     string    `json:"message"`
	Msg         string    `json:"msg"`
	Data        *struct {
		Token       string    `json:"token"`
		AdminUserID domain.ID `json:"adminUserId"`
		DisplayName string    `json:"displayName"`
		TenantID    domain.ID `json:"tenantId"`
	} `json:"data"`
}

func (r loginResponse) session() domain.Session {
	if r.Token == "" && r.Data != nil {
		return domain.Session{
			Token:       r.Data.Token,
			AdminUserID: r.Data.AdminUserID,
			DisplayName: r.Data.DisplayName,
			TenantID:    r.Data.TenantID,
		}
	}
	return domain.Session{
		Token:       r.Token,
		AdminUserID: r.AdminUserID,
		DisplayName: r.DisplayName,
		TenantID:    r.TenantID,
	}
}

// Service habla con el endpoint de autenticación.
type Service struct {
	baseURL  string
	tenantID string
	client   *http.Client
	logger   *zap.Logger
}

func NewService(baseURL, tenantID string, httpClient *http.Client, logger *zap.Logger) *Service {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		baseURL:  strings.TrimRight(baseURL, "/"),
		tenantID: tenantID,
		client:   httpClient,
		logger:   logger,
	}
}

// Login autentica, guarda la sesión en sessions y avisa por notifier. Un fallo
// se notifica una sola vez.
func (s *Service) Login(ctx context.Context, sessions SessionHolder, notifier gateway.Notifier, creds Credentials) (domain.Session, error) {
	session, err := s.login(ctx, creds)
	if err == nil {
		err = sessions.Save(ctx, session)
		if err != nil {
			err = fmt.Errorf("save session: %w", err)
		}
	}
	if err != nil {
		s.logger.Warn("login failed", zap.String("username", creds.Username), zap.Error(err))
		if notifier != nil {
			notifier.Notify(ctx, err.Error())
		}
		return domain.Session{}, err
	}
	s.logger.Info("login succeeded", zap.String("username", creds.Username), zap.String("admin_user_id", session.AdminUserID.String()))
	if notifier != nil {
		notifier.Notify(ctx, MsgLoginSuccess)
	}
	return session, nil
}

func (s *Service) login(ctx context.Context, creds Credentials) (domain.Session, error) {
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		return domain.Session{}, ErrInvalidInput
	}
	payload, err := json.Marshal(creds)
	if err != nil {
		return domain.Session{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return domain.Session{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", s.tenantID)

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Session{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Session{}, fmt.Errorf("read response: %w", err)
	}

	var data loginResponse
	text := strings.TrimSpace(string(body))
	if text != "" {
		if err := json.Unmarshal(body, &data); err != nil {
			data = loginResponse{Message: text}
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := data.Message
		if msg == "" {
			msg = data.Msg
		}
		if msg == "" {
			msg = MsgLoginFailed
		}
		return domain.Session{}, &LoginError{Message: msg, Status: resp.StatusCode}
	}

	session := data.session()
	if session.Token == "" {
		return domain.Session{}, &LoginError{Message: MsgMissingToken, Status: resp.StatusCode}
	}
	return session, nil
}

// Logout revoca el token en el backend si puede y siempre borra la sesión
// local. Es idempotente.
func (s *Service) Logout(ctx context.Context, sessions SessionHolder) error {
	current, ok, err := sessions.Current(ctx)
	if err != nil && !errors.Is(err, gateway.ErrSessionExpired) {
		s.logger.Warn("logout: read session", zap.Error(err))
	}
	if ok && current.Token != "" {
		if err := s.revoke(ctx, current.Token); err != nil {
			s.logger.Warn("logout: remote revoke failed", zap.Error(err))
		}
	}
	return sessions.Destroy(ctx)
}

func (s *Service) revoke(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+logoutPath, bytes.NewReader([]byte("{}")))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant-Id", s.tenantID)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("logout status %d", resp.StatusCode)
	}
	return nil
}

// Current devuelve el perfil cacheado, sin token.
func (s *Service) Current(ctx context.Context, sessions SessionHolder) (domain.AdminProfile, bool, error) {
	session, ok, err := sessions.Current(ctx)
	if err != nil || !ok {
		return domain.AdminProfile{}, false, err
	}
	return session.Profile(), true, nil
}
