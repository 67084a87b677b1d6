package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"admin-console/internal/domain"
)

// SessionProvider entrega la sesión vigente y la destruye ante un 401.
// Current devuelve false si no hay sesión; un error impide enviar la llamada.
type SessionProvider interface {
	Current(ctx context.Context) (domain.Session, bool, error)
	Destroy(ctx context.Context) error
}

// Notifier muestra un aviso transitorio al usuario.
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// Navigator lleva al usuario a la pantalla de login.
type Navigator interface {
	RedirectToLogin(ctx context.Context, loginPath string)
}

// Observer recibe el resultado de cada llamada, exitosa o no.
type Observer interface {
	Observe(ctx context.Context, call Call)
}

// Call resume una llamada terminada. Kind es 0 si tuvo éxito.
type Call struct {
	Method   string
	Path     string
	Status   int
	Kind     Kind
	Message  string
	Duration time.Duration
}

// Request describe una llamada saliente.
type Request struct {
	Method string
	Path   string
	Query  map[string]string
	Body   any
}

// Client es el gateway de peticiones tipadas contra la API de administración.
type Client struct {
	baseURL   string
	tenantID  string
	loginPath string
	client    *http.Client
	sessions  SessionProvider
	notifier  Notifier
	navigator Navigator
	observer  Observer
	logger    *zap.Logger
}

// NewClient construye un gateway apuntando a baseURL (prefijo común, p.ej.
// "https://host/api"). httpClient y logger pueden ser nil.
func NewClient(baseURL, tenantID string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		tenantID:  tenantID,
		loginPath: "/login",
		client:    httpClient,
		logger:    logger,
	}
}

// WithSession devuelve una copia que autentica con p.
func (c *Client) WithSession(p SessionProvider) *Client {
	cp := *c
	cp.sessions = p
	return &cp
}

func (c *Client) WithNotifier(n Notifier) *Client {
	cp := *c
	cp.notifier = n
	return &cp
}

func (c *Client) WithNavigator(n Navigator, loginPath string) *Client {
	cp := *c
	cp.navigator = n
	if loginPath != "" {
		cp.loginPath = loginPath
	}
	return &cp
}

func (c *Client) WithObserver(o Observer) *Client {
	cp := *c
	cp.observer = o
	return &cp
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) TenantID() string {
	return c.tenantID
}

func Get[T any](ctx context.Context, c *Client, path string, query map[string]string) (T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query})
}

func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body})
}

func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body})
}

func Delete[T any](ctx context.Context, c *Client, path string) (T, error) {
	return Do[T](ctx, c, Request{Method: http.MethodDelete, Path: path})
}

// Do ejecuta una llamada y devuelve data ya desenvuelto. Todo fallo se
// notifica exactamente una vez antes de devolverse.
func Do[T any](ctx context.Context, c *Client, req Request) (T, error) {
	var zero T
	start := time.Now()
	if req.Method == "" {
		req.Method = http.MethodGet
	}

	data, status, gwErr := c.roundTrip(ctx, req)
	if gwErr != nil {
		c.finish(ctx, req, status, start, gwErr)
		return zero, gwErr
	}

	var out T
	if !isNullData(data) {
		if err := json.Unmarshal(data, &out); err != nil {
			gwErr = &Error{
				Kind:    KindDecode,
				Message: fmt.Sprintf("响应数据格式错误: %v", err),
				Status:  status,
				Err:     err,
			}
			c.finish(ctx, req, status, start, gwErr)
			return zero, gwErr
		}
	}
	c.finish(ctx, req, status, start, nil)
	return out, nil
}

func (c *Client) roundTrip(ctx context.Context, req Request) (json.RawMessage, int, *Error) {
	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, &Error{Kind: KindTransport, Message: fmt.Sprintf("marshal request: %v", err), Err: err}
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.buildURL(req.Path, req.Query), bodyReader)
	if err != nil {
		return nil, 0, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Tenant-Id", c.tenantID)

	if c.sessions != nil {
		session, ok, err := c.sessions.Current(ctx)
		switch {
		case errors.Is(err, ErrSessionExpired):
			c.expire(ctx)
			return nil, 0, &Error{Kind: KindSessionExpired, Message: MsgSessionExpired, Err: err}
		case err != nil:
			return nil, 0, &Error{Kind: KindTransport, Message: fmt.Sprintf("read session: %v", err), Err: err}
		case ok:
			httpReq.Header.Set("Authorization", "Bearer "+session.Token)
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, 0, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &Error{Kind: KindTransport, Message: err.Error(), Status: resp.StatusCode, Err: err}
	}

	status := resp.StatusCode
	statusText := http.StatusText(status)

	if status < 200 || status >= 300 {
		if status == http.StatusUnauthorized {
			c.expire(ctx)
			return nil, status, &Error{Kind: KindSessionExpired, Message: MsgSessionExpired, Status: status, Err: ErrSessionExpired}
		}
		kind := KindBusiness
		env, ok := parseEnvelope(body)
		if !ok {
			kind = KindDecode
			env = syntheticEnvelope(body, statusText)
		}
		gwErr := &Error{
			Kind:    kind,
			Message: firstNonEmpty(env.message(), strings.TrimSpace(string(body)), statusText, MsgRequestFailed),
			Status:  status,
		}
		if env.Code != nil {
			gwErr.Code = *env.Code
		}
		return nil, status, gwErr
	}

	// Sin sobre no hay code == 0: un cuerpo vacío también es un fallo.
	env, ok := parseEnvelope(body)
	if !ok || env.Code == nil {
		return nil, status, &Error{
			Kind:    KindDecode,
			Message: firstNonEmpty(strings.TrimSpace(string(body)), statusText, MsgRequestFailed),
			Status:  status,
		}
	}
	if *env.Code != 0 {
		return nil, status, &Error{
			Kind:    KindBusiness,
			Message: firstNonEmpty(env.message(), MsgRequestFailed),
			Status:  status,
			Code:    *env.Code,
		}
	}
	return env.Data, status, nil
}

// buildURL agrega los parámetros ordenados por clave.
func (c *Client) buildURL(path string, query map[string]string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	target := c.baseURL + path
	if len(query) == 0 {
		return target
	}
	values := url.Values{}
	for k, v := range query {
		values.Set(k, v)
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return target + sep + values.Encode()
}

// expire destruye la sesión y redirige al login. Es idempotente.
func (c *Client) expire(ctx context.Context) {
	if c.sessions != nil {
		if err := c.sessions.Destroy(ctx); err != nil {
			c.logger.Warn("destroy session failed", zap.Error(err))
		}
	}
	if c.navigator != nil {
		c.navigator.RedirectToLogin(ctx, c.loginPath)
	}
}

func (c *Client) finish(ctx context.Context, req Request, status int, start time.Time, gwErr *Error) {
	call := Call{
		Method:   req.Method,
		Path:     req.Path,
		Status:   status,
		Duration: time.Since(start),
	}
	if gwErr != nil {
		call.Kind = gwErr.Kind
		call.Message = gwErr.Message
		c.logger.Warn("api call failed",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", status),
			zap.String("kind", gwErr.Kind.String()),
			zap.String("message", gwErr.Message),
		)
		if c.notifier != nil {
			c.notifier.Notify(ctx, gwErr.Message)
		}
	} else {
		c.logger.Debug("api call",
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Int("status", status),
			zap.Duration("latency", call.Duration),
		)
	}
	if c.observer != nil {
		c.observer.Observe(ctx, call)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
