package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admin-console/internal/auth"
	"admin-console/internal/domain"
	"admin-console/internal/gateway"
	"admin-console/internal/mockapi"
	"admin-console/internal/repository"
	"admin-console/internal/service"
	"admin-console/internal/session"
)

type consoleResponse struct {
	Data          json.RawMessage `json:"data"`
	Notifications []string        `json:"notifications"`
	Error         string          `json:"error"`
	Kind          string          `json:"kind"`
	Code          int             `json:"code"`
	Redirect      string          `json:"redirect"`
}

type consoleHarness struct {
	router   *gin.Engine
	sessions session.Store
}

func newConsoleHarness(t *testing.T) *consoleHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend, err := mockapi.NewServer(mockapi.Options{Secret: "secret", TenantID: "1"})
	if err != nil {
		t.Fatalf("mock backend: %v", err)
	}
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	baseURL := srv.URL + "/api"
	audit := service.NewAuditService(repository.NewMemoryAuditRepository(0), logger)
	gw := gateway.NewClient(baseURL, "1", srv.Client(), logger).WithObserver(audit)
	store := session.NewMemoryStore()
	console := NewConsoleHandler(logger, store, gw, auth.NewService(baseURL, "1", srv.Client(), logger), audit, "/login")
	return &consoleHarness{router: NewRouter(logger, console, RouterOptions{}), sessions: store}
}

func (h *consoleHarness) do(t *testing.T, method, path string, cookie *http.Cookie, body any) (*httptest.ResponseRecorder, consoleResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)

	var resp consoleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, resp
}

func scopeCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == scopeCookie {
			return c
		}
	}
	t.Fatalf("expected %s cookie", scopeCookie)
	return nil
}

func (h *consoleHarness) login(t *testing.T) *http.Cookie {
	t.Helper()
	rec, resp := h.do(t, http.MethodPost, "/api/login", nil, map[string]string{"username": "admin", "password": "admin123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d (%+v)", rec.Code, resp)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0] != auth.MsgLoginSuccess {
		t.Fatalf("unexpected login notifications %v", resp.Notifications)
	}
	return scopeCookieFrom(t, rec)
}

func TestConsole_MeWithoutSessionRedirects(t *testing.T) {
	h := newConsoleHarness(t)
	rec, resp := h.do(t, http.MethodGet, "/api/me", nil, nil)
	if rec.Code != http.StatusUnauthorized || resp.Redirect != "/login" {
		t.Fatalf("expected 401 with redirect, got %d %+v", rec.Code, resp)
	}
	scopeCookieFrom(t, rec)
}

func TestConsole_LoginScopesSessionToBrowser(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)

	rec, resp := h.do(t, http.MethodGet, "/api/me", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var profile domain.AdminProfile
	if err := json.Unmarshal(resp.Data, &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.ID != "1" || profile.DisplayName != "超级管理员" || profile.TenantID != "1" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	other := &http.Cookie{Name: scopeCookie, Value: "6f1c2a8e-0d6b-4c55-9a4e-111111111111"}
	if rec, _ := h.do(t, http.MethodGet, "/api/me", other, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("another browser must not see the session, got %d", rec.Code)
	}
}

func TestConsole_LoginFailureNotifiesOnce(t *testing.T) {
	h := newConsoleHarness(t)
	rec, resp := h.do(t, http.MethodPost, "/api/login", nil, map[string]string{"username": "admin", "password": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0] != "用户名或密码错误" {
		t.Fatalf("unexpected notifications %v", resp.Notifications)
	}
	if resp.Redirect != "" {
		t.Fatalf("failed login must not redirect")
	}
}

func TestConsole_ListPlansDecodesFeatures(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	rec, resp := h.do(t, http.MethodGet, "/api/plans", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var plans []struct {
		PlanCode string   `json:"planCode"`
		Features []string `json:"features"`
	}
	if err := json.Unmarshal(resp.Data, &plans); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(plans) != 2 || len(plans[0].Features) != 2 || len(plans[1].Features) != 1 || plans[1].Features[0] != "永久有效" {
		t.Fatalf("unexpected plans %+v", plans)
	}
	if len(resp.Notifications) != 0 {
		t.Fatalf("expected no notifications, got %v", resp.Notifications)
	}
}

func TestConsole_DuplicatePlanIsBusinessError(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	rec, resp := h.do(t, http.MethodPost, "/api/plans", cookie, map[string]any{
		"planCode": "PRO_MONTHLY",
		"name":     "重复",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp.Kind != "business" || resp.Code != 1001 {
		t.Fatalf("unexpected error body %+v", resp)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0] != "套餐编码已存在" {
		t.Fatalf("unexpected notifications %v", resp.Notifications)
	}
	if rec, _ := h.do(t, http.MethodGet, "/api/me", cookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("business error must keep the session, got %d", rec.Code)
	}
}

func TestConsole_StaleTokenExpiresSession(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	if err := h.sessions.Put(context.Background(), cookie.Value, domain.Session{Token: "stale"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	rec, resp := h.do(t, http.MethodGet, "/api/accounts", cookie, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp.Kind != "session_expired" || resp.Redirect != "/login" {
		t.Fatalf("unexpected body %+v", resp)
	}
	if len(resp.Notifications) != 1 || resp.Notifications[0] != gateway.MsgSessionExpired {
		t.Fatalf("unexpected notifications %v", resp.Notifications)
	}
	if _, ok, _ := h.sessions.Get(context.Background(), cookie.Value); ok {
		t.Fatalf("expected session removed from store")
	}
}

func TestConsole_ValidationErrorNotifies(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	rec, resp := h.do(t, http.MethodPost, "/api/plans", cookie, map[string]any{"name": "没有编码"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(resp.Notifications) != 1 {
		t.Fatalf("expected one notification, got %v", resp.Notifications)
	}
}

func TestConsole_PaymentSaveAndRead(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	rec, resp := h.do(t, http.MethodPut, "/api/payment/bank", cookie, map[string]any{
		"enabled": false,
		"config":  map[string]string{"bankName": "招商银行", "accountNo": "6225", "accountName": "某公司"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d (%+v)", rec.Code, resp)
	}

	rec, resp = h.do(t, http.MethodGet, "/api/payment", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("settings: expected 200, got %d", rec.Code)
	}
	var settings service.ChannelSettings
	if err := json.Unmarshal(resp.Data, &settings); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if settings.Enabled[domain.PaymentBank] || settings.Bank.BankName != "招商银行" {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if !settings.Enabled[domain.PaymentWechat] {
		t.Fatalf("wechat must stay enabled")
	}

	if rec, _ := h.do(t, http.MethodPut, "/api/payment/paypal", cookie, map[string]any{}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown method, got %d", rec.Code)
	}
}

func TestConsole_LogoutAndAudit(t *testing.T) {
	h := newConsoleHarness(t)
	cookie := h.login(t)
	h.do(t, http.MethodGet, "/api/members", cookie, nil)

	rec, resp := h.do(t, http.MethodGet, "/api/audit?limit=5", cookie, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit: expected 200, got %d", rec.Code)
	}
	var entries []domain.AuditEntry
	if err := json.Unmarshal(resp.Data, &entries); err != nil {
		t.Fatalf("decode audit: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "/admin/members" {
		t.Fatalf("unexpected audit entries %+v", entries)
	}

	if rec, _ := h.do(t, http.MethodPost, "/api/logout", cookie, nil); rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", rec.Code)
	}
	if rec, _ := h.do(t, http.MethodGet, "/api/me", cookie, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", rec.Code)
	}
}
