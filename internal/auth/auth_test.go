package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"admin-console/internal/domain"
	"admin-console/internal/notify"
	"admin-console/internal/session"
)

func newLoginServer(t *testing.T, status int, body string, seen *http.Request) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = *r.Clone(context.Background())
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestLoginStoresSession(t *testing.T) {
	var seen http.Request
	var sentBody Credentials
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = *r.Clone(context.Background())
		_ = json.NewDecoder(r.Body).Decode(&sentBody)
		_, _ = w.Write([]byte(`{"token":"tok-1","adminUserId":7,"displayName":"超级管理员","tenantId":"1"}`))
	}))
	defer ts.Close()

	svc := NewService(ts.URL+"/api", "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")
	collector := notify.NewCollector()

	got, err := svc.Login(context.Background(), holder, collector, Credentials{Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Token != "tok-1" || got.AdminUserID != "7" || got.DisplayName != "超级管理员" {
		t.Fatalf("unexpected session %+v", got)
	}
	if seen.URL.Path != "/api/admin/auth/login" || seen.Method != http.MethodPost {
		t.Fatalf("unexpected request %s %s", seen.Method, seen.URL.Path)
	}
	if seen.Header.Get("X-Tenant-Id") != "1" || seen.Header.Get("Authorization") != "" {
		t.Fatalf("unexpected headers %+v", seen.Header)
	}
	if sentBody.Username != "admin" || sentBody.Password != "pw" {
		t.Fatalf("unexpected body %+v", sentBody)
	}

	stored, ok, err := holder.Current(context.Background())
	if err != nil || !ok || stored.Token != "tok-1" {
		t.Fatalf("expected stored session, got %+v %v %v", stored, ok, err)
	}
	if msgs := collector.Messages(); len(msgs) != 1 || msgs[0] != MsgLoginSuccess {
		t.Fatalf("unexpected notifications %v", msgs)
	}

	profile, ok, err := svc.Current(context.Background(), holder)
	if err != nil || !ok || profile.DisplayName != "超级管理员" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if err := svc.Logout(context.Background(), holder); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := holder.Current(context.Background()); ok {
		t.Fatalf("session should be cleared after logout")
	}
}

func TestLoginAcceptsWrappedResponse(t *testing.T) {
	ts := newLoginServer(t, http.StatusOK, `{"code":0,"data":{"token":"tok-2","adminUserId":"3","displayName":"ops","tenantId":"1"},"msg":""}`, nil)
	svc := NewService(ts.URL, "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")

	got, err := svc.Login(context.Background(), holder, nil, Credentials{Username: "ops", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.Token != "tok-2" || got.AdminUserID != "3" {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestLoginFailures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message field", http.StatusUnauthorized, `{"message":"用户名或密码错误"}`, "用户名或密码错误"},
		{"msg field", http.StatusBadRequest, `{"code":400,"msg":"账号已停用"}`, "账号已停用"},
		{"plain text", http.StatusInternalServerError, "boom", "boom"},
		{"empty body", http.StatusUnauthorized, "", MsgLoginFailed},
		{"missing token", http.StatusOK, `{"displayName":"x"}`, MsgMissingToken},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ts := newLoginServer(t, tc.status, tc.body, nil)
			svc := NewService(ts.URL, "1", nil, nil)
			holder := session.NewScoped(session.NewMemoryStore(), "cli")
			collector := notify.NewCollector()

			_, err := svc.Login(context.Background(), holder, collector, Credentials{Username: "u", Password: "p"})
			var loginErr *LoginError
			if !errors.As(err, &loginErr) {
				t.Fatalf("expected LoginError, got %v", err)
			}
			if loginErr.Message != tc.wantMsg || loginErr.Status != tc.status {
				t.Fatalf("unexpected error %+v", loginErr)
			}
			if msgs := collector.Messages(); len(msgs) != 1 || msgs[0] != tc.wantMsg {
				t.Fatalf("expected exactly one notification, got %v", msgs)
			}
			if _, ok, _ := holder.Current(context.Background()); ok {
				t.Fatalf("failed login must not store a session")
			}
		})
	}
}

func TestLoginRejectsEmptyCredentials(t *testing.T) {
	svc := NewService("http://127.0.0.1:1", "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")
	_, err := svc.Login(context.Background(), holder, nil, Credentials{Username: " ", Password: ""})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLoginDoesNotLeakPreviousSession(t *testing.T) {
	ts := newLoginServer(t, http.StatusUnauthorized, "", nil)
	svc := NewService(ts.URL, "1", nil, nil)
	store := session.NewMemoryStore()
	holder := session.NewScoped(store, "cli")
	if err := holder.Save(context.Background(), domain.Session{Token: "old"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := svc.Login(context.Background(), holder, nil, Credentials{Username: "u", Password: "p"}); err == nil {
		t.Fatalf("expected failure")
	}
	got, ok, _ := holder.Current(context.Background())
	if !ok || got.Token != "old" {
		t.Fatalf("a failed login keeps the existing session untouched, got %+v", got)
	}
}

func TestLogoutRevokesTokenRemotely(t *testing.T) {
	var seen http.Request
	ts := newLoginServer(t, http.StatusOK, `{"code":0,"data":null,"msg":""}`, &seen)
	svc := NewService(ts.URL+"/api", "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")
	if err := holder.Save(context.Background(), domain.Session{Token: "tok-1"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Logout(context.Background(), holder); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if seen.Method != http.MethodPost || seen.URL.Path != "/api/admin/auth/logout" {
		t.Fatalf("unexpected request %s %s", seen.Method, seen.URL.Path)
	}
	if seen.Header.Get("Authorization") != "Bearer tok-1" || seen.Header.Get("X-Tenant-Id") != "1" {
		t.Fatalf("unexpected headers %+v", seen.Header)
	}
	if _, ok, _ := holder.Current(context.Background()); ok {
		t.Fatalf("session should be cleared after logout")
	}
}

func TestLogoutClearsSessionWhenBackendFails(t *testing.T) {
	ts := newLoginServer(t, http.StatusUnauthorized, "", nil)
	svc := NewService(ts.URL, "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")
	if err := holder.Save(context.Background(), domain.Session{Token: "stale"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Logout(context.Background(), holder); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := holder.Current(context.Background()); ok {
		t.Fatalf("session should be cleared even when the backend rejects the logout")
	}
}

func TestLogoutWithoutSessionSendsNothing(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
	}))
	defer ts.Close()
	svc := NewService(ts.URL, "1", nil, nil)
	holder := session.NewScoped(session.NewMemoryStore(), "cli")

	if err := svc.Logout(context.Background(), holder); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no backend call, got %d", calls)
	}
}
