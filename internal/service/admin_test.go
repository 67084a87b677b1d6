package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"admin-console/internal/auth"
	"admin-console/internal/domain"
	"admin-console/internal/gateway"
	"admin-console/internal/mockapi"
	"admin-console/internal/notify"
	"admin-console/internal/repository"
	"admin-console/internal/session"
)

type testEnv struct {
	admin     *Admin
	sessions  *session.Scoped
	collector *notify.Collector
	redirects *notify.RedirectRecorder
	audit     *repository.MemoryAuditRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend, err := mockapi.NewServer(mockapi.Options{Secret: "secret", TenantID: "1"})
	if err != nil {
		t.Fatalf("mock backend: %v", err)
	}
	srv := httptest.NewServer(backend.Router())
	t.Cleanup(srv.Close)

	baseURL := srv.URL + "/api"
	sessions := session.NewScoped(session.NewMemoryStore(), "test")
	authSvc := auth.NewService(baseURL, "1", srv.Client(), nil)
	if _, err := authSvc.Login(context.Background(), sessions, nil, auth.Credentials{Username: "admin", Password: "admin123"}); err != nil {
		t.Fatalf("login: %v", err)
	}

	env := &testEnv{
		sessions:  sessions,
		collector: notify.NewCollector(),
		redirects: notify.NewRedirectRecorder(),
		audit:     repository.NewMemoryAuditRepository(0),
	}
	gw := gateway.NewClient(baseURL, "1", srv.Client(), nil).
		WithSession(sessions).
		WithNotifier(env.collector).
		WithNavigator(env.redirects, "/login").
		WithObserver(NewAuditService(env.audit, nil))
	env.admin = NewAdmin(gw)
	return env
}

func (e *testEnv) notifications(t *testing.T, want int) []string {
	t.Helper()
	msgs := e.collector.Messages()
	if len(msgs) != want {
		t.Fatalf("expected %d notifications, got %d: %v", want, len(msgs), msgs)
	}
	return msgs
}

func TestAccountService_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.admin.Accounts.Create(ctx, domain.CreateAdminAccountInput{Username: " ops ", Password: "pw", DisplayName: "运营"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected created id")
	}
	if err := env.admin.Accounts.Update(ctx, created.ID, domain.UpdateAdminAccountInput{DisplayName: "运营二", Enabled: false}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := env.admin.Accounts.ResetPassword(ctx, created.ID, "new-pw"); err != nil {
		t.Fatalf("reset password: %v", err)
	}

	accounts, err := env.admin.Accounts.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var found bool
	for _, a := range accounts {
		if a.ID == created.ID {
			found = true
			if a.Username != "ops" || a.DisplayName != "运营二" || a.Enabled {
				t.Fatalf("unexpected account %+v", a)
			}
		}
	}
	if !found {
		t.Fatalf("created account %s not listed", created.ID)
	}

	if err := env.admin.Accounts.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	env.notifications(t, 0)
}

func TestAccountService_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.admin.Accounts.Create(ctx, domain.CreateAdminAccountInput{Username: "  "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := env.admin.Accounts.Delete(ctx, ""); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
	if err := env.admin.Accounts.ResetPassword(ctx, "1", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	env.notifications(t, 0)
}

func TestAccountService_DeleteSelfIsBusinessError(t *testing.T) {
	env := newTestEnv(t)
	err := env.admin.Accounts.Delete(context.Background(), "1")
	if !errors.Is(err, gateway.ErrBusiness) {
		t.Fatalf("expected business error, got %v", err)
	}
	msgs := env.notifications(t, 1)
	if msgs[0] != "不能删除当前登录账号" {
		t.Fatalf("unexpected notification %q", msgs[0])
	}
}

func TestPlanService_DuplicateCode(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.admin.Plans.Create(context.Background(), domain.PlanInput{
		PlanCode: "PRO_MONTHLY",
		Name:     "重复",
	})
	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gateway.KindBusiness || gwErr.Code != 1001 {
		t.Fatalf("expected business error 1001, got %v", err)
	}
	msgs := env.notifications(t, 1)
	if msgs[0] != "套餐编码已存在" {
		t.Fatalf("unexpected notification %q", msgs[0])
	}
	if env.redirects.Target() != "" {
		t.Fatalf("business error must not redirect")
	}
	if _, ok, _ := env.sessions.Current(context.Background()); !ok {
		t.Fatalf("business error must keep the session")
	}
}

func TestPlanService_CreateUpdateToggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := DefaultPlanInput()
	in.PlanCode = " VIP_YEAR "
	in.Name = "年卡"
	in.PriceCents = 19900
	in.Features = []string{"高清导出", " ", "专属客服"}
	created, err := env.admin.Plans.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	in.Name = "年度会员"
	in.Features = []string{"高清导出"}
	if err := env.admin.Plans.Update(ctx, created.ID, in); err != nil {
		t.Fatalf("update: %v", err)
	}

	plans, err := env.admin.Plans.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var plan domain.MembershipPlan
	for _, p := range plans {
		if p.ID == created.ID {
			plan = p
		}
	}
	if plan.PlanCode != "VIP_YEAR" || plan.Name != "年度会员" || !plan.Enabled {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if features := plan.Features(); len(features) != 1 || features[0] != "高清导出" {
		t.Fatalf("unexpected features %v", features)
	}

	if err := env.admin.Plans.Toggle(ctx, plan); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	plans, _ = env.admin.Plans.List(ctx)
	for _, p := range plans {
		if p.ID == created.ID && p.Enabled {
			t.Fatalf("expected plan disabled after toggle")
		}
	}
	env.notifications(t, 0)
}

func TestPlanService_ValidationSendsNothing(t *testing.T) {
	env := newTestEnv(t)
	cases := []domain.PlanInput{
		{Name: "no code"},
		{PlanCode: "X"},
		{PlanCode: "X", Name: "bad type", Type: "WEEKLY"},
		{PlanCode: "X", Name: "negative", PriceCents: -1},
	}
	for i, in := range cases {
		if _, err := env.admin.Plans.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
	entries, _ := env.audit.ListRecent(context.Background(), 0)
	if len(entries) != 0 {
		t.Fatalf("expected no calls, got %d", len(entries))
	}
}

func TestTemplateService_CRUD(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.admin.Templates.Create(ctx, domain.PromptTemplateInput{Name: "摘要", Content: "请总结以下内容"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.admin.Templates.Update(ctx, created.ID, domain.PromptTemplateInput{Name: "摘要v2", Content: "请用三句话总结"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := env.admin.Templates.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 templates, got %d", len(list))
	}
	if err := env.admin.Templates.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := env.admin.Templates.Delete(ctx, created.ID); !errors.Is(err, gateway.ErrBusiness) {
		t.Fatalf("expected business error on second delete, got %v", err)
	}
	if _, err := env.admin.Templates.Create(ctx, domain.PromptTemplateInput{Name: "x"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	env.notifications(t, 1)
}

func TestPaymentService_SettingsAndSave(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	settings, err := env.admin.Payments.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	for _, m := range domain.PaymentMethods {
		if !settings.Enabled[m] {
			t.Fatalf("expected %s enabled by default", m)
		}
	}
	if settings.Alipay.SignType != "RSA2" {
		t.Fatalf("expected default sign type, got %q", settings.Alipay.SignType)
	}

	alipay := settings.Alipay
	alipay.AppID = "2021000"
	if err := env.admin.Payments.Save(ctx, domain.PaymentAlipay, true, alipay); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := env.admin.Payments.SetEnabled(ctx, domain.PaymentAlipay, false); err != nil {
		t.Fatalf("set enabled: %v", err)
	}

	settings, err = env.admin.Payments.Settings(ctx)
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	if settings.Enabled[domain.PaymentAlipay] {
		t.Fatalf("expected alipay disabled")
	}
	if settings.Alipay.AppID != "2021000" || settings.Alipay.GatewayURL == "" {
		t.Fatalf("expected merged alipay config, got %+v", settings.Alipay)
	}

	if err := env.admin.Payments.Save(ctx, "PAYPAL", true, nil); !errors.Is(err, ErrUnknownPayment) {
		t.Fatalf("expected ErrUnknownPayment, got %v", err)
	}
	env.notifications(t, 0)
}

func TestMergeSettings_IgnoresUnknownAndInvalid(t *testing.T) {
	out := MergeSettings([]domain.PaymentConfig{
		{Method: "wechat", Enabled: false, ConfigJSON: `{"appId":"wx1","merchantId":"m1"}`},
		{Method: "BANK", Enabled: true, ConfigJSON: "{broken"},
		{Method: "PAYPAL", Enabled: false},
	})
	if out.Enabled[domain.PaymentWechat] || out.Wechat.AppID != "wx1" || out.Wechat.MerchantID != "m1" {
		t.Fatalf("unexpected wechat settings %+v / %v", out.Wechat, out.Enabled)
	}
	if !out.Enabled[domain.PaymentBank] || out.Bank.AccountNo != "" {
		t.Fatalf("unexpected bank settings %+v", out.Bank)
	}
	if _, ok := out.Enabled["PAYPAL"]; ok {
		t.Fatalf("unknown method must be ignored")
	}
}

func TestReadOnlyScreens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	users, err := env.admin.Users.List(ctx, UserQuery{Keyword: " bob "})
	if err != nil || len(users) != 1 || users[0].Nickname != "bob" {
		t.Fatalf("users: %v %+v", err, users)
	}
	members, err := env.admin.Members.List(ctx, "PRO_MONTHLY")
	if err != nil || len(members) != 2 {
		t.Fatalf("members: %v %+v", err, members)
	}
	spends, err := env.admin.Points.Transactions(ctx, domain.PointsSpend)
	if err != nil || len(spends) != 2 {
		t.Fatalf("points: %v %+v", err, spends)
	}
	if _, err := env.admin.Points.Transactions(ctx, "refund"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	summary, err := env.admin.Points.Summary(ctx)
	if err != nil || summary.TotalPool != 1030 {
		t.Fatalf("summary: %v %+v", err, summary)
	}
}

func TestStaleTokenExpiresSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if err := env.sessions.Save(ctx, domain.Session{Token: "stale"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	_, err := env.admin.Plans.List(ctx)
	if !errors.Is(err, gateway.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	msgs := env.notifications(t, 1)
	if msgs[0] != gateway.MsgSessionExpired {
		t.Fatalf("unexpected notification %q", msgs[0])
	}
	if env.redirects.Target() != "/login" {
		t.Fatalf("expected redirect to /login, got %q", env.redirects.Target())
	}
	if _, ok, _ := env.sessions.Current(ctx); ok {
		t.Fatalf("expected session destroyed")
	}

	entries, _ := env.audit.ListRecent(ctx, 1)
	if len(entries) != 1 || entries[0].Kind != "session_expired" || entries[0].Status != 401 {
		t.Fatalf("unexpected audit entries %+v", entries)
	}
}
