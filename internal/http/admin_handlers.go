package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"admin-console/internal/domain"
	"admin-console/internal/service"
)

const (
	msgSaved   = "保存成功"
	msgDeleted = "删除成功"
)

// ListAccounts maneja GET /api/accounts.
func (h *ConsoleHandler) ListAccounts(c *gin.Context) {
	rs := h.scope(c)
	accounts, err := rs.admin.Accounts.List(c.Request.Context())
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, accounts)
}

// CreateAccount maneja POST /api/accounts.
func (h *ConsoleHandler) CreateAccount(c *gin.Context) {
	rs := h.scope(c)
	var req domain.CreateAdminAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	created, err := rs.admin.Accounts.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusCreated, created)
}

// UpdateAccount maneja PUT /api/accounts/:id.
func (h *ConsoleHandler) UpdateAccount(c *gin.Context) {
	rs := h.scope(c)
	var req domain.UpdateAdminAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	if err := rs.admin.Accounts.Update(c.Request.Context(), domain.ID(c.Param("id")), req); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusOK, nil)
}

// DeleteAccount maneja DELETE /api/accounts/:id.
func (h *ConsoleHandler) DeleteAccount(c *gin.Context) {
	rs := h.scope(c)
	if err := rs.admin.Accounts.Delete(c.Request.Context(), domain.ID(c.Param("id"))); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgDeleted)
	h.respond(c, rs, http.StatusOK, nil)
}

// ResetPassword maneja POST /api/accounts/:id/password.
func (h *ConsoleHandler) ResetPassword(c *gin.Context) {
	rs := h.scope(c)
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	if err := rs.admin.Accounts.ResetPassword(c.Request.Context(), domain.ID(c.Param("id")), req.Password); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusOK, nil)
}

// planView agrega las features ya decodificadas.
type planView struct {
	domain.MembershipPlan
	Features []string `json:"features"`
}

// ListPlans maneja GET /api/plans.
func (h *ConsoleHandler) ListPlans(c *gin.Context) {
	rs := h.scope(c)
	plans, err := rs.admin.Plans.List(c.Request.Context())
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	out := make([]planView, 0, len(plans))
	for _, p := range plans {
		features := p.Features()
		if features == nil {
			features = []string{}
		}
		out = append(out, planView{MembershipPlan: p, Features: features})
	}
	h.respond(c, rs, http.StatusOK, out)
}

// CreatePlan maneja POST /api/plans.
func (h *ConsoleHandler) CreatePlan(c *gin.Context) {
	rs := h.scope(c)
	req := service.DefaultPlanInput()
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	created, err := rs.admin.Plans.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusCreated, created)
}

// UpdatePlan maneja PUT /api/plans/:id.
func (h *ConsoleHandler) UpdatePlan(c *gin.Context) {
	rs := h.scope(c)
	var req domain.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	if err := rs.admin.Plans.Update(c.Request.Context(), domain.ID(c.Param("id")), req); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusOK, nil)
}

// SetPlanEnabled maneja POST /api/plans/:id/enabled.
func (h *ConsoleHandler) SetPlanEnabled(c *gin.Context) {
	rs := h.scope(c)
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		h.badRequest(c, rs, fmt.Errorf("enabled is required: %v", err))
		return
	}
	if err := rs.admin.Plans.SetEnabled(c.Request.Context(), domain.ID(c.Param("id")), *req.Enabled); err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, nil)
}

// ListTemplates maneja GET /api/templates.
func (h *ConsoleHandler) ListTemplates(c *gin.Context) {
	rs := h.scope(c)
	templates, err := rs.admin.Templates.List(c.Request.Context())
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, templates)
}

// CreateTemplate maneja POST /api/templates.
func (h *ConsoleHandler) CreateTemplate(c *gin.Context) {
	rs := h.scope(c)
	var req domain.PromptTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	created, err := rs.admin.Templates.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusCreated, created)
}

// UpdateTemplate maneja PUT /api/templates/:id.
func (h *ConsoleHandler) UpdateTemplate(c *gin.Context) {
	rs := h.scope(c)
	var req domain.PromptTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	if err := rs.admin.Templates.Update(c.Request.Context(), domain.ID(c.Param("id")), req); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusOK, nil)
}

// DeleteTemplate maneja DELETE /api/templates/:id.
func (h *ConsoleHandler) DeleteTemplate(c *gin.Context) {
	rs := h.scope(c)
	if err := rs.admin.Templates.Delete(c.Request.Context(), domain.ID(c.Param("id"))); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgDeleted)
	h.respond(c, rs, http.StatusOK, nil)
}

// PaymentSettings maneja GET /api/payment.
func (h *ConsoleHandler) PaymentSettings(c *gin.Context) {
	rs := h.scope(c)
	settings, err := rs.admin.Payments.Settings(c.Request.Context())
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, settings)
}

// SavePayment maneja PUT /api/payment/:method. config es el objeto tipado
// del canal.
func (h *ConsoleHandler) SavePayment(c *gin.Context) {
	rs := h.scope(c)
	method, ok := domain.ParsePaymentMethod(c.Param("method"))
	if !ok {
		h.fail(c, rs, fmt.Errorf("%w: %q", service.ErrUnknownPayment, c.Param("method")))
		return
	}
	var req struct {
		Enabled bool            `json:"enabled"`
		Config  json.RawMessage `json:"config"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	config, err := decodeChannelConfig(method, req.Config)
	if err != nil {
		h.badRequest(c, rs, err)
		return
	}
	if err := rs.admin.Payments.Save(c.Request.Context(), method, req.Enabled, config); err != nil {
		h.fail(c, rs, err)
		return
	}
	rs.collector.Add(msgSaved)
	h.respond(c, rs, http.StatusOK, nil)
}

func decodeChannelConfig(method domain.PaymentMethod, raw json.RawMessage) (any, error) {
	var target any
	switch method {
	case domain.PaymentWechat:
		target = &domain.WechatConfig{}
	case domain.PaymentAlipay:
		cfg := domain.DefaultAlipayConfig()
		target = &cfg
	default:
		target = &domain.BankConfig{}
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, target); err != nil {
			return nil, fmt.Errorf("decode %s config: %w", method, err)
		}
	}
	return target, nil
}

// ListUsers maneja GET /api/users.
func (h *ConsoleHandler) ListUsers(c *gin.Context) {
	rs := h.scope(c)
	var q struct {
		Keyword string `form:"keyword"`
		Page    int    `form:"page"`
		Size    int    `form:"size"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	users, err := rs.admin.Users.List(c.Request.Context(), service.UserQuery{Keyword: q.Keyword, Page: q.Page, Size: q.Size})
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, users)
}

// ListMembers maneja GET /api/members.
func (h *ConsoleHandler) ListMembers(c *gin.Context) {
	rs := h.scope(c)
	members, err := rs.admin.Members.List(c.Request.Context(), c.Query("planCode"))
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, members)
}

// ListPoints maneja GET /api/points/transactions.
func (h *ConsoleHandler) ListPoints(c *gin.Context) {
	rs := h.scope(c)
	txs, err := rs.admin.Points.Transactions(c.Request.Context(), domain.PointsDirection(c.Query("type")))
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, txs)
}

// PointsSummary maneja GET /api/points/summary.
func (h *ConsoleHandler) PointsSummary(c *gin.Context) {
	rs := h.scope(c)
	summary, err := rs.admin.Points.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, summary)
}
