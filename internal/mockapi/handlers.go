package mockapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"admin-console/internal/domain"
)

// login responde sin sobre: {token, adminUserId, displayName, tenantId}.
func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "用户名和密码不能为空"})
		return
	}

	s.state.mu.RLock()
	acc, found := s.state.accountByUsername(strings.TrimSpace(req.Username))
	var record accountRecord
	if found {
		record = *acc
	}
	s.state.mu.RUnlock()

	if !found || !checkPassword(record.passwordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "用户名或密码错误"})
		return
	}
	if !record.Enabled {
		c.JSON(http.StatusForbidden, gin.H{"message": "账号已停用"})
		return
	}
	token, err := s.tokens.Issue(record.ID, s.tenantID)
	if err != nil {
		s.logger.Error("issue token failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "登录失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token":       token,
		"adminUserId": record.ID,
		"displayName": record.DisplayName,
		"tenantId":    s.tenantID,
	})
}

func (s *Server) logout(c *gin.Context) {
	s.tokens.Revoke(currentClaims(c).ID)
	ok(c, nil)
}

func pathInt(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return 0, false
	}
	return id, true
}

func (s *Server) listAccounts(c *gin.Context) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	ok(c, sortedAccounts(s.state.accounts))
}

func (s *Server) createAccount(c *gin.Context) {
	var req domain.CreateAdminAccountInput
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, codeBadRequest, "用户名和密码不能为空")
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error("hash password failed", zap.Error(err))
		fail(c, http.StatusInternalServerError, http.StatusInternalServerError, "服务器内部错误")
		return
	}

	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.accountByUsername(strings.TrimSpace(req.Username)); exists {
		fail(c, http.StatusOK, codeUserExists, "用户名已存在")
		return
	}
	acc := &accountRecord{
		ID:           s.state.id(),
		Username:     strings.TrimSpace(req.Username),
		DisplayName:  req.DisplayName,
		Enabled:      true,
		CreatedAt:    s.now().Format(timeLayout),
		passwordHash: hash,
	}
	s.state.accounts[acc.ID] = acc
	ok(c, gin.H{"id": acc.ID})
}

func (s *Server) updateAccount(c *gin.Context) {
	id, valid := pathInt(c)
	if !valid {
		return
	}
	var req domain.UpdateAdminAccountInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "参数错误")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc, found := s.state.accounts[id]
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	acc.DisplayName = req.DisplayName
	acc.Enabled = req.Enabled
	ok(c, nil)
}

func (s *Server) deleteAccount(c *gin.Context) {
	id, valid := pathInt(c)
	if !valid {
		return
	}
	if id == currentClaims(c).AdminUserID {
		fail(c, http.StatusOK, codeSelfDelete, "不能删除当前登录账号")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, found := s.state.accounts[id]; !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	delete(s.state.accounts, id)
	ok(c, nil)
}

func (s *Server) resetPassword(c *gin.Context) {
	id, valid := pathInt(c)
	if !valid {
		return
	}
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		fail(c, http.StatusBadRequest, codeBadRequest, "密码不能为空")
		return
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		fail(c, http.StatusInternalServerError, http.StatusInternalServerError, "服务器内部错误")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	acc, found := s.state.accounts[id]
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	acc.passwordHash = hash
	ok(c, nil)
}

func (s *Server) listPlans(c *gin.Context) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	ok(c, sortedPlans(s.state.plans))
}

func bindPlan(c *gin.Context) (domain.PlanInput, bool) {
	var req domain.PlanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "参数错误")
		return req, false
	}
	if strings.TrimSpace(req.PlanCode) == "" || strings.TrimSpace(req.Name) == "" || !req.Type.Valid() {
		fail(c, http.StatusBadRequest, codeBadRequest, "套餐编码、名称和类型不能为空")
		return req, false
	}
	return req, true
}

func applyPlan(p *planRecord, in domain.PlanInput) {
	p.PlanCode = strings.TrimSpace(in.PlanCode)
	p.Type = in.Type
	p.Name = strings.TrimSpace(in.Name)
	p.PriceCents = in.PriceCents
	p.DurationDays = in.DurationDays
	p.Seats = in.Seats
	p.PointsIncluded = in.PointsIncluded
	p.BonusPoints = in.BonusPoints
	p.Description = in.Description
	p.FeaturesJSON = in.FeaturesJSON
}

func (s *Server) createPlan(c *gin.Context) {
	in, valid := bindPlan(c)
	if !valid {
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	if _, exists := s.state.planByCode(in.PlanCode); exists {
		fail(c, http.StatusOK, codePlanExists, "套餐编码已存在")
		return
	}
	p := &planRecord{ID: s.state.id(), Enabled: true}
	applyPlan(p, in)
	s.state.plans[p.ID] = p
	ok(c, gin.H{"id": p.ID})
}

func (s *Server) updatePlan(c *gin.Context) {
	id, valid := pathInt(c)
	if !valid {
		return
	}
	in, valid := bindPlan(c)
	if !valid {
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	p, found := s.state.plans[id]
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	if other, exists := s.state.planByCode(in.PlanCode); exists && other.ID != id {
		fail(c, http.StatusOK, codePlanExists, "套餐编码已存在")
		return
	}
	applyPlan(p, in)
	ok(c, nil)
}

func (s *Server) setPlanEnabled(c *gin.Context) {
	id, valid := pathInt(c)
	if !valid {
		return
	}
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "enabled 参数无效")
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	p, found := s.state.plans[id]
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	p.Enabled = enabled
	ok(c, nil)
}

func (s *Server) listTemplates(c *gin.Context) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	ok(c, sortedTemplates(s.state.templates))
}

func bindTemplate(c *gin.Context) (domain.PromptTemplateInput, bool) {
	var req domain.PromptTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, codeBadRequest, "名称和内容不能为空")
		return req, false
	}
	return req, true
}

func (s *Server) createTemplate(c *gin.Context) {
	in, valid := bindTemplate(c)
	if !valid {
		return
	}
	id := uuid.NewString()
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.templates[id] = &domain.PromptTemplate{
		ID:        domain.ID(id),
		Name:      strings.TrimSpace(in.Name),
		Content:   in.Content,
		UpdatedAt: s.now().Format(timeLayout),
	}
	ok(c, gin.H{"id": id})
}

func (s *Server) updateTemplate(c *gin.Context) {
	in, valid := bindTemplate(c)
	if !valid {
		return
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	t, found := s.state.templates[c.Param("id")]
	if !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	t.Name = strings.TrimSpace(in.Name)
	t.Content = in.Content
	t.UpdatedAt = s.now().Format(timeLayout)
	ok(c, nil)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	id := c.Param("id")
	if _, found := s.state.templates[id]; !found {
		fail(c, http.StatusNotFound, codeNotFound, "记录不存在")
		return
	}
	delete(s.state.templates, id)
	ok(c, nil)
}

func (s *Server) listPayments(c *gin.Context) {
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	out := make([]domain.PaymentConfig, 0, len(s.state.payments))
	for _, m := range domain.PaymentMethods {
		if cfg, found := s.state.payments[m]; found {
			out = append(out, cfg)
		}
	}
	ok(c, out)
}

func (s *Server) savePayment(c *gin.Context) {
	method, known := domain.ParsePaymentMethod(c.Param("method"))
	if !known {
		fail(c, http.StatusBadRequest, codeBadRequest, "不支持的支付方式")
		return
	}
	var req domain.PaymentConfigInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, codeBadRequest, "参数错误")
		return
	}
	if raw := strings.TrimSpace(req.ConfigJSON); raw != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			fail(c, http.StatusBadRequest, codeBadRequest, "配置格式错误")
			return
		}
	}
	s.state.mu.Lock()
	defer s.state.mu.Unlock()
	s.state.payments[method] = domain.PaymentConfig{
		Method:     string(method),
		Enabled:    req.Enabled,
		ConfigJSON: req.ConfigJSON,
	}
	ok(c, nil)
}

func (s *Server) listUsers(c *gin.Context) {
	keyword := strings.ToLower(strings.TrimSpace(c.Query("keyword")))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = defaultPageSize
	}

	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	matched := make([]domain.UserAccount, 0, len(s.state.users))
	for _, u := range s.state.users {
		if keyword == "" ||
			strings.Contains(strings.ToLower(u.Nickname), keyword) ||
			strings.Contains(strings.ToLower(u.Email), keyword) ||
			strings.Contains(u.Phone, keyword) {
			matched = append(matched, u)
		}
	}
	start := (page - 1) * size
	if start >= len(matched) {
		ok(c, []domain.UserAccount{})
		return
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	ok(c, matched[start:end])
}

func (s *Server) listMembers(c *gin.Context) {
	planCode := strings.TrimSpace(c.Query("planCode"))
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	out := make([]domain.Member, 0, len(s.state.members))
	for _, m := range s.state.members {
		if planCode == "" || strings.EqualFold(m.PlanCode, planCode) {
			out = append(out, m)
		}
	}
	ok(c, out)
}

func (s *Server) listPoints(c *gin.Context) {
	direction := domain.PointsDirection(strings.TrimSpace(c.Query("type")))
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	out := make([]domain.PointsTransaction, 0, len(s.state.points))
	for _, tx := range s.state.points {
		if direction == "" || tx.Type == direction {
			out = append(out, tx)
		}
	}
	ok(c, out)
}

func (s *Server) pointsSummary(c *gin.Context) {
	today := s.now().Format("2006-01-02")
	var summary domain.PointsSummary
	s.state.mu.RLock()
	defer s.state.mu.RUnlock()
	for _, tx := range s.state.points {
		isToday := strings.HasPrefix(tx.CreatedAt, today)
		switch tx.Type {
		case domain.PointsEarn:
			summary.TotalPool += tx.Amount
			if isToday {
				summary.IssuedToday += tx.Amount
			}
		case domain.PointsSpend:
			summary.TotalPool -= tx.Amount
			if isToday {
				summary.SpentToday += tx.Amount
			}
		}
	}
	ok(c, summary)
}
