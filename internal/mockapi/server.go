package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admin-console/internal/gateway"
)

const (
	codeOK          = 0
	codeBadRequest  = 400
	codeNotFound    = 404
	codePlanExists  = 1001
	codeUserExists  = 1002
	codeSelfDelete  = 1003
	claimsKey       = "mock_claims"
	defaultPageSize = 20
)

// Options configura el backend simulado.
type Options struct {
	Secret        string
	TenantID      string
	AdminPassword string
	TokenTTL      time.Duration
	Logger        *zap.Logger
}

// Server implementa en memoria la API de administración con el sobre
// {code, data, msg}. Sirve para desarrollo local y para tests.
type Server struct {
	tenantID string
	tokens   *tokenService
	state    *state
	logger   *zap.Logger
	now      func() time.Time
}

func NewServer(opts Options) (*Server, error) {
	if opts.TenantID == "" {
		opts.TenantID = "1"
	}
	if opts.AdminPassword == "" {
		opts.AdminPassword = "admin123"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	s := &Server{
		tenantID: opts.TenantID,
		tokens:   newTokenService(opts.Secret, opts.TokenTTL),
		state:    newState(),
		logger:   opts.Logger,
		now:      time.Now,
	}
	if err := s.state.seed(opts.AdminPassword, s.now()); err != nil {
		return nil, err
	}
	return s, nil
}

// Router arma las rutas bajo /api.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery())

	api := r.Group("/api", s.tenantMiddleware())
	api.POST("/admin/auth/login", s.login)

	admin := api.Group("/admin", s.authMiddleware())
	admin.POST("/auth/logout", s.logout)

	admin.GET("/accounts", s.listAccounts)
	admin.POST("/accounts", s.createAccount)
	admin.PUT("/accounts/:id", s.updateAccount)
	admin.DELETE("/accounts/:id", s.deleteAccount)
	admin.POST("/accounts/:id/password", s.resetPassword)

	admin.GET("/membership/plans", s.listPlans)
	admin.POST("/membership/plans", s.createPlan)
	admin.PUT("/membership/plans/:id", s.updatePlan)
	admin.POST("/membership/plans/:id/enabled", s.setPlanEnabled)

	admin.GET("/prompt-templates", s.listTemplates)
	admin.POST("/prompt-templates", s.createTemplate)
	admin.PUT("/prompt-templates/:id", s.updateTemplate)
	admin.DELETE("/prompt-templates/:id", s.deleteTemplate)

	admin.GET("/payment/config", s.listPayments)
	admin.PUT("/payment/config/:method", s.savePayment)

	admin.GET("/user-accounts", s.listUsers)
	admin.GET("/members", s.listMembers)
	admin.GET("/points/transactions", s.listPoints)
	admin.GET("/points/summary", s.pointsSummary)

	return r
}

func (s *Server) tenantMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(c.GetHeader("X-Tenant-Id")) != s.tenantID {
			fail(c, http.StatusBadRequest, codeBadRequest, "租户标识无效")
			return
		}
		c.Next()
	}
}

// authMiddleware responde 401 sin cuerpo ante un token ausente o inválido.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		claims, err := s.tokens.Parse(strings.TrimSpace(header[len("Bearer "):]))
		if err != nil || claims.TenantID != s.tenantID {
			s.logger.Debug("rejected token", zap.Error(err))
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		s.state.mu.RLock()
		acc, ok := s.state.accounts[claims.AdminUserID]
		enabled := ok && acc.Enabled
		s.state.mu.RUnlock()
		if !enabled {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func currentClaims(c *gin.Context) Claims {
	v, _ := c.Get(claimsKey)
	claims, _ := v.(Claims)
	return claims
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gateway.Envelope[any]{Code: codeOK, Data: data, Msg: "success"})
}

func fail(c *gin.Context, status, code int, msg string) {
	c.AbortWithStatusJSON(status, gateway.Envelope[any]{Code: code, Msg: msg})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("mock request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
