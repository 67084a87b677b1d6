package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"admin-console/internal/auth"
	"admin-console/internal/domain"
	"admin-console/internal/gateway"
	"admin-console/internal/notify"
	"admin-console/internal/service"
	"admin-console/internal/session"
)

// ConsoleHandler sirve la consola: cada petición arma su propio gateway sobre
// la sesión del navegador que la hizo.
type ConsoleHandler struct {
	logger    *zap.Logger
	sessions  session.Store
	gateway   *gateway.Client
	auth      *auth.Service
	audit     *service.AuditService
	loginPath string
}

// NewConsoleHandler recibe un gateway base (sin sesión ni avisos); audit puede
// ser nil.
func NewConsoleHandler(
	logger *zap.Logger,
	sessions session.Store,
	gw *gateway.Client,
	authSvc *auth.Service,
	audit *service.AuditService,
	loginPath string,
) *ConsoleHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return &ConsoleHandler{
		logger:    logger,
		sessions:  sessions,
		gateway:   gw,
		auth:      authSvc,
		audit:     audit,
		loginPath: loginPath,
	}
}

// requestScope reúne lo que vive durante una petición.
type requestScope struct {
	session   *session.Scoped
	collector *notify.Collector
	redirect  *notify.RedirectRecorder
	admin     *service.Admin
}

func (h *ConsoleHandler) scope(c *gin.Context) *requestScope {
	id, _ := GetScope(c)
	rs := &requestScope{
		session:   session.NewScoped(h.sessions, id),
		collector: notify.NewCollector(),
		redirect:  notify.NewRedirectRecorder(),
	}
	gw := h.gateway.
		WithSession(rs.session).
		WithNotifier(notify.Multi{rs.collector, notify.NewLogNotifier(h.logger)}).
		WithNavigator(rs.redirect, h.loginPath)
	rs.admin = service.NewAdmin(gw)
	return rs
}

func (rs *requestScope) notifications() []string {
	msgs := rs.collector.Messages()
	if msgs == nil {
		return []string{}
	}
	return msgs
}

func (h *ConsoleHandler) respond(c *gin.Context, rs *requestScope, status int, data any) {
	c.JSON(status, gin.H{"data": data, "notifications": rs.notifications()})
}

// fail traduce un error a la respuesta. Los errores del gateway ya fueron
// notificados; las validaciones locales se notifican acá.
func (h *ConsoleHandler) fail(c *gin.Context, rs *requestScope, err error) {
	var gwErr *gateway.Error
	var loginErr *auth.LoginError
	body := gin.H{"error": err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &gwErr):
		body["kind"] = gwErr.Kind.String()
		switch gwErr.Kind {
		case gateway.KindSessionExpired:
			status = http.StatusUnauthorized
			target := rs.redirect.Target()
			if target == "" {
				target = h.loginPath
			}
			body["redirect"] = target
		case gateway.KindBusiness:
			status = http.StatusUnprocessableEntity
			if gwErr.Code != 0 {
				body["code"] = gwErr.Code
			}
		default:
			status = http.StatusBadGateway
		}
	case errors.As(err, &loginErr):
		status = http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrMissingID),
		errors.Is(err, service.ErrUnknownPayment):
		status = http.StatusBadRequest
		rs.collector.Add(err.Error())
	case errors.Is(err, service.ErrAuditNotConfigured):
		status = http.StatusServiceUnavailable
	default:
		h.logger.Error("console request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	body["notifications"] = rs.notifications()
	c.AbortWithStatusJSON(status, body)
}

func (h *ConsoleHandler) badRequest(c *gin.Context, rs *requestScope, err error) {
	h.logger.Warn("invalid console request", zap.String("path", c.FullPath()), zap.Error(err))
	rs.collector.Add("请求参数错误")
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error":         "invalid request",
		"notifications": rs.notifications(),
	})
}

// Login maneja POST /api/login.
func (h *ConsoleHandler) Login(c *gin.Context) {
	rs := h.scope(c)
	var req auth.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	sess, err := h.auth.Login(c.Request.Context(), rs.session, rs.collector, req)
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, sess.Profile())
}

// Logout maneja POST /api/logout.
func (h *ConsoleHandler) Logout(c *gin.Context) {
	rs := h.scope(c)
	if err := h.auth.Logout(c.Request.Context(), rs.session); err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, gin.H{"redirect": h.loginPath})
}

// requireSession responde 401 con el destino de login si el navegador no
// tiene sesión vigente.
func (h *ConsoleHandler) requireSession(c *gin.Context, rs *requestScope) (domain.AdminProfile, bool) {
	profile, ok, err := h.auth.Current(c.Request.Context(), rs.session)
	if errors.Is(err, gateway.ErrSessionExpired) {
		ok, err = false, nil
	}
	if err != nil {
		h.fail(c, rs, err)
		return domain.AdminProfile{}, false
	}
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":         "not logged in",
			"redirect":      h.loginPath,
			"notifications": rs.notifications(),
		})
		return domain.AdminProfile{}, false
	}
	return profile, true
}

// Me maneja GET /api/me.
func (h *ConsoleHandler) Me(c *gin.Context) {
	rs := h.scope(c)
	profile, ok := h.requireSession(c, rs)
	if !ok {
		return
	}
	h.respond(c, rs, http.StatusOK, profile)
}

// Audit maneja GET /api/audit.
func (h *ConsoleHandler) Audit(c *gin.Context) {
	rs := h.scope(c)
	if _, ok := h.requireSession(c, rs); !ok {
		return
	}
	var q struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.badRequest(c, rs, err)
		return
	}
	entries, err := h.audit.Recent(c.Request.Context(), q.Limit)
	if err != nil {
		h.fail(c, rs, err)
		return
	}
	h.respond(c, rs, http.StatusOK, entries)
}
