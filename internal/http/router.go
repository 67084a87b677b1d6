package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions ajusta el router de la consola.
type RouterOptions struct {
	SecureCookies bool
}

// NewRouter configura el router de Gin con middlewares y rutas de la consola.
func NewRouter(logger *zap.Logger, console *ConsoleHandler, opts RouterOptions) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", ScopeMiddleware(opts.SecureCookies))
	api.POST("/login", console.Login)
	api.POST("/logout", console.Logout)
	api.GET("/me", console.Me)
	api.GET("/audit", console.Audit)

	api.GET("/accounts", console.ListAccounts)
	api.POST("/accounts", console.CreateAccount)
	api.PUT("/accounts/:id", console.UpdateAccount)
	api.DELETE("/accounts/:id", console.DeleteAccount)
	api.POST("/accounts/:id/password", console.ResetPassword)

	api.GET("/plans", console.ListPlans)
	api.POST("/plans", console.CreatePlan)
	api.PUT("/plans/:id", console.UpdatePlan)
	api.POST("/plans/:id/enabled", console.SetPlanEnabled)

	api.GET("/templates", console.ListTemplates)
	api.POST("/templates", console.CreateTemplate)
	api.PUT("/templates/:id", console.UpdateTemplate)
	api.DELETE("/templates/:id", console.DeleteTemplate)

	api.GET("/payment", console.PaymentSettings)
	api.PUT("/payment/:method", console.SavePayment)

	api.GET("/users", console.ListUsers)
	api.GET("/members", console.ListMembers)
	api.GET("/points/transactions", console.ListPoints)
	api.GET("/points/summary", console.PointsSummary)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
