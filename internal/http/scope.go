package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	scopeCookie     = "console_scope"
	scopeContextKey = "console_scope"
	scopeMaxAge     = 30 * 24 * 3600
)

// ScopeMiddleware identifica al navegador con una cookie opaca. Cada valor es
// un espacio de almacenamiento de sesión independiente.
func ScopeMiddleware(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		scope, err := c.Cookie(scopeCookie)
		if err != nil || uuid.Validate(scope) != nil {
			scope = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(scopeCookie, scope, scopeMaxAge, "/", "", secure, true)
		}
		c.Set(scopeContextKey, scope)
		c.Next()
	}
}

// GetScope obtiene el scope del navegador desde el contexto.
func GetScope(c *gin.Context) (string, bool) {
	val, ok := c.Get(scopeContextKey)
	if !ok {
		return "", false
	}
	scope, ok := val.(string)
	return scope, ok && scope != ""
}
