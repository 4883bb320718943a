package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
)

// AuthModule serves the public account routes, limited per client IP and
// route: POST /register, POST /login, GET /logout, POST /refresh.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Limits  Limits
}

func NewAuthModule(h *handlers.AuthHandler, limits Limits) *AuthModule {
	return &AuthModule{Handler: h, Limits: limits}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	byIP := middleware.KeyByIPAndPath()
	rg.POST("/register", m.Limits.limit(m.Limits.Register, byIP), m.Handler.Register)
	rg.POST("/login", m.Limits.limit(m.Limits.Login, byIP), m.Handler.Login)
	rg.POST("/refresh", m.Limits.limit(m.Limits.Refresh, byIP), m.Handler.Refresh)
	// Logout always succeeds and never needs a budget.
	rg.GET("/logout", m.Handler.Logout)
}
