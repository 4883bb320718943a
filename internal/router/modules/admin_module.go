package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-graph/internal/container"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
)

// AdminModule serves user management for admins: GET /users, PUT and DELETE /user/:id.
type AdminModule struct {
	Handler  *handlers.AdminHandler
	Sessions middleware.SessionVerifier
	Limits   Limits
}

func NewAdminModule(h *handlers.AdminHandler, sessions middleware.SessionVerifier, limits Limits) *AdminModule {
	return &AdminModule{Handler: h, Sessions: sessions, Limits: limits}
}

func (m *AdminModule) Register(rg *gin.RouterGroup) {
	admin := rg.Group("/",
		middleware.Auth(m.Sessions, container.GetLogger()),
		middleware.RequireRole(entity.RoleAdmin),
		m.Limits.limit(m.Limits.Admin, middleware.KeyByUserID()),
	)
	admin.GET("/users", m.Handler.ListUsers)
	admin.PUT("/user/:id", m.Handler.EditUser)
	admin.DELETE("/user/:id", m.Handler.DeleteUser)
}
