package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-graph/internal/container"
	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
)

// UserModule serves the session-protected profile and follow routes. Every
// route shares the per-user budget; follow toggles also draw from their own.
type UserModule struct {
	Handler  *handlers.UserHandler
	Sessions middleware.SessionVerifier
	Limits   Limits
}

func NewUserModule(h *handlers.UserHandler, sessions middleware.SessionVerifier, limits Limits) *UserModule {
	return &UserModule{Handler: h, Sessions: sessions, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	byUser := middleware.KeyByUserID()
	g := rg.Group("/", middleware.Auth(m.Sessions, container.GetLogger()), m.Limits.limit(m.Limits.User, byUser))

	g.GET("/:id/profile", m.Handler.GetProfile)
	g.POST("/profile/edit", m.Handler.EditProfile)
	g.GET("/suggested", m.Handler.Suggested)
	g.POST("/followorunfollow/:id", m.Limits.limit(m.Limits.Follow, followKey()), m.Handler.FollowOrUnfollow)
}

// followKey keeps the follow budget apart from the general per-user one.
func followKey() middleware.KeyFunc {
	byUser := middleware.KeyByUserID()
	return func(c *gin.Context) string { return "follow:" + byUser(c) }
}
