package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

const (
	identityKey = "identity"
	// CtxUserIDKey is also read by KeyByUserID.
	CtxUserIDKey = "userID"
)

// SessionVerifier resolves an access token into the caller. application.AuthService implements it.
type SessionVerifier interface {
	VerifySession(ctx context.Context, accessToken string) (entity.Identity, error)
}

// Auth validates the access_token cookie against the active session and
// stores the caller's Identity in the Gin context.
func Auth(verifier SessionVerifier, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(helpers.AccessCookie)
		if err != nil || token == "" {
			response.Abort(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		id, err := verifier.VerifySession(c.Request.Context(), token)
		if err != nil {
			if application.KindOf(err) == application.KindAuth {
				response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			helpers.LogError(logger, "session verification failed", err, logrus.Fields{"request_id": c.GetString(response.RequestIDKey)})
			response.Abort(c, http.StatusInternalServerError, "internal server error", nil)
			return
		}
		c.Set(identityKey, id)
		c.Set(CtxUserIDKey, id.UserID)
		c.Next()
	}
}

// IdentityFrom returns the caller set by Auth.
func IdentityFrom(c *gin.Context) (entity.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return entity.Identity{}, false
	}
	id, ok := v.(entity.Identity)
	return id, ok
}

// RequireRole must run after Auth.
func RequireRole(role entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		if !id.Role.Allows(role) {
			response.Abort(c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}
