package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/response"
	"github.com/oksasatya/go-social-graph/pkg/validation"
)

// AdminUsecase is implemented by application.AdminService.
type AdminUsecase interface {
	ListUsers(ctx context.Context, caller entity.Identity) ([]application.UserView, error)
	EditUser(ctx context.Context, caller entity.Identity, targetID string, in application.AdminEditInput) (application.UserView, error)
	DeleteUser(ctx context.Context, caller entity.Identity, targetID string) error
}

type AdminHandler struct {
	Svc    AdminUsecase
	Logger logrus.FieldLogger
}

func NewAdminHandler(svc AdminUsecase, logger logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Svc: svc, Logger: logger}
}

// ListUsers GET /api/v1/user/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	users, err := h.Svc.ListUsers(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "users", map[string]any{"total": len(users)})
}

// EditUser PUT /api/v1/user/user/:id
func (h *AdminHandler) EditUser(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	var req application.AdminEditInput
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.EditUser(c.Request.Context(), id, c.Param("id"), req)
	if err != nil {
		respondError(c, h.Logger, err, logrus.Fields{"target_id": c.Param("id")})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "user updated", nil)
}

// DeleteUser DELETE /api/v1/user/user/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id, _ := middleware.IdentityFrom(c)
	if err := h.Svc.DeleteUser(c.Request.Context(), id, c.Param("id")); err != nil {
		respondError(c, h.Logger, err, logrus.Fields{"target_id": c.Param("id")})
		return
	}
	response.Success[any](c, http.StatusOK, nil, "user deleted", nil)
}
