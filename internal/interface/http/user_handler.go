package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/domain/entity"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

const avatarField = "profilePhoto"

// ProfileUsecase is implemented by application.ProfileService.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, targetID string) (application.UserView, error)
	EditProfile(ctx context.Context, caller entity.Identity, in application.EditProfileInput) (application.UserView, error)
}

// FollowUsecase is implemented by application.FollowService.
type FollowUsecase interface {
	FollowOrUnfollow(ctx context.Context, callerID, targetID string) (bool, error)
	GetSuggestedUsers(ctx context.Context, callerID string) ([]application.UserView, error)
}

type UserHandler struct {
	Profiles ProfileUsecase
	Follows  FollowUsecase
	Logger   logrus.FieldLogger
}

func NewUserHandler(profiles ProfileUsecase, follows FollowUsecase, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Profiles: profiles, Follows: follows, Logger: logger}
}

// GetProfile GET /api/v1/user/:id/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Profiles.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err, logrus.Fields{"target_id": c.Param("id")})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile", nil)
}

// EditProfile POST /api/v1/user/profile/edit (multipart: bio, gender, profilePhoto)
func (h *UserHandler) EditProfile(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var in application.EditProfileInput
	if bio, ok := c.GetPostForm("bio"); ok {
		in.Bio = &bio
	}
	if gender, ok := c.GetPostForm("gender"); ok {
		in.Gender = &gender
	}

	fh, err := c.FormFile(avatarField)
	switch {
	case err == nil:
		f, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, "invalid profile photo", nil)
			return
		}
		defer f.Close()
		in.Avatar = &application.AvatarUpload{Filename: fh.Filename, Size: fh.Size, Content: f}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		response.Error(c, http.StatusBadRequest, "invalid multipart payload", map[string]string{avatarField: "could not be read"})
		return
	}

	u, err := h.Profiles.EditProfile(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u}, "profile updated", nil)
}

// Suggested GET /api/v1/user/suggested
func (h *UserHandler) Suggested(c *gin.Context) {
	uid, _ := caller(c)
	users, err := h.Follows.GetSuggestedUsers(c.Request.Context(), uid)
	if err != nil {
		respondError(c, h.Logger, err, nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": users}, "suggested users", nil)
}

// FollowOrUnfollow POST /api/v1/user/followorunfollow/:id
func (h *UserHandler) FollowOrUnfollow(c *gin.Context) {
	uid, _ := caller(c)
	target := c.Param("id")
	following, err := h.Follows.FollowOrUnfollow(c.Request.Context(), uid, target)
	if err != nil {
		respondError(c, h.Logger, err, logrus.Fields{"target_id": target})
		return
	}
	msg := "Unfollowed successfully"
	if following {
		msg = "Followed successfully"
	}
	response.Success(c, http.StatusOK, gin.H{"following": following}, msg, nil)
}
