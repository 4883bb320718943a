package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

const genericFailure = "something went wrong, please try again"

func statusOf(k application.Kind) int {
	switch k {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindAuth:
		return http.StatusUnauthorized
	case application.KindAuthz:
		return http.StatusForbidden
	case application.KindConflict:
		return http.StatusConflict
	case application.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err as an error envelope. Storage and internal failures
// are logged with their cause and answered generically.
func respondError(c *gin.Context, logger logrus.FieldLogger, err error, fields logrus.Fields) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		appErr = &application.Error{Kind: application.KindInternal, Err: err}
	}
	status := statusOf(appErr.Kind)

	if status == http.StatusInternalServerError {
		if fields == nil {
			fields = logrus.Fields{}
		}
		fields["request_id"] = c.GetString(response.RequestIDKey)
		fields["kind"] = appErr.Kind.String()
		if id, ok := middleware.IdentityFrom(c); ok {
			fields["user_id"] = id.UserID
		}
		helpers.LogError(logger, appErr.Message, err, fields)
		response.Error(c, status, genericFailure, nil)
		return
	}

	var details any
	if len(appErr.Details) > 0 {
		details = appErr.Details
	}
	response.Error(c, status, appErr.Message, details)
}

func caller(c *gin.Context) (string, bool) {
	id, ok := middleware.IdentityFrom(c)
	return id.UserID, ok
}
