package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

// statusFor maps application errors to an HTTP status and a client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, application.ErrPostNotFound):
		return http.StatusNotFound, "post not found"
	case errors.Is(err, application.ErrNotificationNotFound):
		return http.StatusNotFound, "notification not found"
	case errors.Is(err, application.ErrSelfFollow):
		return http.StatusBadRequest, "cannot follow yourself"
	case errors.Is(err, application.ErrAlreadyFollowing):
		return http.StatusConflict, "already following this user"
	case errors.Is(err, application.ErrEmailTaken):
		return http.StatusConflict, "email already in use"
	case errors.Is(err, application.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, application.ErrInvalidUpload):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, application.ErrInvalidResetToken):
		return http.StatusBadRequest, "invalid or expired token"
	case errors.Is(err, application.ErrStorageUnavailable), errors.Is(err, application.ErrResetUnavailable):
		return http.StatusServiceUnavailable, "service unavailable"
	case errors.Is(err, application.ErrStorePersistence):
		return http.StatusInternalServerError, "failed to persist changes"
	}
	return http.StatusInternalServerError, "internal server error"
}

// fail writes the mapped error envelope; server errors are logged.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		}).Error("request failed")
	}
	response.Error[any](c, status, msg, nil)
}

func currentUser(c *gin.Context) string {
	return c.GetString("userID")
}
