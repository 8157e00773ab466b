package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"devcamper/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serverError = "Server Error"

// Errors renders the last error attached with c.Error as the uniform
// {success:false, error} envelope. Handlers never write error bodies.
func Errors(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, msg := Classify(err)
		if status >= http.StatusInternalServerError {
			log.WithFields(logrus.Fields{
				"request_id": GetRequestID(c),
				"path":       c.Request.URL.Path,
			}).WithError(err).Error("request failed")
		}
		c.JSON(status, gin.H{"success": false, "error": msg})
	}
}

// Classify maps an error onto its status code and client message.
func Classify(err error) (int, string) {
	var (
		notFound     domain.NotFoundError
		validation   domain.ValidationError
		conflict     domain.ConflictError
		unauthorized domain.UnauthorizedError
		forbidden    domain.ForbiddenError
		unavailable  domain.UnavailableError
		internal     domain.InternalError
	)
	switch {
	case errors.As(err, &unauthorized):
		return http.StatusUnauthorized, unauthorized.Error()
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Error()
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Error()
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable, unavailable.Error()
	case errors.As(err, &internal) && internal.Msg != "":
		return http.StatusInternalServerError, internal.Msg
	default:
		return http.StatusInternalServerError, serverError
	}
}

// Recovery turns a panic into a 500 for the Errors step to render.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, rec any) {
		_ = c.Error(fmt.Errorf("panic: %v", rec))
		c.Abort()
	})
}
