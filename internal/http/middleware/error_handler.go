package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/gigmarket/backend/internal/logger"
	"github.com/gigmarket/backend/internal/pkg/apperror"
)

// ErrorHandler renders errors pushed onto the gin context as a structured
// body: {"error": {"code", "message", "details"}}. AppErrors keep their code
// and HTTP status; anything else is masked as an internal error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() || len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err

		if appErr, ok := apperror.As(err); ok {
			if appErr.HTTPStatus >= http.StatusInternalServerError {
				logger.Log.WithFields(logrus.Fields{
					"error":  appErr.Error(),
					"path":   c.Request.URL.Path,
					"method": c.Request.Method,
				}).Error("request failed")
			}

			body := gin.H{"code": appErr.Code, "message": appErr.Message}
			if len(appErr.Details) > 0 {
				body["details"] = appErr.Details
			}
			c.JSON(appErr.HTTPStatus, gin.H{"error": body})
			return
		}

		logger.Log.WithFields(logrus.Fields{
			"error":  err.Error(),
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		}).Error("unhandled request error")

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": apperror.ErrCodeInternal, "message": "internal server error"},
		})
	}
}
