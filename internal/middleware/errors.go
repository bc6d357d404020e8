package middleware

import (
	apperrors "signin-service/internal/errors"
	"signin-service/internal/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error attached with c.Error as JSON
// unless a response was already written.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		structuredErr := apperrors.AsStructuredError(c.Errors.Last().Err)
		logError(c, structuredErr)

		if c.Writer.Written() {
			return
		}
		c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse())
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func logError(c *gin.Context, err *apperrors.Error) {
	fields := map[string]any{
		"error_type": err.Type,
		"message":    err.Message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"status":     err.HTTPStatus(),
	}
	for k, v := range err.Context {
		fields[k] = v
	}
	if err.Cause != nil {
		fields["cause"] = err.Cause.Error()
	}

	switch err.Type {
	case apperrors.TypeValidation:
		logger.Info("validation error", fields)
	case apperrors.TypeNotFound:
		logger.Info("not found", fields)
	case apperrors.TypeUnauthorized:
		logger.Warn("unauthorized", fields)
	case apperrors.TypeConflict:
		logger.Warn("conflict", fields)
	case apperrors.TypeExternal:
		logger.Error("upstream error", fields)
	default:
		logger.Error("internal error", fields)
	}
}
