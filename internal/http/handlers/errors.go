package handlers

import (
	"net/http"

	"blogapi/internal/domain"
	"blogapi/internal/http/middleware"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RespondDomainError maps domain errors to HTTP responses. Server side
// faults are logged and answered with a generic message.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		code := domain.ValidationKind(err)
		if code == "" {
			code = "validation_error"
		}
		respondError(c, http.StatusBadRequest, code, err.Error())
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error())
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error())
	case domain.IsConfiguration(err):
		logFault(c, "configuration error", err)
		respondError(c, http.StatusInternalServerError, "configuration_error", "resource is not configured")
	default:
		logFault(c, "unhandled error", err)
		respondError(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func logFault(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	utils.Logger().Error(msg,
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
}
