package handlers

import (
	"net/http"
	"strconv"

	"blogapi/internal/domain"
	"blogapi/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the payload of every API error.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		RequestID: middleware.GetRequestID(c),
	})
}

// BindJSONOrError ensures body is present and parsable, answering 400 otherwise.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		RespondDomainError(c, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "body", Msg: "request body is empty"})
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		RespondDomainError(c, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "body", Msg: err.Error(), Err: err})
		return false
	}
	return true
}

// BindQueryOrError binds query parameters, answering 400 on malformed values.
func BindQueryOrError[T any](c *gin.Context, dst *T) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		RespondDomainError(c, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "query", Msg: err.Error(), Err: err})
		return false
	}
	return true
}

// pathID parses the :id path parameter.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondDomainError(c, domain.ValidationError{Kind: domain.KindInvalidParameter, Field: "id", Msg: "must be a positive integer", Err: err})
		return 0, false
	}
	return id, true
}
