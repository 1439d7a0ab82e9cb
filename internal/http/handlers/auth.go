package handlers

import (
	"net/http"
	"time"

	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler issues bearer tokens for the write routes.
type AuthHandler struct {
	Auth services.AuthService
}

type tokenRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// POST /api/auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	token, exp, err := h.Auth.IssueToken(utils.TrimOrEmpty(req.Username), req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: exp.UTC()})
}
