package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SystemHandler serves health and diagnostics endpoints.
type SystemHandler struct {
	DB     *sql.DB
	Engine *gin.Engine
}

func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "blog api is running"})
}

func (h *SystemHandler) DBCheck(c *gin.Context) {
	if h.DB == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database is not connected")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	var count int
	if err := h.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts").Scan(&count); err != nil {
		logFault(c, "db check failed", err)
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database query failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "posts_in_db": count})
}

// Routes lists the registered routes of Engine.
func (h *SystemHandler) Routes(c *gin.Context) {
	if h.Engine == nil {
		respondError(c, http.StatusServiceUnavailable, "router_unavailable", "router is not ready")
		return
	}
	routes := h.Engine.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
