package api

import (
	"database/sql"
	stdhttp "net/http"

	intconfig "blogapi/internal/config"
	h "blogapi/internal/http/handlers"
	"blogapi/internal/http/middleware"
	"blogapi/internal/links"
	"blogapi/internal/mapping"
	"blogapi/internal/repositories"
	"blogapi/internal/services"
	"blogapi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deps are the collaborators the router wires into its handlers.
type Deps struct {
	Env      intconfig.Env
	DB       *sql.DB
	Mappings *mapping.Registry
	Auth     services.AuthService
}

// NamedRoutes is the route table the link builder resolves against.
func NamedRoutes() links.Routes {
	return links.NewRoutes(map[string]string{
		h.RouteGetPosts:   "/api/posts",
		h.RouteGetPost:    "/api/posts/:id",
		h.RouteDeletePost: "/api/posts/:id",
	})
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery(), middleware.CORS(d.Env.CORS.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(stdhttp.StatusNoContent) })

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":      "route not found",
			"code":       "not_found",
			"path":       c.Request.URL.Path,
			"method":     c.Request.Method,
			"request_id": middleware.GetRequestID(c),
		})
	})

	system := &h.SystemHandler{DB: d.DB, Engine: r}
	auth := &h.AuthHandler{Auth: d.Auth}
	posts := &h.PostHandler{
		Posts:           repositories.PostRepository{DB: d.DB},
		Mappings:        d.Mappings,
		Routes:          NamedRoutes(),
		PublicBaseURL:   d.Env.PublicBaseURL,
		DefaultPageSize: d.Env.Pagination.DefaultPageSize,
		MaxPageSize:     d.Env.Pagination.MaxPageSize,
	}
	requireAuth := middleware.RequireAuth(d.Auth, h.RespondDomainError)
	requireAdmin := middleware.RequireRoles(h.RespondDomainError, services.RoleAdmin)

	api := r.Group("/api")
	{
		api.GET("/health", system.Health)
		api.GET("/db-check", system.DBCheck)
		api.GET("/routes", system.Routes)

		// Auth
		api.POST("/auth/token", auth.IssueToken)

		// Posts
		postsGroup := api.Group("/posts")
		postsGroup.GET("", posts.GetPosts)
		postsGroup.GET("/:id", posts.GetPost)
		postsGroup.POST("", requireAuth, requireAdmin, posts.CreatePost)
		postsGroup.DELETE("/:id", requireAuth, requireAdmin, posts.DeletePost)
	}

	return r
}
