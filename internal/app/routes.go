package app

import (
	"net/http"
	"time"

	"github.com/bookwright/core/internal/middleware"
	"github.com/bookwright/core/internal/modules/ai"
	"github.com/bookwright/core/internal/modules/book"
	"github.com/bookwright/core/internal/modules/export"
	"github.com/bookwright/core/internal/modules/legacy"
	"github.com/bookwright/core/internal/modules/user"
	"github.com/bookwright/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

// Generation endpoints are provider-billed, so they carry a per-user
// rate limit on top of auth.
const (
	aiRateLimitMax    = 20
	aiRateLimitWindow = time.Minute
)

func (a *App) registerRoutes() {
	r := a.router
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
			"ok": 0, "code": http.StatusMethodNotAllowed, "message": "method not allowed",
		})
	})

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "API is running")
	})
	r.Static("/static", a.cfg.Paths.Static)

	api := r.Group("/api")

	// Shared services
	bookSvc := book.NewService(a.db, a.logger)
	aiSvc := ai.NewService(a.cfg.AI, a.logger)

	user.NewHandler(user.NewService(a.db)).RegisterRoutes(api, authMW)
	book.NewHandler(bookSvc, aiSvc, a.cfg.Paths.Static, a.logger).RegisterRoutes(api, authMW)
	export.NewHandler(bookSvc, a.logger).RegisterRoutes(api, authMW)
	legacy.NewHandler(legacy.NewService(a.db, a.logger)).RegisterRoutes(api, authMW)

	aiRateMW := middleware.RateLimit(a.rc, aiRateLimitMax, aiRateLimitWindow)
	ai.NewHandler(aiSvc, a.logger).RegisterRoutes(api, authMW, aiRateMW)
}
