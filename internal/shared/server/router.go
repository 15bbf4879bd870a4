package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profileplus/internal/contact"
	"profileplus/internal/dashboard"
	"profileplus/internal/previews"
	"profileplus/internal/services/health"
	"profileplus/internal/session"
	"profileplus/internal/shared/config"
	"profileplus/internal/shared/metrics"
	"profileplus/internal/shared/server/middleware"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/views"
)

// RouterDeps are the handlers mounted under /api/v1.
type RouterDeps struct {
	Config           config.Config
	Sessions         *session.Registry
	SessionHandler   *session.Handler
	ViewHandler      *views.Handler
	DashboardHandler *dashboard.Handler
	ContactHandler   *contact.Handler
	PreviewHandler   *previews.Handler
	Health           *health.Service
	RateLimiter      *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	// Profile ids may contain '/'. Clients escape it as %2F and :id params
	// match the escaped segment, then unescape.
	r.UseRawPath = true
	r.UnescapePathValues = true

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status := deps.Health.Status(c.Request.Context())
		code := http.StatusOK
		if !status.OK {
			code = http.StatusServiceUnavailable
		}
		respond.JSON(c, code, status)
	})

	// Websocket viewers cannot send an Authorization header and need no session.
	deps.PreviewHandler.RegisterRoutes(api)

	scoped := api.Group("")
	scoped.Use(
		middleware.Session(deps.Sessions),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    RateLimitRules(),
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)
	deps.SessionHandler.RegisterRoutes(scoped)
	deps.ViewHandler.RegisterRoutes(scoped)
	deps.DashboardHandler.RegisterRoutes(scoped)
	deps.ContactHandler.RegisterRoutes(scoped)

	return r
}

// RateLimitRules are the per-group limits applied to session routes.
func RateLimitRules() map[string]middleware.RateLimitRule {
	return map[string]middleware.RateLimitRule{
		"DEFAULT":  {Rate: 20, Burst: 60},
		"ANALYSIS": {Rate: 0.2, Burst: 3},
		"CONTACT":  {Rate: 0.1, Burst: 5},
	}
}

func rateLimitGroup(c *gin.Context) string {
	switch c.FullPath() {
	case "/api/v1/dashboard/assistant/generate":
		return "ANALYSIS"
	case "/api/v1/public/profiles/:id/contact":
		return "CONTACT"
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
