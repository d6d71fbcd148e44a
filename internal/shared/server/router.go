package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"document-backend/internal/documents"
	"document-backend/internal/ingest"
	"document-backend/internal/services/health"
	"document-backend/internal/shared/auth"
	"document-backend/internal/shared/config"
	"document-backend/internal/shared/server/middleware"
	"document-backend/internal/shared/server/respond"
	"document-backend/internal/users"
)

// uploadRateLimit bounds the extraction endpoint; OCR runs are CPU-heavy.
var uploadRateLimit = middleware.RateLimitRule{Rate: 0.5, Burst: 5}

// RouterDeps carries everything the router wires together.
type RouterDeps struct {
	Config           config.Config
	Signer           *auth.Signer
	Health           *health.Service
	UsersHandler     *users.Handler
	DocumentsHandler *documents.Handler
	IngestHandler    *ingest.Handler
}

// NewRouter constructs the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, deps.Health.Status(c.Request.Context()))
	})
	deps.UsersHandler.RegisterPublicRoutes(api)

	authed := api.Group("")
	authed.Use(middleware.Auth(deps.Signer))
	deps.UsersHandler.RegisterRoutes(authed)
	deps.DocumentsHandler.RegisterRoutes(authed)

	uploads := authed.Group("")
	uploads.Use(middleware.RateLimit(middleware.NewRateLimiter(nil), uploadRateLimit))
	deps.IngestHandler.RegisterRoutes(uploads)

	admin := authed.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	deps.DocumentsHandler.RegisterAdminRoutes(admin)

	return r
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
