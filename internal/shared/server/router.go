package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumepro/internal/account"
	"resumepro/internal/assistant"
	googleauth "resumepro/internal/auth"
	"resumepro/internal/credits"
	"resumepro/internal/diagrams"
	"resumepro/internal/functions"
	"resumepro/internal/resumes"
	"resumepro/internal/scoring"
	"resumepro/internal/services/health"
	"resumepro/internal/shared/config"
	"resumepro/internal/shared/metrics"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/internal/users"
	"resumepro/internal/wizard"
)

// aiRateLimit applies per principal to routes that end in an LLM call.
var aiRateLimit = middleware.RateLimitRule{Rate: 0.2, Burst: 5}

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config          config.Config
	Verifier        middleware.TokenVerifier
	Health          *health.Service
	RateLimiter     *middleware.RateLimiter
	AuthHandler     *googleauth.Handler
	GoogleAuth      *googleauth.GoogleService
	UserHandler     *users.Handler
	WizardHandler   *wizard.Handler
	CreditsHandler  *credits.Handler
	ScoringHandler  *scoring.Handler
	FunctionHandler *functions.Handler
	ChatHandler     *assistant.Handler
	ResumeHandler   *resumes.Handler
	DiagramHandler  *diagrams.Handler
	AccountHandler  *account.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
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

	if deps.WizardHandler != nil {
		deps.WizardHandler.RegisterPublicRoutes(api)
	}
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterPublicRoutes(api)
	}
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}

	protected := api.Group("")
	protected.Use(
		middleware.Auth(deps.Verifier),
		middleware.LimitRoutes(deps.RateLimiter, aiRateLimit, "/api/v1/analyze", "/api/v1/chat", "/api/v1/functions/:name"),
	)
	if deps.AuthHandler != nil {
		deps.AuthHandler.RegisterRoutes(protected)
	}
	if deps.WizardHandler != nil {
		deps.WizardHandler.RegisterRoutes(protected)
	}
	if deps.CreditsHandler != nil {
		deps.CreditsHandler.RegisterRoutes(protected)
	}
	if deps.ScoringHandler != nil {
		deps.ScoringHandler.RegisterRoutes(protected)
	}
	if deps.FunctionHandler != nil {
		deps.FunctionHandler.RegisterRoutes(protected)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterRoutes(protected)
	}
	if deps.DiagramHandler != nil {
		deps.DiagramHandler.RegisterRoutes(protected)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(protected)
	}

	saved := protected.Group("")
	saved.Use(middleware.RequireLogin())
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(saved)
	}
	if deps.WizardHandler != nil {
		deps.WizardHandler.RegisterSavedRoutes(saved)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(saved)
	}
	if deps.DiagramHandler != nil {
		deps.DiagramHandler.RegisterSavedRoutes(saved)
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.RegisterSavedRoutes(saved)
	}

	if deps.Config.Env == "dev" && deps.CreditsHandler != nil {
		dev := protected.Group("/dev")
		deps.CreditsHandler.RegisterDevRoutes(dev)
	}

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
