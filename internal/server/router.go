package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/handler"
	"github.com/jobtrack-ai/jobtrack-api/internal/middleware"
)

// multipartOverhead is allowed on top of the file limit for form boundaries and headers
const multipartOverhead = 1 << 20

type Options struct {
	Env            string
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Handlers struct {
	Auth         *handler.AuthHandler
	Applications *handler.ApplicationHandler
	Extract      *handler.ExtractHandler
	Resumes      *handler.ResumeHandler
}

// NewRouter wires middleware and every /api route
func NewRouter(opts Options, h Handlers, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter) *gin.Engine {
	if opts.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())

	// CORS for the web client and the browser extension
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	api.GET("/health", handler.Health)

	// ── Public Routes ────────────────────────────────────
	public := api.Group("/auth", limiter.Limit())
	{
		public.POST("/register", h.Auth.Register)
		public.POST("/verify-email", h.Auth.VerifyEmail)
		public.POST("/login", h.Auth.Login)
	}

	// ── Authenticated Routes ─────────────────────────────
	protected := api.Group("/", auth.Authenticate(), limiter.Limit())
	{
		protected.DELETE("/auth/delete-account", h.Auth.DeleteAccount)

		// Applications
		protected.GET("/applications", h.Applications.List)
		protected.POST("/applications", h.Applications.Create)
		protected.GET("/applications/:id", h.Applications.Get)
		protected.PUT("/applications/:id", h.Applications.Update)
		protected.DELETE("/applications/:id", h.Applications.Delete)

		// AI
		protected.POST("/extract", h.Extract.Extract)

		// Resumes
		protected.POST("/resumes", middleware.MaxBodySize(opts.MaxUploadBytes+multipartOverhead), h.Resumes.Upload)
		protected.GET("/resumes", h.Resumes.List)
		protected.PUT("/resumes/:id/primary", h.Resumes.SetPrimary)
		protected.DELETE("/resumes/:id", h.Resumes.Delete)
		protected.GET("/resumes/:id/download", h.Resumes.Download)
		protected.POST("/resumes/:id/match", h.Resumes.Match)
	}

	return r
}

// RequestLogger logs every request with zerolog
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= 400 {
			event = log.Warn()
		}
		if status >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg(fmt.Sprintf("%s %s", c.Request.Method, path))
	}
}
