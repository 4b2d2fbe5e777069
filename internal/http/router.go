// Package httpapi wires the HTTP transport (Gin) to the fault pipeline and
// route handlers. It centralizes cross-cutting concerns: tracing, correlation
// IDs, structured logging, fault interception, metrics, rate limiting, CORS,
// compression, and security headers.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate the correlation id
//  3. AccessLog: structured logs carrying the id
//  4. Intercept: the single point of fault capture; everything below it
//     (body limits, handlers, services) may fail and still produce a mapped
//     response with exactly one error log
//  5. Body size limiter, metrics, rate limiter, CORS, gzip, security headers
package httpapi

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/faultgate/faultgate/internal/config"
	"github.com/faultgate/faultgate/internal/fault"
	"github.com/faultgate/faultgate/internal/http/handlers"
	"github.com/faultgate/faultgate/internal/http/middleware"
	"github.com/faultgate/faultgate/internal/respond"
	"github.com/faultgate/faultgate/internal/services"
)

// NewMapper builds the response mapper from configuration: runtime mode,
// HTML error pages (when the configured directory exists), and the default
// per-kind template registry.
func NewMapper(cfg config.Config) (*respond.Mapper, error) {
	mode, err := respond.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	var opts []respond.Option
	if cfg.ErrorPages != "" {
		if _, err := os.Stat(cfg.ErrorPages); err == nil {
			renderer, err := respond.NewHTMLRenderer(cfg.ErrorPages)
			if err != nil {
				return nil, err
			}
			opts = append(opts, respond.WithRenderer(renderer))
			for kind, name := range respond.DefaultTemplates() {
				opts = append(opts, respond.WithTemplate(kind, name))
			}
		} else {
			// JSON-only operation is valid; browsers just get the envelope.
			log.Warn().Str("dir", cfg.ErrorPages).Msg("error pages directory not found, serving JSON envelopes only")
		}
	}
	return respond.NewMapper(mode, opts...), nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, mapper *respond.Mapper, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.AccessLog())

	// 4) Fault interception: the guarantee that every request answers
	r.Use(middleware.Intercept(mapper))

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	// 8) CORS posture (allow all when no origins configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-User-ID", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "Authorization", "X-User-ID", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// 9) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 10) Security headers
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks flow through the mapper (fast path: expected, not logged as
	// errors) so 404 pages and envelopes look identical to handler faults.
	r.NoRoute(func(c *gin.Context) {
		f := fault.New(fault.NotFound, "route not found").With("path", c.Request.URL.Path)
		mapper.MapError(f, requestOf(c)).Write(c)
	})
	r.NoMethod(func(c *gin.Context) {
		// Method mismatches sit outside the fault taxonomy; emit the envelope
		// directly with 405, mirroring the rate limiter.
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, respond.ErrorBody{
			RequestID: middleware.RequestIDFrom(c),
			Code:      "method_not_allowed",
			Message:   "method not allowed",
		})
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: handlers ← service ← db
	svc := services.NewStudentService(db)
	h := handlers.New(svc, mapper)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/students", h.CreateStudent)
		api.GET("/students", h.ListStudents)
		api.GET("/students/:id", h.GetStudent)
		api.PUT("/students/:id", h.UpdateStudent)
		api.DELETE("/students/:id", h.DeleteStudent)
	}
}

// requestOf mirrors the handlers' mapper-input builder for router-level
// fallbacks.
func requestOf(c *gin.Context) respond.Request {
	return respond.Request{
		RequestID:      middleware.RequestIDFrom(c),
		Format:         respond.Negotiate(c),
		AcceptLanguage: c.GetHeader("Accept-Language"),
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; oversized bodies error on read downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
