// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides structured access logging. AccessLog() emits one log
// line per request with request/response metadata and attaches a
// request-scoped zerolog.Logger to the context so handlers, services, and the
// interceptor can log with correlation fields already bound.
//
// Level selection by outcome: error for 5xx, warn for 4xx, info otherwise.
// Install after RequestID() so every line carries the correlation ID.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// ctxKeyLogger is the Gin context key for the request-scoped logger.
	ctxKeyLogger = "logger"
	// maxQueryLogBytes caps the raw query string recorded per request.
	maxQueryLogBytes = 1024
)

// AccessLog returns a middleware that writes one structured access log entry
// per request and stores a request-scoped logger in the context.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		route := c.FullPath()
		if route == "" {
			// No matched route (404 and friends): log the raw path.
			route = c.Request.URL.Path
		}

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", route).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", clip(c.Request.URL.RawQuery, maxQueryLogBytes)).
			Int64("bytes_in", c.Request.ContentLength).
			Logger()
		c.Set(ctxKeyLogger, &l)

		c.Next()

		status := c.Writer.Status()
		done := l.With().
			Int("status", status).
			Dur("latency", time.Since(start)).
			Int("bytes_out", c.Writer.Size()).
			Logger()

		switch {
		case status >= 500:
			done.Error().Msg("request")
		case status >= 400:
			done.Warn().Msg("request")
		default:
			done.Info().Msg("request")
		}
	}
}

// LoggerFrom returns the request-scoped zerolog.Logger attached by
// AccessLog(). When absent (tests, bare engines) it returns the global
// logger, so callers never need a nil check.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(ctxKeyLogger); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

// clip bounds s to max bytes for logging. Byte-level truncation is fine here.
func clip(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
