// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides request correlation. RequestID() ensures every request
// carries a stable correlation ID: a client-supplied X-Request-ID is reused,
// otherwise a UUID is generated. The ID is stored in the Gin context, echoed
// on the response header before any handler runs, and repeated in the error
// envelope so client reports can be matched against server logs.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderRequestID is the correlation header read from requests and set on
	// every response.
	HeaderRequestID = "X-Request-ID"
	// ctxKeyRequestID is the Gin context key holding the correlation ID.
	ctxKeyRequestID = "requestID"
)

// RequestID attaches (or propagates) a correlation identifier per request.
// The response header is set before c.Next() so the ID survives even when a
// downstream failure aborts the chain.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(ctxKeyRequestID, rid)
		c.Writer.Header().Set(HeaderRequestID, rid)
		c.Next()
	}
}

// RequestIDFrom returns the correlation ID stored by RequestID(), or "" when
// the middleware is not installed.
func RequestIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyRequestID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
