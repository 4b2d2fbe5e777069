// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by all endpoints. Failures
// take one of two routes:
//
//   - fast path: the handler recognizes an expected fault (not found,
//     permission denied, validation) and maps it locally via fail(). The
//     response is written immediately; the interceptor stays out of it and
//     nothing is logged at error level (the access log records the 4xx).
//   - propagation: the handler records the error on the Gin context and
//     returns. The fault interceptor captures it, logs it once, and writes
//     the mapped response. This is the route for unexpected failures.
//
// failOrPropagate picks between the two automatically: expected kinds go the
// fast path, Internal goes to the interceptor.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/faultgate/faultgate/internal/fault"
	"github.com/faultgate/faultgate/internal/http/middleware"
	"github.com/faultgate/faultgate/internal/respond"
)

// requestOf builds the mapper inputs for the current request.
func requestOf(c *gin.Context) respond.Request {
	return respond.Request{
		RequestID:      middleware.RequestIDFrom(c),
		Format:         respond.Negotiate(c),
		AcceptLanguage: c.GetHeader("Accept-Language"),
	}
}

// fail maps err through m and writes the response, aborting the chain.
func fail(c *gin.Context, m *respond.Mapper, err error) {
	m.MapError(err, requestOf(c)).Write(c)
}

// failOrPropagate routes err by kind: expected faults are mapped locally,
// unclassified/internal failures are handed to the interceptor so they get
// logged with full context.
func failOrPropagate(c *gin.Context, m *respond.Mapper, err error) {
	if fault.Classify(nil, err).Fault().Kind != fault.Internal {
		fail(c, m, err)
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(204)
}
