// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the fault interceptor: the single wrapping layer that
// guarantees every request produces a response. It catches panics, drains
// errors recorded on the context, classifies them, logs each captured fault
// exactly once, and writes the mapped response.
//
// Capture contract:
//   - Handlers that map a fault themselves (the fast path, via httpx helpers)
//     write the response directly; the interceptor sees a written response
//     and an empty error list and does nothing.
//   - Handlers that propagate call c.Error(err) and return; the interceptor
//     captures, logs, and responds.
//   - Panics anywhere below the interceptor are recovered here.
//   - Wrapping twice is safe: the innermost interceptor captures and marks
//     the context; outer interceptors see the mark and stay silent, so a
//     fault is never logged twice.
//   - The interceptor itself must never fail. A panic inside mapping,
//     rendering, or serialization degrades to a hardcoded minimal 500.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/faultgate/faultgate/internal/fault"
	"github.com/faultgate/faultgate/internal/respond"
)

// ctxKeyCaptured marks a request whose fault has already been captured by an
// interceptor. Outer (redundant) interceptors check it before acting.
const ctxKeyCaptured = "faultCaptured"

// Intercept returns the fault interceptor bound to a response mapper.
//
// Install it after RequestID() and AccessLog() so captured faults are logged
// with the request-scoped logger and the correlation ID, and before any
// middleware whose failures should flow through the pipeline.
func Intercept(m *respond.Mapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil && len(c.Errors) == 0 {
				return
			}
			if captured(c) {
				// An inner interceptor already handled this fault.
				return
			}
			c.Set(ctxKeyCaptured, true)

			var f *fault.Fault
			if rec != nil {
				f = fault.FromPanic(rec)
			} else {
				f = classifyGinErrors(c)
			}

			logCapture(c, f, rec)
			recordFault(f.Kind)
			writeSafely(c, m, f)
		}()
		c.Next()
	}
}

// captured reports whether a (nested) interceptor already handled the fault.
func captured(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyCaptured)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// classifyGinErrors reduces c.Errors to a single fault. The last recorded
// error wins; earlier ones are kept as context for the log line via
// c.Errors.String() upstream.
func classifyGinErrors(c *gin.Context) *fault.Fault {
	err := c.Errors.Last().Err
	out := fault.Classify(nil, err)
	return out.Fault()
}

// logCapture emits exactly one error-level log line for the captured fault,
// including its kind, message, and context. Panics additionally record the
// stack trace.
func logCapture(c *gin.Context, f *fault.Fault, rec any) {
	lg := LoggerFrom(c)
	ev := lg.Error().
		Str("request_id", RequestIDFrom(c)).
		Str("kind", f.Kind.Code()).
		Str("message", f.Message)
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		ev = ev.Str("trace_id", sc.TraceID().String())
	}
	for k, v := range f.Context {
		ev = ev.Str("ctx_"+k, v)
	}
	if rec != nil {
		ev = ev.Interface("panic", rec).Bytes("stack", debug.Stack())
	}
	ev.Msg("fault captured")
}

// writeSafely maps the fault and writes the response, degrading to the
// hardcoded fallback if mapping or serialization panics. The response is only
// written when the handler has not already produced one.
func writeSafely(c *gin.Context, m *respond.Mapper, f *fault.Fault) {
	if c.Writer.Written() {
		c.Abort()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			// Last line of defense: mapper or renderer blew up.
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					respond.Fallback(RequestIDFrom(c)).Body)
				return
			}
			c.Abort()
		}
	}()
	spec := m.Map(fault.Fail(f), respond.Request{
		RequestID:      RequestIDFrom(c),
		Format:         respond.Negotiate(c),
		AcceptLanguage: c.GetHeader("Accept-Language"),
	})
	spec.Write(c)
}
