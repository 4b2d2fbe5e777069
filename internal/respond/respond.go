// Package respond – outcome → response mapping.
//
// This file defines the transport-agnostic Spec, the standard JSON error
// envelope, and the Mapper that produces one Spec per Outcome. Mapping is
// pure: no logging, no I/O beyond executing an already-parsed template into a
// buffer. Logging a captured fault is the interceptor's job.
//
// Example error envelope:
//
//	HTTP/1.1 404 Not Found
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "not_found",
//	  "message": "the requested resource was not found"
//	}
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/faultgate/faultgate/internal/fault"
)

// Format selects the wire representation of a mapped response.
type Format int

const (
	// FormatJSON emits the JSON error envelope (default).
	FormatJSON Format = iota
	// FormatHTML renders a registered error page, falling back to JSON when
	// no page exists for the fault's kind or rendering fails.
	FormatHTML
)

// Spec is the final, transport-agnostic description of what to send back for
// a request. It is immutable once built; Write serializes it exactly once.
type Spec struct {
	// Status is the HTTP status code.
	Status int
	// Format selects JSON or HTML serialization of Body.
	Format Format
	// Body is the JSON-marshalable payload (FormatJSON) or the rendered page
	// as a string (FormatHTML).
	Body any
}

// Write serializes the spec onto a Gin context and aborts further handling.
func (s Spec) Write(c *gin.Context) {
	if s.Format == FormatHTML {
		page, _ := s.Body.(string)
		c.Data(s.Status, "text/html; charset=utf-8", []byte(page))
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(s.Status, s.Body)
}

// ErrorBody is the standard JSON error envelope returned for every failed
// request.
//
// Fields:
//   - RequestID: correlation ID echoed from X-Request-ID, for matching client
//     reports against server logs.
//   - Code: stable machine-readable code (fault.Kind.Code()).
//   - Message: human-readable description. Generic in production; the fault's
//     own message in debug mode.
//   - Context: fault context pairs, present in debug mode only.
type ErrorBody struct {
	RequestID string            `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	Code      string            `json:"code" example:"not_found"`
	Message   string            `json:"message" example:"the requested resource was not found"`
	Context   map[string]string `json:"context,omitempty"`
}

// Request carries the per-request inputs the Mapper needs. All fields are
// optional; the zero value maps to a JSON, unlocalized response with no
// correlation ID.
type Request struct {
	// RequestID is the correlation ID to echo into the envelope.
	RequestID string
	// Format is the negotiated response representation.
	Format Format
	// AcceptLanguage is the raw Accept-Language header, used to localize
	// production messages.
	AcceptLanguage string
}

// Option configures a Mapper at construction time.
type Option func(*Mapper)

// WithRenderer installs the error-page renderer used for FormatHTML.
func WithRenderer(r Renderer) Option {
	return func(m *Mapper) { m.renderer = r }
}

// WithTemplate registers (or overrides) the template name used to render
// pages for a kind. Registering an empty name removes the page, forcing the
// JSON fallback for that kind.
func WithTemplate(kind fault.Kind, name string) Option {
	return func(m *Mapper) {
		if name == "" {
			delete(m.templates, kind)
			return
		}
		m.templates[kind] = name
	}
}

// WithStatus overrides the default HTTP status for a kind.
func WithStatus(kind fault.Kind, status int) Option {
	return func(m *Mapper) { m.statuses[kind] = status }
}

// Mapper converts Outcomes into Specs under a fixed Mode. It is immutable
// after construction and safe for concurrent use.
type Mapper struct {
	mode      Mode
	renderer  Renderer
	templates map[fault.Kind]string
	statuses  map[fault.Kind]int
}

// NewMapper builds a Mapper for the given mode. Without options it produces
// JSON envelopes only, with the fixed default status per kind.
func NewMapper(mode Mode, opts ...Option) *Mapper {
	m := &Mapper{
		mode:      mode,
		templates: make(map[fault.Kind]string),
		statuses:  make(map[fault.Kind]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Mode returns the mapper's exposure mode.
func (m *Mapper) Mode() Mode { return m.mode }

// Status returns the HTTP status the mapper will use for a kind, honoring
// overrides.
func (m *Mapper) Status(kind fault.Kind) int {
	if s, ok := m.statuses[kind]; ok {
		return s
	}
	return kind.DefaultStatus()
}

// Map produces the Spec for an outcome.
//
// Success outcomes map to 200 with the value as JSON body; representation of
// success values beyond that is the handler's concern, not the mapper's.
//
// Failed outcomes map to the kind's status. In production the body carries
// only the stable code and a generic, localized message — never the fault's
// message, context, or cause. In debug the body carries the fault's message
// and context verbatim.
func (m *Mapper) Map(o fault.Outcome, req Request) Spec {
	if !o.Failed() {
		return Spec{Status: http.StatusOK, Format: FormatJSON, Body: o.Value()}
	}

	f := o.Fault()
	status := m.Status(f.Kind)
	body := ErrorBody{
		RequestID: req.RequestID,
		Code:      f.Kind.Code(),
		Message:   genericMessage(f.Kind, req.AcceptLanguage),
	}
	if m.mode == Debug {
		body.Message = f.Message
		body.Context = f.Context
	}

	if req.Format == FormatHTML {
		if page, ok := m.renderPage(f.Kind, status, body); ok {
			return Spec{Status: status, Format: FormatHTML, Body: page}
		}
	}
	return Spec{Status: status, Format: FormatJSON, Body: body}
}

// MapError is a convenience for the common handler fast path: classify err
// and map it in one step.
func (m *Mapper) MapError(err error, req Request) Spec {
	return m.Map(fault.Classify(nil, err), req)
}

// renderPage renders the registered page for kind. It reports false when no
// renderer or template is registered, or when rendering fails, in which case
// the caller falls back to the JSON envelope.
func (m *Mapper) renderPage(kind fault.Kind, status int, body ErrorBody) (string, bool) {
	if m.renderer == nil {
		return "", false
	}
	name, ok := m.templates[kind]
	if !ok {
		return "", false
	}
	page, err := m.renderer.Render(name, PageData{
		Status:    status,
		Code:      body.Code,
		Message:   body.Message,
		RequestID: body.RequestID,
		Context:   body.Context,
	})
	if err != nil {
		return "", false
	}
	return page, true
}

// Fallback returns the hardcoded minimal 500 spec used when mapping itself
// fails. It depends on nothing that can fail.
func Fallback(requestID string) Spec {
	return Spec{
		Status: http.StatusInternalServerError,
		Format: FormatJSON,
		Body: ErrorBody{
			RequestID: requestID,
			Code:      fault.Internal.Code(),
			Message:   "internal server error",
		},
	}
}

// Negotiate picks the response format from a request's Accept header. HTML is
// chosen only when the client explicitly prefers it (browsers); everything
// else, including absent or wildcard Accept, gets JSON.
func Negotiate(c *gin.Context) Format {
	switch c.NegotiateFormat(gin.MIMEJSON, gin.MIMEHTML) {
	case gin.MIMEHTML:
		return FormatHTML
	default:
		return FormatJSON
	}
}
