// Package fault defines the failure taxonomy shared by every layer of the
// application. A Fault is a structured failure signal carrying a Kind, a
// human-readable message, and optional key/value context. Services return
// faults (or plain errors) and the HTTP layer translates them into responses;
// no layer below HTTP ever decides a status code.
//
// Conventions:
//   - The Kind set is closed. New failure classes get a new Kind here, never
//     an ad-hoc error type, so translation at the edge stays exhaustive.
//   - Context values are for operators and for debug-mode responses only.
//     They must never be assumed safe for end users.
//   - Wrap preserves the cause chain; errors.Is/errors.As keep working across
//     the taxonomy boundary.
package fault

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind is the closed classification of a failure. The zero value is Internal,
// so an uninitialized Fault still maps to a safe 500.
type Kind int

const (
	// Internal is the catch-all for unclassified failures. Maps to HTTP 500.
	Internal Kind = iota
	// NotFound signals that the requested entity does not exist or is not
	// visible to the caller. Maps to HTTP 404.
	NotFound
	// PermissionDenied signals that the caller is known but not allowed to
	// perform the operation. Maps to HTTP 403.
	PermissionDenied
	// BadRequest signals a malformed or semantically unusable request that
	// failed before payload validation. Maps to HTTP 400.
	BadRequest
	// ValidationFailed signals that a structurally sound payload violated
	// field-level rules. Maps to HTTP 400, distinguished from BadRequest by
	// its stable code so clients can branch on it.
	ValidationFailed
)

// kinds is the full taxonomy in declaration order. Used by tests and by the
// metrics layer to pre-register label values.
var kinds = []Kind{Internal, NotFound, PermissionDenied, BadRequest, ValidationFailed}

// Kinds returns every Kind in the taxonomy.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// Code returns the stable, machine-readable code for the kind. These codes
// appear verbatim in error envelopes and metrics labels and must not change.
func (k Kind) Code() string {
	switch k {
	case NotFound:
		return "not_found"
	case PermissionDenied:
		return "permission_denied"
	case BadRequest:
		return "bad_request"
	case ValidationFailed:
		return "validation_failed"
	default:
		return "internal_error"
	}
}

// String implements fmt.Stringer using the stable code.
func (k Kind) String() string { return k.Code() }

// DefaultStatus returns the fixed default HTTP status for the kind.
func (k Kind) DefaultStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case PermissionDenied:
		return http.StatusForbidden
	case BadRequest, ValidationFailed:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fault is a classified failure. It implements error so it can travel through
// ordinary error returns, and it carries enough structure for the response
// mapper and the logger to act without string matching.
type Fault struct {
	// Kind classifies the failure; drives the HTTP status and envelope code.
	Kind Kind
	// Message is a human-readable description. Shown to users only in debug
	// mode; production responses use the generic per-kind message instead.
	Message string
	// Context holds supplementary key/value detail (IDs, field names, limits).
	// Logged always, exposed in responses only in debug mode.
	Context map[string]string

	cause error
}

// New constructs a Fault of the given kind.
func New(kind Kind, message string) *Fault {
	return &Fault{Kind: kind, Message: message}
}

// Newf constructs a Fault with a formatted message.
func Newf(kind Kind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Fault that records err as its cause. The cause is
// reachable via errors.Unwrap/Is/As but is never serialized into responses.
func Wrap(kind Kind, message string, err error) *Fault {
	return &Fault{Kind: kind, Message: message, cause: err}
}

// With returns the fault with an added context entry. It mutates and returns
// the receiver so call sites can chain:
//
//	fault.New(fault.NotFound, "student not found").With("id", id)
func (f *Fault) With(key, value string) *Fault {
	if f.Context == nil {
		f.Context = make(map[string]string, 4)
	}
	f.Context[key] = value
	return f
}

// Error implements error. The rendered form includes the kind code and, when
// present, sorted context pairs, e.g.
//
//	not_found: student not found (id=42)
func (f *Fault) Error() string {
	var b strings.Builder
	b.WriteString(f.Kind.Code())
	b.WriteString(": ")
	b.WriteString(f.Message)
	if len(f.Context) > 0 {
		keys := make([]string, 0, len(f.Context))
		for k := range f.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(f.Context[k])
		}
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap exposes the wrapped cause for errors.Is / errors.As traversal.
func (f *Fault) Unwrap() error { return f.cause }

// As extracts a *Fault from anywhere in err's chain.
func As(err error) (*Fault, bool) {
	var f *Fault
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// KindOf reports the Kind of err. Plain errors that carry no Fault anywhere
// in their chain report Internal, matching how the classifier treats them.
func KindOf(err error) Kind {
	if f, ok := As(err); ok {
		return f.Kind
	}
	return Internal
}

// IsKind reports whether err is (or wraps) a Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	f, ok := As(err)
	return ok && f.Kind == kind
}
