// Package fault – outcome classification.
//
// This file turns the raw result of handling a request (a value, an error, or
// a recovered panic) into an Outcome: either Success carrying the value, or
// Fail carrying exactly one Fault. Classification is pure — no I/O, no
// logging — so it can run anywhere, including inside the interceptor's
// recovery path.
package fault

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// Outcome is the classified result of attempting an operation: Success with a
// value, or Fail with a single Fault. The zero value is a Success with a nil
// value.
type Outcome struct {
	value any
	fault *Fault
}

// Success builds a successful Outcome carrying v.
func Success(v any) Outcome { return Outcome{value: v} }

// Fail builds a failed Outcome. A nil fault is coerced to an Internal fault
// so Failed outcomes always carry something mappable.
func Fail(f *Fault) Outcome {
	if f == nil {
		f = New(Internal, "unknown failure")
	}
	return Outcome{fault: f}
}

// Failed reports whether the outcome carries a Fault.
func (o Outcome) Failed() bool { return o.fault != nil }

// Value returns the success value; nil for failed outcomes.
func (o Outcome) Value() any { return o.value }

// Fault returns the carried fault; nil for successful outcomes.
func (o Outcome) Fault() *Fault { return o.fault }

// Classify maps a (value, error) pair to an Outcome.
//
// Rules, in order:
//   - nil error → Success(v).
//   - a *Fault anywhere in the chain → Fail with that fault, preserved as-is.
//   - validator.ValidationErrors → Fail(ValidationFailed) with one context
//     entry per offending field (field name → failed rule).
//   - anything else → Fail(Internal) with the error's string form as message.
//     The original error is kept as the cause for logging.
func Classify(v any, err error) Outcome {
	if err == nil {
		return Success(v)
	}
	if f, ok := As(err); ok {
		return Fail(f)
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		f := New(ValidationFailed, "request validation failed")
		for _, fe := range verrs {
			f.With(fe.Field(), fe.Tag())
		}
		f.cause = err
		return Fail(f)
	}
	return Fail(Wrap(Internal, err.Error(), err))
}

// FromPanic converts a recovered panic value into an Internal fault. Error
// panics keep their chain (so a panicked *Fault still classifies correctly);
// non-error values are stringified.
func FromPanic(rec any) *Fault {
	switch v := rec.(type) {
	case *Fault:
		return v
	case error:
		if out := Classify(nil, v); out.Failed() {
			return out.Fault()
		}
		return Wrap(Internal, v.Error(), v)
	default:
		return Newf(Internal, "panic: %v", v).With("panic", "true")
	}
}
