// Package respond converts classified outcomes into transport-ready
// responses. It owns the debug/production exposure contract: production
// responses never leak fault context, causes, or stack data; debug responses
// expose full fault detail for development. That switch lives here and only
// here — call sites never decide what is safe to show.
package respond

import (
	"fmt"
	"strings"
)

// Mode is the process-wide exposure switch. It is set once at startup from
// configuration and injected into the Mapper; nothing reads it from ambient
// global state.
type Mode int

const (
	// Production hides fault detail behind generic per-kind messages.
	// This is the zero value so a forgotten mode never over-exposes.
	Production Mode = iota
	// Debug exposes fault messages and context verbatim in responses.
	Debug
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == Debug {
		return "debug"
	}
	return "production"
}

// ParseMode parses a mode string from configuration. Accepted values
// (case-insensitive): "debug", "dev" → Debug; "production", "prod",
// "release" → Production.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dev":
		return Debug, nil
	case "production", "prod", "release", "":
		return Production, nil
	default:
		return Production, fmt.Errorf("unknown mode %q (want debug or production)", s)
	}
}
