// Package respond – HTML error pages.
//
// Error pages follow the classic convention of one template per status:
// 400.html, 403.html, 404.html, 500.html. Pages are parsed once at startup;
// a missing or broken template never breaks a response because the Mapper
// falls back to the JSON envelope.
package respond

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/faultgate/faultgate/internal/fault"
)

// PageData is the data passed to error-page templates.
type PageData struct {
	Status    int
	Code      string
	Message   string
	RequestID string
	// Context is populated in debug mode only, mirroring the JSON envelope.
	Context map[string]string
}

// Renderer renders a named error page. Implementations must be safe for
// concurrent use and must not write to the network themselves.
type Renderer interface {
	Render(name string, data PageData) (string, error)
}

// HTMLRenderer renders pages from a pre-parsed html/template set.
type HTMLRenderer struct {
	tpl *template.Template
}

// NewHTMLRenderer parses every *.html file under dir. It fails when the
// directory contains no templates so a misconfigured path surfaces at
// startup instead of at the first error response.
func NewHTMLRenderer(dir string) (*HTMLRenderer, error) {
	tpl, err := template.ParseGlob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("parse error pages in %s: %w", dir, err)
	}
	return &HTMLRenderer{tpl: tpl}, nil
}

// Render executes the named template into a buffer. A template that is not
// part of the parsed set is an error (the Mapper treats it as "no page").
func (r *HTMLRenderer) Render(name string, data PageData) (string, error) {
	if r.tpl.Lookup(name) == nil {
		return "", fmt.Errorf("error page %q not registered", name)
	}
	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DefaultTemplates maps each kind to its conventional page name. BadRequest
// and ValidationFailed share 400.html, matching their shared status.
func DefaultTemplates() map[fault.Kind]string {
	return map[fault.Kind]string{
		fault.NotFound:         "404.html",
		fault.PermissionDenied: "403.html",
		fault.BadRequest:       "400.html",
		fault.ValidationFailed: "400.html",
		fault.Internal:         "500.html",
	}
}
