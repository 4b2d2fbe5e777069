// Package respond – generic production messages.
//
// Production responses replace fault messages with fixed per-kind text so
// that nothing internal leaks. The text is localized from the request's
// Accept-Language header; unknown or absent languages fall back to English.
package respond

import (
	"golang.org/x/text/language"

	"github.com/faultgate/faultgate/internal/fault"
)

// supported lists the message locales in matcher preference order. The first
// entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.Greek,
}

var matcher = language.NewMatcher(supported)

// generic holds the per-locale, per-kind production messages. Every supported
// locale must cover every kind; English is the authoritative set.
var generic = map[language.Tag]map[fault.Kind]string{
	language.English: {
		fault.NotFound:         "the requested resource was not found",
		fault.PermissionDenied: "you do not have permission to perform this action",
		fault.BadRequest:       "the request could not be understood",
		fault.ValidationFailed: "the request contains invalid fields",
		fault.Internal:         "internal server error",
	},
	language.Greek: {
		fault.NotFound:         "ο πόρος που ζητήθηκε δεν βρέθηκε",
		fault.PermissionDenied: "δεν έχετε δικαίωμα για αυτή την ενέργεια",
		fault.BadRequest:       "το αίτημα δεν ήταν κατανοητό",
		fault.ValidationFailed: "το αίτημα περιέχει μη έγκυρα πεδία",
		fault.Internal:         "εσωτερικό σφάλμα διακομιστή",
	},
}

// genericMessage returns the production message for kind in the best
// supported language for the given Accept-Language header value.
func genericMessage(kind fault.Kind, acceptLanguage string) string {
	tag := language.English
	if acceptLanguage != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			tag, _, _ = matcher.Match(tags...)
		}
	}
	// Match returns a supported tag (possibly with extensions); reduce to the
	// base registered in the catalog.
	for _, s := range supported {
		if s == tag {
			return generic[s][kind]
		}
	}
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			return generic[s][kind]
		}
	}
	return generic[language.English][kind]
}
