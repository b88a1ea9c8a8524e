package urlutil

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SafeRedirectPath returns from when it is a same-origin relative path and
// fallback otherwise. "//host" and "/\host" are rejected because browsers
// resolve them against another origin. Control characters and whitespace are
// rejected anywhere since browsers strip them before resolving.
func SafeRedirectPath(from, fallback string) string {
	if !strings.HasPrefix(from, "/") {
		return fallback
	}
	if len(from) > 1 && (from[1] == '/' || from[1] == '\\') {
		return fallback
	}
	if strings.ContainsFunc(from, func(r rune) bool {
		return r < 0x20 || r == 0x7f || unicode.IsSpace(r) || r == utf8.RuneError
	}) {
		return fallback
	}
	u, err := url.Parse(from)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil {
		return fallback
	}
	return from
}
