package reminder

import (
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
)

// EscapeHTML escapes text for interpolation into markup. It covers the
// characters & < > " ' and /.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// cssUnsafe matches characters that could close a declaration or the
// enclosing style element.
var cssUnsafe = regexp.MustCompile(`[<>{};\\]`)

var numeric = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// css returns v stripped of unsafe characters, or fallback when empty.
func css(v CSSValue, fallback string) string {
	s := strings.TrimSpace(cssUnsafe.ReplaceAllString(string(v), ""))
	if s == "" {
		return fallback
	}
	return s
}

// px is css for lengths: a bare number gets a px unit.
func px(v CSSValue, fallback string) string {
	s := css(v, fallback)
	if numeric.MatchString(s) {
		return s + "px"
	}
	return s
}

// seconds is css for durations: a bare number is taken as seconds.
func seconds(v CSSValue, fallback string) string {
	s := css(v, fallback)
	if numeric.MatchString(s) {
		return s + "s"
	}
	return s
}
