package components

import (
	"html"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/gnana997/popupkit/pkg/registry"
)

// textPolicy strips all markup from free-text props and escapes the rest.
var textPolicy = bluemonday.StrictPolicy()

var colorRe = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20}|(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\))$`)

// num coerces a prop to a number. Missing, non-numeric and zero values yield
// fallback, so malformed props degrade instead of failing.
func num(p registry.Props, key string, fallback float64) float64 {
	var v float64
	switch x := p[key].(type) {
	case float64:
		v = x
	case float32:
		v = float64(x)
	case int:
		v = float64(x)
	case int64:
		v = float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return fallback
		}
		v = f
	case bool:
		if x {
			v = 1
		}
	default:
		return fallback
	}
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

// clamp keeps v within [lo, hi].
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// str returns a string prop or fallback when it is missing or not a string.
func str(p registry.Props, key, fallback string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return fallback
}

// text returns a string prop sanitized for use as element content.
func text(p registry.Props, key, fallback string) string {
	return textPolicy.Sanitize(str(p, key, fallback))
}

func boolean(p registry.Props, key string, fallback bool) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return fallback
}

// color returns a CSS color prop, falling back when the value does not look
// like a color so it cannot break out of a style attribute.
func color(p registry.Props, key, fallback string) string {
	c := strings.TrimSpace(str(p, key, ""))
	if c == "" || !colorRe.MatchString(c) {
		return fallback
	}
	return c
}

// oneOf returns the prop value if it is in allowed, else fallback.
func oneOf(p registry.Props, key, fallback string, allowed ...string) string {
	v := str(p, key, fallback)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	return fallback
}

// attr escapes a free-form value for a double-quoted attribute.
func attr(s string) string {
	return html.EscapeString(s)
}

// safeURL accepts http(s) and root-relative URLs and returns them
// attribute-escaped; anything else becomes fallback.
func safeURL(raw, fallback string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fallback
	}
	if u.Scheme != "" && u.Scheme != "http" && u.Scheme != "https" {
		return fallback
	}
	return html.EscapeString(raw)
}

// list returns the objects of a list prop, truncated to max entries.
// Entries that are not objects are skipped.
func list(p registry.Props, key string, max int) []registry.Props {
	raw, ok := p[key].([]any)
	if !ok {
		if typed, ok := p[key].([]map[string]any); ok {
			raw = make([]any, len(typed))
			for i, m := range typed {
				raw[i] = m
			}
		}
	}

	out := make([]registry.Props, 0, min(len(raw), max))
	for _, item := range raw {
		if len(out) == max {
			break
		}
		switch m := item.(type) {
		case map[string]any:
			out = append(out, registry.Props(m))
		case registry.Props:
			out = append(out, m)
		}
	}
	return out
}

// scriptOpen starts an inline script bound to the element it sits in. Every
// script is the last child of its component root, so identical instances on
// one page each bind to their own root. The id lookup is only reached when a
// host evaluates the script without currentScript.
func scriptOpen(id string) string {
	return `<script>(function(){var s=document.currentScript;var root=(s&&s.parentNode)||document.getElementById(` +
		strconv.Quote(id) + `);if(!root)return;`
}
