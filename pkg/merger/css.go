package merger

import (
	"fmt"
	"strings"
)

// triggerStates holds the closed and open .u-popup-main state of each popup
// trigger type.
var triggerStates = []struct {
	name   string
	closed string
	open   string
}{
	{"modal", "transform: scale(0.8); opacity: 0;", "transform: scale(1); opacity: 1;"},
	{"slide", "transform: translateY(100%); opacity: 0;", "transform: translateY(0); opacity: 1;"},
	{"fade", "opacity: 0;", "opacity: 1;"},
	{"zoom", "transform: scale(0); opacity: 0;", "transform: scale(1); opacity: 1;"},
}

// scoped applies suffix to every selector of a comma-separated list.
func scoped(selector, suffix string) string {
	parts := strings.Split(selector, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p) + suffix
	}
	return strings.Join(parts, ", ")
}

// popupCSS returns the popup show/hide stylesheet for opts.
func popupCSS(opts Options, durationMs int64) string {
	var b strings.Builder
	sel := cssSafe(opts.PopupSelector)

	fmt.Fprintf(&b, "%s {\n  display: none;\n}\n", scoped(sel, ""))

	if !opts.Animated() {
		fmt.Fprintf(&b, "%s {\n  transition: none;\n}\n", scoped(sel, " .u-popup-main"))
		return b.String()
	}

	fmt.Fprintf(&b, "%s {\n  transition: transform %dms ease, opacity %dms ease;\n}\n",
		scoped(sel, " .u-popup-main"), durationMs, durationMs)
	for _, st := range triggerStates {
		fmt.Fprintf(&b, "%s {\n  %s\n}\n", scoped(sel, ".trigger-"+st.name+" .u-popup-main"), st.closed)
		fmt.Fprintf(&b, "%s {\n  %s\n}\n", scoped(sel, ".trigger-"+st.name+".active .u-popup-main"), st.open)
	}
	return b.String()
}

// cssSafe drops characters that would end the rule or the style element.
func cssSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', '<', '>', ';':
			return -1
		}
		return r
	}, s)
}
