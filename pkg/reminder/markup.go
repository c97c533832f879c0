package reminder

import (
	"strings"
)

// FallbackIcon is shown when the configured icon cannot be resolved.
const FallbackIcon = "🎁"

var fontAwesomeIcons = map[string]string{
	"fa-gift":          "🎁",
	"fa-tag":           "🏷️",
	"fa-tags":          "🏷️",
	"fa-percent":       "%",
	"fa-percentage":    "%",
	"fa-star":          "⭐",
	"fa-heart":         "❤️",
	"fa-bell":          "🔔",
	"fa-shopping-cart": "🛒",
	"fa-shopping-bag":  "🛍️",
	"fa-ticket":        "🎟️",
	"fa-ticket-alt":    "🎟️",
	"fa-fire":          "🔥",
	"fa-bolt":          "⚡",
	"fa-gem":           "💎",
	"fa-crown":         "👑",
	"fa-clock":         "⏰",
}

var antdIcons = map[string]string{
	"GiftOutlined":         "🎁",
	"GiftFilled":           "🎁",
	"TagOutlined":          "🏷️",
	"TagsOutlined":         "🏷️",
	"PercentageOutlined":   "%",
	"StarOutlined":         "⭐",
	"StarFilled":           "⭐",
	"HeartOutlined":        "❤️",
	"HeartFilled":          "❤️",
	"BellOutlined":         "🔔",
	"ShoppingCartOutlined": "🛒",
	"ShoppingOutlined":     "🛍️",
	"FireOutlined":         "🔥",
	"ThunderboltOutlined":  "⚡",
	"CrownOutlined":        "👑",
	"ClockCircleOutlined":  "⏰",
}

// ResolveIcon maps the configured mobile icon to the glyph that is rendered.
// FontAwesome values may carry a style prefix ("fas fa-gift").
func ResolveIcon(icon MobileIcon) string {
	value := strings.TrimSpace(icon.Value)
	switch icon.Type {
	case IconFontAwesome:
		for _, field := range strings.Fields(value) {
			if glyph, ok := fontAwesomeIcons[field]; ok {
				return glyph
			}
		}
	case IconAntd:
		if glyph, ok := antdIcons[value]; ok {
			return glyph
		}
	case IconEmoji:
		if value != "" {
			return value
		}
	}
	return FallbackIcon
}

// GenerateHTMLStructure returns the widget markup: the desktop tab and the
// mobile button, each only when enabled.
func GenerateHTMLStructure(cfg Config) string {
	var b strings.Builder

	if cfg.DesktopVisible() {
		d := cfg.Desktop
		side := PositionRight
		if d.Display.Position == PositionLeft {
			side = PositionLeft
		}
		text := EscapeHTML(d.Display.Text)

		b.WriteString(`<div id="reminderTab" class="reminder-tab position-` + string(side) + `" role="button" tabindex="0" aria-label="` + text + `">`)
		b.WriteString(`<span class="reminder-tab-text">` + text + `</span>`)
		if d.Interactions.Dragging.Enabled {
			b.WriteString(`<div class="reminder-tab-dragger" data-drag-handle="true" aria-hidden="true">`)
			for range 6 {
				b.WriteString(`<span class="reminder-tab-dot"></span>`)
			}
			b.WriteString(`</div>`)
		}
		b.WriteString("</div>\n")
	}

	if cfg.MobileVisible() {
		label := EscapeHTML(cfg.Desktop.Display.Text)
		if label == "" {
			label = "Open offer"
		}
		b.WriteString(`<button id="mobileFloatingButton" class="mobile-floating-button" type="button" aria-label="` + label + `">`)
		b.WriteString(`<span class="mobile-floating-icon">` + EscapeHTML(ResolveIcon(cfg.Mobile.Icon)) + `</span>`)
		b.WriteString("</button>\n")
	}

	return b.String()
}
