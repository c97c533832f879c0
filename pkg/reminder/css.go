package reminder

import (
	"fmt"
	"strings"
)

// MobileBreakpoint is the widest viewport, in pixels, that shows the mobile
// button instead of the desktop tab.
const MobileBreakpoint = 768

// GenerateCSS returns the widget stylesheet (without the <style> wrapper).
func GenerateCSS(cfg Config) string {
	var b strings.Builder

	if cfg.DesktopVisible() {
		writeDesktopCSS(&b, cfg)
	}
	if cfg.MobileVisible() {
		writeMobileCSS(&b, cfg.Mobile)
	}

	fmt.Fprintf(&b, "@media (max-width: %dpx) {\n", MobileBreakpoint)
	b.WriteString("  #reminderTab { display: none !important; }\n")
	if cfg.MobileVisible() {
		b.WriteString("  #mobileFloatingButton { display: flex; }\n")
	}
	b.WriteString("}\n")

	fmt.Fprintf(&b, "@media (min-width: %dpx) {\n", MobileBreakpoint+1)
	b.WriteString("  #mobileFloatingButton { display: none !important; }\n")
	if cfg.DesktopVisible() {
		b.WriteString("  #reminderTab { display: flex; }\n")
	}
	b.WriteString("}\n")

	return b.String()
}

func writeDesktopCSS(b *strings.Builder, cfg Config) {
	d := cfg.Desktop
	top := css(d.Display.InitialPosition.Top, "50%")
	transform := css(d.Display.InitialPosition.Transform, "translateY(-50%)")
	colors := d.Styling.Colors
	typo := d.Styling.Typography

	cursor := "pointer"
	if !d.Interactions.Clicking.Enabled {
		cursor = "default"
	}

	anim := cfg.Animations.Entrance
	kind := anim.Type
	if kind == EntranceSlideIn {
		if d.Display.Position == PositionLeft {
			writeKeyframes(b, "reminderTabEnter", kind, transform, "translateX(-100%)")
		} else {
			writeKeyframes(b, "reminderTabEnter", kind, transform, "translateX(100%)")
		}
	} else {
		writeKeyframes(b, "reminderTabEnter", kind, transform, "")
	}

	fmt.Fprintf(b, `#reminderTab {
  position: fixed;
  top: %s;
  transform: %s;
  width: %s;
  height: %s;
  display: flex;
  align-items: center;
  justify-content: center;
  gap: 6px;
  box-sizing: border-box;
  padding: 8px 4px;
  background: linear-gradient(135deg, %s 0%%, %s 100%%);
  color: %s;
  font-family: %s;
  font-size: %s;
  font-weight: %s;
  letter-spacing: %s;
  cursor: %s;
  user-select: none;
  touch-action: none;
  z-index: 2147483000;
  box-shadow: 0 2px 10px rgba(0, 0, 0, 0.2);
`,
		top, transform,
		px(d.Styling.Dimensions.Width, "48px"), px(d.Styling.Dimensions.Height, "160px"),
		css(colors.Primary, "#ff6b6b"), css(colors.Secondary, "#ee5a24"), css(colors.TextColor, "#ffffff"),
		css(typo.FontFamily, "sans-serif"), px(typo.FontSize, "14px"), css(typo.FontWeight, "600"), px(typo.LetterSpacing, "normal"),
		cursor)
	if kind != EntranceNone && kind != "" {
		fmt.Fprintf(b, "  animation: reminderTabEnter %s ease-out both;\n", seconds(anim.Duration, "0.5s"))
	}
	b.WriteString("}\n")

	b.WriteString(`#reminderTab.position-left {
  left: 0;
  right: auto;
  border-radius: 0 8px 8px 0;
  flex-direction: row-reverse;
}
#reminderTab.position-right {
  right: 0;
  left: auto;
  border-radius: 8px 0 0 8px;
  flex-direction: row;
}
#reminderTab .reminder-tab-text {
  writing-mode: vertical-rl;
  text-orientation: mixed;
  white-space: nowrap;
}
#reminderTab.position-left .reminder-tab-text {
  transform: rotate(180deg);
}
#reminderTab.dragging {
  cursor: grabbing;
  opacity: 0.9;
  animation: none;
}
`)

	if d.Interactions.Dragging.Enabled {
		fmt.Fprintf(b, `#reminderTab .reminder-tab-dragger {
  display: grid;
  grid-template-columns: repeat(2, 4px);
  gap: 3px;
  padding: 4px 2px;
  border-radius: 4px;
  background: %s;
  cursor: grab;
}
#reminderTab .reminder-tab-dot {
  width: 4px;
  height: 4px;
  border-radius: 50%%;
  background: %s;
}
`, css(colors.DraggerColor, "rgba(255, 255, 255, 0.2)"), css(colors.DotColor, "rgba(255, 255, 255, 0.8)"))
	}
}

func writeMobileCSS(b *strings.Builder, m MobileConfig) {
	kind := m.Animations.Entrance.Type
	writeKeyframes(b, "mobileButtonEnter", kind, "", "translateY(100%)")

	s := m.Styling
	fmt.Fprintf(b, `#mobileFloatingButton {
  position: fixed;
  bottom: %s;
  right: %s;
  width: %s;
  height: %s;
  border-radius: 50%%;
  display: flex;
  align-items: center;
  justify-content: center;
  padding: 0;
  background: %s;
  border: %s solid %s;
  box-shadow: %s;
  color: %s;
  font-size: %s;
  line-height: 1;
  cursor: pointer;
  z-index: 2147483000;
  transition: transform 0.2s ease;
`,
		px(m.Position.Bottom, "20px"), px(m.Position.Right, "20px"),
		px(s.Size, "56px"), px(s.Size, "56px"),
		css(s.BackgroundColor, "#ff6b6b"),
		px(s.BorderWidth, "0"), css(s.BorderColor, "transparent"),
		css(s.BoxShadow, "none"),
		css(m.Icon.Color, "#ffffff"), px(m.Icon.Size, "24px"))
	if kind != EntranceNone && kind != "" {
		fmt.Fprintf(b, "  animation: mobileButtonEnter %s ease-out both;\n", seconds(m.Animations.Entrance.Duration, "0.5s"))
	}
	b.WriteString("}\n")

	if m.Animations.Hover.Enabled {
		fmt.Fprintf(b, "#mobileFloatingButton:hover {\n  transform: scale(%s);\n}\n", css(m.Animations.Hover.Scale, "1.1"))
	}
}

// writeKeyframes emits the @keyframes rule name for an entrance animation.
// base is a transform the element already carries and that every frame must
// keep; offset is where a slide starts from. EntranceNone emits nothing.
func writeKeyframes(b *strings.Builder, name string, kind EntranceType, base, offset string) {
	with := func(t string) string {
		if base == "" {
			return t
		}
		return base + " " + t
	}
	rest := base
	if rest == "" {
		rest = "none"
	}

	switch kind {
	case EntranceSlideIn:
		fmt.Fprintf(b, "@keyframes %s {\n  from { transform: %s; opacity: 0; }\n  to { transform: %s; opacity: 1; }\n}\n",
			name, with(offset), rest)
	case EntranceFadeIn:
		fmt.Fprintf(b, "@keyframes %s {\n  from { opacity: 0; }\n  to { opacity: 1; }\n}\n", name)
	case EntranceBounceIn:
		fmt.Fprintf(b, "@keyframes %s {\n  0%% { transform: %s; opacity: 0; }\n  50%% { transform: %s; opacity: 1; }\n  70%% { transform: %s; }\n  100%% { transform: %s; }\n}\n",
			name, with("scale(0.3)"), with("scale(1.05)"), with("scale(0.9)"), with("scale(1)"))
	case EntranceZoomIn:
		fmt.Fprintf(b, "@keyframes %s {\n  from { transform: %s; opacity: 0; }\n  to { transform: %s; opacity: 1; }\n}\n",
			name, with("scale(0)"), with("scale(1)"))
	}
}
