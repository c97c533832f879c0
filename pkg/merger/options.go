package merger

import (
	"strconv"
	"strings"
	"time"
)

// Defaults applied to unset Options fields.
const (
	DefaultPopupSelector     = ".u-popup-container"
	DefaultTriggerSelector   = "#reminderTab, #mobileFloatingButton"
	DefaultAnimationDuration = "0.3s"
)

// DefaultCloseSelectors match the close buttons and overlays popup templates
// commonly use.
var DefaultCloseSelectors = []string{
	".u-popup-close",
	".popup-close",
	".close-button",
	".close-btn",
	"[data-popup-close]",
	"[data-action=\"close\"]",
	".u-popup-overlay",
}

// Options controls how the reminder widget is wired to the popup.
type Options struct {
	PopupSelector       string   `json:"popupSelector,omitempty" yaml:"popup_selector"`
	TriggerSelector     string   `json:"triggerSelector,omitempty" yaml:"trigger_selector"`
	CloseSelectors      []string `json:"closeSelectors,omitempty" yaml:"close_selectors"`
	EnableAnimations    *bool    `json:"enableAnimations,omitempty" yaml:"enable_animations"`
	AnimationDuration   string   `json:"animationDuration,omitempty" yaml:"animation_duration"`
	AutoOpenPopup       bool     `json:"autoOpenPopup,omitempty" yaml:"auto_open_popup"`
	DisableCloseButtons bool     `json:"disableCloseButtons,omitempty" yaml:"disable_close_buttons"`
	HideReminderTab     bool     `json:"hideReminderTab,omitempty" yaml:"hide_reminder_tab"`

	// ValidateScripts parses every emitted script and logs syntax errors.
	ValidateScripts bool `json:"validateScripts,omitempty" yaml:"validate_scripts"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy of o with every unset field defaulted.
func (o Options) WithDefaults() Options {
	if strings.TrimSpace(o.PopupSelector) == "" {
		o.PopupSelector = DefaultPopupSelector
	}
	if strings.TrimSpace(o.TriggerSelector) == "" {
		o.TriggerSelector = DefaultTriggerSelector
	}
	if o.CloseSelectors == nil {
		o.CloseSelectors = append([]string(nil), DefaultCloseSelectors...)
	}
	if o.EnableAnimations == nil {
		enabled := true
		o.EnableAnimations = &enabled
	}
	if strings.TrimSpace(o.AnimationDuration) == "" {
		o.AnimationDuration = DefaultAnimationDuration
	}
	return o
}

// Animated reports whether popup transitions are enabled.
func (o Options) Animated() bool {
	return o.EnableAnimations == nil || *o.EnableAnimations
}

// animationMillis converts AnimationDuration ("0.3s", "300ms", "0.3") to
// milliseconds. ok is false when the value cannot be parsed.
func (o Options) animationMillis() (ms int64, ok bool) {
	s := strings.TrimSpace(o.AnimationDuration)
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d.Milliseconds(), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int64(f * 1000), true
	}
	return 0, false
}
