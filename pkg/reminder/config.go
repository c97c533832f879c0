// Package reminder generates the reminder-tab widget: a draggable desktop side
// tab and a mobile floating button that open the popup template.
//
// Generation is a pure function of Config. The CSS, markup and script parts
// can each be produced on their own for debugging or export.
package reminder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/gnana997/popupkit/catalogs"
)

// Position is the side of the viewport the desktop tab is docked to.
type Position string

const (
	PositionLeft  Position = "left"
	PositionRight Position = "right"
)

// EntranceType is a widget entrance animation.
type EntranceType string

const (
	EntranceSlideIn  EntranceType = "slideIn"
	EntranceFadeIn   EntranceType = "fadeIn"
	EntranceBounceIn EntranceType = "bounceIn"
	EntranceZoomIn   EntranceType = "zoomIn"
	EntranceNone     EntranceType = "none"
)

// TriggerType is the popup opening animation requested by the widget.
type TriggerType string

const (
	TriggerModal TriggerType = "modal"
	TriggerSlide TriggerType = "slide"
	TriggerFade  TriggerType = "fade"
	TriggerZoom  TriggerType = "zoom"
)

// IconType selects the lookup table used for the mobile button icon.
type IconType string

const (
	IconFontAwesome IconType = "fontawesome"
	IconEmoji       IconType = "emoji"
	IconAntd        IconType = "antd"
)

// CSSValue is a CSS value as stored by the admin UI. Stored configs mix
// strings ("48px") and bare numbers (48); both decode into a CSSValue.
type CSSValue string

// UnmarshalJSON accepts a JSON string, number or null.
func (v *CSSValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = CSSValue(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("css value must be a string or number, got %s", data)
	}
	*v = CSSValue(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

// Config is the complete reminder-tab configuration. It is read-only input:
// nothing in this package modifies a Config it is given.
type Config struct {
	Enabled    bool            `json:"enabled"`
	Desktop    DesktopConfig   `json:"desktop"`
	Mobile     MobileConfig    `json:"mobile"`
	Animations AnimationConfig `json:"animations"`
}

type DesktopConfig struct {
	Enabled      bool                `json:"enabled"`
	Display      DesktopDisplay      `json:"display"`
	Styling      DesktopStyling      `json:"styling"`
	Interactions DesktopInteractions `json:"interactions"`
}

type DesktopDisplay struct {
	Text            string          `json:"text"`
	Position        Position        `json:"position"`
	InitialPosition InitialPosition `json:"initialPosition"`
}

type InitialPosition struct {
	Top       CSSValue `json:"top"`
	Transform CSSValue `json:"transform"`
}

type DesktopStyling struct {
	Dimensions Dimensions    `json:"dimensions"`
	Colors     DesktopColors `json:"colors"`
	Typography Typography    `json:"typography"`
}

type Dimensions struct {
	Width  CSSValue `json:"width"`
	Height CSSValue `json:"height"`
}

type DesktopColors struct {
	Primary      CSSValue `json:"primary"`
	Secondary    CSSValue `json:"secondary"`
	TextColor    CSSValue `json:"textColor"`
	DraggerColor CSSValue `json:"draggerColor"`
	DotColor     CSSValue `json:"dotColor"`
}

type Typography struct {
	FontFamily    CSSValue `json:"fontFamily"`
	FontSize      CSSValue `json:"fontSize"`
	FontWeight    CSSValue `json:"fontWeight"`
	LetterSpacing CSSValue `json:"letterSpacing"`
}

type DesktopInteractions struct {
	Dragging Toggle `json:"dragging"`
	Clicking Toggle `json:"clicking"`
}

// Toggle is an on/off feature switch.
type Toggle struct {
	Enabled bool `json:"enabled"`
}

type MobileConfig struct {
	Enabled    bool             `json:"enabled"`
	Icon       MobileIcon       `json:"icon"`
	Position   MobilePosition   `json:"position"`
	Styling    MobileStyling    `json:"styling"`
	Animations MobileAnimations `json:"animations"`
}

type MobileIcon struct {
	Type  IconType `json:"type"`
	Value string   `json:"value"`
	Size  CSSValue `json:"size"`
	Color CSSValue `json:"color"`
}

type MobilePosition struct {
	Bottom CSSValue `json:"bottom"`
	Right  CSSValue `json:"right"`
}

type MobileStyling struct {
	Size            CSSValue `json:"size"`
	BackgroundColor CSSValue `json:"backgroundColor"`
	BorderColor     CSSValue `json:"borderColor"`
	BorderWidth     CSSValue `json:"borderWidth"`
	BoxShadow       CSSValue `json:"boxShadow"`
}

type MobileAnimations struct {
	Entrance Entrance `json:"entrance"`
	Hover    Hover    `json:"hover"`
}

type Hover struct {
	Enabled bool     `json:"enabled"`
	Scale   CSSValue `json:"scale"`
}

type Entrance struct {
	Type     EntranceType `json:"type"`
	Duration CSSValue     `json:"duration"`
}

type AnimationConfig struct {
	Entrance     Entrance     `json:"entrance"`
	PopupTrigger PopupTrigger `json:"popupTrigger"`
}

type PopupTrigger struct {
	Type TriggerType `json:"type"`
}

// DesktopVisible reports whether the desktop tab is emitted.
func (c Config) DesktopVisible() bool {
	return c.Enabled && c.Desktop.Enabled
}

// MobileVisible reports whether the mobile floating button is emitted.
func (c Config) MobileVisible() bool {
	return c.Enabled && c.Mobile.Enabled
}

var defaultConfig = mustLoadDefault()

func mustLoadDefault() Config {
	var cfg Config
	if err := json.Unmarshal(catalogs.ReminderDefaultJSON, &cfg); err != nil {
		panic(fmt.Sprintf("reminder: invalid embedded default config: %v", err))
	}
	return cfg
}

// DefaultConfig returns the embedded default configuration.
func DefaultConfig() Config {
	return defaultConfig
}

// ParseConfig decodes a stored configuration on top of DefaultConfig, so
// fields absent from data keep their default values.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse reminder config: %w", err)
	}
	return cfg, nil
}
