package design

import (
	"log/slog"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// Detection is the component marker found on an HTML fragment.
type Detection struct {
	ComponentID string         `json:"component_id"`
	Props       registry.Props `json:"props"`
}

// DetectedComponent is a custom component found in a design document.
type DetectedComponent struct {
	ComponentID  string               `json:"component_id"`
	Definition   *registry.Definition `json:"-"`
	CurrentProps registry.Props       `json:"current_props"`
	HTMLBlockID  string               `json:"html_block_id"`
	RawHTML      string               `json:"raw_html"`
}

// Detector finds custom components in HTML fragments and design documents.
type Detector struct {
	registry *registry.Registry
	logger   *slog.Logger
}

// NewDetector creates a detector resolving component ids against reg.
func NewDetector(reg *registry.Registry, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{registry: reg, logger: logger}
}

// DetectCustomComponent returns the component marker of html, or nil when
// the fragment carries none. A marker whose props cannot be parsed is still
// returned, with empty props; the failure is logged.
func (d *Detector) DetectCustomComponent(html string) *Detection {
	m, ok, err := marker.Parse(html)
	if !ok {
		return nil
	}
	if err != nil {
		d.logger.Warn("failed to parse component props",
			"component", m.ComponentID,
			"error", err)
	}
	return &Detection{ComponentID: m.ComponentID, Props: registry.Props(m.Props)}
}

// FindAll returns every registered custom component embedded in the
// document, in document order. Components whose id is not registered are
// skipped.
func (d *Detector) FindAll(doc Document) []DetectedComponent {
	found := make([]DetectedComponent, 0)

	doc.Walk(func(c Content) bool {
		if c.Type() != ContentTypeHTML {
			return true
		}
		html := c.HTML()
		det := d.DetectCustomComponent(html)
		if det == nil {
			return true
		}
		def, ok := d.registry.Get(det.ComponentID)
		if !ok {
			d.logger.Debug("skipping unregistered component",
				"component", det.ComponentID,
				"block_id", c.ID())
			return true
		}
		found = append(found, DetectedComponent{
			ComponentID:  det.ComponentID,
			Definition:   def,
			CurrentProps: det.Props,
			HTMLBlockID:  c.ID(),
			RawHTML:      html,
		})
		return true
	})

	return found
}
