package registry

// Props holds the property values of one component instance. Values are the
// JSON-compatible Go types produced by encoding/json (string, float64, bool,
// []any, map[string]any, nil).
type Props map[string]any

// RenderFunc renders a component's HTML fragment from its props. It must be
// pure: identical props produce byte-identical output.
type RenderFunc func(props Props) string

// Category groups components in the editor's component picker.
type Category string

const (
	CategoryEngagement Category = "engagement"
	CategoryCommerce   Category = "commerce"
	CategoryLayout     Category = "layout"
)

// PropType is the editor control used for a property.
type PropType string

const (
	PropNumber PropType = "number"
	PropText   PropType = "text"
	PropColor  PropType = "color"
	PropSelect PropType = "select"
	PropToggle PropType = "toggle"
	PropRange  PropType = "range"
)

// PropDescriptor describes one editable property of a component.
type PropDescriptor struct {
	Name    string       `json:"name"`
	Label   string       `json:"label"`
	Type    PropType     `json:"type"`
	Default any          `json:"default,omitempty"`
	Min     *float64     `json:"min,omitempty"`
	Max     *float64     `json:"max,omitempty"`
	Step    *float64     `json:"step,omitempty"`
	Options []PropOption `json:"options,omitempty"`
}

// PropOption is one choice of a select property.
type PropOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Definition is a registered custom component.
type Definition struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Category     Category         `json:"category"`
	Icon         string           `json:"icon"`
	PropSchema   []PropDescriptor `json:"prop_schema"`
	DefaultProps Props            `json:"default_props"`
	Render       RenderFunc       `json:"-"`
}

// RenderDefault renders the component with its default props.
func (d *Definition) RenderDefault() string {
	return d.Render(d.DefaultProps.Clone())
}

// Clone returns a shallow copy of the props map.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Merge returns a copy of p with every key of override applied on top.
func (p Props) Merge(override Props) Props {
	out := p.Clone()
	for k, v := range override {
		out[k] = v
	}
	return out
}

// Range is a helper for building PropDescriptor bounds.
func Range(v float64) *float64 {
	return &v
}
