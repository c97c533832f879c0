package components

import (
	"fmt"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// SectionDividerID is the registry id of the section divider.
const SectionDividerID = "section-divider"

func sectionDividerDefinition() registry.Definition {
	return registry.Definition{
		ID:          SectionDividerID,
		Name:        "Section Divider",
		Description: "Horizontal rule with optional centered label",
		Category:    registry.CategoryLayout,
		Icon:        "LineOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "lineStyle", Label: "Line style", Type: registry.PropSelect, Default: "solid", Options: []registry.PropOption{
				{Label: "Solid", Value: "solid"}, {Label: "Dashed", Value: "dashed"}, {Label: "Dotted", Value: "dotted"},
			}},
			{Name: "color", Label: "Color", Type: registry.PropColor, Default: "#d1d5db"},
			{Name: "thickness", Label: "Thickness (px)", Type: registry.PropRange, Default: 1.0, Min: registry.Range(1), Max: registry.Range(10), Step: registry.Range(1)},
			{Name: "spacing", Label: "Vertical spacing (px)", Type: registry.PropNumber, Default: 16.0, Min: registry.Range(0), Max: registry.Range(96)},
			{Name: "label", Label: "Label", Type: registry.PropText, Default: ""},
		},
		DefaultProps: registry.Props{
			"lineStyle": "solid",
			"color":     "#d1d5db",
			"thickness": 1.0,
			"spacing":   16.0,
			"label":     "",
		},
		Render: RenderSectionDivider,
	}
}

// RenderSectionDivider renders a divider line, split around the label when
// one is set.
func RenderSectionDivider(props registry.Props) string {
	style := oneOf(props, "lineStyle", "solid", "solid", "dashed", "dotted")
	c := color(props, "color", "#d1d5db")
	thickness := clamp(num(props, "thickness", 1), 1, 10)
	spacing := clamp(num(props, "spacing", 16), 0, 96)
	label := text(props, "label", "")

	line := fmt.Sprintf(`<div data-field="line" style="flex:1;border-top:%spx %s %s;"></div>`, fmtNum(thickness), style, c)

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s style="display:flex;align-items:center;gap:12px;margin:%spx 0;">`,
		marker.Attrs(marker.ElementID("sdv", props), SectionDividerID, props), fmtNum(spacing))
	b.WriteString(line)
	if label != "" {
		fmt.Fprintf(&b, `<span data-field="label" style="font-size:12px;color:%s;text-transform:uppercase;letter-spacing:1px;">%s</span>`, c, label)
		b.WriteString(line)
	}
	b.WriteString(`</div>`)
	return b.String()
}
