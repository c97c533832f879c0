package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// FreeShippingBarID is the registry id of the free-shipping progress bar.
const FreeShippingBarID = "free-shipping-bar"

func freeShippingBarDefinition() registry.Definition {
	return registry.Definition{
		ID:          FreeShippingBarID,
		Name:        "Free Shipping Bar",
		Description: "Progress bar showing how much more to spend for free shipping",
		Category:    registry.CategoryCommerce,
		Icon:        "CarOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "threshold", Label: "Free shipping threshold", Type: registry.PropNumber, Default: 50.0, Min: registry.Range(1)},
			{Name: "current", Label: "Current cart total", Type: registry.PropNumber, Default: 0.0, Min: registry.Range(0)},
			{Name: "currency", Label: "Currency symbol", Type: registry.PropText, Default: "$"},
			{Name: "message", Label: "Message ({remaining} is replaced)", Type: registry.PropText, Default: "Spend {remaining} more for free shipping"},
			{Name: "successMessage", Label: "Unlocked message", Type: registry.PropText, Default: "You've unlocked free shipping!"},
			{Name: "barColor", Label: "Bar color", Type: registry.PropColor, Default: "#2563eb"},
			{Name: "trackColor", Label: "Track color", Type: registry.PropColor, Default: "#e5e7eb"},
			{Name: "height", Label: "Bar height (px)", Type: registry.PropRange, Default: 8.0, Min: registry.Range(4), Max: registry.Range(24), Step: registry.Range(1)},
		},
		DefaultProps: registry.Props{
			"threshold":      50.0,
			"current":        0.0,
			"currency":       "$",
			"message":        "Spend {remaining} more for free shipping",
			"successMessage": "You've unlocked free shipping!",
			"barColor":       "#2563eb",
			"trackColor":     "#e5e7eb",
			"height":         8.0,
		},
		Render: RenderFreeShippingBar,
	}
}

// RenderFreeShippingBar renders the remaining-spend message and progress bar.
func RenderFreeShippingBar(props registry.Props) string {
	threshold := math.Max(1, num(props, "threshold", 50))
	current := math.Max(0, num(props, "current", 0))
	currency := text(props, "currency", "$")
	barColor := color(props, "barColor", "#2563eb")
	trackColor := color(props, "trackColor", "#e5e7eb")
	height := clamp(num(props, "height", 8), 4, 24)

	pct := clamp(current/threshold*100, 0, 100)
	message := text(props, "successMessage", "You've unlocked free shipping!")
	if current < threshold {
		remaining := currency + formatPrice(threshold-current)
		message = strings.ReplaceAll(text(props, "message", "Spend {remaining} more for free shipping"), "{remaining}",
			`<strong data-field="remaining">`+remaining+`</strong>`)
	}

	id := marker.ElementID("fsb", props)

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s style="font-family:inherit;padding:8px 0;">`, marker.Attrs(id, FreeShippingBarID, props))
	fmt.Fprintf(&b, `<div data-field="message" style="font-size:14px;margin-bottom:6px;text-align:center;">%s</div>`, message)
	fmt.Fprintf(&b, `<div data-field="progress-track" style="background:%s;border-radius:999px;height:%spx;overflow:hidden;">`, trackColor, fmtNum(height))
	fmt.Fprintf(&b, `<div data-field="progress-fill" style="background:%s;width:%s%%;height:100%%;transition:width .4s ease;"></div>`, barColor, fmtNum(math.Round(pct*100)/100))
	b.WriteString(`</div></div>`)
	return b.String()
}
