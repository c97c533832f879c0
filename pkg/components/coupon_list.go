package components

import (
	"fmt"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// CouponListID is the registry id of the coupon list.
const CouponListID = "coupon-list"

const maxCoupons = 10

func couponListDefinition() registry.Definition {
	return registry.Definition{
		ID:          CouponListID,
		Name:        "Coupon List",
		Description: "List of coupon codes with copy-to-clipboard buttons",
		Category:    registry.CategoryCommerce,
		Icon:        "TagsOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "heading", Label: "Heading", Type: registry.PropText, Default: "Your coupons"},
			{Name: "layout", Label: "Layout", Type: registry.PropSelect, Default: "stacked", Options: []registry.PropOption{
				{Label: "Stacked", Value: "stacked"}, {Label: "Grid", Value: "grid"},
			}},
			{Name: "accentColor", Label: "Accent color", Type: registry.PropColor, Default: "#16a34a"},
			{Name: "copyButtonText", Label: "Copy button", Type: registry.PropText, Default: "Copy"},
			{Name: "copiedText", Label: "Copied label", Type: registry.PropText, Default: "Copied!"},
		},
		DefaultProps: registry.Props{
			"heading":        "Your coupons",
			"layout":         "stacked",
			"accentColor":    "#16a34a",
			"copyButtonText": "Copy",
			"copiedText":     "Copied!",
			"coupons": []any{
				map[string]any{"code": "WELCOME10", "description": "10% off your first order", "discount": "10%"},
			},
		},
		Render: RenderCouponList,
	}
}

// RenderCouponList renders coupon rows. The coupons slot may be repopulated
// by the host application.
func RenderCouponList(props registry.Props) string {
	heading := text(props, "heading", "Your coupons")
	layout := oneOf(props, "layout", "stacked", "stacked", "grid")
	accent := color(props, "accentColor", "#16a34a")
	copyText := text(props, "copyButtonText", "Copy")
	copiedText := text(props, "copiedText", "Copied!")
	coupons := list(props, "coupons", maxCoupons)

	id := marker.ElementID("cpl", props)

	container := "display:flex;flex-direction:column;gap:8px;"
	if layout == "grid" {
		container = "display:grid;grid-template-columns:repeat(auto-fill,minmax(180px,1fr));gap:8px;"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s data-copied-text="%s" style="font-family:inherit;padding:8px 0;">`, marker.Attrs(id, CouponListID, props), copiedText)
	fmt.Fprintf(&b, `<div data-field="heading" style="font-size:18px;font-weight:600;margin-bottom:8px;">%s</div>`, heading)
	fmt.Fprintf(&b, `<div data-slot="coupons" data-layout="%s" style="%s">`, layout, container)
	for i, c := range coupons {
		code := text(c, "code", "")
		fmt.Fprintf(&b, `<div data-field="coupon-row" data-index="%d" style="display:flex;align-items:center;justify-content:space-between;gap:8px;border:2px dashed %s;border-radius:8px;padding:8px 12px;">`, i, accent)
		b.WriteString(`<div>`)
		if discount := text(c, "discount", ""); discount != "" {
			fmt.Fprintf(&b, `<div data-field="coupon-discount" style="font-weight:700;color:%s;">%s</div>`, accent, discount)
		}
		fmt.Fprintf(&b, `<div data-field="coupon-code" style="font-family:monospace;font-size:16px;letter-spacing:1px;">%s</div>`, code)
		if desc := text(c, "description", ""); desc != "" {
			fmt.Fprintf(&b, `<div data-field="coupon-description" style="font-size:12px;color:#6b7280;">%s</div>`, desc)
		}
		b.WriteString(`</div>`)
		fmt.Fprintf(&b, `<button type="button" data-field="copy-button" data-code="%s" style="background:%s;color:#fff;border:none;border-radius:6px;padding:6px 12px;cursor:pointer;">%s</button>`, code, accent, copyText)
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	b.WriteString(scriptOpen(id))
	b.WriteString(`root.addEventListener('click',function(e){var btn=e.target.closest('[data-field="copy-button"]');if(!btn)return;`)
	b.WriteString(`var code=btn.getAttribute('data-code');var label=btn.textContent;`)
	b.WriteString(`function done(){btn.textContent=root.getAttribute('data-copied-text');setTimeout(function(){btn.textContent=label;},1500);}`)
	b.WriteString(`if(navigator.clipboard){navigator.clipboard.writeText(code).then(done,done);}else{done();}});})();</script>`)
	b.WriteString(`</div>`)
	return b.String()
}
