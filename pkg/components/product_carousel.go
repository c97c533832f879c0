package components

import (
	"fmt"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// ProductCarouselID is the registry id of the product carousel.
const ProductCarouselID = "product-carousel"

// maxCarouselProducts bounds the rendered product cards.
const maxCarouselProducts = 10

const placeholderImage = "https://via.placeholder.com/160x160?text=Product"

func productCarouselDefinition() registry.Definition {
	return registry.Definition{
		ID:          ProductCarouselID,
		Name:        "Product Carousel",
		Description: "Horizontally scrolling product cards with prices",
		Category:    registry.CategoryCommerce,
		Icon:        "AppstoreOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "title", Label: "Title", Type: registry.PropText, Default: "You may also like"},
			{Name: "cardWidth", Label: "Card width (px)", Type: registry.PropRange, Default: 160.0, Min: registry.Range(100), Max: registry.Range(320), Step: registry.Range(10)},
			{Name: "gap", Label: "Gap (px)", Type: registry.PropNumber, Default: 12.0, Min: registry.Range(0), Max: registry.Range(48)},
			{Name: "accentColor", Label: "Accent color", Type: registry.PropColor, Default: "#e11d48"},
			{Name: "showPrices", Label: "Show prices", Type: registry.PropToggle, Default: true},
			{Name: "currency", Label: "Currency symbol", Type: registry.PropText, Default: "$"},
			{Name: "emptyText", Label: "Empty message", Type: registry.PropText, Default: "Products will appear here"},
		},
		DefaultProps: registry.Props{
			"title":       "You may also like",
			"cardWidth":   160.0,
			"gap":         12.0,
			"accentColor": "#e11d48",
			"showPrices":  true,
			"currency":    "$",
			"emptyText":   "Products will appear here",
		},
		Render: RenderProductCarousel,
	}
}

// RenderProductCarousel renders a scrollable row of product cards. The host
// application may repopulate the products slot at runtime.
func RenderProductCarousel(props registry.Props) string {
	title := text(props, "title", "You may also like")
	cardWidth := clamp(num(props, "cardWidth", 160), 100, 320)
	gap := clamp(num(props, "gap", 12), 0, 48)
	accent := color(props, "accentColor", "#e11d48")
	showPrices := boolean(props, "showPrices", true)
	currency := text(props, "currency", "$")
	emptyText := text(props, "emptyText", "Products will appear here")
	products := list(props, "products", maxCarouselProducts)

	id := marker.ElementID("pcar", props)

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s style="position:relative;padding:12px 0;font-family:inherit;">`, marker.Attrs(id, ProductCarouselID, props))
	fmt.Fprintf(&b, `<div data-field="title" style="font-size:18px;font-weight:600;margin-bottom:10px;">%s</div>`, title)
	fmt.Fprintf(&b, `<div data-slot="products" style="display:flex;gap:%spx;overflow-x:auto;scroll-snap-type:x mandatory;scroll-behavior:smooth;">`, fmtNum(gap))

	if len(products) == 0 {
		fmt.Fprintf(&b, `<div data-field="empty-state" class="pcar-empty" style="flex:1;padding:24px;text-align:center;color:#9ca3af;border:1px dashed #d1d5db;border-radius:8px;">%s</div>`, emptyText)
	}

	for i, p := range products {
		name := text(p, "name", "Product")
		image := safeURL(str(p, "image", ""), placeholderImage)
		link := safeURL(str(p, "url", ""), "#")

		fmt.Fprintf(&b, `<a class="pcar-card" data-field="product-card" data-index="%d" href="%s" style="flex:0 0 %spx;scroll-snap-align:start;text-decoration:none;color:inherit;border:1px solid #e5e7eb;border-radius:8px;overflow:hidden;">`,
			i, link, fmtNum(cardWidth))
		fmt.Fprintf(&b, `<img class="pcar-card-image" data-field="product-image" src="%s" alt="%s" style="width:100%%;height:%spx;object-fit:cover;display:block;">`,
			image, name, fmtNum(cardWidth))
		fmt.Fprintf(&b, `<div class="pcar-card-name" data-field="product-name" style="padding:8px 8px 0;font-size:14px;">%s</div>`, name)
		if showPrices {
			price := num(p, "price", 0)
			b.WriteString(`<div class="pcar-card-prices" style="padding:4px 8px 8px;font-size:14px;">`)
			fmt.Fprintf(&b, `<span data-field="product-price" style="color:%s;font-weight:700;">%s%s</span>`, accent, currency, formatPrice(price))
			if original := num(p, "originalPrice", 0); original > price {
				fmt.Fprintf(&b, ` <span data-field="product-original-price" style="text-decoration:line-through;color:#9ca3af;">%s%s</span>`, currency, formatPrice(original))
			}
			b.WriteString(`</div>`)
		}
		b.WriteString(`</a>`)
	}
	b.WriteString(`</div>`)

	if len(products) > 1 {
		fmt.Fprintf(&b, `<button type="button" data-field="prev-button" aria-label="Previous" style="position:absolute;left:0;top:50%%;border:none;background:%s;color:#fff;border-radius:50%%;width:28px;height:28px;cursor:pointer;">&#8249;</button>`, accent)
		fmt.Fprintf(&b, `<button type="button" data-field="next-button" aria-label="Next" style="position:absolute;right:0;top:50%%;border:none;background:%s;color:#fff;border-radius:50%%;width:28px;height:28px;cursor:pointer;">&#8250;</button>`, accent)
		b.WriteString(scriptOpen(id))
		b.WriteString(`var track=root.querySelector('[data-slot="products"]');`)
		fmt.Fprintf(&b, `var step=%s;`, fmtNum(cardWidth+gap))
		b.WriteString(`function by(d){return function(e){e.preventDefault();track.scrollBy({left:d*step,behavior:'smooth'});};}`)
		b.WriteString(`root.querySelector('[data-field="prev-button"]').addEventListener('click',by(-1));`)
		b.WriteString(`root.querySelector('[data-field="next-button"]').addEventListener('click',by(1));})();</script>`)
	}

	b.WriteString(`</div>`)
	return b.String()
}

// formatPrice prints whole prices without decimals and others with two.
func formatPrice(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
