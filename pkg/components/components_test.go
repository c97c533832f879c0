package components

import (
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
	"github.com/gnana997/popupkit/pkg/testutil"
)

func parse(t *testing.T, fragment string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	require.NoError(t, err)
	return doc
}

func TestBuiltins_Valid(t *testing.T) {
	r := NewRegistry()
	require.Equal(t, 6, r.Len())
	for _, def := range r.All() {
		assert.Empty(t, registry.Validate(def), "component %s", def.ID)
	}
}

func TestBuiltins_RootMarker(t *testing.T) {
	for _, def := range Definitions() {
		t.Run(def.ID, func(t *testing.T) {
			out := def.RenderDefault()
			doc := parse(t, out)

			root := doc.Find("body").Children().First()
			id, _ := root.Attr("id")
			assert.NotEmpty(t, id)
			comp, _ := root.Attr("data-component")
			assert.Equal(t, def.ID, comp)
			assert.True(t, strings.HasPrefix(out, "<div id="), "marker must sit on the root element")
			assert.Greater(t, root.Find("[data-field]").Length(), 0)
		})
	}
}

func TestRender_RoundTripProps(t *testing.T) {
	props := registry.Props{
		"title":       "Don't wait",
		"cardWidth":   200.0,
		"showPrices":  false,
		"accentColor": "#123456",
		"products": []any{
			map[string]any{"name": "Mug", "price": 12.5, "image": "https://cdn.example.com/mug.png"},
		},
	}
	for _, def := range Definitions() {
		m, ok, err := marker.Parse(def.Render(props))
		require.True(t, ok, def.ID)
		require.NoError(t, err, def.ID)
		assert.Equal(t, def.ID, m.ComponentID)
		assert.Equal(t, map[string]any(props), m.Props, def.ID)
	}
}

func TestRender_Deterministic(t *testing.T) {
	for _, def := range Definitions() {
		assert.Equal(t, def.RenderDefault(), def.RenderDefault(), def.ID)
	}
}

func TestRender_MalformedPropsDegrade(t *testing.T) {
	bad := registry.Props{
		"cardWidth":       "wide",
		"durationMinutes": []any{1},
		"threshold":       "NaN",
		"size":            map[string]any{},
		"backgroundColor": `red;"><script>alert(1)</script>`,
		"products":        "not a list",
		"coupons":         []any{"string entry", 42.0},
		"segments":        nil,
	}
	for _, def := range Definitions() {
		assert.NotPanics(t, func() {
			out := def.Render(bad)
			assert.NotContains(t, out, "<script>alert(1)</script>", def.ID)
		}, def.ID)
	}
}

func TestRenderProductCarousel_EmptyProducts(t *testing.T) {
	out := RenderProductCarousel(registry.Props{"products": []any{}})
	doc := parse(t, out)

	assert.Equal(t, 1, doc.Find(`[data-field="empty-state"]`).Length())
	assert.Equal(t, 0, doc.Find(`[class^="pcar-card"]`).Length())
	assert.NotContains(t, out, "pcar-card")
}

func TestRenderProductCarousel_TruncatesProducts(t *testing.T) {
	products := make([]any, 25)
	for i := range products {
		products[i] = map[string]any{"name": "P", "price": 1.0}
	}
	doc := parse(t, RenderProductCarousel(registry.Props{"products": products}))

	assert.Equal(t, maxCarouselProducts, doc.Find(`[data-field="product-card"]`).Length())
	assert.Equal(t, 1, doc.Find(`[data-slot="products"]`).Length())
	assert.Equal(t, 0, doc.Find(`[data-field="empty-state"]`).Length())
}

func TestRenderProductCarousel_UnsafeImageURL(t *testing.T) {
	doc := parse(t, RenderProductCarousel(registry.Props{"products": []any{
		map[string]any{"name": "X", "image": "javascript:alert(1)", "url": "data:text/html,hi"},
	}}))
	src, _ := doc.Find(`[data-field="product-image"]`).Attr("src")
	href, _ := doc.Find(`[data-field="product-card"]`).Attr("href")
	assert.Equal(t, placeholderImage, src)
	assert.Equal(t, "#", href)
}

func TestRenderCouponList_EscapesText(t *testing.T) {
	doc := parse(t, RenderCouponList(registry.Props{
		"heading": "<b>Deals</b> & more",
		"coupons": []any{map[string]any{"code": `SAVE"10`, "description": "<img src=x onerror=alert(1)>"}},
	}))

	assert.Equal(t, "Deals & more", doc.Find(`[data-field="heading"]`).Text())
	assert.Equal(t, `SAVE"10`, doc.Find(`[data-field="coupon-code"]`).Text())
	assert.Equal(t, 0, doc.Find("img").Length())
	code, _ := doc.Find(`[data-field="copy-button"]`).Attr("data-code")
	assert.Equal(t, `SAVE"10`, code)
}

func TestRenderCouponList_Slot(t *testing.T) {
	coupons := make([]any, 14)
	for i := range coupons {
		coupons[i] = map[string]any{"code": "C"}
	}
	doc := parse(t, RenderCouponList(registry.Props{"coupons": coupons, "layout": "grid"}))

	slot := doc.Find(`[data-slot="coupons"]`)
	assert.Equal(t, maxCoupons, slot.Find(`[data-field="coupon-row"]`).Length())
	layout, _ := slot.Attr("data-layout")
	assert.Equal(t, "grid", layout)
}

func TestRenderCountdownTimer_Labels(t *testing.T) {
	with := parse(t, RenderCountdownTimer(registry.Props{}))
	without := parse(t, RenderCountdownTimer(registry.Props{"showLabels": false}))

	assert.Equal(t, 4, with.Find(`[data-field^="label-"]`).Length())
	assert.Equal(t, 0, without.Find(`[data-field^="label-"]`).Length())
	for _, unit := range []string{"days", "hours", "minutes", "seconds"} {
		assert.Equal(t, 1, with.Find(`[data-field="`+unit+`"]`).Length())
	}
	dur, _ := with.Find("[data-component]").Attr("data-duration-minutes")
	assert.Equal(t, "30", dur)
}

func TestRenderSpinWheel_SegmentsCapped(t *testing.T) {
	segments := make([]any, 20)
	for i := range segments {
		segments[i] = map[string]any{"label": "S"}
	}
	doc := parse(t, RenderSpinWheel(registry.Props{"segments": segments}))
	assert.Equal(t, maxWheelSegments, doc.Find(`[data-slot="segments"] [data-field="segment"]`).Length())

	empty := parse(t, RenderSpinWheel(registry.Props{}))
	assert.Equal(t, 1, empty.Find(`[data-field="segment"]`).Length())
}

func TestRenderFreeShippingBar(t *testing.T) {
	tests := []struct {
		name      string
		props     registry.Props
		width     string
		remaining string
	}{
		{"empty cart", registry.Props{"threshold": 50.0}, "width:0%", "$50"},
		{"half way", registry.Props{"threshold": 50.0, "current": 25.0}, "width:50%", "$25"},
		{"fractional", registry.Props{"threshold": 40.0, "current": 10.5}, "width:26.25%", "$29.50"},
		{"unlocked", registry.Props{"threshold": 50.0, "current": 80.0}, "width:100%", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parse(t, RenderFreeShippingBar(tt.props))
			style, _ := doc.Find(`[data-field="progress-fill"]`).Attr("style")
			assert.Contains(t, style, tt.width)
			assert.Equal(t, tt.remaining, doc.Find(`[data-field="remaining"]`).Text())
		})
	}
}

func TestRenderSectionDivider_Label(t *testing.T) {
	plain := parse(t, RenderSectionDivider(registry.Props{}))
	labelled := parse(t, RenderSectionDivider(registry.Props{"label": "or", "lineStyle": "wavy"}))

	assert.Equal(t, 1, plain.Find(`[data-field="line"]`).Length())
	assert.Equal(t, 2, labelled.Find(`[data-field="line"]`).Length())
	assert.Equal(t, "or", labelled.Find(`[data-field="label"]`).Text())
	style, _ := labelled.Find(`[data-field="line"]`).First().Attr("style")
	assert.Contains(t, style, "solid")
}

func TestNum(t *testing.T) {
	p := registry.Props{"f": 2.5, "i": 3, "s": " 7 ", "zero": 0.0, "bad": "x", "b": true}
	assert.Equal(t, 2.5, num(p, "f", 1))
	assert.Equal(t, 3.0, num(p, "i", 1))
	assert.Equal(t, 7.0, num(p, "s", 1))
	assert.Equal(t, 9.0, num(p, "zero", 9))
	assert.Equal(t, 9.0, num(p, "bad", 9))
	assert.Equal(t, 9.0, num(p, "missing", 9))
	assert.Equal(t, 1.0, num(p, "b", 9))
}

func TestRender_IdenticalInstancesBindSeparately(t *testing.T) {
	products := registry.Props{"products": []any{
		map[string]any{"name": "Mug", "price": 12.0},
		map[string]any{"name": "Tote", "price": 20.0},
	}}

	tests := []struct {
		id    string
		props registry.Props
		act   string
		own   string // true for the instance acted on
	}{
		{
			id:  CountdownTimerID,
			own: `roots[i].querySelector('[data-field="minutes"]').textContent === '30'`,
		},
		{
			id:  CouponListID,
			act: `fire(roots[1].querySelector('[data-field="copy-button"]'), 'click')`,
			own: `roots[i].querySelector('[data-field="copy-button"]').textContent === 'Copied!'`,
		},
		{
			id:    ProductCarouselID,
			props: products,
			act: `roots.forEach(function (r) {
				var track = r.querySelector('[data-slot="products"]');
				track.scrollBy = function (o) { track.scrolled = (track.scrolled || 0) + o.left; };
			});
			fire(roots[1].querySelector('[data-field="next-button"]'), 'click')`,
			own: `roots[i].querySelector('[data-slot="products"]').scrolled === 172`,
		},
		{
			id:  SpinWheelID,
			act: `fire(roots[1].querySelector('[data-field="spin-button"]'), 'click')`,
			own: `!!roots[i].querySelector('[data-field="wheel"]').style.transform`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			def, ok := NewRegistry().Get(tt.id)
			require.True(t, ok)
			props := def.DefaultProps
			if tt.props != nil {
				props = tt.props
			}
			fragment := def.Render(props)

			b := testutil.NewBrowser(t)
			b.Load(fragment + fragment)
			b.Run(`var roots = document.querySelectorAll('[data-component="` + tt.id + `"]');`)
			require.Equal(t, int64(2), b.Run(`roots.length`).ToInteger())
			require.True(t, b.Bool(`roots[0].id === roots[1].id`))

			if tt.act == "" {
				for i := 0; i < 2; i++ {
					b.Run(`var i = ` + strconv.Itoa(i))
					assert.True(t, b.Bool(tt.own), "instance %d", i)
				}
				return
			}
			b.Run(tt.act)
			b.Run(`var i = 1`)
			assert.True(t, b.Bool(tt.own), "acted-on instance")
			b.Run(`var i = 0`)
			assert.False(t, b.Bool(tt.own), "other instance")
		})
	}
}
