package components

import (
	"fmt"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// SpinWheelID is the registry id of the spin-to-win wheel.
const SpinWheelID = "spin-wheel"

const maxWheelSegments = 12

var wheelPalette = []string{"#f87171", "#fbbf24", "#34d399", "#60a5fa", "#a78bfa", "#f472b6"}

func spinWheelDefinition() registry.Definition {
	return registry.Definition{
		ID:          SpinWheelID,
		Name:        "Spin Wheel",
		Description: "Spin-to-win prize wheel revealing a reward",
		Category:    registry.CategoryEngagement,
		Icon:        "SyncOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "title", Label: "Title", Type: registry.PropText, Default: "Spin to win!"},
			{Name: "buttonText", Label: "Button text", Type: registry.PropText, Default: "Spin"},
			{Name: "buttonColor", Label: "Button color", Type: registry.PropColor, Default: "#111827"},
			{Name: "size", Label: "Wheel size (px)", Type: registry.PropRange, Default: 260.0, Min: registry.Range(160), Max: registry.Range(420), Step: registry.Range(10)},
			{Name: "spinSeconds", Label: "Spin duration (s)", Type: registry.PropNumber, Default: 4.0, Min: registry.Range(1), Max: registry.Range(10)},
			{Name: "resultPrefix", Label: "Result prefix", Type: registry.PropText, Default: "You won:"},
		},
		DefaultProps: registry.Props{
			"title":        "Spin to win!",
			"buttonText":   "Spin",
			"buttonColor":  "#111827",
			"size":         260.0,
			"spinSeconds":  4.0,
			"resultPrefix": "You won:",
			"segments": []any{
				map[string]any{"label": "5% OFF"},
				map[string]any{"label": "Free shipping"},
				map[string]any{"label": "10% OFF"},
				map[string]any{"label": "Try again"},
			},
		},
		Render: RenderSpinWheel,
	}
}

// RenderSpinWheel renders a conic-gradient wheel with one label per segment.
func RenderSpinWheel(props registry.Props) string {
	title := text(props, "title", "Spin to win!")
	buttonText := text(props, "buttonText", "Spin")
	buttonColor := color(props, "buttonColor", "#111827")
	size := clamp(num(props, "size", 260), 160, 420)
	spin := clamp(num(props, "spinSeconds", 4), 1, 10)
	prefix := text(props, "resultPrefix", "You won:")
	segments := list(props, "segments", maxWheelSegments)
	if len(segments) == 0 {
		segments = []registry.Props{{"label": "Prize"}}
	}

	slice := 360.0 / float64(len(segments))
	stops := make([]string, len(segments))
	for i, seg := range segments {
		c := color(seg, "color", wheelPalette[i%len(wheelPalette)])
		stops[i] = fmt.Sprintf("%s %sdeg %sdeg", c, fmtNum(slice*float64(i)), fmtNum(slice*float64(i+1)))
	}

	id := marker.ElementID("spw", props)

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s data-spin-seconds="%s" data-result-prefix="%s" style="text-align:center;font-family:inherit;padding:12px 0;">`,
		marker.Attrs(id, SpinWheelID, props), fmtNum(spin), prefix)
	fmt.Fprintf(&b, `<div data-field="title" style="font-size:20px;font-weight:700;margin-bottom:12px;">%s</div>`, title)
	fmt.Fprintf(&b, `<div style="position:relative;width:%[1]spx;height:%[1]spx;margin:0 auto;">`, fmtNum(size))
	b.WriteString(`<div data-field="pointer" style="position:absolute;top:-8px;left:50%;transform:translateX(-50%);width:0;height:0;border-left:10px solid transparent;border-right:10px solid transparent;border-top:18px solid #111827;z-index:2;"></div>`)
	fmt.Fprintf(&b, `<div data-field="wheel" style="width:100%%;height:100%%;border-radius:50%%;background:conic-gradient(%s);transition:transform %ss cubic-bezier(.17,.67,.12,.99);position:relative;">`,
		strings.Join(stops, ","), fmtNum(spin))
	b.WriteString(`<div data-slot="segments">`)
	for i, seg := range segments {
		angle := slice*float64(i) + slice/2
		fmt.Fprintf(&b, `<span data-field="segment" data-index="%d" style="position:absolute;left:50%%;top:50%%;transform:rotate(%sdeg) translate(0,-%spx) rotate(90deg);transform-origin:0 0;font-size:12px;font-weight:600;white-space:nowrap;">%s</span>`,
			i, fmtNum(angle-90), fmtNum(size*0.32), text(seg, "label", "Prize"))
	}
	b.WriteString(`</div></div></div>`)
	fmt.Fprintf(&b, `<button type="button" data-field="spin-button" style="margin-top:12px;background:%s;color:#fff;border:none;border-radius:999px;padding:10px 28px;font-size:16px;cursor:pointer;">%s</button>`, buttonColor, buttonText)
	b.WriteString(`<div data-field="result" style="margin-top:10px;font-weight:600;min-height:1.2em;"></div>`)
	b.WriteString(scriptOpen(id))
	b.WriteString(`var wheel=root.querySelector('[data-field="wheel"]');var btn=root.querySelector('[data-field="spin-button"]');var out=root.querySelector('[data-field="result"]');`)
	b.WriteString(`var segs=root.querySelectorAll('[data-field="segment"]');var secs=Number(root.getAttribute('data-spin-seconds'));var turns=0;`)
	b.WriteString(`btn.addEventListener('click',function(){if(btn.disabled)return;btn.disabled=true;var i=Math.floor(Math.random()*segs.length);var slice=360/segs.length;`)
	b.WriteString(`turns+=5;wheel.style.transform='rotate('+(turns*360-(i*slice+slice/2))+'deg)';`)
	b.WriteString(`setTimeout(function(){out.textContent=root.getAttribute('data-result-prefix')+' '+segs[i].textContent;btn.disabled=false;},secs*1000);});})();</script>`)
	b.WriteString(`</div>`)
	return b.String()
}
