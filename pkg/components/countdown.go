package components

import (
	"fmt"
	"strings"

	"github.com/gnana997/popupkit/pkg/marker"
	"github.com/gnana997/popupkit/pkg/registry"
)

// CountdownTimerID is the registry id of the countdown timer.
const CountdownTimerID = "countdown-timer"

var countdownSizes = map[string]struct{ digit, label int }{
	"small":  {20, 10},
	"medium": {32, 12},
	"large":  {44, 14},
}

func countdownDefinition() registry.Definition {
	return registry.Definition{
		ID:          CountdownTimerID,
		Name:        "Countdown Timer",
		Description: "Urgency timer counting down to the end of an offer",
		Category:    registry.CategoryEngagement,
		Icon:        "ClockCircleOutlined",
		PropSchema: []registry.PropDescriptor{
			{Name: "title", Label: "Title", Type: registry.PropText, Default: "Offer ends in"},
			{Name: "endTime", Label: "End time (ISO 8601, empty = relative)", Type: registry.PropText, Default: ""},
			{Name: "durationMinutes", Label: "Duration (minutes)", Type: registry.PropNumber, Default: 30.0, Min: registry.Range(1), Max: registry.Range(10080)},
			{Name: "backgroundColor", Label: "Background", Type: registry.PropColor, Default: "#1f2937"},
			{Name: "textColor", Label: "Text color", Type: registry.PropColor, Default: "#ffffff"},
			{Name: "accentColor", Label: "Digit color", Type: registry.PropColor, Default: "#f59e0b"},
			{Name: "showLabels", Label: "Show labels", Type: registry.PropToggle, Default: true},
			{Name: "size", Label: "Size", Type: registry.PropSelect, Default: "medium", Options: []registry.PropOption{
				{Label: "Small", Value: "small"}, {Label: "Medium", Value: "medium"}, {Label: "Large", Value: "large"},
			}},
			{Name: "expiredText", Label: "Expired message", Type: registry.PropText, Default: "This offer has expired"},
		},
		DefaultProps: registry.Props{
			"title":           "Offer ends in",
			"endTime":         "",
			"durationMinutes": 30.0,
			"backgroundColor": "#1f2937",
			"textColor":       "#ffffff",
			"accentColor":     "#f59e0b",
			"showLabels":      true,
			"size":            "medium",
			"expiredText":     "This offer has expired",
		},
		Render: RenderCountdownTimer,
	}
}

// RenderCountdownTimer renders a days/hours/minutes/seconds countdown.
func RenderCountdownTimer(props registry.Props) string {
	title := text(props, "title", "Offer ends in")
	endTime := attr(str(props, "endTime", ""))
	duration := clamp(num(props, "durationMinutes", 30), 1, 10080)
	bg := color(props, "backgroundColor", "#1f2937")
	fg := color(props, "textColor", "#ffffff")
	accent := color(props, "accentColor", "#f59e0b")
	showLabels := boolean(props, "showLabels", true)
	size := countdownSizes[oneOf(props, "size", "medium", "small", "medium", "large")]
	expired := text(props, "expiredText", "This offer has expired")

	id := marker.ElementID("cdt", props)

	var b strings.Builder
	fmt.Fprintf(&b, `<div%s data-end-time="%s" data-duration-minutes="%s" style="background:%s;color:%s;padding:16px;border-radius:8px;text-align:center;font-family:inherit;">`,
		marker.Attrs(id, CountdownTimerID, props), endTime, fmtNum(duration), bg, fg)
	fmt.Fprintf(&b, `<div data-field="title" style="font-size:%dpx;margin-bottom:8px;">%s</div>`, size.label+4, title)
	b.WriteString(`<div data-field="units" style="display:flex;justify-content:center;gap:12px;">`)
	for _, unit := range []string{"days", "hours", "minutes", "seconds"} {
		fmt.Fprintf(&b, `<div data-field="unit-%s" style="min-width:%dpx;">`, unit, size.digit*2)
		fmt.Fprintf(&b, `<div data-field="%s" style="font-size:%dpx;font-weight:700;color:%s;">00</div>`, unit, size.digit, accent)
		if showLabels {
			fmt.Fprintf(&b, `<div data-field="label-%s" style="font-size:%dpx;text-transform:uppercase;opacity:.8;">%s</div>`, unit, size.label, unit)
		}
		b.WriteString(`</div>`)
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div data-field="expired-message" style="display:none;font-size:%dpx;">%s</div>`, size.label+4, expired)
	b.WriteString(scriptOpen(id))
	b.WriteString(`var end=Date.parse(root.getAttribute('data-end-time')||'');`)
	b.WriteString(`if(isNaN(end)){end=Date.now()+Number(root.getAttribute('data-duration-minutes'))*60000;}`)
	b.WriteString(`function pad(n){return n<10?'0'+n:String(n);}`)
	b.WriteString(`function set(f,v){var el=root.querySelector('[data-field="'+f+'"]');if(el)el.textContent=pad(v);}`)
	b.WriteString(`function tick(){var left=Math.max(0,end-Date.now());var s=Math.floor(left/1000);`)
	b.WriteString(`set('days',Math.floor(s/86400));set('hours',Math.floor(s%86400/3600));set('minutes',Math.floor(s%3600/60));set('seconds',s%60);`)
	b.WriteString(`if(left===0){var u=root.querySelector('[data-field="units"]');var e=root.querySelector('[data-field="expired-message"]');if(u)u.style.display='none';if(e)e.style.display='block';clearInterval(timer);}}`)
	b.WriteString(`var timer=setInterval(tick,1000);tick();})();</script>`)
	b.WriteString(`</div>`)
	return b.String()
}
