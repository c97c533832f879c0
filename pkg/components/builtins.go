// Package components contains the built-in custom components: pure renderers
// producing self-contained, marker-tagged HTML fragments.
package components

import "github.com/gnana997/popupkit/pkg/registry"

// Definitions returns the built-in component definitions in picker order.
func Definitions() []registry.Definition {
	return []registry.Definition{
		countdownDefinition(),
		spinWheelDefinition(),
		productCarouselDefinition(),
		couponListDefinition(),
		freeShippingBarDefinition(),
		sectionDividerDefinition(),
	}
}

// RegisterBuiltins registers every built-in component on r. It is the single
// initialization step run at application start.
func RegisterBuiltins(r *registry.Registry) {
	for _, def := range Definitions() {
		r.Register(def)
	}
}

// NewRegistry returns a registry pre-filled with the built-in components.
func NewRegistry() *registry.Registry {
	r := registry.New()
	RegisterBuiltins(r)
	return r
}
