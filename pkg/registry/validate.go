package registry

import "fmt"

var validCategories = map[Category]bool{
	CategoryEngagement: true,
	CategoryCommerce:   true,
	CategoryLayout:     true,
}

var validPropTypes = map[PropType]bool{
	PropNumber: true,
	PropText:   true,
	PropColor:  true,
	PropSelect: true,
	PropToggle: true,
	PropRange:  true,
}

// Validate checks a definition for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func Validate(def Definition) []error {
	var errs []error

	if def.ID == "" {
		errs = append(errs, fmt.Errorf("component id is required"))
	}
	if def.Name == "" {
		errs = append(errs, fmt.Errorf("component %q: name is required", def.ID))
	}
	if !validCategories[def.Category] {
		errs = append(errs, fmt.Errorf("component %q: invalid category %q (must be engagement/commerce/layout)", def.ID, def.Category))
	}
	if def.Render == nil {
		errs = append(errs, fmt.Errorf("component %q: render function is required", def.ID))
	}

	seen := make(map[string]bool, len(def.PropSchema))
	for i, p := range def.PropSchema {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("component %q prop_schema[%d]: name is required", def.ID, i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("component %q: duplicate prop %q", def.ID, p.Name))
			continue
		}
		seen[p.Name] = true

		if !validPropTypes[p.Type] {
			errs = append(errs, fmt.Errorf("component %q prop %q: invalid type %q", def.ID, p.Name, p.Type))
		}
		if p.Type == PropSelect && len(p.Options) == 0 {
			errs = append(errs, fmt.Errorf("component %q prop %q: select requires options", def.ID, p.Name))
		}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			errs = append(errs, fmt.Errorf("component %q prop %q: min %v exceeds max %v", def.ID, p.Name, *p.Min, *p.Max))
		}
	}

	// Every scalar default should be described so the property panel can edit
	// it. List props are populated through data-slot containers instead.
	for name, v := range def.DefaultProps {
		if _, isList := v.([]any); isList {
			continue
		}
		if !seen[name] {
			errs = append(errs, fmt.Errorf("component %q: default prop %q has no schema entry", def.ID, name))
		}
	}

	return errs
}
