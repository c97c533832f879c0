// Package marker implements the attribute convention that tags an HTML
// fragment as a custom component: the root element carries
// data-component="<id>" and data-props='<json>', with every single quote
// inside the JSON escaped as \'. Designs authored by any version of the
// editor depend on this exact format.
package marker

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

var (
	componentRe = regexp.MustCompile(`data-component="([^"]+)"`)
	propsRe     = regexp.MustCompile(`data-props='((?:[^'\\]|\\.)*)'`)
)

// Marker is the component tag found on an HTML fragment.
type Marker struct {
	ComponentID string
	Props       map[string]any
}

// EncodeProps serializes props for a single-quoted data-props attribute.
// Keys are sorted and every ' becomes \'. encoding/json writes <, > and & as
// \u escapes, which JSON.parse reads back unchanged.
func EncodeProps(props map[string]any) string {
	if props == nil {
		props = map[string]any{}
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return "{}"
	}
	return strings.ReplaceAll(string(raw), "'", `\'`)
}

// DecodeProps reverses EncodeProps.
func DecodeProps(raw string) (map[string]any, error) {
	unescaped := strings.ReplaceAll(raw, `\'`, "'")
	props := map[string]any{}
	if err := json.Unmarshal([]byte(unescaped), &props); err != nil {
		return map[string]any{}, fmt.Errorf("decode data-props: %w", err)
	}
	if props == nil {
		props = map[string]any{}
	}
	return props, nil
}

// Attrs returns the id, data-component and data-props attributes for a
// component root element, with a leading space.
func Attrs(elementID, componentID string, props map[string]any) string {
	return fmt.Sprintf(` id="%s" data-component="%s" data-props='%s'`,
		elementID, componentID, EncodeProps(props))
}

// ElementID derives a stable element id from the component id and its props,
// so rendering stays deterministic.
func ElementID(prefix string, props map[string]any) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(EncodeProps(props)))
	return fmt.Sprintf("%s-%08x", prefix, h.Sum32())
}

// Parse looks for a component marker in html. ok is false when no
// data-component attribute is present. When the marker is present but
// data-props is missing or malformed, Props is empty and err describes the
// problem; the marker is still returned.
func Parse(html string) (m Marker, ok bool, err error) {
	idMatch := componentRe.FindStringSubmatch(html)
	if idMatch == nil || strings.TrimSpace(idMatch[1]) == "" {
		return Marker{}, false, nil
	}

	m = Marker{ComponentID: idMatch[1], Props: map[string]any{}}

	propsMatch := propsRe.FindStringSubmatch(html)
	if propsMatch == nil {
		return m, true, nil
	}

	props, err := DecodeProps(propsMatch[1])
	if err != nil {
		return m, true, err
	}
	m.Props = props
	return m, true, nil
}
