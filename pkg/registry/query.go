package registry

import "strings"

// SearchResult holds a component match with the reason it matched.
type SearchResult struct {
	Definition  Definition
	MatchReason string
}

// ByCategory returns the components of one category in registration order.
func (r *Registry) ByCategory(cat Category) []Definition {
	result := make([]Definition, 0)
	for _, def := range r.All() {
		if def.Category == cat {
			result = append(result, def)
		}
	}
	return result
}

// Search performs a case-insensitive search across component ids, names,
// descriptions and prop names.
func (r *Registry) Search(query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	var results []SearchResult
	for _, def := range r.All() {
		switch {
		case strings.Contains(strings.ToLower(def.ID), query),
			strings.Contains(strings.ToLower(def.Name), query):
			results = append(results, SearchResult{Definition: def, MatchReason: "name"})
			continue
		case strings.Contains(strings.ToLower(def.Description), query):
			results = append(results, SearchResult{Definition: def, MatchReason: "description"})
			continue
		}

		for _, p := range def.PropSchema {
			if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(strings.ToLower(p.Label), query) {
				results = append(results, SearchResult{Definition: def, MatchReason: "prop:" + p.Name})
				break
			}
		}
	}
	return results
}
