package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// Block is one content block of a test design document.
type Block struct {
	ID   string
	Type string
	HTML string
}

// DesignJSON builds a design document with one single-column row per block.
func DesignJSON(t testing.TB, blocks ...Block) []byte {
	t.Helper()
	rows := make([]any, 0, len(blocks))
	for i, b := range blocks {
		rows = append(rows, map[string]any{
			"id":    "row-" + string(rune('a'+i)),
			"cells": []any{1},
			"columns": []any{map[string]any{
				"id": "col-" + string(rune('a'+i)),
				"contents": []any{map[string]any{
					"id":   b.ID,
					"type": b.Type,
					"values": map[string]any{
						"html":             b.HTML,
						"containerPadding": "10px",
					},
				}},
				"values": map[string]any{},
			}},
			"values": map[string]any{},
		})
	}
	data, err := json.Marshal(map[string]any{
		"body":          map[string]any{"id": "body", "rows": rows, "values": map[string]any{}},
		"schemaVersion": 16,
	})
	require.NoError(t, err)
	return data
}
