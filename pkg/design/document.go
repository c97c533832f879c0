// Package design reads and rewrites the editor's design document: the
// rows → columns → contents tree in which custom components live as html
// content blocks.
package design

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/copystructure"
)

// ContentTypeHTML is the content type that may carry a custom component.
const ContentTypeHTML = "html"

// Document is an editor design document. It is kept as generic JSON so that
// every field the editor writes survives a round trip, including the ones
// this package does not know about.
type Document map[string]any

// Parse decodes a design document from JSON.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse design JSON: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// Marshal encodes the document as JSON.
func (d Document) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return Document{}
	}
	copied, err := copystructure.Copy(map[string]any(d))
	if err == nil {
		if m, ok := copied.(map[string]any); ok {
			return Document(m)
		}
	}

	// copystructure only fails on exotic values; JSON round-trip covers
	// everything a decoded document can hold.
	raw, _ := json.Marshal(d)
	out := Document{}
	_ = json.Unmarshal(raw, &out)
	return out
}

// Content is a location-aware view of one content block.
type Content struct {
	Row    int
	Column int
	Index  int
	Node   map[string]any
}

// ID returns the content block id.
func (c Content) ID() string {
	id, _ := c.Node["id"].(string)
	return id
}

// Type returns the content block type.
func (c Content) Type() string {
	t, _ := c.Node["type"].(string)
	return t
}

// HTML returns values.html, or "" when absent.
func (c Content) HTML() string {
	values, _ := c.Node["values"].(map[string]any)
	s, _ := values["html"].(string)
	return s
}

// SetHTML replaces values.html, creating values when missing.
func (c Content) SetHTML(html string) {
	values, ok := c.Node["values"].(map[string]any)
	if !ok {
		values = map[string]any{}
		c.Node["values"] = values
	}
	values["html"] = html
}

// Rows returns body.rows, or nil when the document has no body.
func (d Document) Rows() []any {
	body, _ := d["body"].(map[string]any)
	rows, _ := body["rows"].([]any)
	return rows
}

// Walk visits every content block in document order (rows, then columns,
// then contents). Returning false from fn stops the walk. Nodes that do not
// have the expected shape are skipped.
func (d Document) Walk(fn func(c Content) bool) {
	for ri, r := range d.Rows() {
		row, ok := r.(map[string]any)
		if !ok {
			continue
		}
		columns, _ := row["columns"].([]any)
		for ci, c := range columns {
			col, ok := c.(map[string]any)
			if !ok {
				continue
			}
			contents, _ := col["contents"].([]any)
			for i, n := range contents {
				node, ok := n.(map[string]any)
				if !ok {
					continue
				}
				if !fn(Content{Row: ri, Column: ci, Index: i, Node: node}) {
					return
				}
			}
		}
	}
}

// appendRow adds a row to body.rows, creating body and rows when absent.
func (d Document) appendRow(row map[string]any) {
	body, ok := d["body"].(map[string]any)
	if !ok {
		body = map[string]any{}
		d["body"] = body
	}
	rows, _ := body["rows"].([]any)
	body["rows"] = append(rows, row)
}
