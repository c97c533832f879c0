package design

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/gnana997/popupkit/pkg/registry"
)

// Updater produces modified copies of design documents. Its methods never
// mutate their input and never fail: they run inside editor event handlers,
// so problems are logged and the best available document is returned.
type Updater struct {
	registry *registry.Registry
	logger   *slog.Logger
	newID    func(kind string) string
}

// NewUpdater creates an updater rendering components from reg.
func NewUpdater(reg *registry.Registry, logger *slog.Logger) *Updater {
	if logger == nil {
		logger = slog.Default()
	}
	return &Updater{registry: reg, logger: logger, newID: newBlockID}
}

// newBlockID returns a time-ordered unique id (UUIDv7) for a new block.
func newBlockID(kind string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return kind + "-" + uuid.NewString()
	}
	return kind + "-" + id.String()
}

// UpdateComponent returns a copy of doc in which the html content block with
// id htmlBlockID has its markup replaced by newHTML. When no such block
// exists the unmodified copy is returned and a warning is logged.
func (u *Updater) UpdateComponent(doc Document, htmlBlockID, newHTML string) Document {
	out := doc.Clone()

	updated := false
	out.Walk(func(c Content) bool {
		if c.ID() == htmlBlockID && c.Type() == ContentTypeHTML {
			c.SetHTML(newHTML)
			updated = true
			return false
		}
		return true
	})

	if !updated {
		u.logger.Warn("html block not found in design", "block_id", htmlBlockID)
	}
	return out
}

// UpdateComponentProps re-renders the component embedded in block
// htmlBlockID with its current props overlaid by props, and writes the
// result back. Blocks without a registered component are left unchanged.
func (u *Updater) UpdateComponentProps(doc Document, htmlBlockID string, props registry.Props) Document {
	detector := NewDetector(u.registry, u.logger)
	for _, dc := range detector.FindAll(doc) {
		if dc.HTMLBlockID != htmlBlockID {
			continue
		}
		merged := dc.CurrentProps.Merge(props)
		return u.UpdateComponent(doc, htmlBlockID, dc.Definition.Render(merged))
	}

	u.logger.Warn("no registered component in html block", "block_id", htmlBlockID)
	return doc.Clone()
}

// InjectComponentRow returns a copy of doc with a new row appended that holds
// the component rendered with its default props. An unknown componentID
// returns doc itself, untouched.
func (u *Updater) InjectComponentRow(doc Document, componentID string) Document {
	def, ok := u.registry.Get(componentID)
	if !ok {
		u.logger.Warn("cannot inject unknown component", "component", componentID)
		return doc
	}

	out := doc.Clone()
	rowID := u.newID("row")
	columnID := u.newID("column")
	contentID := u.newID("content")

	content := map[string]any{
		"id":   contentID,
		"type": ContentTypeHTML,
		"values": map[string]any{
			"html":             def.RenderDefault(),
			"containerPadding": "10px",
			"anchor":           "",
			"hideDesktop":      false,
			"_meta": map[string]any{
				"htmlID":         "u_" + contentID,
				"htmlClassNames": "u_content_html",
			},
		},
	}
	column := map[string]any{
		"id":       columnID,
		"contents": []any{content},
		"values": map[string]any{
			"backgroundColor": "",
			"padding":         "0px",
			"_meta": map[string]any{
				"htmlID":         "u_" + columnID,
				"htmlClassNames": "u_column",
			},
		},
	}
	row := map[string]any{
		"id":      rowID,
		"cells":   []any{1.0},
		"columns": []any{column},
		"values": map[string]any{
			"displayCondition": nil,
			"columns":          false,
			"backgroundColor":  "",
			"padding":          "0px",
			"_meta": map[string]any{
				"htmlID":         "u_" + rowID,
				"htmlClassNames": "u_row",
			},
		},
	}

	out.appendRow(row)
	u.logger.Debug("injected component row",
		"component", componentID,
		"row_id", rowID,
		"content_id", contentID)
	return out
}
