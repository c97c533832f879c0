// Package toolkit wires the component registry, design updater, reminder
// generator and merger together behind one facade shared by the MCP server,
// the preview server and the CLI.
package toolkit

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnana997/popupkit/pkg/components"
	"github.com/gnana997/popupkit/pkg/design"
	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/registry"
	"github.com/gnana997/popupkit/pkg/reminder"
)

// ErrUnknownComponent is returned for component ids that are not registered.
var ErrUnknownComponent = errors.New("unknown component")

// Config configures a Toolkit.
type Config struct {
	// Registry defaults to the built-in components.
	Registry *registry.Registry

	// CacheSize bounds the reminder generator cache. 0 means
	// reminder.DefaultCacheSize, negative disables caching.
	CacheSize int

	// Checker validates merged scripts when merge options ask for it.
	Checker merger.ScriptChecker

	Logger *slog.Logger
}

// Toolkit is safe for concurrent use.
type Toolkit struct {
	Registry  *registry.Registry
	Detector  *design.Detector
	Updater   *design.Updater
	Generator *reminder.Generator
	Merger    *merger.Merger

	logger *slog.Logger
}

// New builds a toolkit from cfg.
func New(cfg Config) *Toolkit {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = components.NewRegistry()
	}
	cacheSize := cfg.CacheSize
	if cacheSize == 0 {
		cacheSize = reminder.DefaultCacheSize
	}

	gen := reminder.NewGenerator(cacheSize, logger)
	m := merger.New(gen, logger)
	if cfg.Checker != nil {
		m.WithScriptChecker(cfg.Checker)
	}

	return &Toolkit{
		Registry:  reg,
		Detector:  design.NewDetector(reg, logger),
		Updater:   design.NewUpdater(reg, logger),
		Generator: gen,
		Merger:    m,
		logger:    logger,
	}
}

// ComponentSummary is the listing view of a component.
type ComponentSummary struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    registry.Category `json:"category"`
	Icon        string            `json:"icon"`
}

// ComponentDetail is a component with its schema and default rendering.
type ComponentDetail struct {
	registry.Definition
	DefaultHTML string `json:"default_html"`
}

// SearchHit is one search match.
type SearchHit struct {
	ComponentSummary
	MatchReason string `json:"match_reason"`
}

func summarize(def registry.Definition) ComponentSummary {
	return ComponentSummary{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Category:    def.Category,
		Icon:        def.Icon,
	}
}

// Components lists registered components, optionally restricted to one
// category.
func (t *Toolkit) Components(category string) []ComponentSummary {
	defs := t.Registry.All()
	if category != "" {
		defs = t.Registry.ByCategory(registry.Category(category))
	}
	out := make([]ComponentSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, summarize(def))
	}
	return out
}

// Component returns the detail view of one component.
func (t *Toolkit) Component(id string) (ComponentDetail, error) {
	def, ok := t.Registry.Get(id)
	if !ok {
		return ComponentDetail{}, fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	return ComponentDetail{Definition: *def, DefaultHTML: def.RenderDefault()}, nil
}

// Search finds components by id, name, description or prop.
func (t *Toolkit) Search(query string) []SearchHit {
	results := t.Registry.Search(query)
	out := make([]SearchHit, 0, len(results))
	for _, r := range results {
		out = append(out, SearchHit{ComponentSummary: summarize(r.Definition), MatchReason: r.MatchReason})
	}
	return out
}

// Render renders component id with props overlaid on its defaults.
func (t *Toolkit) Render(id string, props registry.Props) (string, error) {
	def, ok := t.Registry.Get(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	return def.Render(def.DefaultProps.Merge(props)), nil
}

// Detect lists the registered components embedded in a design document.
func (t *Toolkit) Detect(designJSON []byte) ([]design.DetectedComponent, error) {
	doc, err := design.Parse(designJSON)
	if err != nil {
		return nil, err
	}
	return t.Detector.FindAll(doc), nil
}

// DetectHTML returns the component marker of one HTML fragment, or nil.
func (t *Toolkit) DetectHTML(html string) *design.Detection {
	return t.Detector.DetectCustomComponent(html)
}

// Update rewrites html block blockID of a design document. With html set the
// block markup is replaced; otherwise the embedded component is re-rendered
// with props overlaid on its current props.
func (t *Toolkit) Update(designJSON []byte, blockID string, html *string, props registry.Props) ([]byte, error) {
	doc, err := design.Parse(designJSON)
	if err != nil {
		return nil, err
	}
	var out design.Document
	if html != nil {
		out = t.Updater.UpdateComponent(doc, blockID, *html)
	} else {
		out = t.Updater.UpdateComponentProps(doc, blockID, props)
	}
	return out.Marshal()
}

// Inject appends a row holding component id, rendered with its defaults.
func (t *Toolkit) Inject(designJSON []byte, id string) ([]byte, error) {
	if _, ok := t.Registry.Get(id); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownComponent, id)
	}
	doc, err := design.Parse(designJSON)
	if err != nil {
		return nil, err
	}
	return t.Updater.InjectComponentRow(doc, id).Marshal()
}

// ParseReminderConfig decodes a reminder configuration. Empty input yields
// the defaults.
func ParseReminderConfig(configJSON []byte) (reminder.Config, error) {
	trimmed := bytes.TrimSpace(configJSON)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return reminder.DefaultConfig(), nil
	}
	return reminder.ParseConfig(trimmed)
}

// GenerateReminder renders the standalone reminder widget document.
func (t *Toolkit) GenerateReminder(configJSON []byte) (string, error) {
	cfg, err := ParseReminderConfig(configJSON)
	if err != nil {
		return "", err
	}
	return t.Generator.GenerateHTML(cfg), nil
}

// Merge merges a stored template record.
func (t *Toolkit) Merge(rec merger.TemplateData, opts merger.Options) (string, error) {
	return t.Merger.MergeFromRecord(rec, opts)
}
