// Package merger assembles the visitor-facing document: the reminder widget,
// the popup template exported by the editor and a connection script wiring
// the two together.
package merger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gnana997/popupkit/pkg/reminder"
	"github.com/gnana997/popupkit/pkg/scriptcheck"
)

// ErrNoReminderData is returned by MergeFromRecord when the record carries
// neither a reminder configuration nor pre-rendered reminder HTML.
var ErrNoReminderData = errors.New("template has no reminder tab data")

// TemplateData is a stored popup template.
type TemplateData struct {
	ReminderTabStateJSON json.RawMessage `json:"reminder_tab_state_json,omitempty"`
	ReminderTabHTML      string          `json:"reminder_tab_html,omitempty"`
	TemplateHTML         string          `json:"template_html"`
	TemplateHTMLClient   string          `json:"template_html_client,omitempty"`
}

// reminderState returns the stored configuration, unwrapping configurations
// stored as a JSON string. nil means absent.
func (t TemplateData) reminderState() []byte {
	raw := bytes.TrimSpace(t.ReminderTabStateJSON)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil || strings.TrimSpace(s) == "" {
			return nil
		}
		return []byte(s)
	}
	return raw
}

// ScriptChecker reports syntax problems in JavaScript source.
type ScriptChecker interface {
	Check(js string) ([]scriptcheck.Issue, error)
}

// Merger combines reminder widgets with popup templates. It is safe for
// concurrent use.
type Merger struct {
	generator *reminder.Generator
	checker   ScriptChecker
	logger    *slog.Logger
}

// New creates a merger. A nil generator gets a cached default generator.
func New(generator *reminder.Generator, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = reminder.NewGenerator(reminder.DefaultCacheSize, logger)
	}
	return &Merger{generator: generator, logger: logger}
}

// WithScriptChecker sets the checker used when Options.ValidateScripts is on.
func (m *Merger) WithScriptChecker(c ScriptChecker) *Merger {
	m.checker = c
	return m
}

// MergeConfig generates the widget for cfg and merges it with templateHTML.
func (m *Merger) MergeConfig(cfg reminder.Config, templateHTML string, opts Options) string {
	return m.MergeHTML(m.generator.GenerateHTML(cfg), templateHTML, opts)
}

// MergeHTML merges pre-rendered widget HTML with templateHTML. The template
// is inserted verbatim.
func (m *Merger) MergeHTML(reminderHTML, templateHTML string, opts Options) string {
	opts = opts.WithDefaults()

	durationMs, ok := opts.animationMillis()
	if !ok {
		m.logger.Warn("invalid animation duration, using default",
			"duration", opts.AnimationDuration,
			"default", DefaultAnimationDuration)
		opts.AnimationDuration = DefaultAnimationDuration
		durationMs, _ = opts.animationMillis()
	}

	parts := m.extract(reminderHTML, opts.HideReminderTab)
	connection := connectionJS(opts, durationMs)

	if opts.ValidateScripts {
		m.validate(append(parts.scriptSources, connection))
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	for _, style := range parts.styles {
		b.WriteString(style)
		b.WriteString("\n")
	}
	b.WriteString("<style id=\"popup-merger-styles\">\n")
	b.WriteString(popupCSS(opts, durationMs))
	b.WriteString("</style>\n</head>\n<body>\n")
	b.WriteString(parts.body)
	b.WriteString("\n")
	b.WriteString(templateHTML)
	b.WriteString("\n")
	for _, script := range parts.scripts {
		b.WriteString(script)
		b.WriteString("\n")
	}
	b.WriteString("<script id=\"popup-merger-script\">\n")
	b.WriteString(connection)
	b.WriteString("</script>\n</body>\n</html>\n")

	m.logger.Debug("merged template",
		"styles", len(parts.styles),
		"scripts", len(parts.scripts),
		"hide_reminder_tab", opts.HideReminderTab)
	return b.String()
}

// MergeFromRecord merges a stored template. The structured configuration is
// preferred over pre-rendered HTML. It returns ErrNoReminderData when the
// record has neither.
func (m *Merger) MergeFromRecord(rec TemplateData, opts Options) (string, error) {
	if state := rec.reminderState(); state != nil {
		cfg, err := reminder.ParseConfig(state)
		if err == nil {
			return m.MergeConfig(cfg, rec.TemplateHTML, opts), nil
		}
		if rec.ReminderTabHTML == "" {
			return "", fmt.Errorf("failed to merge template: %w", err)
		}
		m.logger.Warn("invalid reminder config, using stored reminder HTML", "error", err)
	}

	if rec.ReminderTabHTML != "" {
		return m.MergeHTML(rec.ReminderTabHTML, rec.TemplateHTML, opts), nil
	}
	return "", ErrNoReminderData
}

// reminderParts is a widget document split for reassembly.
type reminderParts struct {
	styles        []string // outer HTML of every <style>
	body          string   // body inner HTML without style and script elements
	scripts       []string // outer HTML of every <script>
	scriptSources []string // inline script text, for validation
}

func (m *Merger) extract(reminderHTML string, hideTriggers bool) reminderParts {
	var parts reminderParts

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(reminderHTML))
	if err != nil {
		m.logger.Warn("failed to parse reminder HTML, inserting it as-is", "error", err)
		parts.body = reminderHTML
		return parts
	}

	doc.Find("style").Each(func(_ int, s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			parts.styles = append(parts.styles, h)
		}
	})
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if h, err := goquery.OuterHtml(s); err == nil {
			parts.scripts = append(parts.scripts, h)
		}
		if _, external := s.Attr("src"); !external {
			parts.scriptSources = append(parts.scriptSources, s.Text())
		}
	})

	body := doc.Find("body")
	body.Find("style, script").Remove()
	if hideTriggers {
		body.Find("#reminderTab, #mobileFloatingButton").Remove()
	}
	inner, err := body.Html()
	if err != nil {
		m.logger.Warn("failed to render reminder body", "error", err)
		return parts
	}
	parts.body = strings.TrimSpace(inner)
	return parts
}

func (m *Merger) validate(sources []string) {
	if m.checker == nil {
		m.logger.Debug("script validation requested without a checker")
		return
	}
	for i, src := range sources {
		issues, err := m.checker.Check(src)
		if err != nil {
			m.logger.Warn("script validation failed", "script", i, "error", err)
			continue
		}
		for _, issue := range issues {
			m.logger.Warn("generated script has a syntax error",
				"script", i,
				"line", issue.Line,
				"column", issue.Column,
				"message", issue.Message)
		}
	}
}
