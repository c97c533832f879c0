package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gnana997/popupkit/pkg/registry"
	"github.com/gnana997/popupkit/pkg/toolkit"
)

const maxWidth = 80

// printComponentHuman prints a human-readable component summary.
func printComponentHuman(w io.Writer, comp toolkit.ComponentDetail, showHTML bool) {
	fmt.Fprintf(w, "%s  [%s]\n", comp.Name, comp.Category)
	fmt.Fprintf(w, "  id: %s\n", comp.ID)

	if comp.Description != "" {
		fmt.Fprintln(w)
		printWrapped(w, comp.Description, 0, maxWidth)
	}

	fmt.Fprintln(w)
	printPropsSection(w, "Props", comp.PropSchema)

	if showHTML {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Default HTML")
		fmt.Fprintln(w, "  "+strings.Repeat("─", 40))
		for _, line := range strings.Split(comp.DefaultHTML, "\n") {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

// printPropsSection renders the props table with dynamic column widths.
func printPropsSection(w io.Writer, title string, props []registry.PropDescriptor) {
	if len(props) == 0 {
		fmt.Fprintf(w, "%s  (none)\n", title)
		return
	}

	fmt.Fprintln(w, title)

	nameW := len("NAME")
	typeW := len("TYPE")
	defW := len("DEFAULT")
	for _, p := range props {
		nameW = max(nameW, len(p.Name))
		typeW = max(typeW, len(p.Type))
		defW = max(defW, len(formatDefault(p.Default)))
	}

	sepLen := nameW + typeW + defW + 4
	fmt.Fprintf(w, "  %-*s  %-*s  %-*s\n", nameW, "NAME", typeW, "TYPE", defW, "DEFAULT")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("─", sepLen))

	for _, p := range props {
		fmt.Fprintf(w, "  %-*s  %-*s  %-*s\n",
			nameW, p.Name, typeW, p.Type, defW, formatDefault(p.Default))

		label := strings.Repeat(" ", nameW)
		if p.Label != "" {
			fmt.Fprintf(w, "  %s  %s\n", label, p.Label)
		}
		if r := formatRange(p); r != "" {
			fmt.Fprintf(w, "  %s  range: %s\n", label, r)
		}
		if len(p.Options) > 0 {
			values := make([]string, len(p.Options))
			for i, o := range p.Options {
				values[i] = o.Value
			}
			allowed := strings.Join(values, " | ")
			fmt.Fprintf(w, "  %s  allowed: %s\n", label, wrapAllowed(allowed, nameW+12))
		}
	}
}

// formatDefault renders a prop default compactly; strings stay unquoted.
func formatDefault(v any) string {
	switch t := v.(type) {
	case nil:
		return "—"
	case string:
		if t == "" {
			return `""`
		}
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

func formatRange(p registry.PropDescriptor) string {
	if p.Min == nil && p.Max == nil {
		return ""
	}
	bound := func(f *float64) string {
		if f == nil {
			return "…"
		}
		return strconv.FormatFloat(*f, 'f', -1, 64)
	}
	r := bound(p.Min) + ".." + bound(p.Max)
	if p.Step != nil {
		r += " step " + strconv.FormatFloat(*p.Step, 'f', -1, 64)
	}
	return r
}

// wrapAllowed wraps the allowed values string if it exceeds maxWidth.
func wrapAllowed(allowed string, indent int) string {
	if indent+len(allowed) <= maxWidth {
		return allowed
	}
	parts := strings.Split(allowed, " | ")
	var sb strings.Builder
	lineLen := indent
	for i, part := range parts {
		addition := len(part)
		if i > 0 {
			addition += 3 // " | "
		}
		if lineLen+addition > maxWidth && i > 0 {
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", indent))
			lineLen = indent
		}
		if i > 0 {
			sb.WriteString(" | ")
			lineLen += 3
		}
		sb.WriteString(part)
		lineLen += len(part)
	}
	return sb.String()
}

// printWrapped prints text word-wrapped at width with the given left indent.
func printWrapped(w io.Writer, text string, indent, width int) {
	words := strings.Fields(text)
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != prefix {
			fmt.Fprintln(w, line)
			line = prefix + word
		} else if line == prefix {
			line += word
		} else {
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}

// printComponentTable prints one line per component.
func printComponentTable(w io.Writer, comps []toolkit.ComponentSummary) {
	if len(comps) == 0 {
		fmt.Fprintln(w, "No components found.")
		return
	}
	idW, catW := len("ID"), len("CATEGORY")
	for _, c := range comps {
		idW = max(idW, len(c.ID))
		catW = max(catW, len(c.Category))
	}
	fmt.Fprintf(w, "%-*s  %-*s  %s\n", idW, "ID", catW, "CATEGORY", "NAME")
	for _, c := range comps {
		fmt.Fprintf(w, "%-*s  %-*s  %s\n", idW, c.ID, catW, c.Category, c.Name)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
