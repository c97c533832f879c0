package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	"github.com/gnana997/popupkit/pkg/scriptcheck"
)

// errLintFailed is returned when any file has problems. Details are already
// printed.
var errLintFailed = errors.New("lint found problems")

// script is one inline script of a linted file.
type script struct {
	file  string
	index int
	lang  scriptcheck.Language
	src   string
}

func (s script) label() string {
	if s.index < 0 {
		return s.file
	}
	return fmt.Sprintf("%s#script%d", s.file, s.index)
}

func newLintCmd(a *app) *cobra.Command {
	var showClasses bool

	cmd := &cobra.Command{
		Use:   "lint <file>...",
		Short: "Check the scripts of merged or generated documents",
		Long: `Parses every inline <script> of the given HTML files (or whole .js and
.ts files) and reports syntax errors. Classes declared by more than one script of the
same document are reported too: the browser rejects the second declaration.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := scriptcheck.NewChecker(a.cfg.Workers, a.logger)
			defer checker.Close()

			out := cmd.OutOrStdout()
			problems := 0
			for _, path := range args {
				n, err := lintFile(out, checker, path, showClasses)
				if err != nil {
					return err
				}
				problems += n
			}

			stats := checker.Stats()
			a.logger.Debug("Lint finished", "scripts", stats.ChecksRun, "parsers", stats.ParsersCreated)
			if problems > 0 {
				fmt.Fprintf(out, "%d problem(s)\n", problems)
				return errLintFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showClasses, "classes", false, "list the classes each script declares")
	return cmd
}

// lintFile prints the problems of one file and returns how many it found.
func lintFile(w io.Writer, checker *scriptcheck.Checker, path string, showClasses bool) (int, error) {
	scripts, err := extractScripts(path)
	if err != nil {
		return 0, err
	}

	problems := 0
	declaredBy := make(map[string]string)
	for _, s := range scripts {
		issues, err := checker.CheckSource(s.lang, s.src)
		if err != nil {
			return problems, fmt.Errorf("%s: %w", s.label(), err)
		}
		for _, issue := range issues {
			fmt.Fprintf(w, "%s:%s\n", s.label(), issue)
			problems++
		}

		classes, err := checker.ClassesSource(s.lang, s.src)
		if err != nil {
			return problems, fmt.Errorf("%s: %w", s.label(), err)
		}
		if showClasses && len(classes) > 0 {
			fmt.Fprintf(w, "%s: classes %s\n", s.label(), strings.Join(classes, ", "))
		}
		for _, name := range classes {
			if first, ok := declaredBy[name]; ok {
				fmt.Fprintf(w, "%s: class %s already declared in %s\n", s.label(), name, first)
				problems++
				continue
			}
			declaredBy[name] = s.label()
		}
	}
	return problems, nil
}

// extractScripts returns the inline scripts of an HTML file, or the whole
// file for script sources.
func extractScripts(path string) ([]script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if lang, ok := scriptcheck.LanguageForPath(path); ok {
		return []script{{file: path, index: -1, lang: lang, src: string(data)}}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var scripts []script
	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if _, external := sel.Attr("src"); external {
			return
		}
		typ, _ := sel.Attr("type")
		lang, ok := scriptcheck.LanguageForScriptType(typ)
		if !ok {
			return
		}
		scripts = append(scripts, script{file: path, index: i, lang: lang, src: sel.Text()})
	})
	return scripts, nil
}
