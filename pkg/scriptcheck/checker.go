// Package scriptcheck parses generated JavaScript with tree-sitter to catch
// syntax errors before a merged document is stored, and to list the classes a
// script declares.
package scriptcheck

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/popupkit/pkg/util"
)

// Issue is one syntax problem found in a script. Line and Column are 1-based.
type Issue struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d:%d: %s", i.Line, i.Column, i.Message)
}

// Checker parses JavaScript and TypeScript with pools of tree-sitter parsers.
// Each language gets its own pool of up to poolSize parsers.
//
// Thread Safety:
// - Safe for concurrent use from multiple goroutines
// - Close must be called once no more checks are running
type Checker struct {
	pools     map[Language]*parserPool
	logger    *slog.Logger
	checks    atomic.Int64
	closeOnce sync.Once
}

// Stats contains checker usage statistics.
type Stats struct {
	ParsersCreated int
	ChecksRun      int64
}

// NewChecker creates a checker with up to poolSize parsers. A poolSize of
// zero uses util.GetOptimalPoolSize.
//
// The returned checker must be closed via Close() to free parser memory.
func NewChecker(poolSize int, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	size := util.GetOptimalPoolSizeWithOverride(poolSize)
	return &Checker{
		pools: map[Language]*parserPool{
			JavaScript: newParserPool(size, JavaScript, logger),
			TypeScript: newParserPool(size, TypeScript, logger),
		},
		logger: logger,
	}
}

// parse runs fn over the syntax tree of src.
func (c *Checker) parse(lang Language, src []byte, fn func(root *ts.Node)) error {
	pool, ok := c.pools[lang]
	if !ok {
		return fmt.Errorf("unsupported language: %q", lang)
	}
	c.checks.Add(1)

	parser, err := pool.acquire()
	if err != nil {
		return fmt.Errorf("failed to acquire parser: %w", err)
	}
	tree := parser.Parse(src, nil)
	pool.release(parser)

	if tree == nil {
		return fmt.Errorf("parser returned nil tree")
	}
	defer tree.Close()

	fn(tree.RootNode())
	return nil
}

// Check returns the syntax errors in js, in source order. An empty result
// means the script parsed cleanly.
func (c *Checker) Check(js string) ([]Issue, error) {
	return c.CheckSource(JavaScript, js)
}

// CheckSource is Check for a script in lang.
func (c *Checker) CheckSource(lang Language, source string) ([]Issue, error) {
	src := []byte(source)
	issues := make([]Issue, 0)

	err := c.parse(lang, src, func(root *ts.Node) {
		if !root.HasError() {
			return
		}
		walk(root, func(n *ts.Node) bool {
			pos := n.StartPosition()
			switch {
			case n.IsMissing():
				issues = append(issues, Issue{
					Line:    int(pos.Row) + 1,
					Column:  int(pos.Column) + 1,
					Kind:    "missing",
					Message: "missing " + n.Kind(),
				})
				return false
			case n.IsError():
				issues = append(issues, Issue{
					Line:    int(pos.Row) + 1,
					Column:  int(pos.Column) + 1,
					Kind:    "error",
					Message: "unexpected " + snippet(n.Utf8Text(src)),
				})
				return false
			}
			return n.HasError()
		})
	})
	if err != nil {
		return nil, err
	}

	if len(issues) > 0 {
		c.logger.Debug("script has syntax errors", "issues", len(issues))
	}
	return issues, nil
}

// Classes returns the names of the classes declared in js, sorted.
func (c *Checker) Classes(js string) ([]string, error) {
	return c.ClassesSource(JavaScript, js)
}

// ClassesSource is Classes for a script in lang.
func (c *Checker) ClassesSource(lang Language, source string) ([]string, error) {
	src := []byte(source)
	seen := make(map[string]bool)

	err := c.parse(lang, src, func(root *ts.Node) {
		walk(root, func(n *ts.Node) bool {
			if k := n.Kind(); k == "class_declaration" || k == "abstract_class_declaration" {
				if name := n.ChildByFieldName("name"); name != nil {
					seen[name.Utf8Text(src)] = true
				}
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Stats returns checker usage statistics.
func (c *Checker) Stats() Stats {
	created := 0
	for _, pool := range c.pools {
		created += pool.getCreatedCount()
	}
	return Stats{
		ParsersCreated: created,
		ChecksRun:      c.checks.Load(),
	}
}

// Close releases all parsers. The checker cannot be used afterwards.
func (c *Checker) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Debug("closing script checker", "checks_run", c.checks.Load())
		for _, pool := range c.pools {
			pool.close()
		}
	})
	return nil
}

// walk visits n and, while visit returns true, its children depth-first.
func walk(n *ts.Node, visit func(*ts.Node) bool) {
	if !visit(n) {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			walk(child, visit)
		}
	}
}

func snippet(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 40 {
		return s[:40] + "..."
	}
	if s == "" {
		return "token"
	}
	return s
}
