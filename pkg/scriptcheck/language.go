package scriptcheck

import (
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language selects the grammar a script is parsed with.
type Language string

const (
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
)

func (l Language) grammar() (unsafe.Pointer, error) {
	switch l {
	case JavaScript:
		return ts_javascript.Language(), nil
	case TypeScript:
		return ts_typescript.LanguageTypescript(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %q", l)
	}
}

// LanguageForPath maps a source file extension to its language.
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return JavaScript, true
	case ".ts", ".mts", ".cts":
		return TypeScript, true
	default:
		return "", false
	}
}

// LanguageForScriptType maps the type attribute of a <script> element to its
// language. ok is false for non-script payloads such as JSON.
func LanguageForScriptType(typ string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "", "text/javascript", "application/javascript", "module":
		return JavaScript, true
	case "text/typescript", "application/typescript":
		return TypeScript, true
	default:
		return "", false
	}
}
