// Package filterspec classifies a filter reference string into one of the
// three filter kinds a render can invoke: the built-in citation processor,
// a Lua filter script, or an external JSON-AST filter process.
package filterspec

import "strings"

// Kind enumerates the recognized filter categories.
type Kind int

const (
	// Citeproc is the literal "citeproc" built-in citation processor.
	Citeproc Kind = iota
	// Lua is an external Lua filter script, referenced by file path.
	Lua
	// JSON is an external process that speaks the stdin/stdout JSON AST
	// convention of the document model.
	JSON
)

func (k Kind) String() string {
	switch k {
	case Citeproc:
		return "citeproc"
	case Lua:
		return "lua"
	case JSON:
		return "json"
	default:
		return "unknown"
	}
}

const citeprocLiteral = "citeproc"
const luaSuffix = ".lua"

// FilterSpec is a classified filter reference.
type FilterSpec struct {
	Kind Kind
	// Path is the filter's file path (Lua) or external executable
	// path/command (JSON). Empty for Citeproc.
	Path string
}

// ParseFilterSpec classifies a raw filter reference string per spec.md §6:
// the literal "citeproc" selects the built-in processor, a path ending in
// ".lua" selects the Lua filter, anything else is treated as an external
// JSON-AST filter process.
func ParseFilterSpec(s string) FilterSpec {
	trimmed := strings.TrimSpace(s)
	if trimmed == citeprocLiteral {
		return FilterSpec{Kind: Citeproc}
	}
	if strings.HasSuffix(trimmed, luaSuffix) {
		return FilterSpec{Kind: Lua, Path: trimmed}
	}
	return FilterSpec{Kind: JSON, Path: trimmed}
}
