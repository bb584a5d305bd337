// Package diagnostic turns parser traces and traversal-time problems into
// user-facing diagnostics, with stable text and JSON serializations.
package diagnostic

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// Kind classifies the severity of a DiagnosticMessage.
type Kind int

const (
	Error Kind = iota
	Warning
	Info
	Note
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Hint is a suggested fix or clarification attached to a diagnostic.
type Hint struct {
	Message string
}

// Related links a diagnostic to another location, e.g. a matching open tag.
type Related struct {
	Message  string
	Location sourcemap.SourceInfo
}

// Message is a single diagnostic: a classified, code-identified, located
// report of a problem (or informational note) encountered while parsing,
// validating, or rendering a document.
type Message struct {
	Kind     Kind
	Code     string
	Title    string
	Text     string
	Location sourcemap.SourceInfo // nil when the diagnostic has no byte range
	Hints    []Hint
	Related  []Related
}

// HasLocation reports whether the diagnostic carries a resolvable source range.
func (m Message) HasLocation() bool {
	return m.Location != nil
}

// StartOffset resolves the diagnostic's location against sm and returns its
// start offset, or 0 if the diagnostic has no location or fails to resolve
// (matching the sort contract: "None sorts first").
func (m Message) StartOffset(sm *sourcemap.Map) int {
	if m.Location == nil {
		return 0
	}
	r, err := m.Location.Resolve(sm)
	if err != nil {
		return 0
	}
	return r.Start
}
