package diagnostic

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// ANSI color codes used for the text rendering, matching the conventional
// ariadne palette: red for errors, yellow for warnings, blue/cyan for notes.
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31;1m"
	colorYellow = "\x1b[33;1m"
	colorBlue   = "\x1b[34;1m"
	colorDim    = "\x1b[2m"
)

func (k Kind) color() string {
	switch k {
	case Error:
		return colorRed
	case Warning:
		return colorYellow
	default:
		return colorBlue
	}
}

// ToText renders m as a colored, ariadne-style source snippet: a header
// line, the offending source line with a caret span underneath, then any
// hints. When the diagnostic has no resolvable location, only the header
// and hints are emitted.
func ToText(m Message, sm *sourcemap.Map, colorize bool) string {
	var b strings.Builder

	color, reset := m.Kind.color(), colorReset
	if !colorize {
		color, reset = "", ""
	}

	fmt.Fprintf(&b, "%s%s[%s]%s %s\n", color, strings.ToUpper(m.Kind.String()), m.Code, reset, m.Title)

	if m.Text != "" {
		fmt.Fprintf(&b, "  %s\n", m.Text)
	}

	if snippet := renderSnippet(m, sm, color, reset); snippet != "" {
		b.WriteString(snippet)
	}

	for _, h := range m.Hints {
		fmt.Fprintf(&b, "  %shint:%s %s\n", colorDimOrEmpty(colorize), reset, h.Message)
	}
	for _, rel := range m.Related {
		fmt.Fprintf(&b, "  %snote:%s %s\n", colorDimOrEmpty(colorize), reset, rel.Message)
	}

	return b.String()
}

func colorDimOrEmpty(colorize bool) string {
	if colorize {
		return colorDim
	}
	return ""
}

func renderSnippet(m Message, sm *sourcemap.Map, color, reset string) string {
	if m.Location == nil || sm == nil {
		return ""
	}
	r, err := m.Location.Resolve(sm)
	if err != nil {
		return ""
	}
	content, err := sm.Read(r.File)
	if err != nil {
		return ""
	}
	info, err := sm.Information(r.File)
	if err != nil {
		return ""
	}
	startLine := info.Line(r.Start)
	lineStart := info.LineStart(startLine)
	lineEnd := info.LineStart(startLine + 1)
	if lineEnd > len(content) {
		lineEnd = len(content)
	}
	lineText := strings.TrimRight(string(content[lineStart:lineEnd]), "\n")

	col := utf8.RuneCount(content[lineStart:r.Start])
	spanLen := utf8.RuneCount(content[r.Start:min(r.End, lineEnd)])
	if spanLen < 1 {
		spanLen = 1
	}

	var b strings.Builder
	file, ferr := sm.File(r.File)
	path := r.File.String()
	if ferr == nil {
		path = file.Path
	}
	fmt.Fprintf(&b, "  --> %s:%d:%d\n", path, startLine+1, col+1)
	fmt.Fprintf(&b, "  | %s\n", lineText)
	fmt.Fprintf(&b, "  | %s%s%s%s\n", strings.Repeat(" ", col), color, strings.Repeat("^", spanLen), reset)
	return b.String()
}
