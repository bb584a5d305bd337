package render

import (
	"regexp"
	"strings"
)

// docTypePrefix is checked before wrapping so that re-running
// ApplyTemplateStage against an already-wrapped document is idempotent:
// it wraps once, never twice.
const docTypePrefix = "<!DOCTYPE html>"

var varPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_.-]+)\}`)

// Template is a compiled `${name}`-substitution template. Missing variables
// resolve to the empty string rather than an error, matching the teacher's
// forgiving shortcode-style rendering.
type Template struct {
	source string
}

// NewTemplate compiles a raw template string. There is no separate parse
// step beyond regex matching: substitution is resolved lazily at Render time.
func NewTemplate(source string) *Template {
	return &Template{source: source}
}

// DefaultTemplate returns the minimal built-in HTML document template used
// when a pipeline run supplies none of its own.
func DefaultTemplate() *Template {
	return NewTemplate(defaultTemplateSource)
}

const defaultTemplateSource = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>${pagetitle}</title>
<link rel="stylesheet" href="${css_path}">
</head>
<body>
${body}
</body>
</html>
`

// Render substitutes every ${name} occurrence with vars[name], defaulting to
// "" when a variable is absent. If the template's source already begins
// with a DOCTYPE declaration and the rendered body itself already begins
// with one, the body is returned as-is rather than wrapped a second time.
func (t *Template) Render(vars map[string]string) string {
	if strings.HasPrefix(t.source, docTypePrefix) {
		if body, ok := vars["body"]; ok && strings.HasPrefix(strings.TrimSpace(body), docTypePrefix) {
			return body
		}
	}
	return varPattern.ReplaceAllStringFunc(t.source, func(match string) string {
		name := varPattern.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		return ""
	})
}
