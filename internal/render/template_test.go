package render

import (
	"strings"
	"testing"
)

func TestTemplateRenderSubstitutesVars(t *testing.T) {
	tmpl := NewTemplate("Hello ${name}, welcome to ${place}.")
	out := tmpl.Render(map[string]string{"name": "Ada", "place": "Quarto"})
	if out != "Hello Ada, welcome to Quarto." {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestTemplateRenderMissingVarIsEmpty(t *testing.T) {
	tmpl := NewTemplate("Hello ${name}${missing}!")
	out := tmpl.Render(map[string]string{"name": "Ada"})
	if out != "Hello Ada!" {
		t.Fatalf("unexpected render: %q", out)
	}
}

func TestDefaultTemplateWrapsBody(t *testing.T) {
	tmpl := DefaultTemplate()
	out := tmpl.Render(map[string]string{"body": "<p>hi</p>", "pagetitle": "Doc", "css_path": "/styles.css"})
	if !strings.HasPrefix(out, docTypePrefix) {
		t.Fatalf("expected DOCTYPE prefix, got %q", out)
	}
	if !strings.Contains(out, "<p>hi</p>") {
		t.Fatalf("expected body embedded, got %q", out)
	}
}

func TestDefaultTemplateDoubleWrapIsIdempotent(t *testing.T) {
	tmpl := DefaultTemplate()
	already := "<!DOCTYPE html>\n<html><body>already wrapped</body></html>"
	out := tmpl.Render(map[string]string{"body": already})
	if out != already {
		t.Fatalf("expected idempotent pass-through of already-wrapped body, got %q", out)
	}
}
