package parser

import (
	"testing"

	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

func TestParseSimpleParagraph(t *testing.T) {
	sm := sourcemap.New()
	id := sm.AddEphemeral("doc.qmd", []byte("Hello world\n"))
	adapter := NewAdapter(sm, nil)

	result, diags := adapter.Parse(id)
	if diags != nil {
		t.Fatalf("unexpected failure diagnostics: %+v", diags)
	}
	if len(result.Blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(result.Blocks))
	}
	para, ok := result.Blocks[0].(*document.Paragraph)
	if !ok {
		t.Fatalf("expected *document.Paragraph, got %T", result.Blocks[0])
	}
	if len(para.Content) == 0 {
		t.Fatalf("expected paragraph content")
	}
}

func TestParsePadsTrailingNewline(t *testing.T) {
	sm := sourcemap.New()
	id := sm.AddEphemeral("doc.qmd", []byte("no trailing newline"))
	adapter := NewAdapter(sm, nil)

	result, diags := adapter.Parse(id)
	if diags != nil {
		t.Fatalf("unexpected failure diagnostics: %+v", diags)
	}
	if len(result.Blocks) != 1 {
		t.Fatalf("expected 1 block from padded source, got %d", len(result.Blocks))
	}
}

func TestParseHeadingKeepsLevel(t *testing.T) {
	sm := sourcemap.New()
	id := sm.AddEphemeral("doc.qmd", []byte("# Title\n"))
	adapter := NewAdapter(sm, nil)

	result, diags := adapter.Parse(id)
	if diags != nil {
		t.Fatalf("unexpected failure diagnostics: %+v", diags)
	}
	header, ok := result.Blocks[0].(*document.Header)
	if !ok {
		t.Fatalf("expected *document.Header, got %T", result.Blocks[0])
	}
	if header.Level != 1 {
		t.Fatalf("expected level 1, got %d", header.Level)
	}
}
