package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmd-toolchain/qmdcore/internal/logging/console"
	"github.com/qmd-toolchain/qmdcore/internal/sandbox"
)

func writeTempSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.qmd")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp source: %v", err)
	}
	return path
}

func TestHandlerRendersDryRun(t *testing.T) {
	src := writeTempSource(t, "---\ntitle: Hello\n---\n\n# Hello World\n")
	provider := console.NewProvider(console.Options{})

	var result Result
	handler := NewHandler(provider, func(_ Command, res Result) {
		result = res
	})

	cmd := Command{SourcePath: src, DryRun: true}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if !strings.Contains(string(result.Rendered), "Hello World") {
		t.Fatalf("expected rendered output to contain heading text, got %q", result.Rendered)
	}
	if !strings.Contains(string(result.Rendered), "<!DOCTYPE html>") {
		t.Fatalf("expected full document wrap, got %q", result.Rendered)
	}
}

func TestHandlerWritesOutputFile(t *testing.T) {
	src := writeTempSource(t, "# Plain\n")
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "doc.html")

	provider := console.NewProvider(console.Options{})
	handler := NewHandler(provider, nil)

	cmd := Command{SourcePath: src, OutputPath: outPath}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}

	raw, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(raw), "Plain") {
		t.Fatalf("expected output to contain source text, got %q", raw)
	}
}

func TestValidateRequiresOutputUnlessDryRun(t *testing.T) {
	cmd := Command{SourcePath: "doc.qmd"}
	if err := cmd.Validate(); err == nil {
		t.Fatal("expected validation error when output path is missing")
	}

	cmd.DryRun = true
	if err := cmd.Validate(); err != nil {
		t.Fatalf("expected dry-run to skip output validation, got %v", err)
	}
}

func TestHandlerAppliesJSONFilterViaSandboxPolicy(t *testing.T) {
	src := writeTempSource(t, "Only\n")
	provider := console.NewProvider(console.Options{})

	var result Result
	handler := NewHandler(provider, func(_ Command, res Result) {
		result = res
	})

	cmd := Command{
		SourcePath: src,
		DryRun:     true,
		Filters:    []string{"cat"},
		Sandbox:    sandbox.NewPolicy().AllowRun("cat"),
	}
	if err := handler.Execute(context.Background(), cmd); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(string(result.Rendered), "Only") {
		t.Fatalf("expected cat filter to pass content through unchanged, got %q", result.Rendered)
	}
}

func TestHandlerDeniesFilterWithoutSandboxPolicy(t *testing.T) {
	src := writeTempSource(t, "Only\n")
	provider := console.NewProvider(console.Options{})
	handler := NewHandler(provider, nil)

	cmd := Command{SourcePath: src, DryRun: true, Filters: []string{"cat"}}
	if err := handler.Execute(context.Background(), cmd); err == nil {
		t.Fatal("expected filter execution to be denied without a sandbox policy")
	}
}

func TestHandlerFailsOnMissingSource(t *testing.T) {
	provider := console.NewProvider(console.Options{})
	handler := NewHandler(provider, nil)

	cmd := Command{SourcePath: filepath.Join(t.TempDir(), "missing.qmd"), DryRun: true}
	if err := handler.Execute(context.Background(), cmd); err == nil {
		t.Fatal("expected error for missing source file")
	}
}
