package synchub

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscoverSkipsHiddenAndOutputDirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "docs", "intro.qmd"), "# intro")
	writeFile(t, filepath.Join(dir, "_quarto.yml"), "project: {}")
	writeFile(t, filepath.Join(dir, "images", "logo.png"), "\x89PNG")
	writeFile(t, filepath.Join(dir, ".git", "hidden.qmd"), "# hidden")
	writeFile(t, filepath.Join(dir, "_site", "output.qmd"), "# generated")
	writeFile(t, filepath.Join(dir, "node_modules", "pkg.qmd"), "# dep")

	result, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(result.QMDFiles) != 1 || result.QMDFiles[0] != filepath.Join("docs", "intro.qmd") {
		t.Fatalf("unexpected QMDFiles: %v", result.QMDFiles)
	}
	if len(result.ConfigFiles) != 1 {
		t.Fatalf("unexpected ConfigFiles: %v", result.ConfigFiles)
	}
	if len(result.BinaryFiles) != 1 {
		t.Fatalf("unexpected BinaryFiles: %v", result.BinaryFiles)
	}
}

func TestMatchGlob(t *testing.T) {
	if !MatchGlob("docs/**/*.qmd", "docs/a/b.qmd") {
		t.Fatalf("expected glob to match nested path")
	}
	if MatchGlob("docs/**/*.qmd", "other/a/b.qmd") {
		t.Fatalf("expected glob to not match outside root")
	}
}
