package synchub

import (
	"context"
	"testing"

	"github.com/qmd-toolchain/qmdcore/internal/synchub/memcrdt"
)

func TestIndexLoadOrCreateIsFreshWithEmptyID(t *testing.T) {
	repo := memcrdt.New()
	idx, err := LoadOrCreateIndex(context.Background(), repo, "")
	if err != nil {
		t.Fatalf("LoadOrCreateIndex: %v", err)
	}
	if idx.ID() == "" {
		t.Fatalf("expected non-empty document ID")
	}
	files, err := idx.Files(context.Background())
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected empty index, got %v", files)
	}
}

func TestIndexAddAndGetFile(t *testing.T) {
	repo := memcrdt.New()
	idx, err := LoadOrCreateIndex(context.Background(), repo, "")
	if err != nil {
		t.Fatalf("LoadOrCreateIndex: %v", err)
	}
	if err := idx.AddFile(context.Background(), "a.qmd", "doc-1"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	docID, ok, err := idx.GetFile(context.Background(), "a.qmd")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !ok || docID != "doc-1" {
		t.Fatalf("expected doc-1, got %q (ok=%v)", docID, ok)
	}
}

func TestIndexReloadByIDYieldsSameMapping(t *testing.T) {
	repo := memcrdt.New()
	idx, err := LoadOrCreateIndex(context.Background(), repo, "")
	if err != nil {
		t.Fatalf("LoadOrCreateIndex: %v", err)
	}
	if err := idx.AddFile(context.Background(), "a.qmd", "doc-1"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	reloaded, err := LoadOrCreateIndex(context.Background(), repo, idx.ID())
	if err != nil {
		t.Fatalf("LoadOrCreateIndex (reload): %v", err)
	}
	docID, ok, err := reloaded.GetFile(context.Background(), "a.qmd")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if !ok || docID != "doc-1" {
		t.Fatalf("expected reload to see doc-1, got %q (ok=%v)", docID, ok)
	}
}

func TestIndexRemoveFile(t *testing.T) {
	repo := memcrdt.New()
	idx, err := LoadOrCreateIndex(context.Background(), repo, "")
	if err != nil {
		t.Fatalf("LoadOrCreateIndex: %v", err)
	}
	if err := idx.AddFile(context.Background(), "a.qmd", "doc-1"); err != nil {
		t.Fatalf("AddFile: %v", err)
	}
	if err := idx.RemoveFile(context.Background(), "a.qmd"); err != nil {
		t.Fatalf("RemoveFile: %v", err)
	}
	_, ok, err := idx.GetFile(context.Background(), "a.qmd")
	if err != nil {
		t.Fatalf("GetFile: %v", err)
	}
	if ok {
		t.Fatalf("expected entry to be removed")
	}
}
