package diagnostic

import (
	"testing"

	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

func TestOuterRegionsExcludesNested(t *testing.T) {
	outer := ErrorRegion{Start: 0, End: 20}
	inner := ErrorRegion{Start: 2, End: 5}
	sibling := ErrorRegion{Start: 25, End: 30}

	got := OuterRegions([]ErrorRegion{outer, inner, sibling})
	if len(got) != 2 {
		t.Fatalf("expected 2 outer regions, got %d: %+v", len(got), got)
	}
}

func TestPruneKeepsOneDiagnosticPerOuterRegion(t *testing.T) {
	sm := sourcemap.New()
	id := sm.AddEphemeral("buf.qmd", []byte("0123456789abcdefghij"))

	regions := []ErrorRegion{
		{Start: 0, End: 10},
		{Start: 12, End: 18},
	}

	messages := []Message{
		{Code: "a", Location: sourcemap.Original{File: id, Start: 1, End: 2}},
		{Code: "b", Location: sourcemap.Original{File: id, Start: 3, End: 4}}, // same region as a, dropped
		{Code: "c", Location: sourcemap.Original{File: id, Start: 13, End: 14}},
		{Code: "d"}, // no location, dropped
	}

	kept := Prune(messages, regions, sm)
	if len(kept) != 2 {
		t.Fatalf("expected 2 kept diagnostics, got %d: %+v", len(kept), kept)
	}
	if kept[0].Code != "a" || kept[1].Code != "c" {
		t.Fatalf("expected a then c, got %s then %s", kept[0].Code, kept[1].Code)
	}
}
