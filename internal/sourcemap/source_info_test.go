package sourcemap

import "testing"

func TestOriginalResolve(t *testing.T) {
	m := New()
	id := m.AddEphemeral("buf.qmd", []byte("hello world"))
	info := Original{File: id, Start: 0, End: 5}
	r, err := info.Resolve(m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.File != id || r.Start != 0 || r.End != 5 {
		t.Fatalf("unexpected range: %+v", r)
	}
}

func TestOriginalResolveOutOfBounds(t *testing.T) {
	m := New()
	id := m.AddEphemeral("buf.qmd", []byte("hi"))
	info := Original{File: id, Start: 0, End: 99}
	if _, err := info.Resolve(m); err == nil {
		t.Fatalf("expected error for out-of-bounds range")
	}
}

func TestSubstringResolveIsRelativeToParent(t *testing.T) {
	m := New()
	id := m.AddEphemeral("buf.qmd", []byte("hello world"))
	parent := Original{File: id, Start: 6, End: 11}
	sub := Substring{Parent: parent, Start: 0, End: 3}
	r, err := sub.Resolve(m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Start != 6 || r.End != 9 {
		t.Fatalf("expected [6,9), got [%d,%d)", r.Start, r.End)
	}
}

func TestConcatResolveBoundsAllPieces(t *testing.T) {
	m := New()
	id := m.AddEphemeral("buf.qmd", []byte("abc\ndef"))
	c := Concat{Pieces: []ConcatPiece{
		{Info: Original{File: id, Start: 0, End: 3}, OffsetInConcat: 0},
		{Info: Original{File: id, Start: 4, End: 7}, OffsetInConcat: 3},
	}}
	r, err := c.Resolve(m)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r.Start != 0 || r.End != 7 {
		t.Fatalf("expected bounding range [0,7), got [%d,%d)", r.Start, r.End)
	}
}

func TestFilterProvenanceHasNoByteRange(t *testing.T) {
	m := New()
	fp := FilterProvenance{Filter: "citeproc", Detail: "synthesized bibliography"}
	if _, err := fp.Resolve(m); err != ErrNoByteRange {
		t.Fatalf("expected ErrNoByteRange, got %v", err)
	}
}
