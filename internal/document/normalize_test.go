package document

import (
	"testing"

	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

func fakeInfo() sourcemap.SourceInfo {
	return sourcemap.FilterProvenance{Filter: "test", Detail: "synthetic"}
}

func TestNormalizeInlinesFlattensEmptySpan(t *testing.T) {
	str := NewStr(fakeInfo(), "hi")
	span := NewSpan(fakeInfo(), Attr{KeyValue: nil}, []Inline{str})

	out := NormalizeInlines([]Inline{span})

	if len(out) != 1 {
		t.Fatalf("expected empty-attr span to flatten to 1 node, got %d", len(out))
	}
	if out[0] != Inline(str) {
		t.Fatalf("expected flattened content to be the original Str node")
	}
}

func TestNormalizeInlinesKeepsNonEmptySpan(t *testing.T) {
	str := NewStr(fakeInfo(), "hi")
	attr := NewAttr()
	attr.Class = []string{"highlight"}
	span := NewSpan(fakeInfo(), attr, []Inline{str})

	out := NormalizeInlines([]Inline{span})

	if len(out) != 1 {
		t.Fatalf("expected span to survive, got %d nodes", len(out))
	}
	if _, ok := out[0].(*Span); !ok {
		t.Fatalf("expected a *Span, got %T", out[0])
	}
}

func TestCollapseFigureImage(t *testing.T) {
	img := &Image{inlineBase: newInline(fakeInfo()), Target: "a.png"}
	para := NewParagraph(fakeInfo(), []Inline{img})
	fig := &Figure{blockBase: newBlockBase(fakeInfo()), Content: []Block{para}}

	result := NormalizeBlock(fig)

	if result != Block(para) {
		t.Fatalf("expected figure to collapse to its sole paragraph, got %T", result)
	}
}

func TestCollapseFigureImageDoesNotApplyWithCaption(t *testing.T) {
	img := &Image{inlineBase: newInline(fakeInfo()), Target: "a.png"}
	para := NewParagraph(fakeInfo(), []Inline{img})
	caption := NewParagraph(fakeInfo(), []Inline{NewStr(fakeInfo(), "caption")})
	fig := &Figure{
		blockBase: newBlockBase(fakeInfo()),
		Caption:   []Block{caption},
		Content:   []Block{para},
	}

	result := NormalizeBlock(fig)

	if _, ok := result.(*Figure); !ok {
		t.Fatalf("expected figure with caption to remain a *Figure, got %T", result)
	}
}

func TestClampHeaderLevel(t *testing.T) {
	cases := map[int]int{-1: 1, 0: 1, 1: 1, 3: 3, 6: 6, 7: 6, 99: 6}
	for in, want := range cases {
		if got := ClampHeaderLevel(in); got != want {
			t.Fatalf("ClampHeaderLevel(%d) = %d, want %d", in, got, want)
		}
	}
}
