package configtree

import "testing"

func TestMaterializeLaterLayerReplacesEarlier(t *testing.T) {
	base := NewMap(nil, []MapEntry{{Key: "title", Value: NewScalar(nil, "Draft")}})
	overlay := NewMap(nil, []MapEntry{{Key: "title", Value: NewScalar(nil, "Final")}})

	mc := NewMergedConfig(base, overlay)
	result, diags := mc.Materialize()
	if len(diags) != 0 {
		t.Fatalf("expected no diagnostics, got %v", diags)
	}
	if got := result.Get("title").Raw; got != "Final" {
		t.Fatalf("expected title Final, got %v", got)
	}
}

func TestMaterializePreferOverridesEarlierValue(t *testing.T) {
	base := NewMap(nil, []MapEntry{{Key: "title", Value: NewScalar(nil, "Draft")}})
	preferVal := NewScalar(nil, "Final")
	preferVal.MergeOp = OpPrefer
	overlay := NewMap(nil, []MapEntry{{Key: "title", Value: preferVal}})

	mc := NewMergedConfig(base, overlay)
	result, _ := mc.Materialize()
	if got := result.Get("title").Raw; got != "Final" {
		t.Fatalf("expected prefer to be last-wins like Replace, got %v", got)
	}
}

func TestMaterializePreferFallsBackWhenOverlayNull(t *testing.T) {
	base := NewMap(nil, []MapEntry{{Key: "title", Value: NewScalar(nil, "Draft")}})
	preferVal := NewNull(nil)
	preferVal.MergeOp = OpPrefer
	overlay := NewMap(nil, []MapEntry{{Key: "title", Value: preferVal}})

	mc := NewMergedConfig(base, overlay)
	result, _ := mc.Materialize()
	if got := result.Get("title").Raw; got != "Draft" {
		t.Fatalf("expected prefer to fall back to earlier value when overlay is null, got %v", got)
	}
}

func TestMaterializeConcatAppendsArrays(t *testing.T) {
	base := NewMap(nil, []MapEntry{{Key: "tags", Value: NewArray(nil, []*ConfigValue{NewScalar(nil, "a")})}})
	concatVal := NewArray(nil, []*ConfigValue{NewScalar(nil, "b")})
	concatVal.MergeOp = OpConcat
	overlay := NewMap(nil, []MapEntry{{Key: "tags", Value: concatVal}})

	mc := NewMergedConfig(base, overlay)
	result, _ := mc.Materialize()
	tags := result.Get("tags")
	if len(tags.Items) != 2 {
		t.Fatalf("expected 2 concatenated items, got %d", len(tags.Items))
	}
	if tags.Items[0].Raw != "a" || tags.Items[1].Raw != "b" {
		t.Fatalf("expected [a,b] order, got %v, %v", tags.Items[0].Raw, tags.Items[1].Raw)
	}
}

func TestMaterializeMergesMapsRecursively(t *testing.T) {
	base := NewMap(nil, []MapEntry{
		{Key: "author", Value: NewMap(nil, []MapEntry{{Key: "name", Value: NewScalar(nil, "Ada")}})},
	})
	overlay := NewMap(nil, []MapEntry{
		{Key: "author", Value: NewMap(nil, []MapEntry{{Key: "email", Value: NewScalar(nil, "ada@example.com")}})},
	})

	mc := NewMergedConfig(base, overlay)
	result, _ := mc.Materialize()
	author := result.Get("author")
	if author.Get("name").Raw != "Ada" || author.Get("email").Raw != "ada@example.com" {
		t.Fatalf("expected merged author map, got %+v", author)
	}
}
