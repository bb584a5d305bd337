// Package configtree represents YAML front matter (and other configuration
// layers) as a provenance-tracked value tree, independent of the document
// tree's inline model, with per-node merge and interpretation metadata.
package configtree

import (
	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// Kind enumerates the shape of a ConfigValue.
type Kind int

const (
	Scalar Kind = iota
	Map
	Array
	PandocInlines
	PandocBlocks
	Null
)

func (k Kind) String() string {
	switch k {
	case Scalar:
		return "scalar"
	case Map:
		return "map"
	case Array:
		return "array"
	case PandocInlines:
		return "pandoc_inlines"
	case PandocBlocks:
		return "pandoc_blocks"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// MergeOp governs how a node is combined with the same-keyed node from an
// earlier config layer.
type MergeOp int

const (
	// OpReplace lets the later layer's value replace the earlier one (the
	// default). When both values are maps they still merge key by key.
	OpReplace MergeOp = iota
	// OpPrefer is last-wins: the later layer's value overrides the earlier
	// one whenever it is non-null (spec glossary: "Prefer (last-wins)").
	OpPrefer
	// OpConcat appends array elements from both layers; on non-arrays it
	// behaves like OpReplace.
	OpConcat
)

// Interpretation records how a Scalar's raw value should be read downstream.
type Interpretation int

const (
	// Default applies no special interpretation.
	Default Interpretation = iota
	// Markdown means the scalar is parsed as Markdown into PandocInlines.
	Markdown
	// Path means the scalar (or array of scalars) is a filesystem path.
	Path
	// PlainString suppresses Markdown interpretation even if the surrounding
	// context would otherwise apply it.
	PlainString
	// Glob means the scalar is a glob pattern, not a literal path.
	Glob
)

// MapEntry is one key/value pair of a Map-kind ConfigValue, preserving
// source order (YAML maps are ordered; downstream consumers such as
// template variable listing rely on that order being stable).
type MapEntry struct {
	Key   string
	Value *ConfigValue
}

// ConfigValue is one node of the config tree.
type ConfigValue struct {
	Kind           Kind
	SourceInfo     sourcemap.SourceInfo
	MergeOp        MergeOp
	Interpretation Interpretation

	Raw     any            // valid when Kind == Scalar
	Entries []MapEntry     // valid when Kind == Map
	Items   []*ConfigValue // valid when Kind == Array
	Inlines []document.Inline
	Blocks  []document.Block
}

// NewScalar constructs a Scalar ConfigValue.
func NewScalar(info sourcemap.SourceInfo, raw any) *ConfigValue {
	return &ConfigValue{Kind: Scalar, SourceInfo: info, Raw: raw}
}

// NewNull constructs a Null ConfigValue.
func NewNull(info sourcemap.SourceInfo) *ConfigValue {
	return &ConfigValue{Kind: Null, SourceInfo: info}
}

// NewMap constructs a Map ConfigValue from entries, in the given order.
func NewMap(info sourcemap.SourceInfo, entries []MapEntry) *ConfigValue {
	return &ConfigValue{Kind: Map, SourceInfo: info, Entries: entries}
}

// NewArray constructs an Array ConfigValue.
func NewArray(info sourcemap.SourceInfo, items []*ConfigValue) *ConfigValue {
	return &ConfigValue{Kind: Array, SourceInfo: info, Items: items}
}

// Get looks up a key on a Map-kind value, returning nil if absent or if the
// receiver is not a Map.
func (v *ConfigValue) Get(key string) *ConfigValue {
	if v == nil || v.Kind != Map {
		return nil
	}
	for _, e := range v.Entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Set inserts or replaces key on a Map-kind value, preserving the original
// position when the key already exists.
func (v *ConfigValue) Set(key string, value *ConfigValue) {
	if v == nil || v.Kind != Map {
		return
	}
	for i, e := range v.Entries {
		if e.Key == key {
			v.Entries[i].Value = value
			return
		}
	}
	v.Entries = append(v.Entries, MapEntry{Key: key, Value: value})
}

// IsNull reports whether the value is absent or the Null kind.
func (v *ConfigValue) IsNull() bool {
	return v == nil || v.Kind == Null
}

// Clone returns a deep copy of v.
func (v *ConfigValue) Clone() *ConfigValue {
	if v == nil {
		return nil
	}
	out := &ConfigValue{
		Kind:           v.Kind,
		SourceInfo:     v.SourceInfo,
		MergeOp:        v.MergeOp,
		Interpretation: v.Interpretation,
		Raw:            v.Raw,
	}
	if v.Entries != nil {
		out.Entries = make([]MapEntry, len(v.Entries))
		for i, e := range v.Entries {
			out.Entries[i] = MapEntry{Key: e.Key, Value: e.Value.Clone()}
		}
	}
	if v.Items != nil {
		out.Items = make([]*ConfigValue, len(v.Items))
		for i, it := range v.Items {
			out.Items[i] = it.Clone()
		}
	}
	if v.Inlines != nil {
		out.Inlines = append([]document.Inline(nil), v.Inlines...)
	}
	if v.Blocks != nil {
		out.Blocks = append([]document.Block(nil), v.Blocks...)
	}
	return out
}
