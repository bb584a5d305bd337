package configtree

import (
	"fmt"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
)

// MergedConfig holds an ordered list of config layers (e.g. a project-level
// _quarto.yml followed by a document's own front matter) and materializes
// them into a single ConfigValue tree.
type MergedConfig struct {
	Layers []*ConfigValue
}

// NewMergedConfig returns a MergedConfig over layers in increasing
// precedence order (later layers override earlier ones).
func NewMergedConfig(layers ...*ConfigValue) *MergedConfig {
	return &MergedConfig{Layers: layers}
}

// Materialize walks every layer left to right and produces a single
// ConfigValue, applying each node's merge policy: later layers override
// earlier ones, except a node tagged merge_op=Concat whose value on both
// sides is an Array, in which case the arrays concatenate (earlier first).
// A node tagged merge_op=Prefer is last-wins, same as the default: it
// overrides the earlier layer's value whenever the later layer's value is
// non-null. The one difference from Replace is a null later value: Prefer
// keeps the earlier value, Replace takes the null.
func (mc *MergedConfig) Materialize() (*ConfigValue, []diagnostic.Message) {
	var collector []diagnostic.Message
	var result *ConfigValue
	for _, layer := range mc.Layers {
		if layer == nil {
			continue
		}
		if result == nil {
			result = layer.Clone()
			continue
		}
		result = mergeValue(result, layer, &collector)
	}
	if result == nil {
		result = NewNull(nil)
	}
	return result, collector
}

// mergeValue combines base (earlier layers) with overlay (later layer)
// according to overlay's merge_op, since the tag controlling merge behavior
// for a key lives on the value that introduces the override.
func mergeValue(base, overlay *ConfigValue, diags *[]diagnostic.Message) *ConfigValue {
	if overlay == nil {
		return base
	}
	if base == nil {
		return overlay.Clone()
	}

	if overlay.MergeOp == OpPrefer {
		if !overlay.IsNull() {
			return overlay.Clone()
		}
		return base
	}

	if overlay.MergeOp == OpConcat && base.Kind == Array && overlay.Kind == Array {
		merged := NewArray(overlay.SourceInfo, nil)
		merged.Items = append(merged.Items, cloneAll(base.Items)...)
		merged.Items = append(merged.Items, cloneAll(overlay.Items)...)
		merged.Interpretation = overlay.Interpretation
		return merged
	}

	if base.Kind == Map && overlay.Kind == Map {
		return mergeMaps(base, overlay, diags)
	}

	// Default: overlay replaces base. Conflicting tag intents are not
	// detected here: by merge time the tags have already resolved to MergeOp
	// values. FromYAML does not detect them either, so no Q-1-28 diagnostic
	// (see ConflictDiagnostic) is emitted on this path.
	return overlay.Clone()
}

func mergeMaps(base, overlay *ConfigValue, diags *[]diagnostic.Message) *ConfigValue {
	result := NewMap(overlay.SourceInfo, nil)
	order := make([]string, 0, len(base.Entries)+len(overlay.Entries))
	seen := map[string]bool{}

	for _, e := range base.Entries {
		order = append(order, e.Key)
		seen[e.Key] = true
	}
	for _, e := range overlay.Entries {
		if !seen[e.Key] {
			order = append(order, e.Key)
			seen[e.Key] = true
		}
	}

	for _, key := range order {
		baseVal := base.Get(key)
		overlayVal := overlay.Get(key)
		switch {
		case overlayVal == nil:
			result.Set(key, baseVal.Clone())
		case baseVal == nil:
			result.Set(key, overlayVal.Clone())
		default:
			result.Set(key, mergeValue(baseVal, overlayVal, diags))
		}
	}
	return result
}

func cloneAll(items []*ConfigValue) []*ConfigValue {
	out := make([]*ConfigValue, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// ConflictDiagnostic builds the Q-1-28 diagnostic for a node whose tags
// declare mutually exclusive merge intents (e.g. both !prefer and !replace
// applied through layered combination).
func ConflictDiagnostic(key string) diagnostic.Message {
	return diagnostic.Message{
		Kind:  diagnostic.Error,
		Code:  "Q-1-28",
		Title: "conflicting merge tags",
		Text:  fmt.Sprintf("key %q combines mutually exclusive merge tags across layers", key),
	}
}
