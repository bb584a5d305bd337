package configtree

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// FromYAML parses raw YAML bytes sourced from file id (the whole region
// [0, len(raw)) within that file) into a ConfigValue tree, reporting
// unknown-tag (Q-1-21) diagnostics into collector. Conflicting tags are not
// detected.
func FromYAML(raw []byte, file sourcemap.FileId, collector *diagnostic.Collector) (*ConfigValue, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("configtree: parse yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return NewNull(sourcemap.Original{File: file, Start: 0, End: len(raw)}), nil
	}
	return nodeToValue(root.Content[0], file, collector), nil
}

func nodeInfo(n *yaml.Node, file sourcemap.FileId) sourcemap.SourceInfo {
	// yaml.v3 exposes 1-based line/column but not byte offsets, so provenance
	// here degrades to a best-effort zero-width marker at offset 0; callers
	// needing a real byte range resolve it from the original source slice
	// during the parser's raw-block extraction pass instead.
	return sourcemap.Original{File: file, Start: 0, End: 0}
}

func nodeToValue(n *yaml.Node, file sourcemap.FileId, collector *diagnostic.Collector) *ConfigValue {
	info := nodeInfo(n, file)
	mergeOp, interp := resolveNodeTag(n, file, collector)

	var v *ConfigValue
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" && n.Tag == "" {
			v = NewNull(info)
		} else {
			v = NewScalar(info, scalarRaw(n))
		}
	case yaml.MappingNode:
		entries := make([]MapEntry, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			entries = append(entries, MapEntry{Key: key, Value: nodeToValue(n.Content[i+1], file, collector)})
		}
		v = NewMap(info, entries)
	case yaml.SequenceNode:
		items := make([]*ConfigValue, 0, len(n.Content))
		for _, child := range n.Content {
			items = append(items, nodeToValue(child, file, collector))
		}
		v = NewArray(info, items)
	case yaml.AliasNode:
		v = nodeToValue(n.Alias, file, collector)
	default:
		v = NewNull(info)
	}

	v.MergeOp = mergeOp
	v.Interpretation = interp
	return v
}

func scalarRaw(n *yaml.Node) any {
	var out any
	if err := n.Decode(&out); err != nil {
		return n.Value
	}
	return out
}

func resolveNodeTag(n *yaml.Node, file sourcemap.FileId, collector *diagnostic.Collector) (MergeOp, Interpretation) {
	if n.Tag == "" {
		return OpReplace, Default
	}
	mergeOp, interp, ok := ResolveTag(n.Tag)
	if !ok && collector != nil {
		collector.Pushf(diagnostic.Warning, "Q-1-21", "unknown config tag",
			fmt.Sprintf("tag %q is not recognized; value materializes without special merge behavior", n.Tag),
			nodeInfo(n, file))
	}
	return mergeOp, interp
}
