package diagnostic

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// ErrorRegion is one concrete-tree ERROR node's byte range, as reported by
// the parser adapter prior to translation into the document tree.
type ErrorRegion struct {
	Start int
	End   int
}

func (r ErrorRegion) contains(other ErrorRegion) bool {
	return r.Start <= other.Start && other.End <= r.End && r != other
}

func (r ErrorRegion) overlaps(start, end int) bool {
	return start < r.End && end > r.Start
}

// OuterRegions returns the subset of regions not contained in any other
// region, per spec.md §4.2's pruning policy step 2.
func OuterRegions(regions []ErrorRegion) []ErrorRegion {
	var outer []ErrorRegion
	for _, candidate := range regions {
		contained := false
		for _, other := range regions {
			if other.contains(candidate) {
				contained = true
				break
			}
		}
		if !contained {
			outer = append(outer, candidate)
		}
	}
	return outer
}

// Prune collapses messages to at most one diagnostic per outer ERROR
// region: for each outer region, keep the first (in input order) diagnostic
// whose resolved location overlaps it; diagnostics with no overlap against
// any outer region are dropped entirely.
func Prune(messages []Message, regions []ErrorRegion, sm *sourcemap.Map) []Message {
	outer := OuterRegions(regions)
	kept := make([]bool, len(outer))
	var result []Message

	for _, m := range messages {
		if m.Location == nil {
			continue
		}
		r, err := m.Location.Resolve(sm)
		if err != nil {
			continue
		}
		for i, region := range outer {
			if kept[i] {
				continue
			}
			if region.overlaps(r.Start, r.End) {
				kept[i] = true
				result = append(result, m)
				break
			}
		}
	}
	return result
}
