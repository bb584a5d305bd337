package configtree

import "strings"

// tagRule is the (MergeOp, Interpretation) a YAML tag maps onto.
type tagRule struct {
	mergeOp        MergeOp
	interpretation Interpretation
}

// tagTable maps a YAML scalar/sequence tag (e.g. "!prefer", "!md") to its
// merge and interpretation behavior. Combined tags like "!prefer_md" and
// "!concat_path" set both axes at once.
var tagTable = map[string]tagRule{
	"!prefer":      {mergeOp: OpPrefer},
	"!replace":     {mergeOp: OpReplace},
	"!concat":      {mergeOp: OpConcat},
	"!md":          {interpretation: Markdown},
	"!path":        {interpretation: Path},
	"!str":         {interpretation: PlainString},
	"!glob":        {interpretation: Glob},
	"!prefer_md":   {mergeOp: OpPrefer, interpretation: Markdown},
	"!concat_path": {mergeOp: OpConcat, interpretation: Path},
}

// ResolveTag looks up a YAML tag string, returning the matching MergeOp and
// Interpretation and whether the tag was recognized. Unrecognized
// non-builtin tags (i.e. starting with "!", excluding YAML's own "!!" core
// schema tags) are reported by the caller as a Q-1-21 diagnostic; the
// returned rule in that case is the zero rule (OpReplace/Default).
func ResolveTag(tag string) (MergeOp, Interpretation, bool) {
	if tag == "" || strings.HasPrefix(tag, "!!") {
		return OpReplace, Default, true
	}
	rule, ok := tagTable[tag]
	if !ok {
		return OpReplace, Default, false
	}
	return rule.mergeOp, rule.interpretation, true
}

// IsCombinedTag reports whether tag sets both a non-default MergeOp and a
// non-default Interpretation, the case spec.md calls out for potential
// Q-1-28 conflicts when combined with an explicit conflicting sibling tag.
func IsCombinedTag(tag string) bool {
	rule, ok := tagTable[tag]
	return ok && rule.mergeOp != OpReplace && rule.interpretation != Default
}
