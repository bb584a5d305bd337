package transform

import (
	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// MetadataNormalizeTransform derives computed metadata fields from
// user-supplied ones, e.g. `pagetitle` from `title` when the author did not
// set `pagetitle` explicitly. It does not touch the block tree.
type MetadataNormalizeTransform struct{}

func (MetadataNormalizeTransform) Name() string { return "metadata-normalize" }

func (t *MetadataNormalizeTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	if ctx == nil || ctx.Meta == nil || ctx.Meta.Kind != configtree.Map {
		return blocks, nil
	}
	title := ctx.Meta.Get("title")
	if title == nil || title.Kind != configtree.Scalar {
		return blocks, nil
	}
	if ctx.Meta.Get("pagetitle") == nil {
		pagetitle := configtree.NewScalar(title.SourceInfo, title.Raw)
		ctx.Meta.Set("pagetitle", pagetitle)
	}
	return blocks, nil
}
