package transform

import (
	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// TitleBlockTransform prepends a synthesized level-1 header carrying the
// document's `title` metadata, but only when the document has no level-1
// header of its own.
type TitleBlockTransform struct{}

func (TitleBlockTransform) Name() string { return "title-block" }

func (t *TitleBlockTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	if hasLevelOneHeader(blocks) {
		return blocks, nil
	}
	if ctx == nil || ctx.Meta == nil || ctx.Meta.Kind != configtree.Map {
		return blocks, nil
	}
	title := ctx.Meta.Get("title")
	if title == nil || title.Kind != configtree.Scalar {
		return blocks, nil
	}
	text, ok := title.Raw.(string)
	if !ok || text == "" {
		return blocks, nil
	}
	heading := document.NewHeader(title.SourceInfo, 1, document.NewAttr(), []document.Inline{
		document.NewStr(title.SourceInfo, text),
	})
	return append([]document.Block{heading}, blocks...), nil
}

func hasLevelOneHeader(blocks []document.Block) bool {
	for _, b := range blocks {
		if h, ok := b.(*document.Header); ok && h.Level == 1 {
			return true
		}
	}
	return false
}
