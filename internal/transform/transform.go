// Package transform implements the ordered, non-cancellable AST transform
// pipeline that runs after parsing and before the staged render pipeline
// resumes: callout lowering, metadata normalization, title-block synthesis,
// and resource collection.
package transform

import (
	"fmt"

	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// RenderContext is the subset of the render pipeline's shared state a
// transform can read or mutate: the document metadata and the artifact
// store transforms use to hand off non-AST outputs to later stages.
type RenderContext struct {
	Meta      *configtree.ConfigValue
	Artifacts *ArtifactStore
}

// AstTransform is one step of the transform pipeline.
type AstTransform interface {
	Name() string
	Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error)
}

// Pipeline runs a fixed, ordered list of AstTransform instances. Execution
// is strictly sequential; the first error aborts the remaining transforms.
type Pipeline struct {
	transforms []AstTransform
}

// NewPipeline returns a Pipeline running transforms in the given order.
func NewPipeline(transforms ...AstTransform) *Pipeline {
	return &Pipeline{transforms: transforms}
}

// StandardPipeline returns the five transforms spec.md §4.4 mandates, in
// their required order.
func StandardPipeline() *Pipeline {
	return NewPipeline(
		&CalloutTransform{},
		&CalloutResolveTransform{},
		&MetadataNormalizeTransform{},
		&TitleBlockTransform{},
		&ResourceCollectorTransform{},
	)
}

// Steps returns the pipeline's transforms in order, so a caller can build a
// new Pipeline that extends this one (e.g. appending a filter chain after
// the standard transforms).
func (p *Pipeline) Steps() []AstTransform {
	return append([]AstTransform(nil), p.transforms...)
}

// Names returns the ordered transform names, for observability.
func (p *Pipeline) Names() []string {
	out := make([]string, len(p.transforms))
	for i, t := range p.transforms {
		out[i] = t.Name()
	}
	return out
}

// Run executes every transform in order against blocks, stopping at the
// first error.
func (p *Pipeline) Run(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	current := blocks
	for _, t := range p.transforms {
		next, err := t.Transform(current, ctx)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", t.Name(), err)
		}
		current = next
	}
	return current, nil
}
