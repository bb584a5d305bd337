// Package pipeline implements the staged, cancellable, observable render
// pipeline: a typed sequence of Stages, each declaring the PipelineDataKind
// it consumes and produces, wired together and driven by Pipeline.Run.
package pipeline

import (
	"context"
	"fmt"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/transform"
)

// DataKind is the closed enum of data shapes flowing between stages.
type DataKind int

const (
	LoadedSource DataKind = iota
	DocumentSource
	DocumentAst
	RenderedOutput
)

func (k DataKind) String() string {
	switch k {
	case LoadedSource:
		return "loaded_source"
	case DocumentSource:
		return "document_source"
	case DocumentAst:
		return "document_ast"
	case RenderedOutput:
		return "rendered_output"
	default:
		return "unknown"
	}
}

// Data is the value threaded between stages. Exactly one field is valid,
// selected by Kind; stages type-assert on the kind they declared as input.
type Data struct {
	Kind DataKind

	SourceBytes []byte
	SourcePath  string

	Blocks []document.Block

	Rendered []byte
}

// RenderContext is the mutable state threaded through a single pipeline
// run: the artifact store, diagnostics collected along the way, and the
// document metadata transforms read and write.
type RenderContext struct {
	Artifacts   *transform.ArtifactStore
	Diagnostics *diagnostic.Collector
	Meta        *transform.RenderContext
}

// Stage is one step of the staged pipeline.
type Stage interface {
	Name() string
	InputKind() DataKind
	OutputKind() DataKind
	Run(ctx context.Context, in Data, rc *RenderContext) (Data, error)
}

// Observer receives pipeline lifecycle notifications. Every method is
// optional to implement meaningfully; NoOpObserver provides a default.
type Observer interface {
	OnPipelineStart(total int)
	OnStageStart(name string, index int)
	OnStageComplete(name string, index int)
	OnStageError(name string, index int, err error)
	OnPipelineError(err error)
	OnPipelineComplete()
}

// NoOpObserver implements Observer with no behavior.
type NoOpObserver struct{}

func (NoOpObserver) OnPipelineStart(int)              {}
func (NoOpObserver) OnStageStart(string, int)         {}
func (NoOpObserver) OnStageComplete(string, int)      {}
func (NoOpObserver) OnStageError(string, int, error)  {}
func (NoOpObserver) OnPipelineError(error)            {}
func (NoOpObserver) OnPipelineComplete()              {}

// ErrEmptyPipeline is returned by New when given zero stages.
var ErrEmptyPipeline = fmt.Errorf("pipeline: cannot construct an empty pipeline")

// TypeMismatchError reports adjacent stages whose output/input kinds disagree.
type TypeMismatchError struct {
	StageIndex int
	FromStage  string
	FromKind   DataKind
	ToStage    string
	ToKind     DataKind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("pipeline: stage %d: %s outputs %s but %s expects %s",
		e.StageIndex, e.FromStage, e.FromKind, e.ToStage, e.ToKind)
}

// ErrCancelled is returned when the context is cancelled before a stage runs.
var ErrCancelled = fmt.Errorf("pipeline: cancelled")

// Pipeline is a validated, ordered sequence of Stages.
type Pipeline struct {
	stages []Stage
}

// New validates stage adjacency and returns a runnable Pipeline. An empty
// stage list or any output_kind(i) != input_kind(i+1) mismatch is an error.
func New(stages ...Stage) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, ErrEmptyPipeline
	}
	for i := 0; i+1 < len(stages); i++ {
		if stages[i].OutputKind() != stages[i+1].InputKind() {
			return nil, &TypeMismatchError{
				StageIndex: i,
				FromStage:  stages[i].Name(),
				FromKind:   stages[i].OutputKind(),
				ToStage:    stages[i+1].Name(),
				ToKind:     stages[i+1].InputKind(),
			}
		}
	}
	return &Pipeline{stages: stages}, nil
}

// ExpectedInput returns the DataKind the first stage requires.
func (p *Pipeline) ExpectedInput() DataKind { return p.stages[0].InputKind() }

// ExpectedOutput returns the DataKind the last stage produces.
func (p *Pipeline) ExpectedOutput() DataKind { return p.stages[len(p.stages)-1].OutputKind() }

// Len returns the number of stages.
func (p *Pipeline) Len() int { return len(p.stages) }

// StageNames returns stage names in execution order.
func (p *Pipeline) StageNames() []string {
	out := make([]string, len(p.stages))
	for i, s := range p.stages {
		out[i] = s.Name()
	}
	return out
}

// Run drives every stage in order, single-threaded-cooperatively from the
// caller's perspective: each stage is awaited in turn, though a stage may
// internally fan work out to goroutines before returning. The cancellation
// token (ctx) is polled before each stage; an in-flight stage is not
// pre-empted.
func (p *Pipeline) Run(ctx context.Context, in Data, rc *RenderContext, obs Observer) (Data, error) {
	if obs == nil {
		obs = NoOpObserver{}
	}
	obs.OnPipelineStart(len(p.stages))

	current := in
	for i, stage := range p.stages {
		select {
		case <-ctx.Done():
			err := fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
			obs.OnPipelineError(err)
			return current, err
		default:
		}

		obs.OnStageStart(stage.Name(), i)
		out, err := stage.Run(ctx, current, rc)
		if err != nil {
			obs.OnStageError(stage.Name(), i, err)
			wrapped := fmt.Errorf("stage %s: %w", stage.Name(), err)
			obs.OnPipelineError(wrapped)
			return current, wrapped
		}
		obs.OnStageComplete(stage.Name(), i)
		current = out
	}

	obs.OnPipelineComplete()
	return current, nil
}
