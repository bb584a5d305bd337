package pipeline

import (
	"context"
	"errors"
	"testing"
)

type fakeStage struct {
	name   string
	in     DataKind
	out    DataKind
	err    error
	called int
}

func (s *fakeStage) Name() string        { return s.name }
func (s *fakeStage) InputKind() DataKind { return s.in }
func (s *fakeStage) OutputKind() DataKind { return s.out }

func (s *fakeStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	s.called++
	if s.err != nil {
		return in, s.err
	}
	return Data{Kind: s.out}, nil
}

func TestNewRejectsEmptyPipeline(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrEmptyPipeline) {
		t.Fatalf("expected ErrEmptyPipeline, got %v", err)
	}
}

func TestNewRejectsTypeMismatch(t *testing.T) {
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource}
	b := &fakeStage{name: "b", in: DocumentAst, out: RenderedOutput}
	_, err := New(a, b)
	var mismatch *TypeMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TypeMismatchError, got %v", err)
	}
	if mismatch.StageIndex != 0 || mismatch.FromStage != "a" || mismatch.ToStage != "b" {
		t.Fatalf("unexpected mismatch details: %+v", mismatch)
	}
}

func TestRunExecutesStagesInOrder(t *testing.T) {
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource}
	b := &fakeStage{name: "b", in: DocumentSource, out: DocumentAst}
	p, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	out, err := p.Run(context.Background(), Data{Kind: LoadedSource}, &RenderContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != DocumentAst {
		t.Fatalf("expected final kind %v, got %v", DocumentAst, out.Kind)
	}
	if a.called != 1 || b.called != 1 {
		t.Fatalf("expected each stage to run once, got a=%d b=%d", a.called, b.called)
	}
}

func TestRunStopsOnStageError(t *testing.T) {
	failure := errors.New("boom")
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource, err: failure}
	b := &fakeStage{name: "b", in: DocumentSource, out: DocumentAst}
	p, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Run(context.Background(), Data{Kind: LoadedSource}, &RenderContext{}, nil)
	if err == nil {
		t.Fatalf("expected error from failing stage")
	}
	if b.called != 0 {
		t.Fatalf("expected stage b to be skipped after stage a failure")
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource}
	b := &fakeStage{name: "b", in: DocumentSource, out: DocumentAst}
	p, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, Data{Kind: LoadedSource}, &RenderContext{}, nil)
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if a.called != 0 {
		t.Fatalf("expected no stages to run once cancelled before the first stage")
	}
}

type recordingObserver struct {
	events []string
}

func (o *recordingObserver) OnPipelineStart(total int) {
	o.events = append(o.events, "start")
}
func (o *recordingObserver) OnStageStart(name string, index int) {
	o.events = append(o.events, "stage-start:"+name)
}
func (o *recordingObserver) OnStageComplete(name string, index int) {
	o.events = append(o.events, "stage-complete:"+name)
}
func (o *recordingObserver) OnStageError(name string, index int, err error) {
	o.events = append(o.events, "stage-error:"+name)
}
func (o *recordingObserver) OnPipelineError(err error) {
	o.events = append(o.events, "pipeline-error")
}
func (o *recordingObserver) OnPipelineComplete() {
	o.events = append(o.events, "complete")
}

func TestRunNotifiesObserverInOrder(t *testing.T) {
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource}
	p, err := New(a)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	obs := &recordingObserver{}
	if _, err := p.Run(context.Background(), Data{Kind: LoadedSource}, &RenderContext{}, obs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []string{"start", "stage-start:a", "stage-complete:a", "complete"}
	if len(obs.events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, obs.events)
	}
	for i := range want {
		if obs.events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, obs.events)
		}
	}
}

func TestExpectedInputOutputAndStageNames(t *testing.T) {
	a := &fakeStage{name: "a", in: LoadedSource, out: DocumentSource}
	b := &fakeStage{name: "b", in: DocumentSource, out: DocumentAst}
	p, err := New(a, b)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.ExpectedInput() != LoadedSource {
		t.Fatalf("unexpected ExpectedInput: %v", p.ExpectedInput())
	}
	if p.ExpectedOutput() != DocumentAst {
		t.Fatalf("unexpected ExpectedOutput: %v", p.ExpectedOutput())
	}
	if p.Len() != 2 {
		t.Fatalf("unexpected Len: %d", p.Len())
	}
	names := p.StageNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected StageNames: %v", names)
	}
}
