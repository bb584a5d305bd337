// Package render wires the staged render pipeline (internal/pipeline)
// behind a command.Commander, so the render operation can be invoked from
// a CLI entry point, the sync hub, or a future batch job identically.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/qmd-toolchain/qmdcore/internal/commands"
	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/parser"
	"github.com/qmd-toolchain/qmdcore/internal/pipeline"
	"github.com/qmd-toolchain/qmdcore/internal/render"
	"github.com/qmd-toolchain/qmdcore/internal/sandbox"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
	"github.com/qmd-toolchain/qmdcore/internal/transform"
	"github.com/qmd-toolchain/qmdcore/pkg/interfaces"
)

// Command renders a single QMD source file to HTML.
type Command struct {
	SourcePath    string
	OutputPath    string
	ProjectConfig string // path to _quarto.yml; empty skips project-level config
	DryRun        bool   // when true, render but do not write OutputPath

	// Filters are applied, in order, after the standard AST transforms: the
	// literal "citeproc", a *.lua path, or an external JSON-filter command
	// line, per internal/filterspec.
	Filters []string
	// Sandbox gates Lua/JSON filter process execution (sandbox.KindRun). Nil
	// denies every external filter.
	Sandbox *sandbox.Policy

	// ThemeDir, when set, names a directory holding a go-theme manifest to
	// resolve the document's stylesheet from; empty uses the built-in
	// default stylesheet instead. ThemeVariant selects a manifest variant
	// (e.g. "dark"), falling back to the manifest's default variant.
	ThemeDir     string
	ThemeVariant string
}

// Type implements command.Message.
func (Command) Type() string { return "qmd.render" }

// Validate implements command.Message.
func (c Command) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SourcePath, validation.Required),
		validation.Field(&c.OutputPath, validation.By(func(value any) error {
			if !c.DryRun && strings.TrimSpace(value.(string)) == "" {
				return validation.NewError("qmd.render.output_required", "output path is required unless dry-run")
			}
			return nil
		})),
	)
}

// Result is returned out-of-band via the Handler constructor's closure
// since command.Commander.Execute returns only an error; callers that need
// the rendered bytes and diagnostics should use NewHandler's resultSink.
type Result struct {
	Rendered    []byte
	Diagnostics []diagnostic.Message
}

// NewHandler builds a command.Commander[Command] that runs the staged
// pipeline against the command's source file and writes HTML to its output
// path. If sink is non-nil, it receives the Result of each successful run
// before Execute returns.
func NewHandler(provider interfaces.LoggerProvider, sink func(Command, Result)) command.Commander[Command] {
	logger := commands.CommandLogger(provider, "render")
	fn := func(ctx context.Context, cmd Command) error {
		result, err := run(ctx, provider, cmd)
		if err != nil {
			return err
		}
		if sink != nil {
			sink(cmd, result)
		}
		return nil
	}
	return commands.NewHandler[Command](
		fn,
		commands.WithLogger[Command](logger),
		commands.WithOperation[Command]("render.document"),
		commands.WithMessageFields[Command](func(cmd Command) map[string]any {
			return map[string]any{
				"source": cmd.SourcePath,
				"output": cmd.OutputPath,
				"dry_run": cmd.DryRun,
			}
		}),
	)
}

func run(ctx context.Context, provider interfaces.LoggerProvider, cmd Command) (Result, error) {
	sm := sourcemap.New()
	collector := diagnostic.NewCollector()

	formatConfig, err := loadProjectConfig(sm, collector, cmd.ProjectConfig)
	if err != nil {
		return Result{}, fmt.Errorf("render: load project config: %w", err)
	}

	var documentMeta *configtree.ConfigValue
	adapter := parser.NewAdapter(sm, provider)

	transforms := transform.StandardPipeline()
	if len(cmd.Filters) > 0 {
		transforms = transform.NewPipeline(append(transforms.Steps(), &transform.FilterDispatchTransform{
			Refs:   cmd.Filters,
			Policy: cmd.Sandbox,
			Ctx:    ctx,
		})...)
	}

	applyTemplate := &pipeline.ApplyTemplateStage{
		ThemeDir:     cmd.ThemeDir,
		ThemeVariant: cmd.ThemeVariant,
	}
	if cmd.ThemeDir != "" {
		applyTemplate.Theme = render.NewThemeResolver("", cmd.ThemeVariant, nil)
	}

	stages, err := pipeline.New(
		&pipeline.LoadSourceStage{SourceMap: sm},
		&pipeline.ExtractFrontMatterStage{SourceMap: sm, DocumentMeta: &documentMeta},
		&pipeline.ParseDocumentStage{SourceMap: sm, Adapter: adapter},
		&pipeline.AstTransformsStage{
			Transforms:   transforms,
			FormatConfig: formatConfig,
			DocumentMeta: &documentMeta,
		},
		applyTemplate,
	)
	if err != nil {
		return Result{}, fmt.Errorf("render: build pipeline: %w", err)
	}

	rc := &pipeline.RenderContext{
		Artifacts:   transform.NewArtifactStore(),
		Diagnostics: collector,
	}

	out, err := stages.Run(ctx, pipeline.Data{Kind: pipeline.LoadedSource, SourcePath: cmd.SourcePath}, rc, nil)
	if err != nil {
		return Result{}, fmt.Errorf("render: %w", err)
	}

	result := Result{Rendered: out.Rendered, Diagnostics: collector.IntoDiagnostics(sm)}

	if cmd.DryRun {
		return result, nil
	}

	if err := os.MkdirAll(filepath.Dir(cmd.OutputPath), 0o755); err != nil {
		return result, fmt.Errorf("render: create output dir: %w", err)
	}
	if err := os.WriteFile(cmd.OutputPath, out.Rendered, 0o644); err != nil {
		return result, fmt.Errorf("render: write output: %w", err)
	}
	return result, nil
}

func loadProjectConfig(sm *sourcemap.Map, collector *diagnostic.Collector, path string) (*configtree.ConfigValue, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	id := sm.AddDiskBacked(path)
	return configtree.FromYAML(raw, id, collector)
}
