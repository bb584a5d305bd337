package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/parser"
	"github.com/qmd-toolchain/qmdcore/internal/render"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
	"github.com/qmd-toolchain/qmdcore/internal/transform"
	"github.com/qmd-toolchain/qmdcore/internal/util"
)

// defaultStylesheetPath is the well-known virtual artifact path downstream
// consumers (e.g. a WASM host) resolve the default CSS from.
const defaultStylesheetPath = "/.quarto/project-artifacts/styles.css"

// defaultStylesheet is a minimal placeholder stylesheet; real projects
// override it via project-level format_config.
const defaultStylesheet = "body { font-family: sans-serif; }\n"

// LoadSourceStage reads bytes for a path from disk into the source map.
type LoadSourceStage struct {
	SourceMap *sourcemap.Map
}

func (LoadSourceStage) Name() string          { return "load-source" }
func (LoadSourceStage) InputKind() DataKind    { return LoadedSource }
func (LoadSourceStage) OutputKind() DataKind   { return DocumentSource }

func (s *LoadSourceStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	content, err := os.ReadFile(in.SourcePath)
	if err != nil {
		return in, fmt.Errorf("load source %s: %w", in.SourcePath, err)
	}
	return Data{Kind: DocumentSource, SourceBytes: content, SourcePath: in.SourcePath}, nil
}

// ExtractFrontMatterStage splits a loaded document's YAML front matter from
// its body, storing the parsed front matter through DocumentMeta (a holder
// shared with AstTransformsStage, which merges it against project-level
// format_config) and rewriting the data to the stripped body so downstream
// parsing sees only markdown content.
type ExtractFrontMatterStage struct {
	SourceMap    *sourcemap.Map
	DocumentMeta **configtree.ConfigValue
}

func (ExtractFrontMatterStage) Name() string        { return "extract-front-matter" }
func (ExtractFrontMatterStage) InputKind() DataKind  { return DocumentSource }
func (ExtractFrontMatterStage) OutputKind() DataKind { return DocumentSource }

func (s *ExtractFrontMatterStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	id := s.SourceMap.AddEphemeral(in.SourcePath+"#frontmatter", in.SourceBytes)
	var collector *diagnostic.Collector
	if rc != nil {
		collector = rc.Diagnostics
	}
	meta, body, err := configtree.SplitFrontMatter(in.SourceBytes, id, collector)
	if err != nil {
		return in, fmt.Errorf("extract front matter %s: %w", in.SourcePath, err)
	}
	if s.DocumentMeta != nil {
		*s.DocumentMeta = meta
	}
	return Data{Kind: DocumentSource, SourceBytes: body, SourcePath: in.SourcePath}, nil
}

// ParseDocumentStage invokes the parser adapter and pushes any parse-time
// warnings into the shared diagnostic collector.
type ParseDocumentStage struct {
	SourceMap *sourcemap.Map
	Adapter   *parser.Adapter
}

func (ParseDocumentStage) Name() string        { return "parse-document" }
func (ParseDocumentStage) InputKind() DataKind  { return DocumentSource }
func (ParseDocumentStage) OutputKind() DataKind { return DocumentAst }

func (s *ParseDocumentStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	id := s.SourceMap.AddEphemeral(in.SourcePath, in.SourceBytes)
	result, diags := s.Adapter.Parse(id)
	if result == nil {
		return in, fmt.Errorf("parse %s: %d error diagnostics", in.SourcePath, len(diags))
	}
	if rc != nil && rc.Diagnostics != nil {
		for _, d := range result.Diagnostics {
			rc.Diagnostics.Push(d)
		}
	}
	return Data{Kind: DocumentAst, Blocks: result.Blocks, SourcePath: in.SourcePath}, nil
}

// AstTransformsStage adapts the staged pipeline to the non-staged transform
// pipeline (§4.4). Before running transforms it merges project-level
// format_config into the document's meta via MergedConfig.
type AstTransformsStage struct {
	Transforms   *transform.Pipeline
	FormatConfig *configtree.ConfigValue
	// DocumentMeta is a pointer to the command layer's holder variable so a
	// preceding ExtractFrontMatterStage, run earlier in the same pipeline
	// invocation, can populate it before this stage reads it.
	DocumentMeta **configtree.ConfigValue
}

func (AstTransformsStage) Name() string        { return "ast-transforms" }
func (AstTransformsStage) InputKind() DataKind  { return DocumentAst }
func (AstTransformsStage) OutputKind() DataKind { return DocumentAst }

func (s *AstTransformsStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	var documentMeta *configtree.ConfigValue
	if s.DocumentMeta != nil {
		documentMeta = *s.DocumentMeta
	}
	merged := configtree.NewMergedConfig(s.FormatConfig, documentMeta)
	meta, diags := merged.Materialize()
	if rc != nil && rc.Diagnostics != nil {
		for _, d := range diags {
			rc.Diagnostics.Push(d)
		}
	}

	transformCtx := &transform.RenderContext{Meta: meta}
	if rc != nil {
		transformCtx.Artifacts = rc.Artifacts
	}

	pipeline := s.Transforms
	if pipeline == nil {
		pipeline = transform.StandardPipeline()
	}

	blocks, err := pipeline.Run(in.Blocks, transformCtx)
	if err != nil {
		return in, err
	}
	return Data{Kind: DocumentAst, Blocks: blocks, SourcePath: in.SourcePath}, nil
}

// ApplyTemplateStage renders the document's HTML body through a
// variable-substitution template and stores CSS artifact(s) at well-known
// virtual paths. When Theme is configured and ThemeDir names a manifest
// directory, the resolved theme's stylesheet assets are used; otherwise (or
// if resolution fails) a single default CSS artifact is stored instead.
type ApplyTemplateStage struct {
	Template *render.Template
	Vars     map[string]string

	// Theme resolves ThemeDir's manifest; nil disables theme resolution
	// entirely and always falls back to the default stylesheet.
	Theme        *render.ThemeResolver
	ThemeDir     string
	ThemeVariant string
}

func (ApplyTemplateStage) Name() string        { return "apply-template" }
func (ApplyTemplateStage) InputKind() DataKind  { return DocumentAst }
func (ApplyTemplateStage) OutputKind() DataKind { return RenderedOutput }

func (s *ApplyTemplateStage) Run(ctx context.Context, in Data, rc *RenderContext) (Data, error) {
	body := render.WriteHTML(in.Blocks)

	vars := util.CloneStringMap(s.Vars)
	vars["body"] = body

	tmpl := s.Template
	if tmpl == nil {
		tmpl = render.DefaultTemplate()
	}

	if rc != nil && rc.Artifacts != nil {
		cssPaths := s.themeStylesheets(rc)
		if len(cssPaths) == 0 {
			if _, ok := rc.Artifacts.Get(defaultStylesheetPath); !ok {
				rc.Artifacts.Set(defaultStylesheetPath, transform.Artifact{
					Bytes:      []byte(defaultStylesheet),
					MimeType:   "text/css",
					OutputPath: strPtr(defaultStylesheetPath),
				})
			}
			cssPaths = []string{defaultStylesheetPath}
		}
		vars["css_path"] = strings.Join(cssPaths, ",")
	}

	rendered := tmpl.Render(vars)
	return Data{Kind: RenderedOutput, Rendered: []byte(rendered), SourcePath: in.SourcePath}, nil
}

// themeStylesheets resolves s.Theme against s.ThemeDir and stores each of
// the selection's CSS assets as an artifact under
// /.quarto/project-artifacts/theme/, returning their virtual paths. Returns
// nil (letting the caller fall back to the default stylesheet) when no
// theme is configured or resolution fails.
func (s *ApplyTemplateStage) themeStylesheets(rc *RenderContext) []string {
	if s.Theme == nil || strings.TrimSpace(s.ThemeDir) == "" {
		return nil
	}

	selection, err := s.Theme.Resolve(s.ThemeDir, s.ThemeVariant)
	if err != nil {
		if rc.Diagnostics != nil {
			rc.Diagnostics.Push(diagnostic.Message{
				Kind:  diagnostic.Warning,
				Code:  "qmd.theme.resolve_failed",
				Title: "theme resolution failed",
				Text:  fmt.Sprintf("falling back to default stylesheet: %v", err),
			})
		}
		return nil
	}

	var out []string
	for _, relPath := range render.StylesheetAssets(selection) {
		content, err := os.ReadFile(filepath.Join(s.ThemeDir, relPath))
		if err != nil {
			continue
		}
		virtualPath := path.Join("/.quarto/project-artifacts/theme", relPath)
		rc.Artifacts.Set(virtualPath, transform.Artifact{
			Bytes:      content,
			MimeType:   "text/css",
			OutputPath: strPtr(virtualPath),
		})
		out = append(out, virtualPath)
	}
	return out
}

func strPtr(s string) *string { return &s }
