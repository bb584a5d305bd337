package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/qmd-toolchain/qmdcore/internal/configtree"
	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/filterspec"
	"github.com/qmd-toolchain/qmdcore/internal/sandbox"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// referencesKey is the front-matter key FilterDispatchTransform reads for
// the built-in citeproc processor's bibliography: a map of citation key to
// rendered reference text.
const referencesKey = "references"

// citationClass marks a Span as a citation the citeproc filter resolves.
const citationClass = "citation"

// citationKeyAttr names the citation key inside a citation Span's KeyValue.
const citationKeyAttr = "key"

// FilterDispatchTransform applies the filter chain named by Refs, in order,
// to the document tree. Each ref is classified by filterspec.ParseFilterSpec:
// "citeproc" resolves citation Spans against the front matter's references
// map; a ".lua" path runs an embedded Lua filter; anything else runs as an
// external JSON-AST filter process. Running an external Lua or JSON filter
// is gated through Policy (KindRun), deny-by-default when Policy is nil.
type FilterDispatchTransform struct {
	Refs   []string
	Policy *sandbox.Policy
	// Ctx, when set, bounds external Lua/JSON filter process execution; a nil
	// Ctx falls back to context.Background().
	Ctx context.Context
}

func (FilterDispatchTransform) Name() string { return "filter-dispatch" }

func (t *FilterDispatchTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	current := blocks
	for _, ref := range t.Refs {
		spec := filterspec.ParseFilterSpec(ref)
		var err error
		switch spec.Kind {
		case filterspec.Citeproc:
			current, err = t.runCiteproc(current, ctx)
		case filterspec.Lua:
			current, err = t.runLuaFilter(spec, current, ctx)
		case filterspec.JSON:
			current, err = t.runJSONFilter(spec, current, ctx)
		}
		if err != nil {
			return nil, fmt.Errorf("filter %s (%s): %w", ref, spec.Kind, err)
		}
	}
	return current, nil
}

// runCiteproc replaces citation Spans (`[class=citation key=<key>]text[]`)
// with a numbered marker and appends a References div built from the
// front-matter `references` map, in first-citation order.
func (t *FilterDispatchTransform) runCiteproc(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	refs := citeprocReferences(ctx)
	order := []string{}
	seen := map[string]int{}

	walkSpansInBlocks(blocks, func(span *document.Span) {
		if !span.Attr.HasClass(citationClass) || span.Attr.KeyValue == nil {
			return
		}
		key, ok := span.Attr.KeyValue.Get(citationKeyAttr)
		if !ok || key == "" {
			return
		}
		n, known := seen[key]
		if !known {
			n = len(order) + 1
			seen[key] = n
			order = append(order, key)
		}
		info := sourcemap.FilterProvenance{Filter: "citeproc", Detail: key}
		span.Content = []document.Inline{document.NewStr(info, fmt.Sprintf("[%d]", n))}
	})

	if len(order) == 0 {
		return blocks, nil
	}

	items := make([]document.Block, 0, len(order))
	for i, key := range order {
		text := key
		if resolved, ok := refs[key]; ok {
			text = resolved
		}
		info := sourcemap.FilterProvenance{Filter: "citeproc", Detail: key}
		items = append(items, document.NewParagraph(info, []document.Inline{
			document.NewStr(info, fmt.Sprintf("[%d] %s", i+1, text)),
		}))
	}
	info := sourcemap.FilterProvenance{Filter: "citeproc", Detail: "bibliography"}
	attr := document.NewAttr()
	attr.Class = []string{"references"}
	bibliography := document.NewDiv(info, attr, items)
	return append(append([]document.Block{}, blocks...), bibliography), nil
}

func citeprocReferences(ctx *RenderContext) map[string]string {
	out := map[string]string{}
	if ctx == nil || ctx.Meta == nil {
		return out
	}
	refs := ctx.Meta.Get(referencesKey)
	if refs == nil || refs.Kind != configtree.Map {
		return out
	}
	for _, e := range refs.Entries {
		if e.Value != nil && e.Value.Kind == configtree.Scalar {
			if s, ok := e.Value.Raw.(string); ok {
				out[e.Key] = s
			}
		}
	}
	return out
}

// runLuaFilter loads spec.Path as a gopher-lua script and calls its global
// `filter(text)` function with the document's plain-text content, replacing
// the document with the returned text. This is a deliberately simplified
// filter boundary (plain text, not a structured AST) rather than the full
// Pandoc-style tree Lua filters traditionally rewrite node-by-node.
func (t *FilterDispatchTransform) runLuaFilter(spec filterspec.FilterSpec, blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	if err := t.checkRun(spec.Path); err != nil {
		return nil, err
	}
	script, err := os.ReadFile(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("read lua filter %s: %w", spec.Path, err)
	}

	L := lua.NewState()
	defer L.Close()
	if err := L.DoString(string(script)); err != nil {
		return nil, fmt.Errorf("load lua filter %s: %w", spec.Path, err)
	}
	fn := L.GetGlobal("filter")
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("lua filter %s: missing global function filter(text)", spec.Path)
	}

	input := extractPlainText(blocks)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, lua.LString(input)); err != nil {
		return nil, fmt.Errorf("run lua filter %s: %w", spec.Path, err)
	}
	result := L.Get(-1)
	L.Pop(1)

	info := sourcemap.FilterProvenance{Filter: spec.Path}
	return []document.Block{
		document.NewParagraph(info, []document.Inline{document.NewStr(info, result.String())}),
	}, nil
}

// filterPayload is the simplified JSON-AST envelope an external JSON filter
// process receives on stdin and must echo back (optionally rewritten) on
// stdout: the document's blocks reduced to plain text, one string per
// top-level block.
type filterPayload struct {
	Blocks []string `json:"blocks"`
}

// runJSONFilter execs spec.Path (its first whitespace-separated token is the
// command, the rest its fixed arguments) and pipes a filterPayload over
// stdin, reading a filterPayload back from stdout.
func (t *FilterDispatchTransform) runJSONFilter(spec filterspec.FilterSpec, blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	if err := t.checkRun(spec.Path); err != nil {
		return nil, err
	}
	fields := strings.Fields(spec.Path)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty json filter command")
	}

	payload, err := json.Marshal(filterPayload{Blocks: plainTextBlocks(blocks)})
	if err != nil {
		return nil, fmt.Errorf("encode filter payload: %w", err)
	}

	runCtx := t.Ctx
	if runCtx == nil {
		runCtx = context.Background()
	}
	cmd := exec.CommandContext(runCtx, fields[0], fields[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run json filter %s: %w (stderr: %s)", spec.Path, err, stderr.String())
	}

	var out filterPayload
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("decode filter output %s: %w", spec.Path, err)
	}

	result := make([]document.Block, 0, len(out.Blocks))
	for _, text := range out.Blocks {
		info := sourcemap.FilterProvenance{Filter: spec.Path}
		result = append(result, document.NewParagraph(info, []document.Inline{document.NewStr(info, text)}))
	}
	return result, nil
}

func (t *FilterDispatchTransform) checkRun(path string) error {
	if t.Policy == nil {
		return &sandbox.ErrDenied{Kind: sandbox.KindRun, Resource: path}
	}
	return t.Policy.Check(sandbox.KindRun, path)
}

// plainTextBlocks reduces each top-level block to a single plain-text line.
func plainTextBlocks(blocks []document.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockPlainText(b))
	}
	return out
}

func extractPlainText(blocks []document.Block) string {
	return strings.Join(plainTextBlocks(blocks), "\n")
}

func blockPlainText(b document.Block) string {
	var sb strings.Builder
	switch v := b.(type) {
	case *document.Paragraph:
		writeInlinesPlainText(&sb, v.Content)
	case *document.Plain:
		writeInlinesPlainText(&sb, v.Content)
	case *document.Header:
		writeInlinesPlainText(&sb, v.Content)
	default:
		walkInlinesInBlocks([]document.Block{b}, func(in document.Inline) {
			writeInlinePlainText(&sb, in)
		})
	}
	return sb.String()
}

func writeInlinesPlainText(sb *strings.Builder, inlines []document.Inline) {
	for _, in := range inlines {
		writeInlinePlainText(sb, in)
	}
}

func writeInlinePlainText(sb *strings.Builder, in document.Inline) {
	switch v := in.(type) {
	case *document.Str:
		sb.WriteString(v.Text)
	case *document.Space:
		sb.WriteString(" ")
	case *document.SoftBreak:
		sb.WriteString(" ")
	}
}

// walkSpansInBlocks visits every Span reachable from blocks, recursing into
// container blocks and inlines.
func walkSpansInBlocks(blocks []document.Block, visit func(*document.Span)) {
	walkInlinesInBlocks(blocks, func(in document.Inline) {
		if span, ok := in.(*document.Span); ok {
			visit(span)
		}
	})
}
