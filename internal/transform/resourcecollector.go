package transform

import (
	"net/url"
	"strconv"

	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// resourceKeyPrefix namespaces artifact-store keys written by
// ResourceCollectorTransform so downstream writers can enumerate collected
// resources without scanning unrelated artifact keys.
const resourceKeyPrefix = "resource:"

// ResourceCollectorTransform walks the tree and records every image/link
// target that is not an absolute URL (i.e. a local filesystem path) into
// the artifact store, typed by kind ("image" or "link"), so the writer can
// later copy or rewrite those resources.
type ResourceCollectorTransform struct{}

func (ResourceCollectorTransform) Name() string { return "resource-collector" }

func (t *ResourceCollectorTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	if ctx == nil || ctx.Artifacts == nil {
		return blocks, nil
	}
	counter := 0
	walkInlinesInBlocks(blocks, func(in document.Inline) {
		switch v := in.(type) {
		case *document.Image:
			if isLocalPath(v.Target) {
				counter = recordResource(ctx.Artifacts, "image", v.Target, counter)
			}
		case *document.Link:
			if isLocalPath(v.Target) {
				counter = recordResource(ctx.Artifacts, "link", v.Target, counter)
			}
		}
	})
	return blocks, nil
}

func recordResource(store *ArtifactStore, kind, target string, counter int) int {
	key := resourceKeyPrefix + kind + ":" + strconv.Itoa(counter)
	store.Set(key, Artifact{OutputPath: &target})
	return counter + 1
}

func isLocalPath(target string) bool {
	if target == "" {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return true
	}
	return u.Scheme == ""
}

// walkInlinesInBlocks visits every inline node reachable from blocks.
func walkInlinesInBlocks(blocks []document.Block, visit func(document.Inline)) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Paragraph:
			walkInlines(v.Content, visit)
		case *document.Plain:
			walkInlines(v.Content, visit)
		case *document.Header:
			walkInlines(v.Content, visit)
		case *document.BlockQuote:
			walkInlinesInBlocks(v.Content, visit)
		case *document.Div:
			walkInlinesInBlocks(v.Content, visit)
		case *document.BulletList:
			for _, item := range v.Items {
				walkInlinesInBlocks(item, visit)
			}
		case *document.OrderedList:
			for _, item := range v.Items {
				walkInlinesInBlocks(item, visit)
			}
		case *document.Figure:
			walkInlinesInBlocks(v.Content, visit)
			walkInlinesInBlocks(v.Caption, visit)
		case *document.CaptionBlock:
			walkInlinesInBlocks(v.Content, visit)
		}
	}
}

func walkInlines(inlines []document.Inline, visit func(document.Inline)) {
	for _, in := range inlines {
		visit(in)
		switch v := in.(type) {
		case *document.Emph:
			walkInlines(v.Content, visit)
		case *document.Strong:
			walkInlines(v.Content, visit)
		case *document.Strikeout:
			walkInlines(v.Content, visit)
		case *document.Superscript:
			walkInlines(v.Content, visit)
		case *document.Subscript:
			walkInlines(v.Content, visit)
		case *document.Span:
			walkInlines(v.Content, visit)
		case *document.Link:
			walkInlines(v.Content, visit)
		case *document.Image:
			walkInlines(v.Content, visit)
		case *document.Quoted:
			walkInlines(v.Content, visit)
		}
	}
}
