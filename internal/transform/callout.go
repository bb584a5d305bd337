package transform

import (
	"strings"

	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// calloutClassPrefix marks a Div as a callout (e.g. ".callout-warning").
const calloutClassPrefix = "callout-"

// calloutTypeKey is the internal Attr key CalloutTransform stamps onto a
// recognized callout Div so CalloutResolveTransform can lower it without
// re-deriving the type from the class list.
const calloutTypeKey = "quarto-callout-type"

// CalloutTransform recognizes Divs carrying a `.callout-<type>` class and
// stamps the derived type as an internal attribute, so the resolve pass can
// act purely on that marker rather than re-parsing classes.
type CalloutTransform struct{}

func (CalloutTransform) Name() string { return "callout" }

func (t *CalloutTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	walkDivs(blocks, func(div *document.Div) {
		if calloutType, ok := calloutTypeOf(div.Attr); ok {
			div.Attr.KeyValue.Set(calloutTypeKey, calloutType)
		}
	})
	return blocks, nil
}

// CalloutResolveTransform lowers a marked callout Div into a structured Div
// containing a synthesized heading (from the callout type, title-cased)
// followed by the original content, with `callout`/`callout-<type>` classes
// so the HTML writer can style it without re-deriving the type.
type CalloutResolveTransform struct{}

func (CalloutResolveTransform) Name() string { return "callout-resolve" }

func (t *CalloutResolveTransform) Transform(blocks []document.Block, ctx *RenderContext) ([]document.Block, error) {
	walkDivs(blocks, func(div *document.Div) {
		calloutType, ok := div.Attr.KeyValue.Get(calloutTypeKey)
		if !ok {
			return
		}
		div.Attr.KeyValue.Delete(calloutTypeKey)
		div.Attr.Class = append([]string{"callout", calloutClassPrefix + calloutType}, withoutCalloutClass(div.Attr.Class)...)

		heading := document.NewHeader(div.Info(), 1, document.NewAttr(), []document.Inline{
			document.NewStr(div.Info(), titleCase(calloutType)),
		})
		div.Content = append([]document.Block{heading}, div.Content...)
	})
	return blocks, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func calloutTypeOf(attr document.Attr) (string, bool) {
	for _, c := range attr.Class {
		if strings.HasPrefix(c, calloutClassPrefix) {
			return strings.TrimPrefix(c, calloutClassPrefix), true
		}
	}
	return "", false
}

func withoutCalloutClass(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		if !strings.HasPrefix(c, calloutClassPrefix) {
			out = append(out, c)
		}
	}
	return out
}

// walkDivs recursively visits every Div in blocks (and their nested block
// content), calling visit on each.
func walkDivs(blocks []document.Block, visit func(*document.Div)) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.Div:
			visit(v)
			walkDivs(v.Content, visit)
		case *document.BlockQuote:
			walkDivs(v.Content, visit)
		case *document.BulletList:
			for _, item := range v.Items {
				walkDivs(item, visit)
			}
		case *document.OrderedList:
			for _, item := range v.Items {
				walkDivs(item, visit)
			}
		case *document.Figure:
			walkDivs(v.Content, visit)
			walkDivs(v.Caption, visit)
		case *document.CaptionBlock:
			walkDivs(v.Content, visit)
		}
	}
}

func mapBlocks(blocks []document.Block, fn func(document.Block) document.Block) []document.Block {
	out := make([]document.Block, len(blocks))
	for i, b := range blocks {
		out[i] = fn(b)
	}
	return out
}
