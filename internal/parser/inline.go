package parser

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// inlines translates every inline child of parent, splitting raw text runs
// into Str/Space tokens per the "Str contains no whitespace" invariant.
func (t *translator) inlines(parent ast.Node, depth int) ([]document.Inline, error) {
	if depth > maxTreeDepth {
		return nil, ErrTreeTooDeep
	}
	var out []document.Inline
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		nodes, err := t.inline(n, depth+1)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	return out, nil
}

// inlineInfo wraps seg as an Original SourceInfo in the current file, for an
// inline node lacking a dedicated Lines() accessor.
func (t *translator) inlineInfo(seg sourcemap.Range) sourcemap.SourceInfo {
	return sourcemap.Original{File: t.file, Start: seg.Start, End: seg.End}
}

func (t *translator) inline(n ast.Node, depth int) ([]document.Inline, error) {
	if depth > maxTreeDepth {
		return nil, ErrTreeTooDeep
	}

	switch v := n.(type) {
	case *ast.Text:
		seg := v.Segment
		info := t.inlineInfo(sourcemap.Range{File: t.file, Start: seg.Start, End: seg.Stop})
		nodes := splitText(t.file, seg.Start, string(seg.Value(t.src)))
		if v.HardLineBreak() {
			nodes = append(nodes, document.NewLineBreak(info))
		} else if v.SoftLineBreak() {
			nodes = append(nodes, document.NewSoftBreak(info))
		}
		return nodes, nil

	case *ast.String:
		return []document.Inline{document.NewStr(t.wholeFileInfo(), string(v.Value))}, nil

	case *ast.Emphasis:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		info := t.wholeFileInfo()
		if v.Level >= 2 {
			return []document.Inline{document.NewStrong(info, content)}, nil
		}
		return []document.Inline{document.NewEmph(info, content)}, nil

	case *extast.Strikethrough:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return []document.Inline{document.NewStrikeout(t.wholeFileInfo(), content)}, nil

	case *ast.CodeSpan:
		text := codeSpanText(v, t.src)
		return []document.Inline{document.NewCode(t.wholeFileInfo(), document.NewAttr(), text)}, nil

	case *ast.Link:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return []document.Inline{document.NewLink(t.wholeFileInfo(), document.NewAttr(), content, string(v.Destination), string(v.Title))}, nil

	case *ast.Image:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return []document.Inline{document.NewImage(t.wholeFileInfo(), document.NewAttr(), content, string(v.Destination), string(v.Title))}, nil

	case *ast.AutoLink:
		target := string(v.URL(t.src))
		info := t.wholeFileInfo()
		attr := document.NewAttr()
		attr.Class = []string{"uri"}
		return []document.Inline{document.NewLink(info, attr, []document.Inline{document.NewStr(info, target)}, target, "")}, nil

	case *ast.RawHTML:
		return []document.Inline{document.NewRawInline(t.wholeFileInfo(), "html", rawHTMLText(v, t.src))}, nil

	default:
		info := t.wholeFileInfo()
		t.collector.Pushf(diagnostic.Warning, "Q-4-91", "unhandled inline node",
			"node kind "+n.Kind().String()+" has no translation and was dropped", info)
		return nil, nil
	}
}

// wholeFileInfo is the fallback provenance for inline nodes whose exact
// byte span goldmark does not expose directly (e.g. composite nodes like
// Emphasis/Link, whose span is the union of their children's segments).
func (t *translator) wholeFileInfo() sourcemap.SourceInfo {
	return sourcemap.Original{File: t.file, Start: 0, End: len(t.src)}
}

// splitText breaks a raw text run starting at byteOffset into Str tokens
// (non-whitespace) and single Space tokens (any whitespace run), per
// spec.md §3.2's invariant that Str never contains whitespace.
func splitText(file sourcemap.FileId, byteOffset int, raw string) []document.Inline {
	var out []document.Inline
	var buf strings.Builder
	bufStart := byteOffset
	flush := func(end int) {
		if buf.Len() > 0 {
			info := sourcemap.Original{File: file, Start: bufStart, End: end}
			out = append(out, document.NewStr(info, buf.String()))
			buf.Reset()
		}
	}
	inSpace := false
	offset := byteOffset
	for _, r := range raw {
		size := len(string(r))
		if unicode.IsSpace(r) {
			if !inSpace {
				flush(offset)
				out = append(out, document.NewSpace(sourcemap.Original{File: file, Start: offset, End: offset + size}))
				inSpace = true
			}
			offset += size
			continue
		}
		if inSpace {
			bufStart = offset
		}
		inSpace = false
		buf.WriteRune(r)
		offset += size
	}
	flush(offset)
	return out
}

func codeSpanText(v *ast.CodeSpan, src []byte) string {
	var b strings.Builder
	for n := v.FirstChild(); n != nil; n = n.NextSibling() {
		if text, ok := n.(*ast.Text); ok {
			b.Write(text.Segment.Value(src))
		}
	}
	return b.String()
}

func rawHTMLText(v *ast.RawHTML, src []byte) string {
	var b strings.Builder
	for i := 0; i < v.Segments.Len(); i++ {
		b.Write(v.Segments.At(i).Value(src))
	}
	return b.String()
}
