package render

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/qmd-toolchain/qmdcore/internal/document"
)

// WriteHTML renders a block sequence to an HTML fragment via recursive
// descent. Header IDs default to empty (no id attribute emitted); class
// order is preserved exactly as authored. This is the body half of
// ApplyTemplateStage's output — callers that need a full document wrap it
// with a Template.
func WriteHTML(blocks []document.Block) string {
	var b strings.Builder
	writeBlocks(&b, blocks)
	return b.String()
}

func writeBlocks(b *strings.Builder, blocks []document.Block) {
	for _, blk := range blocks {
		writeBlock(b, blk)
	}
}

func writeBlock(b *strings.Builder, blk document.Block) {
	switch v := blk.(type) {
	case *document.Paragraph:
		b.WriteString("<p>")
		writeInlines(b, v.Content)
		b.WriteString("</p>\n")

	case *document.Plain:
		writeInlines(b, v.Content)
		b.WriteString("\n")

	case *document.Header:
		level := clampLevel(v.Level)
		tag := "h" + strconv.Itoa(level)
		b.WriteString("<" + tag)
		writeAttr(b, v.Attr)
		b.WriteString(">")
		writeInlines(b, v.Content)
		b.WriteString("</" + tag + ">\n")

	case *document.BlockQuote:
		b.WriteString("<blockquote>\n")
		writeBlocks(b, v.Content)
		b.WriteString("</blockquote>\n")

	case *document.BulletList:
		b.WriteString("<ul>\n")
		for _, item := range v.Items {
			b.WriteString("<li>")
			writeBlocks(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")

	case *document.OrderedList:
		b.WriteString("<ol")
		if v.Start != 0 && v.Start != 1 {
			b.WriteString(` start="` + strconv.Itoa(v.Start) + `"`)
		}
		b.WriteString(">\n")
		for _, item := range v.Items {
			b.WriteString("<li>")
			writeBlocks(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</ol>\n")

	case *document.CodeBlock:
		b.WriteString("<pre><code")
		writeAttr(b, v.Attr)
		b.WriteString(">")
		b.WriteString(html.EscapeString(v.Text))
		b.WriteString("</code></pre>\n")

	case *document.RawBlock:
		if v.Format == "html" {
			b.WriteString(v.Text)
		}

	case *document.Figure:
		b.WriteString("<figure")
		writeAttr(b, v.Attr)
		b.WriteString(">\n")
		writeBlocks(b, v.Content)
		if len(v.Caption) > 0 {
			b.WriteString("<figcaption>")
			writeBlocks(b, v.Caption)
			b.WriteString("</figcaption>\n")
		}
		b.WriteString("</figure>\n")

	case *document.Div:
		b.WriteString("<div")
		writeAttr(b, v.Attr)
		b.WriteString(">\n")
		writeBlocks(b, v.Content)
		b.WriteString("</div>\n")

	case *document.Table:
		writeTable(b, v)

	case *document.HorizontalRule:
		b.WriteString("<hr />\n")

	case *document.BlockMetadata:
		// Lexical metadata is preserved in the tree for provenance and
		// round-tripping but contributes no HTML output.

	case *document.CaptionBlock:
		b.WriteString("<caption>")
		writeBlocks(b, v.Content)
		b.WriteString("</caption>\n")

	default:
		// No writer-crashing sentinel: an unrecognized block type is
		// dropped rather than panicking (mirrors the parser's Q-4-90
		// unhandled-node policy).
	}
}

func clampLevel(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func writeTable(b *strings.Builder, t *document.Table) {
	b.WriteString("<table")
	writeAttr(b, t.Attr)
	b.WriteString(">\n")
	if len(t.Caption) > 0 {
		b.WriteString("<caption>")
		writeBlocks(b, t.Caption)
		b.WriteString("</caption>\n")
	}
	if len(t.Head.Rows) > 0 {
		b.WriteString("<thead>\n")
		for _, row := range t.Head.Rows {
			writeTableRow(b, row, t.ColSpecs, true)
		}
		b.WriteString("</thead>\n")
	}
	for _, body := range t.Bodies {
		b.WriteString("<tbody>\n")
		for i, row := range body.HeadRows {
			writeTableRow(b, row, t.ColSpecs, i < body.RowHeadColumns)
		}
		for _, row := range body.BodyRows {
			writeTableRow(b, row, t.ColSpecs, false)
		}
		b.WriteString("</tbody>\n")
	}
	if len(t.Foot.Rows) > 0 {
		b.WriteString("<tfoot>\n")
		for _, row := range t.Foot.Rows {
			writeTableRow(b, row, t.ColSpecs, false)
		}
		b.WriteString("</tfoot>\n")
	}
	b.WriteString("</table>\n")
}

func writeTableRow(b *strings.Builder, row document.TableRow, colSpecs []document.ColSpec, header bool) {
	b.WriteString("<tr>")
	for i, cell := range row.Cells {
		tag := "td"
		if header {
			tag = "th"
		}
		b.WriteString("<" + tag)
		if i < len(colSpecs) {
			if align := alignmentAttr(colSpecs[i].Alignment); align != "" {
				b.WriteString(` style="text-align: ` + align + `"`)
			}
		}
		if cell.ColSpan > 1 {
			b.WriteString(` colspan="` + strconv.Itoa(cell.ColSpan) + `"`)
		}
		if cell.RowSpan > 1 {
			b.WriteString(` rowspan="` + strconv.Itoa(cell.RowSpan) + `"`)
		}
		b.WriteString(">")
		writeBlocks(b, cell.Content)
		b.WriteString("</" + tag + ">")
	}
	b.WriteString("</tr>\n")
}

func alignmentAttr(a document.Alignment) string {
	switch a {
	case document.AlignLeft:
		return "left"
	case document.AlignRight:
		return "right"
	case document.AlignCenter:
		return "center"
	default:
		return ""
	}
}

// writeAttr emits id/class/data-* exactly in authored order; a header with
// no ID emits no id attribute at all (header IDs default empty per §4.6).
func writeAttr(b *strings.Builder, attr document.Attr) {
	if attr.IsEmpty() {
		return
	}
	if attr.ID != "" {
		b.WriteString(` id="` + html.EscapeString(attr.ID) + `"`)
	}
	if len(attr.Class) > 0 {
		b.WriteString(` class="` + html.EscapeString(strings.Join(attr.Class, " ")) + `"`)
	}
	if attr.KeyValue != nil {
		for _, key := range attr.KeyValue.Keys() {
			val, _ := attr.KeyValue.Get(key)
			b.WriteString(fmt.Sprintf(` data-%s="%s"`, html.EscapeString(key), html.EscapeString(val)))
		}
	}
}

func writeInlines(b *strings.Builder, inlines []document.Inline) {
	for _, in := range inlines {
		writeInline(b, in)
	}
}

func writeInline(b *strings.Builder, in document.Inline) {
	switch v := in.(type) {
	case *document.Str:
		b.WriteString(html.EscapeString(v.Text))

	case *document.Space:
		b.WriteString(" ")

	case *document.SoftBreak:
		b.WriteString(" ")

	case *document.LineBreak:
		b.WriteString("<br />\n")

	case *document.Emph:
		b.WriteString("<em>")
		writeInlines(b, v.Content)
		b.WriteString("</em>")

	case *document.Strong:
		b.WriteString("<strong>")
		writeInlines(b, v.Content)
		b.WriteString("</strong>")

	case *document.Strikeout:
		b.WriteString("<del>")
		writeInlines(b, v.Content)
		b.WriteString("</del>")

	case *document.Superscript:
		b.WriteString("<sup>")
		writeInlines(b, v.Content)
		b.WriteString("</sup>")

	case *document.Subscript:
		b.WriteString("<sub>")
		writeInlines(b, v.Content)
		b.WriteString("</sub>")

	case *document.Code:
		b.WriteString("<code")
		writeAttr(b, v.Attr)
		b.WriteString(">")
		b.WriteString(html.EscapeString(v.Text))
		b.WriteString("</code>")

	case *document.Link:
		b.WriteString(`<a href="` + html.EscapeString(v.Target) + `"`)
		if v.Title != "" {
			b.WriteString(` title="` + html.EscapeString(v.Title) + `"`)
		}
		writeAttr(b, v.Attr)
		b.WriteString(">")
		writeInlines(b, v.Content)
		b.WriteString("</a>")

	case *document.Image:
		b.WriteString(`<img src="` + html.EscapeString(v.Target) + `" alt="` + html.EscapeString(plainText(v.Content)) + `"`)
		if v.Title != "" {
			b.WriteString(` title="` + html.EscapeString(v.Title) + `"`)
		}
		writeAttr(b, v.Attr)
		b.WriteString(" />")

	case *document.Span:
		b.WriteString("<span")
		writeAttr(b, v.Attr)
		b.WriteString(">")
		writeInlines(b, v.Content)
		b.WriteString("</span>")

	case *document.Math:
		delim := "\\(" // inline math
		closeDelim := "\\)"
		if v.Kind == document.MathDisplay {
			delim, closeDelim = "\\[", "\\]"
		}
		b.WriteString(`<span class="math">`)
		b.WriteString(delim)
		b.WriteString(html.EscapeString(v.Text))
		b.WriteString(closeDelim)
		b.WriteString("</span>")

	case *document.RawInline:
		if v.Format == "html" {
			b.WriteString(v.Text)
		}

	case *document.Note:
		b.WriteString(`<span class="footnote">`)
		writeBlocks(b, v.Content)
		b.WriteString("</span>")

	case *document.Quoted:
		open, close := `"`, `"`
		if v.Type == document.SingleQuote {
			open, close = "'", "'"
		}
		b.WriteString(open)
		writeInlines(b, v.Content)
		b.WriteString(close)

	case *document.AttrMarker:
		// The parser never produces an AttrMarker (it does not parse
		// attribute blocks); one built by other code renders as nothing.

	default:
	}
}

// plainText flattens inline content to its text representation, used for
// image alt text where nested markup is not meaningful.
func plainText(inlines []document.Inline) string {
	var b strings.Builder
	for _, in := range inlines {
		switch v := in.(type) {
		case *document.Str:
			b.WriteString(v.Text)
		case *document.Space, *document.SoftBreak:
			b.WriteString(" ")
		case *document.Emph:
			b.WriteString(plainText(v.Content))
		case *document.Strong:
			b.WriteString(plainText(v.Content))
		case *document.Code:
			b.WriteString(v.Text)
		}
	}
	return b.String()
}
