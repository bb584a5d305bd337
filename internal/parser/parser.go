// Package parser drives goldmark over QMD source bytes and translates its
// concrete tree into the project's own document tree, attaching SourceInfo
// to every node and collecting diagnostics for anything the translation
// cannot represent losslessly.
package parser

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	gmparser "github.com/yuin/goldmark/parser"
	gmtext "github.com/yuin/goldmark/text"

	"github.com/qmd-toolchain/qmdcore/internal/diagnostic"
	"github.com/qmd-toolchain/qmdcore/internal/document"
	"github.com/qmd-toolchain/qmdcore/internal/logging"
	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
	"github.com/qmd-toolchain/qmdcore/pkg/interfaces"
)

// maxTreeDepth bounds recursion over the concrete tree as a fuzzer-safety
// measure (spec.md §4.1).
const maxTreeDepth = 100

// ErrTreeTooDeep is returned when the concrete tree exceeds maxTreeDepth.
var ErrTreeTooDeep = fmt.Errorf("parser: concrete tree exceeds depth %d", maxTreeDepth)

// Result is the successful outcome of Parse.
type Result struct {
	Blocks      []document.Block
	Diagnostics []diagnostic.Message
}

// Adapter drives goldmark over QMD source and produces a document tree.
type Adapter struct {
	SourceMap *sourcemap.Map
	Logger    interfaces.Logger
}

// NewAdapter constructs an Adapter bound to sm. A nil provider falls back to
// the package's no-op logger.
func NewAdapter(sm *sourcemap.Map, provider interfaces.LoggerProvider) *Adapter {
	return &Adapter{
		SourceMap: sm,
		Logger:    logging.ParserLogger(provider),
	}
}

// Parse drives the parser over the file already registered in a.SourceMap as
// id, returning the document tree on success or diagnostics on failure. It
// always appends a trailing newline if missing, recursing once with the
// padded buffer, per spec.md §4.1.
func (a *Adapter) Parse(id sourcemap.FileId) (*Result, []diagnostic.Message) {
	content, err := a.SourceMap.Read(id)
	if err != nil {
		return nil, []diagnostic.Message{{
			Kind:  diagnostic.Error,
			Code:  "Q-4-01",
			Title: "unreadable source",
			Text:  err.Error(),
		}}
	}

	if len(content) == 0 || content[len(content)-1] != '\n' {
		padded := append(append([]byte(nil), content...), '\n')
		paddedID := a.SourceMap.AddEphemeral(fmt.Sprintf("%s#padded", id), padded)
		return a.Parse(paddedID)
	}

	reader := gmtext.NewReader(content)
	gm := goldmark.New(goldmark.WithExtensions(extension.Table), goldmark.WithParserOptions(gmparser.WithAutoHeadingID()))
	root := gm.Parser().Parse(reader)

	collector := diagnostic.NewCollector()
	t := &translator{src: content, file: id, collector: collector}

	blocks, err := t.children(root, 0)
	if err != nil {
		return nil, []diagnostic.Message{{Kind: diagnostic.Error, Code: "Q-4-02", Title: "parse failed", Text: err.Error()}}
	}

	return &Result{
		Blocks:      document.NormalizeBlocks(blocks),
		Diagnostics: collector.IntoDiagnostics(a.SourceMap),
	}, nil
}

// translator carries the per-parse state threaded through the recursive
// concrete-tree-to-document-tree walk.
type translator struct {
	src       []byte
	file      sourcemap.FileId
	collector *diagnostic.Collector
}

func (t *translator) info(n ast.Node) sourcemap.SourceInfo {
	if lines, ok := n.(interface{ Lines() *gmtext.Segments }); ok {
		segs := lines.Lines()
		if segs != nil && segs.Len() > 0 {
			first := segs.At(0)
			last := segs.At(segs.Len() - 1)
			return sourcemap.Original{File: t.file, Start: first.Start, End: last.Stop}
		}
	}
	return sourcemap.Original{File: t.file, Start: 0, End: len(t.src)}
}

func (t *translator) segmentsText(segs *gmtext.Segments) string {
	if segs == nil {
		return ""
	}
	var out []byte
	for i := 0; i < segs.Len(); i++ {
		out = append(out, segs.At(i).Value(t.src)...)
	}
	return string(out)
}

func (t *translator) children(parent ast.Node, depth int) ([]document.Block, error) {
	if depth > maxTreeDepth {
		return nil, ErrTreeTooDeep
	}
	var out []document.Block
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b, err := t.block(n, depth+1)
		if err != nil {
			return nil, err
		}
		if b != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (t *translator) block(n ast.Node, depth int) (document.Block, error) {
	if depth > maxTreeDepth {
		return nil, ErrTreeTooDeep
	}
	info := t.info(n)

	switch v := n.(type) {
	case *ast.Paragraph:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return document.NewParagraph(info, content), nil

	case *ast.TextBlock:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return document.NewPlain(info, content), nil

	case *ast.Heading:
		content, err := t.inlines(v, depth+1)
		if err != nil {
			return nil, err
		}
		return document.NewHeader(info, document.ClampHeaderLevel(v.Level), document.NewAttr(), content), nil

	case *ast.Blockquote:
		children, err := t.children(v, depth+1)
		if err != nil {
			return nil, err
		}
		return document.NewBlockQuote(info, children), nil

	case *ast.List:
		items, err := t.listItems(v, depth+1)
		if err != nil {
			return nil, err
		}
		if v.IsOrdered() {
			return document.NewOrderedList(info, v.Start, items), nil
		}
		return document.NewBulletList(info, items), nil

	case *ast.FencedCodeBlock:
		attr := document.NewAttr()
		if lang := v.Language(t.src); len(lang) > 0 {
			attr.Class = append(attr.Class, string(lang))
		}
		return document.NewCodeBlock(info, attr, t.segmentsText(v.Lines())), nil

	case *ast.CodeBlock:
		return document.NewCodeBlock(info, document.NewAttr(), t.segmentsText(v.Lines())), nil

	case *ast.HTMLBlock:
		text := t.segmentsText(v.Lines())
		if v.ClosureLine.Start >= 0 && v.ClosureLine.Stop > v.ClosureLine.Start {
			text += string(v.ClosureLine.Value(t.src))
		}
		return document.NewRawBlock(info, "html", text), nil

	case *ast.ThematicBreak:
		return document.NewHorizontalRule(info), nil

	case *extast.Table:
		return t.table(v, info, depth+1)

	default:
		t.collector.Pushf(diagnostic.Warning, "Q-4-90", "unhandled block node",
			fmt.Sprintf("node kind %v has no translation and was dropped", n.Kind()), info)
		return nil, nil
	}
}

func (t *translator) listItems(list *ast.List, depth int) ([][]document.Block, error) {
	var items [][]document.Block
	for n := list.FirstChild(); n != nil; n = n.NextSibling() {
		item, ok := n.(*ast.ListItem)
		if !ok {
			continue
		}
		blocks, err := t.children(item, depth+1)
		if err != nil {
			return nil, err
		}
		items = append(items, blocks)
	}
	return items, nil
}

func (t *translator) table(table *extast.Table, info sourcemap.SourceInfo, depth int) (document.Block, error) {
	colSpecs := make([]document.ColSpec, len(table.Alignments))
	for i, al := range table.Alignments {
		colSpecs[i] = document.ColSpec{Alignment: convertAlignment(al)}
	}

	var head document.TableHead
	var bodyRows []document.TableRow

	for n := table.FirstChild(); n != nil; n = n.NextSibling() {
		switch row := n.(type) {
		case *extast.TableHeader:
			r, err := t.tableRow(&row.TableRow, depth+1)
			if err != nil {
				return nil, err
			}
			head = document.TableHead{Info: t.info(row), Rows: []document.TableRow{r}}
		case *extast.TableRow:
			r, err := t.tableRow(row, depth+1)
			if err != nil {
				return nil, err
			}
			bodyRows = append(bodyRows, r)
		}
	}

	bodies := []document.TableBody{{Info: info, BodyRows: bodyRows}}
	return document.NewTable(info, colSpecs, head, bodies), nil
}

func (t *translator) tableRow(row *extast.TableRow, depth int) (document.TableRow, error) {
	var cells []document.TableCell
	for n := row.FirstChild(); n != nil; n = n.NextSibling() {
		cell, ok := n.(*extast.TableCell)
		if !ok {
			continue
		}
		content, err := t.inlines(cell, depth+1)
		if err != nil {
			return document.TableRow{}, err
		}
		cells = append(cells, document.TableCell{
			Info:    t.info(cell),
			ColSpan: 1,
			RowSpan: 1,
			Content: []document.Block{document.NewPlain(t.info(cell), content)},
		})
	}
	return document.TableRow{Info: t.info(row), Cells: cells}, nil
}

func convertAlignment(a extast.Alignment) document.Alignment {
	switch a {
	case extast.AlignLeft:
		return document.AlignLeft
	case extast.AlignRight:
		return document.AlignRight
	case extast.AlignCenter:
		return document.AlignCenter
	default:
		return document.AlignDefault
	}
}
