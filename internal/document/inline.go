package document

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// Inline is the tagged union of inline-level document nodes.
type Inline interface {
	isInline()
	Info() sourcemap.SourceInfo
}

type inlineBase struct {
	SrcInfo sourcemap.SourceInfo
}

func (i inlineBase) isInline() {}

func (i inlineBase) Info() sourcemap.SourceInfo { return i.SrcInfo }

func newInlineBase(info sourcemap.SourceInfo) inlineBase { return inlineBase{SrcInfo: info} }

// Str is a run of non-whitespace text. Per invariant, Text never contains
// whitespace; word boundaries are represented by Space/SoftBreak/LineBreak.
type Str struct {
	inlineBase
	Text string
}

// Space is a single inter-word space within a paragraph.
type Space struct {
	inlineBase
}

// SoftBreak is a source line wrap within the same paragraph, semantically a
// Space when rendered but preserved distinctly for provenance and
// line-wrap-sensitive writers.
type SoftBreak struct {
	inlineBase
}

// LineBreak is an explicit hard line break (e.g. trailing double-space or `\`).
type LineBreak struct {
	inlineBase
}

// Emph is emphasized (typically italic) content.
type Emph struct {
	inlineBase
	Content []Inline
}

// Strong is strongly emphasized (typically bold) content.
type Strong struct {
	inlineBase
	Content []Inline
}

// Strikeout is struck-through content.
type Strikeout struct {
	inlineBase
	Content []Inline
}

// Superscript content.
type Superscript struct {
	inlineBase
	Content []Inline
}

// Subscript content.
type Subscript struct {
	inlineBase
	Content []Inline
}

// Code is an inline literal code span.
type Code struct {
	inlineBase
	Attr Attr
	Text string
}

// Link wraps Content in a hyperlink to Target, with optional Title.
type Link struct {
	inlineBase
	Attr    Attr
	Content []Inline
	Target  string
	Title   string
}

// Image is a reference to an external resource; Content is the alt text.
type Image struct {
	inlineBase
	Attr    Attr
	Content []Inline
	Target  string
	Title   string
}

// Span is a generic inline container carrying Attr, the inline analogue of Div.
type Span struct {
	inlineBase
	Attr    Attr
	Content []Inline
}

// MathKind distinguishes inline from display math.
type MathKind int

const (
	MathInline MathKind = iota
	MathDisplay
)

// Math is a LaTeX math expression of the given Kind.
type Math struct {
	inlineBase
	Kind MathKind
	Text string
}

// RawInline passes Text through verbatim for the named output Format.
type RawInline struct {
	inlineBase
	Format string
	Text   string
}

// Note is a footnote whose body is a block sequence.
type Note struct {
	inlineBase
	Content []Block
}

// Quoted wraps Content in the given quote style.
type QuoteType int

const (
	SingleQuote QuoteType = iota
	DoubleQuote
)

type Quoted struct {
	inlineBase
	Type    QuoteType
	Content []Inline
}

// AttrMarker is the sentinel for a free-standing attribute block `{...}` with
// no preceding element to attach to. The parser in internal/parser does not
// parse attribute blocks and never produces one; the HTML writer renders it
// as nothing.
type AttrMarker struct {
	inlineBase
	Attr Attr
}

func newInline(info sourcemap.SourceInfo) inlineBase { return newInlineBase(info) }

// NewStr constructs a Str with the given provenance.
func NewStr(info sourcemap.SourceInfo, text string) *Str {
	return &Str{inlineBase: newInline(info), Text: text}
}

// NewSpan constructs a Span with the given provenance.
func NewSpan(info sourcemap.SourceInfo, attr Attr, content []Inline) *Span {
	return &Span{inlineBase: newInline(info), Attr: attr, Content: content}
}
