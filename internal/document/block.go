package document

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// Block is the tagged union of block-level document nodes. Every variant
// carries its own SourceInfo; concrete types additionally expose an
// AttrSource field where an attribute block can be located separately from
// the element body.
type Block interface {
	isBlock()
	Info() sourcemap.SourceInfo
}

type blockBase struct {
	SrcInfo sourcemap.SourceInfo
}

func (b blockBase) isBlock() {}

func (b blockBase) Info() sourcemap.SourceInfo { return b.SrcInfo }

// Paragraph is a single block of inline content.
type Paragraph struct {
	blockBase
	Content []Inline
}

// Plain is inline content with no enclosing block markup (e.g. a list item's
// sole line), rendered without a wrapping <p>.
type Plain struct {
	blockBase
	Content []Inline
}

// Header is a section heading at Level (1-6 per invariant).
type Header struct {
	blockBase
	Level      int
	Attr       Attr
	AttrSource sourcemap.SourceInfo
	Content    []Inline
}

// BlockQuote nests a sequence of blocks inside a quotation.
type BlockQuote struct {
	blockBase
	Content []Block
}

// BulletList is an unordered list; each item is itself a block sequence.
type BulletList struct {
	blockBase
	Items [][]Block
}

// ListNumberStyle enumerates OrderedList marker numbering styles.
type ListNumberStyle int

const (
	ListNumberDefault ListNumberStyle = iota
	ListNumberDecimal
	ListNumberLowerRoman
	ListNumberUpperRoman
	ListNumberLowerAlpha
	ListNumberUpperAlpha
)

// ListNumberDelim enumerates OrderedList marker delimiter styles.
type ListNumberDelim int

const (
	ListDelimDefault ListNumberDelim = iota
	ListDelimPeriod
	ListDelimOneParen
	ListDelimTwoParens
)

// OrderedList is a numbered list starting at Start.
type OrderedList struct {
	blockBase
	Start int
	Style ListNumberStyle
	Delim ListNumberDelim
	Items [][]Block
}

// CodeBlock is a fenced or indented literal code region.
type CodeBlock struct {
	blockBase
	Attr       Attr
	AttrSource sourcemap.SourceInfo
	Text       string
}

// RawBlock passes Text through verbatim for the named output Format.
type RawBlock struct {
	blockBase
	Format string
	Text   string
}

// Figure wraps Content with an optional Caption, per spec.md's
// Figure/Image collapsing normalization.
type Figure struct {
	blockBase
	Attr       Attr
	AttrSource sourcemap.SourceInfo
	Caption    []Block
	Content    []Block
}

// Div is a generic block-level container carrying Attr, used heavily for
// fenced-div syntax (callouts, columns, semantic wrappers).
type Div struct {
	blockBase
	Attr       Attr
	AttrSource sourcemap.SourceInfo
	Content    []Block
}

// Alignment enumerates table column alignment.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignRight
	AlignCenter
)

// TableCell is one cell of a Table row.
type TableCell struct {
	Info      sourcemap.SourceInfo
	ColSpan   int
	RowSpan   int
	Content   []Block
}

// TableRow is a sequence of cells.
type TableRow struct {
	Info  sourcemap.SourceInfo
	Cells []TableCell
}

// TableHead is the optional header row group of a Table.
type TableHead struct {
	Info sourcemap.SourceInfo
	Rows []TableRow
}

// TableBody is one body row group, split by RowHeadColumns per Pandoc's
// table model (row-header columns repeated per body group).
type TableBody struct {
	Info           sourcemap.SourceInfo
	RowHeadColumns int
	HeadRows       []TableRow
	BodyRows       []TableRow
}

// TableFoot is the optional footer row group of a Table.
type TableFoot struct {
	Info sourcemap.SourceInfo
	Rows []TableRow
}

// Table is the full Pandoc-style grid/pipe table representation.
type Table struct {
	blockBase
	Attr       Attr
	AttrSource sourcemap.SourceInfo
	Caption    []Block
	ColSpecs   []ColSpec
	Head       TableHead
	Bodies     []TableBody
	Foot       TableFoot
}

// ColSpec is one column's alignment and optional relative width.
type ColSpec struct {
	Alignment Alignment
	Width     *float64
}

// HorizontalRule is a thematic break.
type HorizontalRule struct {
	blockBase
}

// BlockMetadata carries the raw YAML text of a metadata block (front matter
// or an inline metadata block) attached at this point in the document.
type BlockMetadata struct {
	blockBase
	Raw string
}

// CaptionBlock wraps the block content of a caption, kept distinct from
// Figure.Caption so filters can target bare captions (e.g. table captions).
type CaptionBlock struct {
	blockBase
	Content []Block
}

func newBlockBase(info sourcemap.SourceInfo) blockBase { return blockBase{SrcInfo: info} }

// NewParagraph constructs a Paragraph with the given provenance.
func NewParagraph(info sourcemap.SourceInfo, content []Inline) *Paragraph {
	return &Paragraph{blockBase: newBlockBase(info), Content: content}
}

// NewHeader constructs a Header with the given provenance.
func NewHeader(info sourcemap.SourceInfo, level int, attr Attr, content []Inline) *Header {
	return &Header{blockBase: newBlockBase(info), Level: level, Attr: attr, Content: content}
}
