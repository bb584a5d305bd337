package document

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// NewPlain constructs a Plain block (inline content with no block wrapper).
func NewPlain(info sourcemap.SourceInfo, content []Inline) *Plain {
	return &Plain{blockBase: newBlockBase(info), Content: content}
}

// NewBlockQuote constructs a BlockQuote.
func NewBlockQuote(info sourcemap.SourceInfo, content []Block) *BlockQuote {
	return &BlockQuote{blockBase: newBlockBase(info), Content: content}
}

// NewBulletList constructs a BulletList.
func NewBulletList(info sourcemap.SourceInfo, items [][]Block) *BulletList {
	return &BulletList{blockBase: newBlockBase(info), Items: items}
}

// NewOrderedList constructs an OrderedList starting at start.
func NewOrderedList(info sourcemap.SourceInfo, start int, items [][]Block) *OrderedList {
	return &OrderedList{blockBase: newBlockBase(info), Start: start, Style: ListNumberDecimal, Delim: ListDelimPeriod, Items: items}
}

// NewCodeBlock constructs a CodeBlock.
func NewCodeBlock(info sourcemap.SourceInfo, attr Attr, text string) *CodeBlock {
	return &CodeBlock{blockBase: newBlockBase(info), Attr: attr, Text: text}
}

// NewRawBlock constructs a RawBlock.
func NewRawBlock(info sourcemap.SourceInfo, format, text string) *RawBlock {
	return &RawBlock{blockBase: newBlockBase(info), Format: format, Text: text}
}

// NewHorizontalRule constructs a HorizontalRule.
func NewHorizontalRule(info sourcemap.SourceInfo) *HorizontalRule {
	return &HorizontalRule{blockBase: newBlockBase(info)}
}

// NewDiv constructs a Div.
func NewDiv(info sourcemap.SourceInfo, attr Attr, content []Block) *Div {
	return &Div{blockBase: newBlockBase(info), Attr: attr, Content: content}
}

// NewTable constructs a Table.
func NewTable(info sourcemap.SourceInfo, colSpecs []ColSpec, head TableHead, bodies []TableBody) *Table {
	return &Table{blockBase: newBlockBase(info), ColSpecs: colSpecs, Head: head, Bodies: bodies}
}

// NewBlockMetadata constructs a BlockMetadata block carrying raw YAML text.
func NewBlockMetadata(info sourcemap.SourceInfo, raw string) *BlockMetadata {
	return &BlockMetadata{blockBase: newBlockBase(info), Raw: raw}
}
