package document

import "github.com/qmd-toolchain/qmdcore/internal/sourcemap"

// NewSpace constructs a Space.
func NewSpace(info sourcemap.SourceInfo) *Space { return &Space{inlineBase: newInline(info)} }

// NewSoftBreak constructs a SoftBreak.
func NewSoftBreak(info sourcemap.SourceInfo) *SoftBreak { return &SoftBreak{inlineBase: newInline(info)} }

// NewLineBreak constructs a LineBreak.
func NewLineBreak(info sourcemap.SourceInfo) *LineBreak { return &LineBreak{inlineBase: newInline(info)} }

// NewEmph constructs an Emph.
func NewEmph(info sourcemap.SourceInfo, content []Inline) *Emph {
	return &Emph{inlineBase: newInline(info), Content: content}
}

// NewStrong constructs a Strong.
func NewStrong(info sourcemap.SourceInfo, content []Inline) *Strong {
	return &Strong{inlineBase: newInline(info), Content: content}
}

// NewStrikeout constructs a Strikeout.
func NewStrikeout(info sourcemap.SourceInfo, content []Inline) *Strikeout {
	return &Strikeout{inlineBase: newInline(info), Content: content}
}

// NewCode constructs an inline Code span.
func NewCode(info sourcemap.SourceInfo, attr Attr, text string) *Code {
	return &Code{inlineBase: newInline(info), Attr: attr, Text: text}
}

// NewLink constructs a Link.
func NewLink(info sourcemap.SourceInfo, attr Attr, content []Inline, target, title string) *Link {
	return &Link{inlineBase: newInline(info), Attr: attr, Content: content, Target: target, Title: title}
}

// NewImage constructs an Image.
func NewImage(info sourcemap.SourceInfo, attr Attr, content []Inline, target, title string) *Image {
	return &Image{inlineBase: newInline(info), Attr: attr, Content: content, Target: target, Title: title}
}

// NewRawInline constructs a RawInline.
func NewRawInline(info sourcemap.SourceInfo, format, text string) *RawInline {
	return &RawInline{inlineBase: newInline(info), Format: format, Text: text}
}

// NewAttrMarker constructs the free-standing-attribute sentinel.
func NewAttrMarker(info sourcemap.SourceInfo, attr Attr) *AttrMarker {
	return &AttrMarker{inlineBase: newInline(info), Attr: attr}
}
