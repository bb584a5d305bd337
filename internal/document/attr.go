package document

import "github.com/qmd-toolchain/qmdcore/internal/document/orderedmap"

// Attr is the Pandoc-style attribute triple attached to many block and
// inline nodes: an optional ID, a list of classes, and an ordered set of
// key-value pairs.
type Attr struct {
	ID       string
	Class    []string
	KeyValue *orderedmap.Map
}

// NewAttr returns an empty Attr with an initialized key-value map.
func NewAttr() Attr {
	return Attr{KeyValue: orderedmap.New()}
}

// IsEmpty reports whether the attribute carries no identifying information,
// the condition under which an empty-attr Span is semantically transparent.
func (a Attr) IsEmpty() bool {
	return a.ID == "" && len(a.Class) == 0 && (a.KeyValue == nil || a.KeyValue.Len() == 0)
}

// HasClass reports whether name is present among a.Class.
func (a Attr) HasClass(name string) bool {
	for _, c := range a.Class {
		if c == name {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of a.
func (a Attr) Clone() Attr {
	out := Attr{ID: a.ID, Class: append([]string(nil), a.Class...)}
	if a.KeyValue != nil {
		out.KeyValue = a.KeyValue.Clone()
	} else {
		out.KeyValue = orderedmap.New()
	}
	return out
}
