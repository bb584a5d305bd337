package diagnostic

import "strconv"

// Capture refers to a previously consumed token by its LR state and symbol,
// used to interpolate concrete source text into an ErrorInfo's message or
// notes.
type Capture struct {
	Label   string
	LRState int
	Symbol  string
	Size    int
	Row     int
	Col     int
}

// NoteSpan is a note spanning two captures, with optional whitespace
// trimming of the region between them.
type NoteSpan struct {
	Text        string
	FromLabel   string
	ToLabel     string
	TrimSpace   bool
	PlainNote   string // used instead of From/To when this is a simple note
}

// ErrorInfo is one compiled entry in the error table: what to say when the
// parser hits (State, Lookahead).
type ErrorInfo struct {
	Code     string
	Title    string
	Message  string
	Captures []Capture
	Notes    []NoteSpan
}

// errorTableKey identifies one (LR state, lookahead symbol) pair.
type errorTableKey struct {
	State     int
	Lookahead string
}

// ErrorTable is the compile-time generated [(state, lookahead) -> ErrorInfo]
// table described by spec.md §4.2. Lookup is linear (the table is small);
// multiple entries may share a key, all are returned, and disambiguation
// between them is a generator-time concern, not a runtime one.
type ErrorTable struct {
	entries []tableEntry
}

type tableEntry struct {
	key  errorTableKey
	info ErrorInfo
}

// NewErrorTable returns an empty table; callers populate it with Register.
func NewErrorTable() *ErrorTable {
	return &ErrorTable{}
}

// Register adds one (state, lookahead) -> info mapping.
func (t *ErrorTable) Register(state int, lookahead string, info ErrorInfo) {
	t.entries = append(t.entries, tableEntry{key: errorTableKey{State: state, Lookahead: lookahead}, info: info})
}

// Lookup returns every ErrorInfo registered for (state, lookahead).
func (t *ErrorTable) Lookup(state int, lookahead string) []ErrorInfo {
	var matches []ErrorInfo
	for _, e := range t.entries {
		if e.key.State == state && e.key.Lookahead == lookahead {
			matches = append(matches, e.info)
		}
	}
	return matches
}

// GenericUnexpected builds the fallback diagnostic used when no table entry
// matches a given (state, lookahead) pair.
func GenericUnexpected(state int, lookahead string) ErrorInfo {
	return ErrorInfo{
		Code:    "Q-0-00",
		Title:   "unexpected token",
		Message: "unexpected " + lookahead + " in state " + strconv.Itoa(state),
	}
}
