package diagnostic

import (
	"strconv"

	"github.com/tidwall/sjson"

	"github.com/qmd-toolchain/qmdcore/internal/sourcemap"
)

// ToJSON renders m into the stable wire field set required by spec.md §4.2:
// kind, code, title, message, location, hints. Built incrementally with
// sjson.SetBytes so optional fields (location, hints, related) can be
// omitted without hand-building a map and re-marshaling it.
func ToJSON(m Message, sm *sourcemap.Map) ([]byte, error) {
	var buf []byte
	var err error

	set := func(path string, value any) {
		if err != nil {
			return
		}
		buf, err = sjson.SetBytes(buf, path, value)
	}

	set("kind", m.Kind.String())
	set("code", m.Code)
	set("title", m.Title)
	set("message", m.Text)

	if err != nil {
		return nil, err
	}

	if m.Location != nil && sm != nil {
		if r, rerr := m.Location.Resolve(sm); rerr == nil {
			line, col, perr := sm.Position(r.File, r.Start)
			set("location.file", r.File.String())
			set("location.start", r.Start)
			set("location.end", r.End)
			if perr == nil {
				set("location.line", line)
				set("location.column", col)
			}
		}
	}

	for i, h := range m.Hints {
		set("hints."+strconv.Itoa(i), h.Message)
	}

	for i, rel := range m.Related {
		set("related."+strconv.Itoa(i)+".message", rel.Message)
	}

	if err != nil {
		return nil, err
	}
	if buf == nil {
		buf = []byte("{}")
	}
	return buf, nil
}

// ToJSONBatch renders a full diagnostic list as a JSON array.
func ToJSONBatch(messages []Message, sm *sourcemap.Map) ([]byte, error) {
	out := []byte("[]")
	for i, m := range messages {
		encoded, err := ToJSON(m, sm)
		if err != nil {
			return nil, err
		}
		var setErr error
		out, setErr = sjson.SetRawBytes(out, strconv.Itoa(i), encoded)
		if setErr != nil {
			return nil, setErr
		}
	}
	return out, nil
}
