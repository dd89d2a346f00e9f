package trace

import (
	"encoding/json"
	"maps"
	"slices"
	"strconv"
)

// Format selects how events are serialised.
type Format uint8

const (
	FormatAuto Format = iota // decided by the output path
	FormatText
	FormatNDJSON
)

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// FormatEvent renders ev as one line, newline included.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return appendJSON(nil, ev)
	}
	return appendText(make([]byte, 0, 64), ev)
}

// wireEvent is the NDJSON shape; field names are stable for external tools.
type wireEvent struct {
	Time   string            `json:"time"`
	Seq    uint64            `json:"seq"`
	Kind   string            `json:"kind"`
	Scope  string            `json:"scope"`
	Span   uint64            `json:"span_id"`
	Parent uint64            `json:"parent_id,omitempty"`
	GID    uint64            `json:"gid,omitempty"`
	Name   string            `json:"name"`
	Detail string            `json:"detail,omitempty"`
	Extra  map[string]string `json:"extra,omitempty"`
}

func appendJSON(dst []byte, ev *Event) []byte {
	data, err := json.Marshal(wireEvent{
		Time:   ev.Time.Format(timeLayout),
		Seq:    ev.Seq,
		Kind:   ev.Kind.String(),
		Scope:  ev.Scope.String(),
		Span:   ev.SpanID,
		Parent: ev.ParentID,
		GID:    ev.GID,
		Name:   ev.Name,
		Detail: ev.Detail,
		Extra:  ev.Extra,
	})
	if err != nil {
		// only strings and integers inside, cannot happen
		return append(dst, '\n')
	}
	return append(append(dst, data...), '\n')
}

var kindMarks = [...]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
}

// appendText writes `#seq scope  → name (detail) {k=v, ...}`; everything
// below the driver is indented by scope depth.
func appendText(dst []byte, ev *Event) []byte {
	seq := strconv.FormatUint(ev.Seq, 10)
	dst = append(dst, '#')
	dst = appendPadded(dst, seq, 5)
	dst = append(dst, ' ')
	dst = appendPadded(dst, ev.Scope.String(), 6)
	dst = append(dst, ' ')
	for s := ScopeDriver; s < ev.Scope; s++ {
		dst = append(dst, "  "...)
	}
	if int(ev.Kind) < len(kindMarks) {
		dst = append(dst, kindMarks[ev.Kind]...)
	}
	dst = append(dst, ev.Name...)
	if ev.Detail != "" {
		dst = append(dst, " ("...)
		dst = append(dst, ev.Detail...)
		dst = append(dst, ')')
	}
	if len(ev.Extra) > 0 {
		dst = append(dst, " {"...)
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				dst = append(dst, ", "...)
			}
			dst = append(dst, k...)
			dst = append(dst, '=')
			dst = append(dst, ev.Extra[k]...)
		}
		dst = append(dst, '}')
	}
	return append(dst, '\n')
}

// appendPadded left-aligns s in a field of width w.
func appendPadded(dst []byte, s string, w int) []byte {
	dst = append(dst, s...)
	for n := len(s); n < w; n++ {
		dst = append(dst, ' ')
	}
	return dst
}
