// Package srcmap maps byte offsets of emitted WGSL text back to the spans of
// the tokens that produced them.
package srcmap

import (
	"sort"

	"wgslln/internal/source"
)

// Entry ties the first byte of an emitted token to its original span.
type Entry struct {
	Offset uint32
	Span   source.Span
}

// Map is ordered by strictly increasing Offset.
type Map []Entry

// Add appends an entry. An entry at an offset that is not past the last one
// replaces nothing and is dropped, so the map stays strictly increasing.
func (m *Map) Add(off uint32, sp source.Span) bool {
	if n := len(*m); n > 0 && (*m)[n-1].Offset >= off {
		return false
	}
	*m = append(*m, Entry{Offset: off, Span: sp})
	return true
}

// Valid reports whether offsets are strictly increasing.
func (m Map) Valid() bool {
	for i := 1; i < len(m); i++ {
		if m[i-1].Offset >= m[i].Offset {
			return false
		}
	}
	return true
}

// Lookup finds the entry with the greatest Offset <= off.
func (m Map) Lookup(off uint32) (Entry, bool) {
	i := sort.Search(len(m), func(i int) bool { return m[i].Offset > off })
	if i == 0 {
		return Entry{}, false
	}
	return m[i-1], true
}

// Translate returns the span of the nearest preceding token, or fallback when
// off lies before the first entry or the map is empty.
func Translate(m Map, off uint32, fallback source.Span) source.Span {
	if e, ok := m.Lookup(off); ok {
		return e.Span
	}
	return fallback
}
