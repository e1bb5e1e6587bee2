package srcmap

import (
	"testing"

	"wgslln/internal/source"
)

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func TestAddKeepsOrder(t *testing.T) {
	var m Map
	if !m.Add(0, span(100)) || !m.Add(5, span(200)) {
		t.Fatal("in-order add rejected")
	}
	if m.Add(5, span(300)) || m.Add(3, span(300)) {
		t.Error("out-of-order add accepted")
	}
	if len(m) != 2 || !m.Valid() {
		t.Errorf("map = %+v", m)
	}
	if (Map{{Offset: 2}, {Offset: 2}}).Valid() {
		t.Error("equal offsets reported valid")
	}
}

func TestTranslate(t *testing.T) {
	m := Map{
		{Offset: 4, Span: span(10)},
		{Offset: 9, Span: span(20)},
		{Offset: 15, Span: span(30)},
	}
	fallback := source.Span{File: 9, Start: 0, End: 0}
	tests := []struct {
		off  uint32
		want source.Span
	}{
		{0, fallback},
		{3, fallback},
		{4, span(10)},
		{8, span(10)},
		{9, span(20)},
		{14, span(20)},
		{15, span(30)},
		{1000, span(30)},
	}
	for _, tt := range tests {
		if got := Translate(m, tt.off, fallback); got != tt.want {
			t.Errorf("Translate(%d) = %v, want %v", tt.off, got, tt.want)
		}
	}
	if got := Translate(nil, 5, fallback); got != fallback {
		t.Errorf("empty map: got %v", got)
	}
}
