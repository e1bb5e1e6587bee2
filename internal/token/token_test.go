package token

import (
	"testing"

	"wgslln/internal/source"
)

func sampleTree() []Token {
	sp := source.Span{}
	return []Token{
		NewIdent("fn", sp),
		NewIdent("f", sp),
		NewGroup(Paren, []Token{NewIdent("x", sp)}, sp, sp),
		NewGroup(Brace, []Token{
			NewIdent("return", sp),
			NewPunct('#', Alone, sp),
			NewIdent("g", sp),
			NewGroup(Paren, []Token{NewLiteral("1.0", sp)}, sp, sp),
			NewPunct(';', Alone, sp),
		}, sp, sp),
	}
}

func TestWalkPreorder(t *testing.T) {
	var got []string
	Walk(sampleTree(), func(tok Token, depth int) bool {
		if tok.Kind == Group {
			got = append(got, tok.Delim.String())
		} else {
			got = append(got, tok.Text)
		}
		return true
	})
	want := []string{"fn", "f", "Paren", "x", "Brace", "return", "#", "g", "Paren", "1.0", ";"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestWalkSkipChildren(t *testing.T) {
	n := 0
	Walk(sampleTree(), func(tok Token, _ int) bool {
		n++
		return tok.Kind != Group
	})
	if n != 4 {
		t.Errorf("visited %d tokens, want 4", n)
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	orig := sampleTree()
	cp := Clone(orig)
	cp[3].Children[0].Text = "changed"
	if orig[3].Children[0].Text != "return" {
		t.Fatal("Clone shares group children with the original")
	}
	if !Equal(Clone(orig), orig) {
		t.Fatal("clone should be structurally equal")
	}
}

func TestEqualSpacing(t *testing.T) {
	a := []Token{NewPunct('-', Joint, source.Span{})}
	b := []Token{NewPunct('-', Alone, source.Span{})}
	if Equal(a, b) {
		t.Error("spacing difference must matter")
	}
}

func TestDebugAndIdents(t *testing.T) {
	tree := sampleTree()
	if got := Debug(tree); got != "fn f (x) {return # g (1.0) ;}" {
		t.Errorf("Debug = %q", got)
	}
	if got := Idents(tree); len(got) != 5 || got[4] != "g" {
		t.Errorf("Idents = %v", got)
	}
	if Count(tree) != 11 {
		t.Errorf("Count = %d", Count(tree))
	}
}

func TestPredicates(t *testing.T) {
	p := NewPunct('#', Alone, source.Span{})
	if !p.IsPunct('#') || p.IsPunct(';') || p.Char() != '#' {
		t.Error("punct predicates")
	}
	id := NewIdent("vec2", source.Span{})
	if !id.IsIdent() || !id.IsIdent("vec3", "vec2") || id.IsIdent("f32") {
		t.Error("ident predicates")
	}
	g := NewGroup(Brace, nil, source.Span{Start: 1, End: 2}, source.Span{Start: 9, End: 10})
	if !g.IsGroup(Brace) || g.FullSpan() != (source.Span{Start: 1, End: 10}) {
		t.Error("group predicates")
	}
}
