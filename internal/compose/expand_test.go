package compose

import (
	"errors"
	"fmt"
	"testing"

	"wgslln/internal/diag"
	"wgslln/internal/source"
	"wgslln/internal/token"
)

func frags(t *testing.T, bodies map[string]string) FragmentsFunc {
	t.Helper()
	m := make(map[string][]token.Token, len(bodies))
	for name, body := range bodies {
		m[name] = lexSeq(t, body)
	}
	return func(name string) ([]token.Token, bool) {
		b, ok := m[name]
		return b, ok
	}
}

func TestExpand(t *testing.T) {
	lookup := frags(t, map[string]string{"f": "fn f() {}"})
	seq := lexSeq(t, "f()")
	pending := NewPending()

	out, err := Expand(seq, Ref{Name: "f"}, pending, lookup)
	if err != nil {
		t.Fatal(err)
	}
	if got := token.Debug(out); got != "fn f () {} f ()" {
		t.Errorf("out = %q", got)
	}
	if !pending.Has("f") || pending.Len() != 1 {
		t.Errorf("pending = %v", pending.Names())
	}

	again, err := Expand(seq, Ref{Name: "f"}, pending, lookup)
	if err != nil || token.Debug(again) != token.Debug(seq) {
		t.Errorf("second expand changed sequence: %q, %v", token.Debug(again), err)
	}
}

func TestExpandUnknown(t *testing.T) {
	sp := source.Span{File: 3, Start: 4, End: 9}
	_, err := Expand(nil, Ref{Name: "ghost", Span: sp}, NewPending(), frags(t, nil))
	var unknown *UnknownFragmentError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownFragmentError, got %v", err)
	}
	if unknown.Name != "ghost" || unknown.Span != sp {
		t.Errorf("error = %+v", unknown)
	}
}

func TestExpandClonesBody(t *testing.T) {
	lookup := frags(t, map[string]string{"f": "{ x }"})
	out, err := Expand(nil, Ref{Name: "f"}, NewPending(), lookup)
	if err != nil {
		t.Fatal(err)
	}
	out[0].Children[0].Text = "changed"
	body, _ := lookup("f")
	if token.Debug(body) != "{x}" {
		t.Error("pasted body shares storage with the registered one")
	}
}

func TestResolve(t *testing.T) {
	lookup := frags(t, map[string]string{
		"a": "fn a() { #b(); }",
		"b": "fn b() { #a(); }",
		"c": "fn c() { #b(); #a(); }",
	})
	tests := []struct {
		name    string
		input   string
		seed    []string
		want    string
		pending []string
	}{
		{"plain", "fn main() {}", nil, "fn main () {}", nil},
		{"cycle", "#a()", nil, "fn b () {a () ;} fn a () {b () ;} a ()", []string{"a", "b"}},
		{"transitive", "#c()", nil, "fn a () {b () ;} fn b () {a () ;} fn c () {b () ; a () ;} c ()", []string{"c", "b", "a"}},
		{"seeded self", "fn a() { #b(); }", []string{"a"}, "fn b () {a () ;} fn a () {b () ;}", []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, pending, err := Resolve(lexSeq(t, tt.input), lookup, Options{}, tt.seed...)
			if err != nil {
				t.Fatal(err)
			}
			if got := token.Debug(out); got != tt.want {
				t.Errorf("out = %q\nwant  %q", got, tt.want)
			}
			got := pending.Names()
			if len(got) != len(tt.pending) {
				t.Fatalf("pending = %v, want %v", got, tt.pending)
			}
			for i := range got {
				if got[i] != tt.pending[i] {
					t.Errorf("pending = %v, want %v", got, tt.pending)
				}
			}
		})
	}
}

func TestResolveErrorCodes(t *testing.T) {
	c := &Composer{Fragments: frags(t, nil)}
	site := source.Span{File: 1, Start: 4, End: 9}
	ref := source.Span{File: 1, Start: 20, End: 25}

	tests := []struct {
		name string
		err  error
		code diag.Code
		at   source.Span
	}{
		{"unknown", &UnknownFragmentError{Name: "ghost", Span: ref}, diag.CmpUnknownFragment, ref},
		{"wrapped unknown", fmt.Errorf("paste: %w", &UnknownFragmentError{Name: "ghost", Span: ref}), diag.CmpUnknownFragment, ref},
		{"other", errors.New("registry unavailable"), diag.CmpFailed, site},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := c.resolveError(tt.err, site)
			if d.Code != tt.code || d.Primary != tt.at {
				t.Errorf("got %s at %+v, want %s at %+v", d.Code.ID(), d.Primary, tt.code.ID(), tt.at)
			}
		})
	}
}
