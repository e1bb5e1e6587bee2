package compose_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"wgslln/internal/compose"
	"wgslln/internal/decl"
	"wgslln/internal/diag"
	"wgslln/internal/lexer"
	"wgslln/internal/project"
	"wgslln/internal/registry"
	"wgslln/internal/source"
	"wgslln/internal/wgsl"
)

type fixture struct {
	file   *source.File
	shader map[string]decl.Decl
	reg    *registry.Registry
}

// load parses a host file and registers its exports.
func load(t *testing.T, src string) *fixture {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("test.wgsln", []byte(src)))
	bag := diag.NewBag(20)
	rep := diag.BagReporter{Bag: bag}
	decls := decl.Parse(lexer.Tree(file, lexer.Options{Reporter: rep}), rep)
	if bag.Len() != 0 {
		t.Fatalf("fixture diagnostics: %v", bag.Items())
	}
	fx := &fixture{file: file, shader: make(map[string]decl.Decl), reg: registry.New()}
	for _, d := range decls {
		fx.shader[d.Name] = d
		if d.Exported() {
			if err := fx.reg.Register(d.Export, d.Body, d.ExportSpan); err != nil {
				t.Fatal(err)
			}
		}
	}
	return fx
}

func (fx *fixture) compose(t *testing.T, name string, opts compose.Options) (compose.Result, *diag.Diagnostic) {
	t.Helper()
	d, ok := fx.shader[name]
	if !ok {
		t.Fatalf("no shader %s", name)
	}
	c := &compose.Composer{Fragments: fx.reg, Validator: wgsl.Default, Options: opts}
	return c.ComposeAs(context.Background(), d.Export, d.Body, d.NameSpan)
}

func (fx *fixture) text(sp source.Span) string {
	return string(fx.file.Content[sp.Start:sp.End])
}

const sinCos = `
@export(sin_cos)
shader SIN_COS {
    fn sin_cos(v: f32) -> vec2<f32> {
        return vec2(sin(v), cos(v));
    }
}

@export(sin_cos2)
shader SIN_COS_SQUARED {
    fn sin_cos2(v: f32) -> f32 {
        return #sin_cos(v).x * sin_cos(v).y;
    }
}

shader PLUS_1 {
    fn a(v: f32) -> f32 { return #sin_cos2(v) * #sin_cos(v).x; }
}

shader PLUS_2 {
    fn a(v: f32) -> f32 { return #sin_cos(v).x * #sin_cos2(v); }
}

shader BARE_FIRST {
    fn a(v: f32) -> f32 { return sin_cos(v).x + #sin_cos(v).y; }
}

shader REF_FIRST {
    fn a(v: f32) -> f32 { return #sin_cos(v).x + sin_cos(v).y; }
}
`

func TestComposeSinCos(t *testing.T) {
	fx := load(t, sinCos)
	res, d := fx.compose(t, "SIN_COS_SQUARED", compose.Options{})
	if d != nil {
		t.Fatalf("compose failed: %v", d)
	}
	want := "fn sin_cos(v:f32) -> vec2 < f32 > {\nreturn vec2(sin(v), cos(v));\n}\n" +
		"fn sin_cos2(v:f32) -> f32 {\nreturn sin_cos(v).x * sin_cos(v).y;\n}\n"
	if res.Text != want {
		t.Errorf("text =\n%s\nwant\n%s", res.Text, want)
	}
	if len(res.Fragments) != 1 || res.Fragments[0] != "sin_cos" {
		t.Errorf("fragments = %v", res.Fragments)
	}
	if res.Unchecked {
		t.Error("plain WGSL left unchecked")
	}
}

// Each fragment body appears once however often it is referenced.
func TestComposeDedup(t *testing.T) {
	fx := load(t, sinCos)
	for _, name := range []string{"PLUS_1", "PLUS_2"} {
		res, d := fx.compose(t, name, compose.Options{})
		if d != nil {
			t.Fatalf("%s: %v", name, d)
		}
		for _, fn := range []string{"fn sin_cos(", "fn sin_cos2(", "fn a("} {
			if n := strings.Count(res.Text, fn); n != 1 {
				t.Errorf("%s: %q appears %d times in\n%s", name, fn, n, res.Text)
			}
		}
		if len(res.Fragments) != 2 {
			t.Errorf("%s: fragments = %v", name, res.Fragments)
		}
	}
}

func TestComposeOrderInsensitiveToBareUse(t *testing.T) {
	fx := load(t, sinCos)
	bare, d1 := fx.compose(t, "BARE_FIRST", compose.Options{})
	ref, d2 := fx.compose(t, "REF_FIRST", compose.Options{})
	if d1 != nil || d2 != nil {
		t.Fatalf("compose failed: %v %v", d1, d2)
	}
	body := "fn sin_cos(v:f32) -> vec2 < f32 > {\nreturn vec2(sin(v), cos(v));\n}\n"
	if !strings.HasPrefix(bare.Text, body) || !strings.HasPrefix(ref.Text, body) {
		t.Errorf("fragment not pasted first:\n%s\n---\n%s", bare.Text, ref.Text)
	}
	if !strings.Contains(bare.Text, "return sin_cos(v).x + sin_cos(v).y;") ||
		!strings.Contains(ref.Text, "return sin_cos(v).x + sin_cos(v).y;") {
		t.Errorf("surface order changed:\n%s\n---\n%s", bare.Text, ref.Text)
	}
}

func TestComposeCycle(t *testing.T) {
	fx := load(t, `
@export(ping) shader PING { fn ping(n: i32) -> i32 { return #pong(n - 1); } }
@export(pong) shader PONG { fn pong(n: i32) -> i32 { return #ping(n - 1); } }
shader MAIN { fn main() -> i32 { return #ping(3); } }
`)
	for _, name := range []string{"PING", "PONG", "MAIN"} {
		res, d := fx.compose(t, name, compose.Options{})
		if d != nil {
			t.Fatalf("%s: %v", name, d)
		}
		for _, fn := range []string{"fn ping(", "fn pong("} {
			if n := strings.Count(res.Text, fn); n != 1 {
				t.Errorf("%s: %q appears %d times", name, fn, n)
			}
		}
	}
}

func TestComposeUnknownFragment(t *testing.T) {
	fx := load(t, `
@export(ghosts) shader GHOSTS { fn ghosts() {} }
shader HAUNTED {
    fn main() { #ghost(); }
}
`)
	_, d := fx.compose(t, "HAUNTED", compose.Options{})
	if d == nil {
		t.Fatal("expected a diagnostic")
	}
	if d.Code != diag.CmpUnknownFragment || d.Severity != diag.SevError {
		t.Errorf("diagnostic = %+v", d)
	}
	if got := fx.text(d.Primary); got != "ghost" {
		t.Errorf("primary covers %q, want the ghost token", got)
	}
	if d.Primary == fx.shader["HAUNTED"].NameSpan {
		t.Error("error attributed to the composition site")
	}
	if len(d.Notes) != 1 || !strings.Contains(d.Notes[0].Msg, `"ghosts"`) || fx.text(d.Notes[0].Span) != "ghosts" {
		t.Errorf("notes = %+v", d.Notes)
	}
}

// rejectWord fails any text containing word, at its first offset.
func rejectWord(word string) wgsl.Validator {
	return wgsl.Func(func(text string) error {
		if i := strings.Index(text, word); i >= 0 {
			return &wgsl.Error{Message: "bad " + word, Offset: i}
		}
		return nil
	})
}

func TestComposeGrammarErrorLocation(t *testing.T) {
	fx := load(t, `
@export(bad) shader BAD { fn bad() -> f32 { return oops; } }
shader USES_BAD { fn main() -> f32 { return #bad(); } }
shader LOCAL { fn main() -> f32 { return 1.0 + missing; } }
shader SEMI { fn main() -> f32 { return 1.0; } }
`)
	tests := []struct {
		shader string
		word   string
		at     string
	}{
		{"USES_BAD", "oops", "oops"},
		{"LOCAL", "missing", "missing"},
		{"SEMI", ";", ";"},
		// offset between tokens: the nearest token before it
		{"LOCAL", " + ", "1.0"},
	}
	for _, tt := range tests {
		d := fx.shader[tt.shader]
		c := &compose.Composer{Fragments: fx.reg, Validator: rejectWord(tt.word)}
		_, dg := c.ComposeAs(context.Background(), d.Export, d.Body, d.NameSpan)
		if dg == nil || dg.Code != diag.WgslGrammarError {
			t.Fatalf("%s: diagnostic = %v", tt.shader, dg)
		}
		if got := fx.text(dg.Primary); got != tt.at {
			t.Errorf("%s: primary covers %q, want %q", tt.shader, got, tt.at)
		}
	}
}

func TestComposeGrammarErrorWithoutOffset(t *testing.T) {
	fx := load(t, `shader X { fn main() {} }`)
	d := fx.shader["X"]
	for _, verr := range []error{
		&wgsl.Error{Message: "somewhere", Offset: -1},
		errors.New("not a wgsl error"),
	} {
		c := &compose.Composer{Fragments: fx.reg, Validator: wgsl.Func(func(string) error { return verr })}
		_, dg := c.ComposeAs(context.Background(), "", d.Body, d.NameSpan)
		if dg == nil || dg.Code != diag.WgslGrammarError || dg.Primary != d.NameSpan {
			t.Errorf("%v: diagnostic = %+v", verr, dg)
		}
	}
}

// Text that only type checking can reject never composes.
func TestComposeRejectsInvalidWGSL(t *testing.T) {
	fx := load(t, `
@export(g) shader G { fn g(a: f32) -> f32 { return a; } }
shader RETURN_TYPE { fn f() -> f32 { return 1u; } }
shader ARITY { fn f() -> f32 { return #g(1.0, 2.0); } }
shader ASSIGN_LET { fn f() { let a = 1.0; a = 2.0; } }
shader RECURSION { fn f() { f(); } }
shader MEMBER { struct S { x: f32 } fn f(a: S) -> f32 { return a.y; } }
shader NO_RETURN { fn f() -> f32 { } }
`)
	for name := range fx.shader {
		if name == "G" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			res, dg := fx.compose(t, name, compose.Options{})
			if dg == nil {
				t.Fatalf("accepted:\n%s", res.Text)
			}
			if dg.Code != diag.WgslGrammarError || dg.Severity != diag.SevError {
				t.Errorf("diagnostic = %+v", dg)
			}
			if dg.Primary.File != fx.file.ID || dg.Primary.End > uint32(len(fx.file.Content)) {
				t.Errorf("primary %+v outside the host file", dg.Primary)
			}
		})
	}
}

// Every accepted sigil leaves attributes and member access alone.
func TestComposeWithAllowedSigils(t *testing.T) {
	const src = `
@export(tint) shader TINT { fn tint(c: vec4<f32>) -> vec4<f32> { return c * 0.5; } }
shader FS {
    @fragment
    fn main(@location(0) c: vec4<f32>) -> @location(0) vec4<f32> {
        return vec4<f32>(#tint(c).xyz, c.w);
    }
}
`
	for _, sigil := range project.Sigils {
		t.Run(string(sigil), func(t *testing.T) {
			r, err := project.ParseSigil(string(sigil))
			if err != nil {
				t.Fatal(err)
			}
			fx := load(t, strings.ReplaceAll(src, "#", string(r)))
			d := fx.shader["FS"]
			c := &compose.Composer{Fragments: fx.reg, Options: compose.Options{Sigil: r}}
			res, dg := c.ComposeAs(context.Background(), "", d.Body, d.NameSpan)
			if dg != nil {
				t.Fatalf("diagnostic = %v", dg)
			}
			if !strings.HasPrefix(res.Text, "fn tint(") || !strings.Contains(res.Text, "@fragment fn main(@location(0) c:vec4") ||
				!strings.Contains(res.Text, "tint(c).xyz, c.w") {
				t.Errorf("text = %q", res.Text)
			}
		})
	}
}

func TestComposeTextLimit(t *testing.T) {
	fx := load(t, sinCos)
	_, dg := fx.compose(t, "SIN_COS_SQUARED", compose.Options{MaxText: 16})
	if dg == nil || dg.Code != diag.CmpFailed || dg.Primary != fx.shader["SIN_COS_SQUARED"].NameSpan {
		t.Fatalf("diagnostic = %+v", dg)
	}
	if !strings.Contains(dg.Message, "too large") {
		t.Errorf("message = %q", dg.Message)
	}
}

func TestComposePreprocessor(t *testing.T) {
	src := `
@export(Vertex) shader VERTEX { #import awesome_game_engine::Vertex; }
shader VS {
    @vertex
    fn vertex_shader(vertex: #Vertex) -> VertexOutput {
        var out: VertexOutput;
        return out;
    }
}
shader PLAIN { fn main() -> f32 { return nope; } }
`
	fx := load(t, src)
	res, d := fx.compose(t, "VS", compose.Options{Preprocessor: true})
	if d != nil {
		t.Fatalf("compose failed: %v", d)
	}
	if !res.Unchecked || !strings.HasPrefix(res.Text, "\n#import awesome_game_engine::Vertex;\n@vertex fn vertex_shader(vertex:Vertex)") {
		t.Errorf("unchecked=%v text=%q", res.Unchecked, res.Text)
	}

	// without directives in the output the text is still validated
	if _, d := fx.compose(t, "PLAIN", compose.Options{Preprocessor: true}); d == nil || d.Code != diag.WgslGrammarError {
		t.Errorf("PLAIN: diagnostic = %v", d)
	}

	// outside preprocessor mode `#import` is a fragment reference
	if _, d := fx.compose(t, "VS", compose.Options{}); d == nil || !strings.Contains(d.Message, `"import"`) {
		t.Errorf("VS without preprocessor: diagnostic = %v", d)
	}
}

func TestComposeWithoutValidator(t *testing.T) {
	fx := load(t, `shader X { fn main() -> f32 { return nope; } }`)
	c := &compose.Composer{Fragments: fx.reg}
	res, d := c.Compose(context.Background(), fx.shader["X"].Body, fx.shader["X"].NameSpan)
	if d != nil || !res.Unchecked {
		t.Errorf("res=%+v d=%v", res, d)
	}
}

func TestComposedMapIsMonotonic(t *testing.T) {
	fx := load(t, sinCos)
	for name := range fx.shader {
		res, d := fx.compose(t, name, compose.Options{})
		if d != nil {
			t.Fatalf("%s: %v", name, d)
		}
		if !res.Map.Valid() {
			t.Errorf("%s: offset map not strictly increasing", name)
		}
		again, _ := fx.compose(t, name, compose.Options{})
		if again.Text != res.Text {
			t.Errorf("%s: composition not deterministic", name)
		}
	}
}
