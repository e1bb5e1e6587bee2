package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"wgslln/internal/diag"
	"wgslln/internal/lexer"
	"wgslln/internal/source"
)

const ghostLine = "shader A { fn f() -> f32 { return #ghost; } }\n"

func ghostBag(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.wgsln", []byte(ghostLine))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.CmpUnknownFragment, source.Span{File: id, Start: 35, End: 40}, `unknown fragment "ghost"`).
		WithNote(source.Span{File: id, Start: 7, End: 8}, "referenced from shader A")
	bag.Add(d)
	bag.Add(diag.New(diag.SevWarning, diag.DeclExportNameMismatch, source.Span{File: id, Start: 11, End: 13}, "second"))
	return bag, fs
}

func TestPrettyPlain(t *testing.T) {
	bag, fs := ghostBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true})

	want := "test.wgsln:1:36: ERROR CMP3001: unknown fragment \"ghost\"\n" +
		"1 | " + strings.TrimSuffix(ghostLine, "\n") + "\n" +
		"  | " + strings.Repeat(" ", 35) + "^~~~~\n" +
		"  note: test.wgsln:1:8: referenced from shader A\n" +
		"1 | " + strings.TrimSuffix(ghostLine, "\n") + "\n" +
		"  | " + strings.Repeat(" ", 7) + "^\n" +
		"\n" +
		"test.wgsln:1:12: WARNING DCL2007: second\n" +
		"1 | " + strings.TrimSuffix(ghostLine, "\n") + "\n" +
		"  | " + strings.Repeat(" ", 11) + "^~\n"
	if got := buf.String(); got != want {
		t.Errorf("Pretty =\n%s\nwant\n%s", got, want)
	}
}

func TestPrettyHidesNotes(t *testing.T) {
	bag, fs := ghostBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if strings.Contains(buf.String(), "note:") {
		t.Errorf("notes printed without ShowNotes:\n%s", buf.String())
	}
}

func TestPrettyColor(t *testing.T) {
	bag, fs := ghostBag(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("no escape sequences with Color: %q", buf.String())
	}
}

func TestPrettyWideAndTabs(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("wide.wgsln", []byte("\t世界 x\nnext\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: id, Start: 8, End: 9}, "x"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	lines := strings.Split(buf.String(), "\n")
	if len(lines) < 3 {
		t.Fatalf("output too short: %q", buf.String())
	}
	if lines[1] != "1 |     世界 x" {
		t.Errorf("source line = %q", lines[1])
	}
	if lines[2] != "  | "+strings.Repeat(" ", 9)+"^" {
		t.Errorf("caret line = %q", lines[2])
	}
}

func TestPrettyContext(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("ctx.wgsln", []byte("a\nb\nc\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: id, Start: 4, End: 5}, "c"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1})
	if !strings.Contains(buf.String(), "2 | b\n3 | c\n") {
		t.Errorf("context missing:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "1 | a") {
		t.Errorf("too much context:\n%s", buf.String())
	}
}

func TestPrettyEmptyFile(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("gone.wgsln", nil)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: id}, "failed to load gone.wgsln"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	if got := buf.String(); got != "gone.wgsln:1:1: ERROR IO5001: failed to load gone.wgsln\n" {
		t.Errorf("Pretty = %q", got)
	}
}

func TestJSON(t *testing.T) {
	bag, fs := ghostBag(t)
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 2 || len(out.Diagnostics) != 2 {
		t.Fatalf("count = %d", out.Count)
	}
	d := out.Diagnostics[0]
	if d.Code != "CMP3001" || d.Severity != "ERROR" || d.Title != "Unknown fragment" {
		t.Errorf("diagnostic = %+v", d)
	}
	if d.Location.File != "test.wgsln" || d.Location.StartLine != 1 || d.Location.StartCol != 36 || d.Location.EndCol != 41 {
		t.Errorf("location = %+v", d.Location)
	}
	if len(d.Notes) != 1 || d.Notes[0].Location.StartCol != 8 {
		t.Errorf("notes = %+v", d.Notes)
	}

	buf.Reset()
	if err := JSON(&buf, bag, fs, JSONOpts{Max: 1}); err != nil {
		t.Fatal(err)
	}
	out = DiagnosticsOutput{}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 1 || out.Diagnostics[0].Notes != nil || out.Diagnostics[0].Location.StartLine != 0 {
		t.Errorf("trimmed output = %+v", out)
	}
	if !out.Truncated || out.Errors != 1 || out.Warnings != 1 {
		t.Errorf("summary = truncated:%v errors:%d warnings:%d", out.Truncated, out.Errors, out.Warnings)
	}
}

func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	id := fs.Add("/home/user/project/shaders/a.wgsln", []byte("x\n"), 0)
	outside := fs.Add("/elsewhere/b.wgsln", []byte("x\n"), 0)
	f, o := fs.Get(id), fs.Get(outside)

	tests := []struct {
		mode PathMode
		file *source.File
		want string
	}{
		{PathModeAbsolute, f, "/home/user/project/shaders/a.wgsln"},
		{PathModeRelative, f, "shaders/a.wgsln"},
		{PathModeBasename, f, "a.wgsln"},
		{PathModeAuto, f, "shaders/a.wgsln"},
		{PathModeAuto, o, "/elsewhere/b.wgsln"},
	}
	for _, tt := range tests {
		if got := formatPath(tt.file, fs, tt.mode); got != tt.want {
			t.Errorf("formatPath(%s, %d) = %q, want %q", tt.file.Path, tt.mode, got, tt.want)
		}
	}
}

func TestFormatTrees(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("t.wgsln", []byte("fn f(a) {}")))
	tokens := lexer.Tree(file, lexer.Options{})

	var buf bytes.Buffer
	if err := FormatTreesPretty(&buf, tokens, fs); err != nil {
		t.Fatal(err)
	}
	want := `Ident "fn" 1:1-1:3
Ident "f" 1:4-1:5
Group Paren 1:5-1:8
  Ident "a" 1:6-1:7
Group Brace 1:9-1:11
`
	if buf.String() != want {
		t.Errorf("pretty =\n%s\nwant\n%s", buf.String(), want)
	}

	buf.Reset()
	if err := FormatTreesJSON(&buf, tokens, fs); err != nil {
		t.Fatal(err)
	}
	var out []TokenOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 || out[2].Delim != "Paren" || len(out[2].Children) != 1 || out[2].Children[0].Text != "a" {
		t.Errorf("json = %+v", out)
	}
}
