package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"wgslln/internal/diag"
	"wgslln/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, path, gutter, caret *color.Color
}

// newPalette returns a palette of nil colours when disabled.
func newPalette(enabled bool) *palette {
	if !enabled {
		return &palette{}
	}
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		c.EnableColor()
		return c
	}
	return &palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		path:   mk(color.Bold),
		gutter: mk(color.FgBlue),
		caret:  mk(color.FgGreen, color.Bold),
	}
}

func paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil || fs == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		sev := severityLabel(pal, d.Severity)
		fmt.Fprintf(w, "%s: %s %s: %s\n", location(pal, fs, d.Primary, opts.PathMode), sev, d.Code.ID(), d.Message)
		snippet(w, pal, fs, d.Primary, int(opts.Context))
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s: %s: %s\n", paint(pal.note, "note"),
				location(pal, fs, n.Span, opts.PathMode), n.Msg)
			snippet(w, pal, fs, n.Span, 0)
		}
	}
}

func severityLabel(pal *palette, sev diag.Severity) string {
	label := sev.String()
	switch sev {
	case diag.SevError:
		return paint(pal.err, label)
	case diag.SevWarning:
		return paint(pal.warn, label)
	default:
		return paint(pal.info, label)
	}
}

func location(pal *palette, fs *source.FileSet, sp source.Span, mode PathMode) string {
	f := fs.Get(sp.File)
	start, _ := fs.Resolve(sp)
	loc := fmt.Sprintf("%s:%d:%d", formatPath(f, fs, mode), start.Line, start.Col)
	return paint(pal.path, loc)
}

// snippet prints the line of sp with up to context lines before it and a
// caret underline sized by display width.
func snippet(w io.Writer, pal *palette, fs *source.FileSet, sp source.Span, context int) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(sp)
	first := int(start.Line) - max(context, 0)
	if first < 1 {
		first = 1
	}
	width := len(fmt.Sprint(start.Line))

	for ln := first; ln <= int(start.Line); ln++ {
		text := expandTabs(f.GetLine(uint32(ln)))
		fmt.Fprintf(w, "%s %s\n", paint(pal.gutter, fmt.Sprintf("%*d |", width, ln)), text)
	}

	line := f.GetLine(start.Line)
	col := max(min(int(start.Col)-1, len(line)), 0)
	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	pad := runewidth.StringWidth(expandTabs(line[:col]))
	n := runewidth.StringWidth(expandTabs(line[col:max(stop, col)]))
	marker := "^"
	if n > 1 {
		marker += strings.Repeat("~", n-1)
	}
	fmt.Fprintf(w, "%s %s%s\n", paint(pal.gutter, strings.Repeat(" ", width)+" |"), strings.Repeat(" ", pad),
		paint(pal.caret, marker))
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
