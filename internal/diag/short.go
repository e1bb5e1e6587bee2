package diag

import (
	"fmt"
	"sort"
	"strings"

	"wgslln/internal/source"
)

type shortDiagnostic struct {
	Severity string
	Code     string
	Path     string
	Line     uint32
	Column   uint32
	Message  string
}

// FormatShort renders diagnostics one per line:
//
//	error CMP3001 shaders/a.wgsln:3:14 unknown fragment `ghost`
//
// Output is sorted and stable, so it doubles as golden-file format in tests.
func FormatShort(diags []*Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}
	rendered := make([]shortDiagnostic, 0, len(diags))
	for _, d := range diags {
		rendered = append(rendered, shortEntry(fs, d.Severity.label(), d.Code, d.Primary, d.Message))
		if includeNotes {
			for _, n := range d.Notes {
				rendered = append(rendered, shortEntry(fs, "note", d.Code, n.Span, n.Msg))
			}
		}
	}

	sort.SliceStable(rendered, func(i, j int) bool {
		di, dj := rendered[i], rendered[j]
		if di.Path != dj.Path {
			return di.Path < dj.Path
		}
		if di.Line != dj.Line {
			return di.Line < dj.Line
		}
		if di.Column != dj.Column {
			return di.Column < dj.Column
		}
		if di.Severity != dj.Severity {
			return di.Severity < dj.Severity
		}
		return di.Message < dj.Message
	})

	var b strings.Builder
	for i, d := range rendered {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", d.Severity, d.Code, d.Path, d.Line, d.Column, d.Message)
		if i < len(rendered)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func shortEntry(fs *source.FileSet, sev string, code Code, sp source.Span, msg string) shortDiagnostic {
	entry := shortDiagnostic{Severity: sev, Code: code.ID(), Message: sanitizeMessage(msg)}
	if f := fs.Get(sp.File); f != nil {
		start, _ := fs.Resolve(sp)
		entry.Path = strings.TrimPrefix(f.DisplayPath(fs.BaseDir(), false), "./")
		entry.Line = start.Line
		entry.Column = start.Col
	}
	return entry
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
