package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"wgslln/internal/diag"
	"wgslln/internal/diagfmt"
	"wgslln/internal/source"
)

type diagFormat string

const (
	diagFormatPretty diagFormat = "pretty"
	diagFormatJSON   diagFormat = "json"
	diagFormatShort  diagFormat = "short"
)

func readDiagFormat(value string) (diagFormat, error) {
	switch diagFormat(value) {
	case diagFormatPretty, diagFormatJSON, diagFormatShort:
		return diagFormat(value), nil
	default:
		return "", fmt.Errorf("unknown format %q (expected pretty|json|short)", value)
	}
}

// printDiagnostics renders bag to out; json output is written even when the
// bag is empty so that tools always get a document.
func printDiagnostics(cmd *cobra.Command, out *os.File, bag *diag.Bag, fs *source.FileSet, format diagFormat, notes bool) error {
	if bag == nil {
		bag = diag.NewBag(0)
	}
	switch format {
	case diagFormatJSON:
		return diagfmt.JSON(out, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     notes,
		})
	case diagFormatShort:
		if bag.Len() == 0 {
			return nil
		}
		_, err := fmt.Fprintln(out, diag.FormatShort(bag.Items(), fs, notes))
		return err
	default:
		if bag.Len() == 0 {
			return nil
		}
		diagfmt.Pretty(out, bag, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd, out),
			Context:   1,
			PathMode:  diagfmt.PathModeAuto,
			ShowNotes: notes,
		})
		return nil
	}
}

// printSummary prints "N errors, M warnings" unless the bag is clean.
func printSummary(out io.Writer, bag *diag.Bag) {
	var errs, warns int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		}
	}
	if errs == 0 && warns == 0 {
		return
	}
	fmt.Fprintf(out, "%s, %s\n", plural(errs, "error"), plural(warns, "warning"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
