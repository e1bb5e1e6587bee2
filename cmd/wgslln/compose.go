package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"wgslln/internal/buildpipeline"
	"wgslln/internal/driver"
	"wgslln/internal/source"
	"wgslln/internal/srcmap"
)

var composeCmd = &cobra.Command{
	Use:   "compose [flags] file.wgsln NAME",
	Short: "Print one composed shader",
	Long: `Compose builds the shader NAME declared in file.wgsln and prints the
composed WGSL text. Fragments are looked up in the project sources as well,
so a shader may use fragments exported by other files of the project.`,
	Args: cobra.ExactArgs(2),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().Bool("map", false, "print the offset map after the text")
	addCompositionFlags(composeCmd)
}

func runCompose(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	file, name := args[0], args[1]
	withMap, err := cmd.Flags().GetBool("map")
	if err != nil {
		return err
	}

	cfg, err := loadProjectConfig(cmd, []string{file}, true)
	if err != nil {
		return err
	}
	req := cfg.request
	req.OutDir, req.GoFile = "", ""

	result, err := buildpipeline.Build(cmd.Context(), &req)
	if err != nil {
		return err
	}
	res := result.Result
	sh, ok := res.Shader(name)
	if !ok {
		return fmt.Errorf("no shader %s (available: %s)", name, strings.Join(shaderNames(res), ", "))
	}

	bag := sh.Bag
	bag.Sort()
	if err := printDiagnostics(cmd, os.Stderr, bag, res.FileSet, diagFormatPretty, true); err != nil {
		return err
	}
	if !sh.OK() {
		return errFailed
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, sh.Result.Text)
	if withMap {
		fmt.Fprintln(out)
		printOffsetMap(out, sh.Result.Map, res.FileSet)
	}
	return nil
}

func shaderNames(res *driver.Result) []string {
	names := make([]string, 0, len(res.Shaders))
	for _, sh := range res.Shaders {
		names = append(names, sh.Name)
	}
	sort.Strings(names)
	return names
}

// printOffsetMap prints one "offset path:line:col" line per map entry.
func printOffsetMap(w io.Writer, m srcmap.Map, fs *source.FileSet) {
	for _, e := range m {
		path := "?"
		if f := fs.Get(e.Span.File); f != nil {
			path = f.DisplayPath(fs.BaseDir(), false)
		}
		start, _ := fs.Resolve(e.Span)
		fmt.Fprintf(w, "%6d %s:%d:%d\n", e.Offset, path, start.Line, start.Col)
	}
}
