package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"wgslln/internal/buildpipeline"
	"wgslln/internal/diag"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [paths...]",
	Short: "Compose every shader and write the outputs",
	Long: `Build reads wgslln.toml (searched upwards from the current directory),
composes every shader of the collected *.wgsln sources, validates the results
and writes one .wgsl file per shader and, when configured, a Go file with the
shaders as constants. Outputs are only written when no shader failed.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().String("out", "", "directory for .wgsl outputs (overrides [build].out)")
	buildCmd.Flags().String("go-out", "", "generated Go file (overrides [build.go].file)")
	buildCmd.Flags().String("go-package", "", "package of the generated Go file")
	addCompositionFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	cfg, err := loadProjectConfig(cmd, args, false)
	if err != nil {
		return err
	}
	req := &cfg.request
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		req.OutDir = out
	}
	if goOut, _ := cmd.Flags().GetString("go-out"); goOut != "" {
		req.GoFile = goOut
	}
	if goPkg, _ := cmd.Flags().GetString("go-package"); goPkg != "" {
		req.GoPackage = goPkg
	}
	if req.OutDir == "" && req.GoFile == "" && !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: no outputs configured; set [build].out or pass --out")
	}

	var result buildpipeline.BuildResult
	if shouldUseTUI(mode, quiet) {
		result, err = runBuildWithUI(cmd.Context(), "wgslln build", req)
	} else {
		result, err = buildpipeline.Build(cmd.Context(), req)
	}
	return reportBuild(cmd, cfg, result, err, quiet)
}

func reportBuild(cmd *cobra.Command, cfg *projectConfig, result buildpipeline.BuildResult, buildErr error, quiet bool) error {
	stderr := os.Stderr
	res := result.Result
	if res != nil {
		bag := res.Diagnostics(cfg.request.Driver.MaxDiagnostics)
		if err := printDiagnostics(cmd, stderr, bag, res.FileSet, diagFormatPretty, true); err != nil {
			return err
		}
		if res.HasErrors() {
			fmt.Fprintln(stderr)
			printSummary(stderr, bag)
		}
	}
	if cfg.timer != nil {
		printStageTimings(stderr, result.Timings)
		fmt.Fprint(stderr, cfg.timer.Summary())
	}
	if buildErr != nil {
		if errors.Is(buildErr, context.Canceled) {
			return buildErr
		}
		if res != nil && !res.HasErrors() {
			return codeError(diag.IOWriteFileError, buildErr)
		}
		return buildErr
	}
	if res == nil || res.HasErrors() {
		return errFailed
	}
	if quiet {
		return nil
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "composed %s", plural(len(res.Shaders), "shader"))
	if res.CacheHits > 0 {
		fmt.Fprintf(out, " (%d validations cached)", res.CacheHits)
	}
	fmt.Fprintln(out)
	for _, path := range result.Outputs {
		fmt.Fprintf(out, "  wrote %s\n", relativeTo(cfg.request.BaseDir, path))
	}
	return nil
}

func relativeTo(base, path string) string {
	if base == "" {
		return path
	}
	if rel, err := filepath.Rel(base, path); err == nil && !filepath.IsAbs(rel) && rel != "" && rel[0] != '.' {
		return filepath.ToSlash(rel)
	}
	return path
}
