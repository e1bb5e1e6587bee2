package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wgslln/internal/buildpipeline"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Compose and validate shaders without writing outputs",
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|json|short)")
	checkCmd.Flags().Bool("notes", true, "include diagnostic notes")
	addCompositionFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	formatValue, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := readDiagFormat(formatValue)
	if err != nil {
		return err
	}
	notes, err := cmd.Flags().GetBool("notes")
	if err != nil {
		return err
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	cfg, err := loadProjectConfig(cmd, args, false)
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
	bag := res.Diagnostics(req.Driver.MaxDiagnostics)
	if err := printDiagnostics(cmd, os.Stdout, bag, res.FileSet, format, notes); err != nil {
		return err
	}
	if cfg.timer != nil {
		printStageTimings(os.Stderr, result.Timings)
		fmt.Fprint(os.Stderr, cfg.timer.Summary())
	}
	if res.HasErrors() {
		if format == diagFormatPretty {
			fmt.Fprintln(os.Stdout)
			printSummary(os.Stdout, bag)
		}
		return errFailed
	}
	if !quiet && format == diagFormatPretty {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %s in %s\n",
			plural(len(res.Shaders), "shader"), plural(len(res.Units), "file"))
	}
	return nil
}
