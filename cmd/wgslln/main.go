// Command wgslln composes WGSL shaders from *.wgsln fragment files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wgslln/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "wgslln",
	Short:         "WGSL shader composition and diagnostics",
	Long:          `wgslln pastes exported WGSL fragments into shaders, validates the result and maps errors back to the fragment sources`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errFailed reports that diagnostics with errors were already printed.
var errFailed = errors.New("build failed")

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("trace", "", "write a trace to file (- for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-format", "auto", "trace format (auto|text|ndjson)")
	addProfileFlags(rootCmd)
	rootCmd.PersistentPreRunE = startProfiling
}

func main() {
	err := rootCmd.Execute()
	stopProfiling()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves --color against the stream the output goes to.
func useColor(cmd *cobra.Command, f *os.File) bool {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch value {
	case "on", "always":
		return true
	case "off", "never":
		return false
	default:
		return isTerminal(f)
	}
}
