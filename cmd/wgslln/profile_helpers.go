package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wgslln/internal/prof"
)

var profSession *prof.Session

func addProfileFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("cpuprofile", "", "write a CPU profile to file")
	cmd.PersistentFlags().String("memprofile", "", "write a heap profile to file")
	cmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

func startProfiling(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	opts.CPU, _ = flags.GetString("cpuprofile")
	opts.Mem, _ = flags.GetString("memprofile")
	opts.Trace, _ = flags.GetString("runtime-trace")
	if !opts.Enabled() {
		return nil
	}
	s, err := prof.Start(opts)
	if err != nil {
		return err
	}
	profSession = s
	return nil
}

// stopProfiling runs after Execute so that failed commands are profiled too.
func stopProfiling() {
	if err := profSession.Stop(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
	}
	profSession = nil
}
