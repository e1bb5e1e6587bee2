package main

import (
	"fmt"
	"io"
	"time"

	"wgslln/internal/buildpipeline"
)

var timedStages = []struct {
	stage buildpipeline.Stage
	label string
}{
	{buildpipeline.StageLex, "lexed"},
	{buildpipeline.StageRegister, "registered"},
	{buildpipeline.StageCompose, "composed"},
	{buildpipeline.StageEmit, "written"},
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings) {
	if out == nil {
		return
	}
	for _, s := range timedStages {
		if timings.Has(s.stage) {
			fmt.Fprintf(out, "%s %.1f ms\n", s.label, toMillis(timings.Duration(s.stage)))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
