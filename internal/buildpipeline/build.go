// Package buildpipeline orchestrates a build: it drives the composition of
// every shader, reports progress per file and writes the outputs.
package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"wgslln/internal/driver"
	"wgslln/internal/observ"
)

// BuildRequest configures one build.
type BuildRequest struct {
	Paths   []string
	BaseDir string
	Driver  driver.Options

	// OutDir receives one .wgsl file per shader; empty disables it.
	OutDir string
	// GoFile receives the generated constants; empty disables it.
	GoFile    string
	GoPackage string

	Progress ProgressSink
}

// BuildResult captures build artefacts and timings.
type BuildResult struct {
	Result  *driver.Result
	Outputs []string
	Timings Timings
}

// Build composes every shader and, when nothing failed, writes the outputs.
// Diagnostics stay in Result; the error reports cancellation and output
// failures.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing build request")
	}
	if len(req.Paths) == 0 {
		return result, fmt.Errorf("no sources to build")
	}

	files := newProgressFiles(req.Progress, req.Paths, req.BaseDir)
	for _, f := range req.Paths {
		files.file(f, StageLex, StatusQueued, nil)
	}

	opts := req.Driver
	if opts.BaseDir == "" {
		opts.BaseDir = req.BaseDir
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
		opts.Timer = timer
	}
	next := opts.Observer
	opts.Observer = func(ev driver.PhaseEvent) {
		files.onPhase(ev)
		if next != nil {
			next(ev)
		}
	}

	res, err := driver.Build(ctx, req.Paths, &opts)
	result.Result = res
	recordTimings(&result, timer.Report())
	if err != nil {
		files.all(StageCompose, StatusError, err)
		return result, err
	}
	for _, f := range req.Paths {
		files.file(f, StageCompose, StatusDone, nil)
	}

	if res.HasErrors() || (req.OutDir == "" && req.GoFile == "") {
		return result, nil
	}

	emitStart := time.Now()
	files.all(StageEmit, StatusWorking, nil)
	outputs, err := writeOutputs(res, req)
	result.Outputs = outputs
	result.Timings.Set(StageEmit, time.Since(emitStart))
	if err != nil {
		files.all(StageEmit, StatusError, err)
		return result, err
	}
	files.all(StageEmit, StatusDone, nil)
	return result, nil
}

func (p *progressFiles) onPhase(ev driver.PhaseEvent) {
	if ev.Path == "" {
		return
	}
	var stage Stage
	switch ev.Name {
	case driver.PhaseLex:
		stage = StageLex
	case driver.PhaseRegister:
		stage = StageRegister
	case driver.PhaseCompose:
		stage = StageCompose
	case driver.PhaseValidate:
		stage = StageValidate
	default:
		return
	}
	switch ev.Status {
	case driver.PhaseStart:
		p.file(ev.Path, stage, StatusWorking, nil)
	case driver.PhaseFailed:
		p.file(ev.Path, stage, StatusError, nil)
	case driver.PhaseEnd:
		// compose завершается один раз на шейдер, итог отправляет Build
		if stage != StageCompose {
			p.file(ev.Path, stage, StatusDone, nil)
		}
	}
}

func recordTimings(result *BuildResult, report observ.Report) {
	for _, phase := range report.Phases {
		var stage Stage
		switch phase.Name {
		case driver.PhaseLex:
			stage = StageLex
		case driver.PhaseRegister:
			stage = StageRegister
		case driver.PhaseCompose:
			stage = StageCompose
		default:
			continue
		}
		result.Timings.Set(stage, durationFromMillis(phase.DurationMS))
	}
}

func durationFromMillis(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
