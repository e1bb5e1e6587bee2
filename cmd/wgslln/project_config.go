package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wgslln/internal/buildpipeline"
	"wgslln/internal/diag"
	"wgslln/internal/driver"
	"wgslln/internal/observ"
	"wgslln/internal/project"
	"wgslln/internal/version"
)

const noManifestMessage = "no " + project.ManifestName + " found\nplease specify the sources explicitly, e.g.:\n  wgslln build path/to/shaders"

const cacheApp = "wgslln"

// addCompositionFlags registers the flags that override [build].
func addCompositionFlags(cmd *cobra.Command) {
	cmd.Flags().String("sigil", "", "fragment sigil, one of "+project.Sigils+" (default from manifest, then #)")
	cmd.Flags().Bool("preprocessor", false, "pass preprocessor directives through unchecked")
	cmd.Flags().Int("jobs", 0, "shaders composed in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-validate", false, "skip WGSL validation")
	cmd.Flags().Bool("no-cache", false, "do not use the validation cache")
}

// projectConfig is the manifest merged with command-line overrides.
type projectConfig struct {
	manifest *project.Manifest
	request  buildpipeline.BuildRequest
	timer    *observ.Timer
}

// loadProjectConfig finds the manifest, applies flags and collects sources.
// Explicit args replace [build].sources unless extend is set, in which case
// they are added to them; without a manifest args are required.
func loadProjectConfig(cmd *cobra.Command, args []string, extend bool) (*projectConfig, error) {
	manifest, found, err := project.LoadManifest(".")
	if err != nil {
		return nil, err
	}
	cfg := &projectConfig{manifest: manifest}
	req := &cfg.request
	opts := &req.Driver

	var sources []string
	if found {
		if err := manifest.CheckVersion(version.Version); err != nil {
			var verr *project.VersionError
			if errors.As(err, &verr) {
				return nil, codeError(diag.ProjVersionMismatch, err)
			}
			return nil, err
		}
		req.BaseDir = manifest.Root
		sources = manifest.SourcePaths()
		req.OutDir = manifest.OutDir()
		req.GoFile = manifest.GoFile()
		req.GoPackage = manifest.GoPackage()
		opts.Compose.Sigil = manifest.Sigil()
		opts.Compose.Preprocessor = manifest.Config.Build.Preprocessor
		opts.Jobs = manifest.Config.Build.Jobs
	} else if len(args) == 0 {
		return nil, errors.New(noManifestMessage)
	}
	switch {
	case len(args) > 0 && extend:
		sources = append(sources, args...)
	case len(args) > 0:
		sources = args
	}
	if req.BaseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			req.BaseDir = wd
		}
	}

	if err := applyCompositionFlags(cmd, opts); err != nil {
		return nil, err
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts.MaxDiagnostics = maxDiagnostics

	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		cfg.timer = observ.NewTimer()
		opts.Timer = cfg.timer
	}

	paths, err := project.CollectSources(sources)
	if err != nil {
		if errors.Is(err, project.ErrNoSources) {
			return nil, codeError(diag.ProjNoSources, err)
		}
		return nil, err
	}
	req.Paths = paths
	return cfg, nil
}

func applyCompositionFlags(cmd *cobra.Command, opts *driver.Options) error {
	flags := cmd.Flags()
	if flags.Changed("sigil") {
		value, _ := flags.GetString("sigil")
		r, err := project.ParseSigil(value)
		if err != nil {
			return fmt.Errorf("invalid --sigil: %w", err)
		}
		if r != 0 {
			opts.Compose.Sigil = r
		}
	}
	if flags.Changed("preprocessor") {
		opts.Compose.Preprocessor, _ = flags.GetBool("preprocessor")
	}
	if flags.Changed("jobs") {
		jobs, _ := flags.GetInt("jobs")
		if jobs < 0 {
			return fmt.Errorf("--jobs must not be negative")
		}
		opts.Jobs = jobs
	}
	noValidate, _ := flags.GetBool("no-validate")
	opts.NoValidate = noValidate

	noCache, _ := flags.GetBool("no-cache")
	if !noCache && !noValidate {
		cache, err := driver.OpenDiskCache(cacheApp)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: validation cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	return nil
}

func codeError(code diag.Code, err error) error {
	return fmt.Errorf("%s: %w", code.ID(), err)
}
