package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wgslln/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new wgslln project",
	Long: `Initialize a new wgslln project by creating a manifest (wgslln.toml) and
a starter shaders/common.wgsln with one exported fragment and one shader using
it. If [path|name] is omitted, initializes the current directory. If a
non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	target := wd
	if len(args) == 1 && args[0] != "." {
		target = args[0]
		if !filepath.IsAbs(target) {
			target = filepath.Join(wd, target)
		}
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "wgslln-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(project.DefaultManifest(name)), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	starter := filepath.Join(target, "shaders", "common"+project.SourceExt)
	createdStarter := false
	if _, err := os.Stat(starter); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(starter), 0o750); err != nil {
			return fmt.Errorf("failed to create shaders directory: %w", err)
		}
		if err := os.WriteFile(starter, []byte(starterSource), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", starter, err)
		}
		createdStarter = true
	}

	rel := target
	if r, err := filepath.Rel(wd, target); err == nil {
		rel = r
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Initialized wgslln project in %s\n", rel)
	fmt.Fprintf(out, "  - %s\n", project.ManifestName)
	if createdStarter {
		fmt.Fprintf(out, "  - shaders/common%s\n", project.SourceExt)
	} else {
		fmt.Fprintf(out, "  - shaders/common%s (existing)\n", project.SourceExt)
	}
	return nil
}

const starterSource = `// Fragments are exported with @export(name) and pasted with #name.
@export(sin_cos)
shader SIN_COS {
    fn sin_cos(v: f32) -> vec2<f32> {
        return vec2(sin(v), cos(v));
    }
}

shader SIN_COS_SQUARED {
    fn sin_cos_squared(v: f32) -> f32 {
        return #sin_cos(v).x * sin_cos(v).y;
    }
}
`
