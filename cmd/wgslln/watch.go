package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"wgslln/internal/buildpipeline"
	"wgslln/internal/project"
)

const watchDebounce = 150 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [flags] [paths...]",
	Short: "Rebuild whenever a source file or the manifest changes",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().String("out", "", "directory for .wgsl outputs (overrides [build].out)")
	addCompositionFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	cfg, err := rebuild(ctx, cmd, args, quiet)
	if err != nil {
		return err
	}
	for _, dir := range watchDirs(cfg, args) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	if !quiet {
		fmt.Fprintln(cmd.ErrOrStderr(), "watching for changes (ctrl-c to stop)")
	}

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if st, err := os.Stat(ev.Name); err == nil && st.IsDir() && !hiddenDir(ev.Name) {
					_ = watcher.Add(ev.Name)
				}
			}
			if !relevantChange(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
			} else {
				timer.Reset(watchDebounce)
			}
			fire = timer.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watch: %v\n", err)
		case <-fire:
			fire = nil
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "\nrebuilding at %s\n", time.Now().Format(time.TimeOnly))
			}
			if _, err := rebuild(ctx, cmd, args, quiet); err != nil {
				// ошибка конфигурации не останавливает наблюдение
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
			}
		}
	}
}

// rebuild reloads the configuration so that new files and manifest edits
// are picked up. Diagnostics with errors are not an error of the watch loop.
func rebuild(ctx context.Context, cmd *cobra.Command, args []string, quiet bool) (*projectConfig, error) {
	cfg, err := loadProjectConfig(cmd, args, false)
	if err != nil {
		return nil, err
	}
	if out, _ := cmd.Flags().GetString("out"); out != "" {
		cfg.request.OutDir = out
	}
	result, buildErr := buildpipeline.Build(ctx, &cfg.request)
	if err := reportBuild(cmd, cfg, result, buildErr, quiet); err != nil && !errors.Is(err, errFailed) {
		return cfg, err
	}
	return cfg, nil
}

func relevantChange(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	return filepath.Ext(base) == project.SourceExt || base == project.ManifestName
}

// watchDirs lists every directory that can hold sources, plus the project root.
func watchDirs(cfg *projectConfig, args []string) []string {
	roots := args
	if len(roots) == 0 && cfg.manifest != nil {
		roots = cfg.manifest.SourcePaths()
	}
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	if cfg.manifest != nil {
		add(cfg.manifest.Root)
	}
	for _, root := range roots {
		st, err := os.Stat(root)
		if err != nil {
			continue
		}
		if !st.IsDir() {
			add(filepath.Dir(root))
			continue
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return nil
			}
			if path != root && hiddenDir(path) {
				return filepath.SkipDir
			}
			add(path)
			return nil
		})
	}
	return dirs
}

func hiddenDir(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
