package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fsnotify/fsnotify"
)

const trigSource = `
@export(sin_cos)
shader SIN_COS {
    fn sin_cos(v: f32) -> vec2<f32> {
        return vec2(sin(v), cos(v));
    }
}
`

const useSource = `
shader SIN_COS_SQUARED {
    fn sin_cos2(v: f32) -> f32 {
        return #sin_cos(v).x * sin_cos(v).y;
    }
}
`

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestBuildCommandWritesOutputs(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"wgslln.toml": `[package]
name = "demo"

[build]
sources = ["shaders"]
out = "gen"
`,
		"shaders/trig.wgsln": trigSource,
		"shaders/use.wgsln":  useSource,
	})
	t.Chdir(dir)

	out, err := execute(t, "build", "--ui=off", "--no-cache", "--color=off")
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	for _, name := range []string{"sin_cos.wgsl", "sin_cos_squared.wgsl"} {
		if _, err := os.Stat(filepath.Join(dir, "gen", name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
	if !strings.Contains(out, "composed 2 shaders") {
		t.Errorf("output = %q", out)
	}
}

func TestCheckCommandFails(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"bad.wgsln": `shader GHOST { fn f() -> f32 { return #sin_coz(1.0); } }`,
	})
	t.Chdir(dir)

	_, err := execute(t, "check", "--no-cache", "--format=short", "bad.wgsln")
	if !errors.Is(err, errFailed) {
		t.Fatalf("check error = %v, want errFailed", err)
	}
}

func TestBuildWithoutManifestNeedsPaths(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := execute(t, "check", "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "wgslln.toml") {
		t.Fatalf("err = %v", err)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	out, err := execute(t, "init", "demo")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"wgslln.toml", "shaders/common.wgsln"} {
		if _, err := os.Stat(filepath.Join(dir, "demo", filepath.FromSlash(name))); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	if !strings.Contains(out, "Initialized wgslln project in demo") {
		t.Errorf("output = %q", out)
	}
	if _, err := execute(t, "init", "demo"); err == nil {
		t.Error("second init succeeded")
	}
}

func TestReadDiagFormat(t *testing.T) {
	for _, v := range []string{"pretty", "json", "short"} {
		if _, err := readDiagFormat(v); err != nil {
			t.Errorf("%s: %v", v, err)
		}
	}
	if _, err := readDiagFormat("sarif"); err == nil {
		t.Error("sarif accepted")
	}
}

func TestReadUIMode(t *testing.T) {
	tests := []struct {
		in      string
		want    uiMode
		wantErr bool
	}{
		{"", uiModeAuto, false},
		{"AUTO", uiModeAuto, false},
		{"on", uiModeOn, false},
		{" off ", uiModeOff, false},
		{"maybe", "", true},
	}
	for _, tt := range tests {
		got, err := readUIMode(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if shouldUseTUI(uiModeOff, false) || !shouldUseTUI(uiModeOn, true) {
		t.Error("explicit ui mode ignored")
	}
}

func TestRelevantChange(t *testing.T) {
	tests := []struct {
		ev   fsnotify.Event
		want bool
	}{
		{fsnotify.Event{Name: "shaders/a.wgsln", Op: fsnotify.Write}, true},
		{fsnotify.Event{Name: "wgslln.toml", Op: fsnotify.Create}, true},
		{fsnotify.Event{Name: "shaders/a.wgsln", Op: fsnotify.Chmod}, false},
		{fsnotify.Event{Name: "gen/a.wgsl", Op: fsnotify.Write}, false},
	}
	for _, tt := range tests {
		if got := relevantChange(tt.ev); got != tt.want {
			t.Errorf("relevantChange(%v) = %v, want %v", tt.ev, got, tt.want)
		}
	}
}

func TestWatchDirsSkipsHidden(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"a/x.wgsln":      trigSource,
		"a/b/y.wgsln":    useSource,
		"a/.git/z.wgsln": useSource,
	})
	dirs := watchDirs(&projectConfig{}, []string{filepath.Join(dir, "a")})
	if len(dirs) != 2 {
		t.Fatalf("dirs = %v", dirs)
	}
	for _, d := range dirs {
		if strings.Contains(d, ".git") {
			t.Errorf("hidden dir watched: %s", d)
		}
	}
}

func TestRelativeTo(t *testing.T) {
	base := filepath.Join("root", "proj")
	if got := relativeTo(base, filepath.Join(base, "gen", "a.wgsl")); got != "gen/a.wgsl" {
		t.Errorf("got %q", got)
	}
	outside := filepath.Join("elsewhere", "a.wgsl")
	if got := relativeTo(base, outside); got != outside {
		t.Errorf("got %q", got)
	}
}
