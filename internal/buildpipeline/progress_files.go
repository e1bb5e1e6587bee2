package buildpipeline

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// progressFiles maps host paths to the names shown in progress output and
// keeps a failed file in the error state for the rest of the build.
type progressFiles struct {
	sink    ProgressSink
	display map[string]string
	list    []string

	mu     sync.Mutex
	failed map[string]bool
}

func newProgressFiles(sink ProgressSink, paths []string, baseDir string) *progressFiles {
	p := &progressFiles{
		sink:    sink,
		display: make(map[string]string, len(paths)),
		failed:  make(map[string]bool),
	}
	base := strings.TrimSpace(baseDir)
	if base != "" {
		if abs, err := filepath.Abs(base); err == nil {
			base = abs
		}
	}
	seen := make(map[string]struct{}, len(paths))
	for _, file := range paths {
		if file == "" {
			continue
		}
		name := displayPath(file, base)
		p.display[file] = name
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		p.list = append(p.list, name)
	}
	sort.Strings(p.list)
	return p
}

// Files returns the display names in sorted order.
func (p *progressFiles) Files() []string {
	return p.list
}

func displayPath(file, base string) string {
	path := filepath.Clean(file)
	if base != "" {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if rel, err := filepath.Rel(base, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

func (p *progressFiles) name(path string) string {
	if n, ok := p.display[path]; ok {
		return n
	}
	return filepath.ToSlash(path)
}

// file emits an event for one host file. Once a file reported an error
// later events for it keep StatusError.
func (p *progressFiles) file(path string, stage Stage, status Status, err error) {
	if p.sink == nil {
		return
	}
	name := p.name(path)
	p.mu.Lock()
	if status == StatusError {
		p.failed[name] = true
	} else if p.failed[name] {
		status = StatusError
	}
	p.mu.Unlock()
	p.sink.OnEvent(Event{File: name, Stage: stage, Status: status, Err: err})
}

// all emits one build-wide event and one per file.
func (p *progressFiles) all(stage Stage, status Status, err error) {
	if p.sink == nil {
		return
	}
	p.sink.OnEvent(Event{Stage: stage, Status: status, Err: err})
	for _, name := range p.list {
		st := status
		p.mu.Lock()
		if p.failed[name] {
			st = StatusError
		}
		p.mu.Unlock()
		p.sink.OnEvent(Event{File: name, Stage: stage, Status: st, Err: err})
	}
}

// DisplayFiles returns the names progress events use for paths.
func DisplayFiles(paths []string, baseDir string) []string {
	return newProgressFiles(nil, paths, baseDir).Files()
}
