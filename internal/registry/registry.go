// Package registry holds the exported fragments of a build.
//
// Registration is write-once per name and happens before any composition;
// afterwards the registry is only read, possibly from many goroutines.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"wgslln/internal/source"
	"wgslln/internal/token"
)

type entry struct {
	body []token.Token
	site source.Span
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	order   []string
}

func New() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// DuplicateError is returned when a name is registered twice. The first
// registration stays in place.
type DuplicateError struct {
	Name  string
	Site  source.Span // second registration
	First source.Span
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("fragment %q is already registered", e.Name)
}

// Register stores a copy of body under name.
func (r *Registry) Register(name string, body []token.Token, site source.Span) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.entries[name]; ok {
		return &DuplicateError{Name: name, Site: site, First: prev.site}
	}
	r.entries[name] = entry{body: token.Clone(body), site: site}
	r.order = append(r.order, name)
	return nil
}

// Lookup returns the registered body. The slice is shared: callers clone
// before changing it.
func (r *Registry) Lookup(name string) ([]token.Token, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.body, ok
}

// Site returns where name was registered.
func (r *Registry) Site(name string) (source.Span, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.site, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Suggest returns the registered name closest to name, for "did you mean"
// notes. Subsequence matches win; otherwise a name within edit distance 2.
func (r *Registry) Suggest(name string) (string, bool) {
	names := r.Names()
	if len(names) == 0 || name == "" {
		return "", false
	}

	ranks := fuzzy.RankFindFold(name, names)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target, true
	}

	best, bestDist := "", 3
	for _, cand := range names {
		if d := fuzzy.LevenshteinDistance(name, cand); d < bestDist {
			best, bestDist = cand, d
		}
	}
	return best, best != ""
}
