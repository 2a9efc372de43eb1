package diff

import (
	"strings"
	"sync"
	"time"
)

// Tracker holds per-file parse state and per-dependency timestamps for a
// watch session, guarded for concurrent use by a watch loop goroutine and
// the CLI driving it. Its private-map-on-a-struct shape follows sflowg's
// Container (plugins/pluginsByInterface registries built once
// and accessed only through methods); a mutex is added here since,
// unlike Container, a Tracker is meant to be shared concurrently.
type Tracker struct {
	mu           sync.RWMutex
	states       map[string]*StaticParseResult
	dependencies map[string]time.Time
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		states:       make(map[string]*StaticParseResult),
		dependencies: make(map[string]time.Time),
	}
}

func normalizePath(path string) string {
	return strings.ToLower(path)
}

// RecordState stores the latest parse snapshot for path.
func (t *Tracker) RecordState(path string, result *StaticParseResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[normalizePath(path)] = result
}

// HasState reports whether path has a recorded prior snapshot.
func (t *Tracker) HasState(path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.states[normalizePath(path)]
	return ok
}

// GetChanges diffs the recorded prior snapshot for path against current,
// folding in dependencyChanged (the caller's own HasDependencyChanged
// verdict for whatever dependencies this file cares about), and records
// current as the new state for path.
func (t *Tracker) GetChanges(path string, current *StaticParseResult, dependencyChanged bool) *SpecChangeSet {
	key := normalizePath(path)

	t.mu.Lock()
	prior := t.states[key]
	t.mu.Unlock()

	cs := Diff(path, prior, current, dependencyChanged)
	t.RecordState(path, current)
	return cs
}

// Clear forgets the prior state for path.
func (t *Tracker) Clear(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.states, normalizePath(path))
}

// RecordDependency timestamps a dependency (e.g. a shared config or
// fixture file) as last changed at the given time.
func (t *Tracker) RecordDependency(name string, changedAt time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dependencies[name] = changedAt
}

// HasDependencyChanged reports whether name's recorded timestamp is
// strictly newer than since; equal or older do not count as changed.
func (t *Tracker) HasDependencyChanged(name string, since time.Time) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	recorded, ok := t.dependencies[name]
	if !ok {
		return false
	}
	return recorded.After(since)
}
