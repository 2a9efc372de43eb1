package diff

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// snapshotFile is the on-disk shape for Tracker.SaveSnapshot/LoadSnapshot,
// a convenience for a CLI-side history cache between watch sessions — not
// required by the core contract, exercised here purely as an optional
// helper, the way sflowg persists flow definitions as YAML
// (runtime/app.go).
type snapshotFile struct {
	States       map[string]*StaticParseResult `yaml:"states"`
	Dependencies map[string]string              `yaml:"dependencies"` // RFC3339 timestamps
}

// SaveSnapshot writes the tracker's current state to path as YAML.
func (t *Tracker) SaveSnapshot(path string) error {
	t.mu.RLock()
	snap := snapshotFile{
		States:       make(map[string]*StaticParseResult, len(t.states)),
		Dependencies: make(map[string]string, len(t.dependencies)),
	}
	for k, v := range t.states {
		snap.States[k] = v
	}
	for k, v := range t.dependencies {
		snap.Dependencies[k] = v.Format(rfc3339)
	}
	t.mu.RUnlock()

	b, err := yaml.Marshal(&snap)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadSnapshot replaces the tracker's state with what's recorded at path.
func (t *Tracker) LoadSnapshot(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap snapshotFile
	if err := yaml.Unmarshal(b, &snap); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.states = make(map[string]*StaticParseResult, len(snap.States))
	for k, v := range snap.States {
		t.states[k] = v
	}
	t.dependencies = make(map[string]time.Time, len(snap.Dependencies))
	for k, v := range snap.Dependencies {
		parsed, err := time.Parse(rfc3339, v)
		if err != nil {
			continue
		}
		t.dependencies[k] = parsed
	}
	return nil
}

const rfc3339 = "2006-01-02T15:04:05.999999999Z07:00"
