// Package diff implements the incremental differ (C7): given two static
// parse snapshots of a spec source file, it produces a change set telling
// watch mode what to re-run. The core never parses source itself — it
// consumes already-parsed StaticParseResult values via this package's
// types, the documented boundary with the external static parser.
package diff

// SpecType classifies how a static spec was declared in source.
type SpecType string

const (
	SpecRegular SpecType = "regular"
	SpecFocused SpecType = "focused"
	SpecSkipped SpecType = "skipped"
)

// StaticSpec is one spec as discovered by the external static parser.
type StaticSpec struct {
	Description string
	LineNumber  int
	Type        SpecType
	IsPending   bool
	ContextPath []string
}

// StaticParseResult is a single source file's parse snapshot.
type StaticParseResult struct {
	Specs      []StaticSpec
	IsComplete bool // false ⇒ dynamic/loop-generated specs detected
}

// ChangeType classifies one SpecChange.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
)

// SpecChange describes one spec's change between two snapshots.
type SpecChange struct {
	Description string
	ContextPath []string
	Type        ChangeType
	OldLine     *int
	NewLine     *int
}

// SpecChangeSet is the differ's output for one file.
type SpecChangeSet struct {
	FilePath          string
	Changes           []SpecChange
	HasDynamicSpecs   bool
	DependencyChanged bool
}

// RequiresFullRun is true iff either HasDynamicSpecs or DependencyChanged.
func (cs *SpecChangeSet) RequiresFullRun() bool {
	return cs.HasDynamicSpecs || cs.DependencyChanged
}

// SpecsToRun returns the changes whose Type is not ChangeDeleted.
func (cs *SpecChangeSet) SpecsToRun() []SpecChange {
	out := make([]SpecChange, 0, len(cs.Changes))
	for _, c := range cs.Changes {
		if c.Type != ChangeDeleted {
			out = append(out, c)
		}
	}
	return out
}

type specIdentity struct {
	path string // context path joined by a separator not expected in descriptions
	desc string
}

func identity(contextPath []string, description string) specIdentity {
	path := ""
	for i, p := range contextPath {
		if i > 0 {
			path += "\x1f"
		}
		path += p
	}
	return specIdentity{path: path, desc: description}
}

// Diff compares prior and current snapshots of one file, producing a
// SpecChangeSet per spec.md §4.6's rules: dynamic specs in either
// snapshot short-circuit to a full-run signal with no per-spec changes;
// otherwise specs are identified by (context_path..., description), first
// occurrence wins on duplicate identities (the pack gives no evidence of
// duplicate-description files, so no line-based tiebreak is added).
func Diff(filePath string, prior, current *StaticParseResult, dependencyChanged bool) *SpecChangeSet {
	cs := &SpecChangeSet{FilePath: filePath, DependencyChanged: dependencyChanged}

	if current == nil || !current.IsComplete || (prior != nil && !prior.IsComplete) {
		cs.HasDynamicSpecs = true
		return cs
	}

	if prior == nil {
		for _, sp := range current.Specs {
			line := sp.LineNumber
			cs.Changes = append(cs.Changes, SpecChange{
				Description: sp.Description,
				ContextPath: sp.ContextPath,
				Type:        ChangeAdded,
				NewLine:     &line,
			})
		}
		return cs
	}

	priorByID := make(map[specIdentity]StaticSpec, len(prior.Specs))
	for _, sp := range prior.Specs {
		id := identity(sp.ContextPath, sp.Description)
		if _, exists := priorByID[id]; !exists {
			priorByID[id] = sp
		}
	}

	seen := make(map[specIdentity]bool, len(current.Specs))
	for _, sp := range current.Specs {
		id := identity(sp.ContextPath, sp.Description)
		if seen[id] {
			continue
		}
		seen[id] = true

		old, existed := priorByID[id]
		if !existed {
			line := sp.LineNumber
			cs.Changes = append(cs.Changes, SpecChange{
				Description: sp.Description, ContextPath: sp.ContextPath,
				Type: ChangeAdded, NewLine: &line,
			})
			continue
		}
		if old.LineNumber != sp.LineNumber || old.Type != sp.Type || old.IsPending != sp.IsPending {
			oldLine, newLine := old.LineNumber, sp.LineNumber
			cs.Changes = append(cs.Changes, SpecChange{
				Description: sp.Description, ContextPath: sp.ContextPath,
				Type: ChangeModified, OldLine: &oldLine, NewLine: &newLine,
			})
		}
	}

	for id, old := range priorByID {
		if seen[id] {
			continue
		}
		line := old.LineNumber
		cs.Changes = append(cs.Changes, SpecChange{
			Description: old.Description, ContextPath: old.ContextPath,
			Type: ChangeDeleted, OldLine: &line,
		})
	}

	return cs
}
