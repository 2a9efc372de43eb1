package middleware

import (
	"sync"

	"github.com/draftspec/draftspec/report"
)

// CoverageTracker records which source files a spec touched while its
// body ran. Callers implement this against whatever instrumentation
// (coverage profile, manual annotation) their spec bodies use.
type CoverageTracker interface {
	// FilesCovered returns the files touched since the last Reset call.
	FilesCovered() []string
	Reset()
}

// CoverageIndex accumulates per-file touch counts across a run, guarded
// for concurrent use by the parallel runner.
type CoverageIndex struct {
	mu      sync.Mutex
	summary map[string]int
}

// NewCoverageIndex returns an empty CoverageIndex.
func NewCoverageIndex() *CoverageIndex {
	return &CoverageIndex{summary: make(map[string]int)}
}

// Record increments the touch count for each file.
func (idx *CoverageIndex) Record(files []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	for _, f := range files {
		idx.summary[f]++
	}
}

// Summary returns a snapshot of the accumulated per-file touch counts.
func (idx *CoverageIndex) Summary() map[string]int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	out := make(map[string]int, len(idx.summary))
	for k, v := range idx.summary {
		out[k] = v
	}
	return out
}

// Coverage attaches report.CoverageInfo to each spec result that touched
// at least one file, reading tracker.FilesCovered() after the spec body
// runs and folding the result into index for an aggregate run-level
// summary. A result with no covered files is returned unchanged.
func Coverage(tracker CoverageTracker, index *CoverageIndex) Middleware {
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			tracker.Reset()
			result := next(c)
			files := tracker.FilesCovered()
			if len(files) == 0 {
				return result
			}
			if index != nil {
				index.Record(files)
			}
			result.Coverage = &report.CoverageInfo{
				SpecID:       c.Spec.Description,
				FilesCovered: files,
			}
			if index != nil {
				result.Coverage.Summary = index.Summary()
			}
			return result
		}
	}
}
