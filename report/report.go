// Package report implements the canonical, serializable result value (C1):
// a run's summary counters plus a tree of ContextReport/SpecResultReport
// nodes, emitted as camelCase JSON per spec.md §6.
package report

import (
	"time"

	"github.com/draftspec/draftspec/tree"
)

// Status is the terminal state of an executed spec.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
	StatusSkipped Status = "skipped"
)

// RetryInfo is attached to a SpecResult by the retry middleware whenever it
// is configured with at least one retry. Attempts counts every invocation
// of the spec, including the first.
type RetryInfo struct {
	Attempts   int `json:"attempts"`
	MaxRetries int `json:"maxRetries"`
}

// CoverageInfo is attached to a SpecResult by the coverage middleware.
type CoverageInfo struct {
	SpecID       string         `json:"specId"`
	FilesCovered []string       `json:"filesCovered"`
	Summary      map[string]int `json:"summary"`
}

// CapturedError is the structured form of an error captured from a spec
// body, hook, or middleware.
type CapturedError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// SpecResult is the executor's per-spec output (spec.md §3.1).
type SpecResult struct {
	Spec        *tree.Spec
	Description string
	ContextPath []string
	Status      Status

	BodyDuration       time.Duration
	BeforeEachDuration time.Duration
	AfterEachDuration  time.Duration
	TotalDuration      time.Duration

	Error    *CapturedError
	Retry    *RetryInfo
	Coverage *CoverageInfo
}

// ContextReport is the report-tree counterpart of a tree.Context: a
// description plus nested contexts and spec results, in DSL order.
type ContextReport struct {
	Description string           `json:"description"`
	Contexts    []*ContextReport `json:"contexts,omitempty"`
	Specs       []SpecResultReport `json:"specs,omitempty"`
}

// SpecResultReport is the JSON-facing projection of a SpecResult (spec.md §6).
type SpecResultReport struct {
	Description string  `json:"description"`
	Status      Status  `json:"status"`
	DurationMs  *float64 `json:"durationMs,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// Summary holds the aggregate counters for a run.
type Summary struct {
	Total      int     `json:"total"`
	Passed     int     `json:"passed"`
	Failed     int     `json:"failed"`
	Pending    int     `json:"pending"`
	Skipped    int     `json:"skipped"`
	DurationMs float64 `json:"durationMs"`
}

// Report is the canonical serializable value produced by a run.
type Report struct {
	RunID     string           `json:"runId,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Source    string           `json:"source"`
	Summary   Summary          `json:"summary"`
	Contexts  []*ContextReport `json:"contexts"`
}
