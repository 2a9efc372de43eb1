package report

import (
	"time"

	"github.com/draftspec/draftspec/tree"
)

// Build assembles the canonical Report from a frozen spec tree and the
// flat list of SpecResults the executor produced, in DSL order.
func Build(root *tree.Context, results []SpecResult, source string, timestamp time.Time) *Report {
	bySpec := make(map[*tree.Spec]SpecResult, len(results))
	for _, r := range results {
		bySpec[r.Spec] = r
	}

	summary := Summary{}
	var totalDuration time.Duration
	for _, r := range results {
		summary.Total++
		switch r.Status {
		case StatusPassed:
			summary.Passed++
		case StatusFailed:
			summary.Failed++
		case StatusPending:
			summary.Pending++
		case StatusSkipped:
			summary.Skipped++
		}
		totalDuration += r.TotalDuration
	}
	summary.DurationMs = float64(totalDuration.Microseconds()) / 1000.0

	var contexts []*ContextReport
	if root != nil {
		contexts = []*ContextReport{buildContext(root, bySpec)}
	}

	return &Report{
		Timestamp: timestamp,
		Source:    source,
		Summary:   summary,
		Contexts:  contexts,
	}
}

func buildContext(c *tree.Context, bySpec map[*tree.Spec]SpecResult) *ContextReport {
	cr := &ContextReport{Description: c.Description}
	for _, child := range c.Children() {
		cr.Contexts = append(cr.Contexts, buildContext(child, bySpec))
	}
	for _, s := range c.Specs() {
		r, ok := bySpec[s]
		if !ok {
			continue
		}
		cr.Specs = append(cr.Specs, specResultReport(r))
	}
	return cr
}

func specResultReport(r SpecResult) SpecResultReport {
	out := SpecResultReport{
		Description: r.Description,
		Status:      r.Status,
	}
	if r.TotalDuration > 0 {
		ms := float64(r.TotalDuration.Microseconds()) / 1000.0
		out.DurationMs = &ms
	}
	if r.Error != nil {
		msg := firstLine(r.Error.Message)
		out.Error = &msg
	}
	return out
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
