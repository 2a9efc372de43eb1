package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/draftspec/draftspec/report"
)

func skippedByFilter(c *SpecExecutionContext) report.SpecResult {
	return report.SpecResult{
		Spec:        c.Spec,
		Description: c.Spec.Description,
		ContextPath: c.ContextPath,
		Status:      report.StatusSkipped,
	}
}

func invalidArgument(c *SpecExecutionContext, message string) report.SpecResult {
	return report.SpecResult{
		Spec:        c.Spec,
		Description: c.Spec.Description,
		ContextPath: c.ContextPath,
		Status:      report.StatusFailed,
		Error:       &report.CapturedError{Kind: "invalid_argument", Message: message},
	}
}

// FilterFunc skips a spec (without invoking next) whenever predicate
// returns false.
func FilterFunc(predicate func(*SpecExecutionContext) bool) Middleware {
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			if !predicate(c) {
				return skippedByFilter(c)
			}
			return next(c)
		}
	}
}

// matchNameTimeout bounds a single regex match to guard against runaway
// evaluation, a belt-and-suspenders measure since Go's regexp package is
// RE2-based and already immune to catastrophic backtracking.
const matchNameTimeout = 100 * time.Millisecond

// FilterName skips specs whose description doesn't match include (when
// non-nil) or does match exclude (when non-nil). Each match runs under a
// fixed time budget; a match that doesn't finish in time is reported
// Failed with a pattern_timeout kind rather than hanging the run.
func FilterName(include, exclude *regexp.Regexp) Middleware {
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			done := make(chan bool, 1)
			go func() {
				ok := true
				if include != nil && !include.MatchString(c.Spec.Description) {
					ok = false
				}
				if exclude != nil && exclude.MatchString(c.Spec.Description) {
					ok = false
				}
				done <- ok
			}()

			select {
			case ok := <-done:
				if !ok {
					return skippedByFilter(c)
				}
				return next(c)
			case <-time.After(matchNameTimeout):
				return report.SpecResult{
					Spec:        c.Spec,
					Description: c.Spec.Description,
					ContextPath: c.ContextPath,
					Status:      report.StatusFailed,
					Error: &report.CapturedError{
						Kind:    "pattern_timeout",
						Message: "name filter pattern did not complete within budget",
					},
				}
			}
		}
	}
}

// FilterTags skips specs that don't carry at least one tag in include
// (when set) or that carry any tag in exclude, matching case-insensitively.
// include may be nil (no include filtering) but an explicitly empty,
// non-nil include list is a configuration error.
func FilterTags(include, exclude []string) Middleware {
	return func(next Handler) Handler {
		return func(c *SpecExecutionContext) report.SpecResult {
			if include != nil && len(include) == 0 {
				return invalidArgument(c, "filter_tags: include list must not be empty")
			}
			tags := c.Spec.Tags
			if len(include) > 0 && !anyTagPresent(tags, include) {
				return skippedByFilter(c)
			}
			if len(exclude) > 0 && anyTagPresent(tags, exclude) {
				return skippedByFilter(c)
			}
			return next(c)
		}
	}
}

func anyTagPresent(tags map[string]struct{}, want []string) bool {
	for _, t := range want {
		for tag := range tags {
			if strings.EqualFold(tag, t) {
				return true
			}
		}
	}
	return false
}

// FilterContext skips specs whose context path (joined with "/", matching
// the path spec.md §4.5 specifies) doesn't contain any of the include
// substrings, or contains any of the exclude ones.
func FilterContext(include, exclude []string) Middleware {
	return FilterFunc(func(c *SpecExecutionContext) bool {
		path := strings.Join(c.ContextPath, "/")
		if len(include) > 0 && !anySubstring(path, include) {
			return false
		}
		if len(exclude) > 0 && anySubstring(path, exclude) {
			return false
		}
		return true
	})
}

func anySubstring(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
