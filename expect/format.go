package expect

import "fmt"

// formatValue renders a value the way AssertionFailure messages describe
// it: null for nil, quoted for strings, default string conversion for
// everything else.
func formatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}
