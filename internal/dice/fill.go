package dice

import "strings"

// Fill substitutes every marker in template in a single pass and returns the
// finished string. It backs the stateless generate endpoint, which reports a
// missing category as "[<category>]" rather than the session's
// "[No values for <category>]". The lookup key is the trimmed marker content;
// the placeholder keeps the marker content as written.
func Fill(template string, ds Dataset, r Roller) string {
	return markerPattern.ReplaceAllStringFunc(template, func(match string) string {
		category := match[len(MarkerDelimiter) : len(match)-len(MarkerDelimiter)]
		if value, ok := Pick(ds, strings.TrimSpace(category), r); ok {
			return value
		}
		return "[" + category + "]"
	})
}
