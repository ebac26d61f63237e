// README: Markdown fence stripping applied before JSON decoding.
package itinerary

import (
	"regexp"
	"strings"
)

// fencePattern matches text that is entirely one fenced block with an optional
// language tag. An unterminated fence does not match.
var fencePattern = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// stripFence returns the fenced content of s, or s itself when s is not a
// complete fenced block. s is expected to be trimmed already.
func stripFence(s string) string {
	m := fencePattern.FindStringSubmatch(s)
	if m == nil || m[2] == "" {
		return s
	}
	return strings.TrimSpace(m[2])
}
