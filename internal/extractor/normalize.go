package extractor

import "strings"

// Normalize collapses every whitespace run to a single space and trims the ends.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
