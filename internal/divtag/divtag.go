// Package divtag normalizes free-form division labels ("div 12", "12-team",
// "Tin Super Division") to a canonical "div<N>" tag so that recipes and team
// divisions can be compared without caring how a label was spelled.
package divtag

import (
	"regexp"
	"strings"
)

// Unknown is returned for labels that carry no recognizable division size.
const Unknown = "unknown"

var numberPattern = regexp.MustCompile(`\d+`)

// Normalize lowercases, strips whitespace, and extracts the first decimal
// number in the label to produce a "div<N>" tag. Labels with no digits
// normalize to Unknown.
func Normalize(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return Unknown
	}
	m := numberPattern.FindString(s)
	if m == "" {
		return Unknown
	}
	return "div" + m
}
