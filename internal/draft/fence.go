package draft

import (
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// StripFence trims text and, when it contains a fenced code block (optionally
// tagged json), returns the body of the first block.
func StripFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(cleaned); m != nil {
		return m[1]
	}
	return cleaned
}
