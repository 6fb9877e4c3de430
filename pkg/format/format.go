package format

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	numberedPrefix = regexp.MustCompile(`^\d+\.\s`)
	headingPrefix  = regexp.MustCompile(`(?m)^#+\s`)
	boldMarker     = regexp.MustCompile(`\*\*(.*?)\*\*`)
)

// Response shapes a backend answer for display. Numbered lists are
// re-numbered to match line position (line order is preserved), heading
// markers are stripped otherwise, and paired ** markers become <strong>
// spans. Unrecognized markup passes through verbatim.
func Response(text string) string {
	if numberedPrefix.MatchString(text) {
		lines := strings.Split(text, "\n")
		for i, line := range lines {
			line = numberedPrefix.ReplaceAllString(line, fmt.Sprintf("%d. ", i+1))
			lines[i] = strings.TrimSpace(line)
		}
		return convertBold(strings.Join(lines, "\n"))
	}

	// Remove markdown-style headings ('### ', '#### ', etc.)
	return convertBold(headingPrefix.ReplaceAllString(text, ""))
}

// convertBold rewrites paired **text** markers into <strong> spans
func convertBold(text string) string {
	return boldMarker.ReplaceAllString(text, "<strong>$1</strong>")
}
