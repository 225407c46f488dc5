package indexer

import "strings"

// Project Gutenberg wraps every ebook in license boilerplate delimited by these markers,
// e.g. "*** START OF THE PROJECT GUTENBERG EBOOK ALICE'S ADVENTURES IN WONDERLAND ***".
const (
	gutenbergStart = "*** START OF"
	gutenbergEnd   = "*** END OF"
)

// StripGutenberg returns the text between the Project Gutenberg start and end markers.
// Text without markers is returned unchanged.
func StripGutenberg(text string) string {
	if i := strings.Index(text, gutenbergStart); i >= 0 {
		if nl := strings.IndexByte(text[i:], '\n'); nl >= 0 {
			text = text[i+nl+1:]
		} else {
			text = ""
		}
	}
	if i := strings.Index(text, gutenbergEnd); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}
