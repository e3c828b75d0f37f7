package wikigraph

import (
	"regexp"
)

var linkRE, nowikiRE *regexp.Regexp

func init() {
	linkRE = regexp.MustCompile(`\[\[([^\|\]]+)`)
	nowikiRE = regexp.MustCompile(`(?s)<nowiki>.*?</nowiki>`)
}

// FindLinks finds all the links from within an article body.
//
// Each link is returned as written, up to the first | or ]], so
// display text is dropped but section anchors (Title#Section, or a
// bare #Section) are kept.
func FindLinks(text string) []string {
	cleaned := nowikiRE.ReplaceAllString(text, "")
	matches := linkRE.FindAllStringSubmatch(cleaned, -1)

	rv := make([]string, 0, len(matches))
	for _, x := range matches {
		rv = append(rv, x[1])
	}

	return rv
}
