package wikigraph

import (
	"regexp"
	"strings"
)

var refRE, commentRE, boldRE, punctSpaceRE *regexp.Regexp

func init() {
	refRE = regexp.MustCompile(`(?is)<\s*ref\b[^>]*/\s*>|<\s*ref\b[^>]*>.*?<\s*/\s*ref\s*>`)
	commentRE = regexp.MustCompile(`(?s)<!--.*?-->`)
	boldRE = regexp.MustCompile(`'''(.*?)'''`)
	punctSpaceRE = regexp.MustCompile(`([.,;:!?]) {2,}`)
}

// removeTemplates cuts every outermost {{...}} span out of text.
// Nested templates go away with the one enclosing them.  A {{ that is
// never closed is left alone, along with everything after it.
func removeTemplates(text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	depth, start, kept := 0, 0, 0
	for i := 0; i+1 < len(text); {
		switch {
		case text[i] == '{' && text[i+1] == '{':
			if depth == 0 {
				start = i
			}
			depth++
			i += 2
		case text[i] == '}' && text[i+1] == '}' && depth > 0:
			depth--
			i += 2
			if depth == 0 {
				b.WriteString(text[kept:start])
				kept = i
			}
		default:
			i++
		}
	}
	b.WriteString(text[kept:])
	return b.String()
}

// CleanText extracts the main text of an article from its raw markup.
//
// Templates, references and comments are removed, anything before the
// first bold span (usually the article's own name) is dropped, and so
// is everything from the first match of trailing onwards.  trailing
// would typically match the heading of a "See also" or "References"
// section; it may be nil.
func CleanText(text string, trailing *regexp.Regexp) string {
	cleaned := removeTemplates(text)
	cleaned = refRE.ReplaceAllString(cleaned, "")
	cleaned = commentRE.ReplaceAllString(cleaned, "")

	if loc := boldRE.FindStringIndex(cleaned); loc != nil {
		cleaned = cleaned[loc[0]:]
	}

	if trailing != nil {
		if loc := trailing.FindStringIndex(cleaned); loc != nil {
			cleaned = cleaned[:loc[0]]
		}
	}

	cleaned = strings.ReplaceAll(cleaned, "&nbsp;", " ")
	cleaned = punctSpaceRE.ReplaceAllString(cleaned, "$1 ")
	return strings.TrimSpace(cleaned)
}
