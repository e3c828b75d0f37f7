package wikigraph

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// NormalizeTitle brings a page title or link target into the form used
// for comparisons: lowercase, underscores as spaces, no surrounding
// whitespace.
func NormalizeTitle(title string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(title), "_", " "))
}

// CompilePatterns compiles title exclusion patterns for case
// insensitive matching.
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	rv := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling pattern %q", p)
		}
		rv = append(rv, re)
	}
	return rv, nil
}

func matchesAny(s string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// IsRedirect reports whether text opens with one of the redirect
// keywords, ignoring case and leading whitespace.
func IsRedirect(text string, keywords []string) bool {
	head := strings.TrimLeft(text, " \t\r\n")
	for _, kw := range keywords {
		if kw != "" && len(head) >= len(kw) && strings.EqualFold(head[:len(kw)], kw) {
			return true
		}
	}
	return false
}

// FilterPages drops the pages whose title matches any of the exclusion
// patterns and flags the redirects among the rest.
//
// Only titles are matched against the patterns.  The returned
// articles carry normalized titles and still-raw text.
func FilterPages(pages []RawPage, exclude []*regexp.Regexp, redirectKeywords []string) []CleanedArticle {
	rv := make([]CleanedArticle, 0, len(pages))
	for _, p := range pages {
		if matchesAny(p.Title, exclude) {
			continue
		}
		rv = append(rv, CleanedArticle{
			Title:      NormalizeTitle(p.Title),
			Text:       p.Text,
			IsRedirect: IsRedirect(p.Text, redirectKeywords),
		})
	}
	return rv
}

// TransformBatch runs a batch of raw pages through FilterPages and
// CleanText.
func TransformBatch(pages []RawPage, trailing *regexp.Regexp,
	exclude []*regexp.Regexp, redirectKeywords []string) []CleanedArticle {

	rv := FilterPages(pages, exclude, redirectKeywords)
	for i := range rv {
		rv[i].Text = CleanText(rv[i].Text, trailing)
	}
	return rv
}
