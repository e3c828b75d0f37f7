package wikigraph

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
)

var fileRE = regexp.MustCompile(`(?i)\[\[\s*(?:file|image)\s*:([^\|\]]+)`)

// FindFiles finds the media files an article embeds.
//
// Files in comments are found too, as many are only commented out.
// Only the English File: and Image: prefixes are recognized.
func FindFiles(text string) []string {
	cleaned := nowikiRE.ReplaceAllString(text, "")
	matches := fileRE.FindAllStringSubmatch(cleaned, -1)

	rv := make([]string, 0, len(matches))
	for _, x := range matches {
		rv = append(rv, strings.TrimSpace(x[1]))
	}
	return rv
}

// URLForFile gets the commons URL of the named file.
func URLForFile(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	sum := md5.Sum([]byte(name))
	h := hex.EncodeToString(sum[:])

	return "https://upload.wikimedia.org/wikipedia/commons/" +
		h[:1] + "/" + h[:2] + "/" + url.QueryEscape(name)
}
