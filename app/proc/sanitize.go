package proc

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	textPolicy = bluemonday.StrictPolicy()
	// complete tags or comments only, "x<y" or "<3" is plain text
	reMarkup = regexp.MustCompile(`(?s)<(?:/?[a-zA-Z][^<>]*|!--.*?--)>`)
)

// cleanText strips html markup from user supplied text. Text without markup is kept as is.
// Ampersands are escaped before sanitizing, so entities typed by the user survive the unescape.
func cleanText(s string) string {
	if !reMarkup.MatchString(s) {
		return s
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	return html.UnescapeString(textPolicy.Sanitize(s))
}

// isBlank checks if cleaned text has nothing but whitespace
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
