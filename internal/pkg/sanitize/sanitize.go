// Package sanitize strips markup from user-supplied text fields.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// bluemonday policies are safe for concurrent use once built
var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s, unescapes entities bluemonday introduced and
// collapses whitespace. Names, headlines and onboarding fields go through it.
func Text(s string) string {
	cleaned := html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(cleaned), " ")
}
