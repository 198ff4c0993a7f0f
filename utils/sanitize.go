package utils

import "github.com/microcosm-cc/bluemonday"

// Posts are plain text, so the strict policy applies: all markup is
// stripped rather than allowlisted.
var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips HTML from user-supplied text to prevent stored XSS.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
