package utils

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans user supplied text to prevent XSS and trims surrounding space.
func Sanitize(input string) string {
	return strings.TrimSpace(sanitizer.Sanitize(input))
}
