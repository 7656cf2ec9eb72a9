// Package validation holds the shared request validator and input
// scrubbing helpers.
package validation

import (
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator instance used by the handlers.
var Validate = validator.New(validator.WithRequiredStructEnabled())

// SanitizeText strips control characters from user-supplied text,
// keeping newlines and tabs, and trims surrounding whitespace.
func SanitizeText(text string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, text)
	return strings.TrimSpace(cleaned)
}
