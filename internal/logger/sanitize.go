package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits for values echoed into log fields.
const (
	// MaxPathLength caps URL paths.
	MaxPathLength = 500
	// MaxUserIDLength caps user IDs; OIDC subjects are usually short.
	MaxUserIDLength = 128
	// MaxErrorMessageLength caps error text.
	MaxErrorMessageLength = 1000
	// MaxGeneralStringLength caps everything else.
	MaxGeneralStringLength = 2000
)

// SanitizeString makes a request-derived string safe to log: it fixes
// invalid UTF-8, drops control characters (keeping space, tab, newline,
// and carriage return), and truncates to maxLength.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if maxLength <= 0 {
		maxLength = MaxGeneralStringLength
	}

	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}

// SanitizePath sanitizes a URL path for logging.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeError sanitizes an error's message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeUserID sanitizes a user ID for logging.
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, MaxUserIDLength)
}
