// Package obfuscate centralizes redaction helpers used when logging credentials.
package obfuscate

import (
	"strings"
)

// Token obfuscates a bearer token for display/logging.
// - length <= 4  → all asterisks of same length
// - 5..12        → keep first 2 characters, replace the rest with asterisks
// - > 12         → keep first 8 characters, then "...", then last 4 characters
func Token(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	if len(s) <= 12 {
		return s[:2] + strings.Repeat("*", len(s)-2)
	}
	return s[:8] + "..." + s[len(s)-4:]
}

// Email keeps the first two characters of the local part and the whole domain.
// Strings without an "@" are treated as tokens.
func Email(s string) string {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return Token(s)
	}
	local, domain := s[:at], s[at:]
	if len(local) <= 2 {
		return strings.Repeat("*", len(local)) + domain
	}
	return local[:2] + strings.Repeat("*", len(local)-2) + domain
}
