// Package normalize provides canonical forms for user-entered identifiers
// so lookups and uniqueness checks behave consistently.
package normalize

import "strings"

// Email trims whitespace and lowercases. An email is compared and stored
// only in this form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace; case is preserved.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// AuthMethod trims and lowercases ("internal", "google").
func AuthMethod(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
