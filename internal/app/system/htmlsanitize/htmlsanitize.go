// Package htmlsanitize strips dangerous markup from user-supplied rich text
// (task descriptions) before it is stored and echoed back to other members.
package htmlsanitize

import "github.com/microcosm-cc/bluemonday"

var ugc = bluemonday.UGCPolicy()

var strict = bluemonday.StrictPolicy()

// Sanitize keeps common formatting tags and safe links, removing scripts,
// event handlers, and javascript: URLs.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// Plain strips all markup. Used for single-line fields such as task titles,
// board names, and project names.
func Plain(s string) string {
	return strict.Sanitize(s)
}
