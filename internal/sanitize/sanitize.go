// Package sanitize strips active content from text produced by a generative model
// before it is shown to a user or stored in a session.
//
// It removes <script> and <iframe> blocks, javascript: URI schemes and inline
// event-handler prefixes (on*=). It is not an HTML sanitizer: other markup passes
// through untouched, and the event-handler rule also matches ordinary words that
// end in "on" followed by '=' (e.g. "option=").
package sanitize

import (
	"regexp"
	"strings"
)

var (
	scriptBlock  = regexp.MustCompile(`(?is)<script\b.*?</script>`)
	iframeBlock  = regexp.MustCompile(`(?is)<iframe\b.*?</iframe>`)
	jsScheme     = regexp.MustCompile(`(?i)javascript:`)
	eventHandler = regexp.MustCompile(`(?i)on\w+\s*=`)
)

// Text applies the sanitization rules in a fixed order and trims surrounding space.
func Text(s string) string {
	if s == "" {
		return ""
	}
	s = scriptBlock.ReplaceAllString(s, "")
	s = iframeBlock.ReplaceAllString(s, "")
	s = jsScheme.ReplaceAllString(s, "")
	s = eventHandler.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
