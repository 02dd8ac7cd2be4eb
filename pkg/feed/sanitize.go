package feed

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips dangerous markup from entry content before it is stored
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a sanitizer with a UGC policy, the right profile for
// third-party feed content
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// Clean sanitizes an HTML fragment; plain text passes through unchanged
func (s *Sanitizer) Clean(html string) string {
	return strings.TrimSpace(s.policy.Sanitize(html))
}
