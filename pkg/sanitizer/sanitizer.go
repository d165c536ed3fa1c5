// Package sanitizer cleans user-generated text before it is persisted.
// Comment bodies are stored as plain text: every HTML element, attribute
// and script-bearing URL scheme is stripped.
package sanitizer

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
}

// Comment sanitizes a comment body. All HTML is stripped and surrounding
// whitespace trimmed.
func Comment(s string) string {
	initPolicies()
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
