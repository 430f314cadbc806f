// internal/app/system/htmlsanitize/htmlsanitize.go

// Package htmlsanitize strips unsafe markup from user-authored content
// (post bodies, bios, headlines) before it is stored. Profiles and feed
// posts are rendered by third-party clients, so sanitization happens on
// write rather than trusting every renderer.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richPolicy = buildRichPolicy()
var strictPolicy = bluemonday.StrictPolicy()

func buildRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// UGC already covers formatting, lists, blockquotes, and links.
	p.AllowAttrs("class").OnElements("p", "span", "ul", "ol", "li", "blockquote")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize cleans rich user content (feed post bodies, bios), keeping safe
// formatting and links while removing scripts and event handlers.
func Sanitize(s string) string {
	return strings.TrimSpace(richPolicy.Sanitize(s))
}

// PlainText strips all markup, for single-line fields like headlines where
// no HTML is meaningful.
func PlainText(s string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(s))
}
