package ingest

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// htmlPolicy strips scripts, event handlers, and other active content from
// inbound HTML bodies before they are stored.
var htmlPolicy = bluemonday.UGCPolicy()

// SanitizeHTML cleans an inbound HTML body for storage
func SanitizeHTML(html string) string {
	if html == "" {
		return ""
	}
	return htmlPolicy.Sanitize(html)
}

var (
	scriptStyleRe = regexp.MustCompile(`(?i)<(script|style)[^>]*>[\s\S]*?</(script|style)>`)
	tagRe         = regexp.MustCompile(`<[^>]*>`)
)

// PlainText reduces an HTML body to whitespace-normalized text, used to
// derive previews when a payload has no text part
func PlainText(html string) string {
	text := scriptStyleRe.ReplaceAllString(html, "")
	text = tagRe.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)
	text = strings.ReplaceAll(text, "&#39;", "'")
	return strings.Join(strings.Fields(text), " ")
}
