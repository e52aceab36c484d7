// Package sanitizer cleans user-submitted rich-text HTML before it is
// persisted. Post bodies and comment text go through Clean exactly once,
// on write; stored content is rendered verbatim afterwards, so this is
// the only XSS defense for those fields.
package sanitizer

import "github.com/microcosm-cc/bluemonday"

// contentTags is the fixed set of structural and inline formatting tags
// permitted in rich-text fields. No scripting, style, iframe, or form tags.
var contentTags = []string{
	"a", "abbr", "acronym", "address", "b", "br", "div", "dl", "dt",
	"em", "h1", "h2", "h3", "h4", "h5", "h6", "hr", "i", "img",
	"li", "ol", "p", "pre", "q", "s", "small", "strike",
	"span", "sub", "sup", "table", "tbody", "td", "tfoot", "th",
	"thead", "tr", "tt", "u", "ul",
}

var policy = newContentPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(contentTags...)

	// Anchors and images are the only tags that carry attributes.
	p.AllowAttrs("href", "target", "title").OnElements("a")
	p.AllowAttrs("src", "alt", "width", "height").OnElements("img")

	// href/src must be parseable http, https, mailto, or relative URLs.
	// No rel="nofollow" injection: output carries only allow-listed attributes.
	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("mailto", "http", "https")

	return p
}

// Clean strips any tag outside the allow-list (keeping its inner text,
// except for script-bearing containers whose content is dropped with the
// tag) and any attribute not permitted for its tag. It is a pure function:
// it never fails, returns empty output for empty input, and passes plain
// text through unchanged. Safe for concurrent use.
func Clean(raw string) string {
	return policy.Sanitize(raw)
}
