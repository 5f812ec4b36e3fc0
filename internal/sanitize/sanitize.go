// Package sanitize cleans user-written HTML. Entries pass through HTML
// before they are stored, and StripSecretsHTML hides inline secrets from
// readers who may not see them.
package sanitize

import (
	"io"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// secretAttr marks a span whose text only scribes and owners may read.
const secretAttr = "data-secret"

var (
	tableElements = []string{"table", "thead", "tbody", "tfoot", "tr", "td", "th", "colgroup", "col", "caption"}
	styledBlocks  = []string{"span", "p", "div", "td", "th"}
)

// entryPolicy extends the UGC policy with what the entry editor emits.
var entryPolicy = newEntryPolicy()

func newEntryPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements(styledBlocks...)
	p.AllowElements(tableElements...)
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("data-entity-preview").OnElements("a")
	p.AllowAttrs(secretAttr).OnElements("span")
	return p
}

// HTML removes scripts, event handlers and unsafe URLs from input. The
// result is safe to render verbatim.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return entryPolicy.Sanitize(input)
}

// StripSecretsHTML drops every secret span together with its content,
// nested spans included. Input is expected to have passed through HTML.
func StripSecretsHTML(input string) string {
	if !strings.Contains(input, secretAttr) {
		return input
	}

	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(input))
	depth := 0 // open spans inside the current secret
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() == io.EOF {
				return out.String()
			}
			// Unparseable input never reaches readers.
			return ""
		}
		tok := z.Token()
		isSpan := tok.DataAtom == atom.Span

		switch {
		case depth > 0 && isSpan && tt == html.StartTagToken:
			depth++
		case depth > 0 && isSpan && tt == html.EndTagToken:
			depth--
		case depth > 0:
		case isSpan && tt == html.StartTagToken && hasAttr(tok, secretAttr):
			depth = 1
		default:
			out.Write(z.Raw())
		}
	}
}

func hasAttr(tok html.Token, key string) bool {
	for _, a := range tok.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
