package logs

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Highlight HTML-escapes message and wraps every case-insensitive literal
// occurrence of query in <mark>. If the pattern cannot be built the escaped
// text is returned unhighlighted.
func Highlight(message, query string) template.HTML {
	escaped := html.EscapeString(message)
	if query == "" {
		return template.HTML(escaped) //nolint:gosec // escaped above
	}

	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return template.HTML(escaped) //nolint:gosec // escaped above
	}

	matches := re.FindAllStringIndex(message, -1)
	if len(matches) == 0 {
		return template.HTML(escaped) //nolint:gosec // escaped above
	}

	// Match on the raw text and escape each segment, so a query can never
	// split an entity such as &amp;.
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(html.EscapeString(message[last:m[0]]))
		b.WriteString("<mark>")
		b.WriteString(html.EscapeString(message[m[0]:m[1]]))
		b.WriteString("</mark>")
		last = m[1]
	}
	b.WriteString(html.EscapeString(message[last:]))

	return template.HTML(b.String()) //nolint:gosec // every segment escaped
}
