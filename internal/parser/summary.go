package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SummaryText reduces a TVMaze summary, which is an HTML fragment such as
// "<p><b>Show</b> is a show.</p>", to plain text with collapsed whitespace.
// Block-level boundaries become spaces so adjacent paragraphs do not run together.
func SummaryText(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		// Not parsable as HTML, fall back to the raw text; it is escaped on render anyway
		return strings.Join(strings.Fields(markup), " ")
	}

	doc.Find("p, br, li, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	return strings.Join(strings.Fields(doc.Text()), " ")
}
