package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SimplifyText strips markup and collapses all runs of whitespace into
// single spaces, returning trimmed plain text.
func SimplifyText(text string) string {
	if strings.ContainsRune(text, '<') {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
