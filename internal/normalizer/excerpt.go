package normalizer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const summaryWords = 55

// Excerpt returns the first n words of the visible body text of an HTML
// fragment. Headings are skipped.
func Excerpt(html string, n int) string {
	if strings.TrimSpace(html) == "" || n <= 0 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var words []string
	collectWords(doc.Find("body"), &words)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}

func collectWords(s *goquery.Selection, words *[]string) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		switch goquery.NodeName(c) {
		case "#text":
			*words = append(*words, strings.Fields(c.Text())...)
		case "script", "style", "h1", "h2", "h3", "h4", "h5", "h6":
		default:
			collectWords(c, words)
		}
	})
}
