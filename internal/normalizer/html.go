package normalizer

import (
	"regexp"
	"strings"
)

var (
	tagPattern        = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)((?:"[^"]*"|'[^']*'|[^'">])*)>`)
	styleClassAttr    = regexp.MustCompile(`(?i)\s+(?:style|class)\s*=\s*(?:"[^"]*"|'[^']*')`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// StripInlineStylesAndClasses removes style and class attributes, unwraps
// <span> tags left without attributes and collapses whitespace. Attributed
// spans keep their opening and closing tags.
func StripInlineStylesAndClasses(html string) string {
	if html == "" {
		return ""
	}

	var (
		b     strings.Builder
		spans []bool // true when the open span was dropped
		last  int
	)
	for _, m := range tagPattern.FindAllStringSubmatchIndex(html, -1) {
		b.WriteString(html[last:m[0]])
		last = m[1]

		closing := html[m[2]:m[3]] == "/"
		name := html[m[4]:m[5]]
		attrs := strings.TrimRight(styleClassAttr.ReplaceAllString(html[m[6]:m[7]], ""), " \t\r\n")

		if strings.EqualFold(name, "span") {
			if !closing {
				bare := strings.TrimSpace(attrs) == ""
				spans = append(spans, bare)
				if bare {
					continue
				}
			} else if n := len(spans); n > 0 {
				bare := spans[n-1]
				spans = spans[:n-1]
				if bare {
					continue
				}
			}
		}

		b.WriteByte('<')
		if closing {
			b.WriteByte('/')
		}
		b.WriteString(name)
		b.WriteString(attrs)
		b.WriteByte('>')
	}
	b.WriteString(html[last:])

	return strings.TrimSpace(whitespacePattern.ReplaceAllString(b.String(), " "))
}
