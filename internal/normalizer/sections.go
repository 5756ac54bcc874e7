package normalizer

import (
	"regexp"
	"sort"
	"strings"
)

var leadingHeading = regexp.MustCompile(`(?i)^<h[1-6][\s>]`)

type section struct {
	order float64
	name  string
	body  string
}

// splitSections renders the Sections array into the description and the
// detailed specs. Sections named "Description" (or unnamed) feed the
// description, everything else the specs. Named sections get an <h2> from
// their name unless the body already opens with a heading.
func splitSections(doc Document) (description, specs string) {
	var sections []section
	for _, item := range doc.List("Sections") {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		body, _ := field(obj, "SectionText", "Text")
		body = StripInlineStylesAndClasses(body)
		if body == "" {
			continue
		}
		s := section{body: body}
		s.name, _ = field(obj, "SectionName", "Name")
		s.order, _ = toFloat(obj["SortOrder"])
		sections = append(sections, s)
	}

	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].order < sections[j].order
	})

	var descParts, specParts []string
	for _, s := range sections {
		switch {
		case s.name == "":
			descParts = append(descParts, s.body)
			continue
		case strings.EqualFold(s.name, "description"):
			descParts = append(descParts, withHeading(s.name, s.body))
			continue
		}
		specParts = append(specParts, withHeading(s.name, s.body))
	}
	return strings.Join(descParts, "\n"), strings.Join(specParts, "\n")
}

func withHeading(name, body string) string {
	if leadingHeading.MatchString(body) {
		return body
	}
	return "<h2>" + name + "</h2>" + body
}
