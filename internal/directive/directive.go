// Package directive parses seo-redirect declarations out of documentation
// sources.
//
// A declaration is an HTML comment whose first non-blank line starts with
// "seo-redirect:". Sources may be given on that line, comma separated, or
// one per following line, or both:
//
//	<!-- seo-redirect: old/page1,old/page2#section -->
//
//	<!--
//	seo-redirect:
//	  old2/page3#section4
//	  old2/page4
//	-->
//
// The declared sources redirect to the section of the document that
// contains the comment.
package directive

import "strings"

// Name is the directive keyword.
const Name = "seo-redirect"

// Parse inspects a comment body and, when it is a seo-redirect directive,
// returns the declared sources in declaration order. The second return is
// false for comments that are not seo-redirect directives at all; a
// recognized directive with no sources returns an empty slice and true.
func Parse(body string) ([]string, bool) {
	lines := strings.Split(body, "\n")

	first := 0
	for first < len(lines) && strings.TrimSpace(lines[first]) == "" {
		first++
	}
	if first == len(lines) {
		return nil, false
	}

	head, ok := strings.CutPrefix(strings.TrimSpace(lines[first]), Name+":")
	if !ok {
		return nil, false
	}

	sources := make([]string, 0, len(lines)-first)
	collect := func(raw string) {
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				sources = append(sources, item)
			}
		}
	}

	collect(head)
	for _, line := range lines[first+1:] {
		collect(line)
	}
	return sources, true
}
