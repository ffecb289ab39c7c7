package scanner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/neflyte/seoredirect/internal/directive"
	"github.com/neflyte/seoredirect/internal/doctree"
)

// inlineLinkPattern matches markdown links and images so heading anchors are
// derived from the link text alone.
var inlineLinkPattern = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)

// inlineMarkupReplacer strips emphasis and code markers from heading text.
var inlineMarkupReplacer = strings.NewReplacer("`", "", "*", "")

// ParseMarkdown parses markdown content into a document tree. Only the nodes
// the redirect pipeline cares about are materialized: ATX headings become
// sections with GitHub-style anchors, and HTML comments carrying the
// seo-redirect keyword become redirect directives. Fenced code blocks are
// inert, so examples showing the directive syntax do not declare redirects.
func ParseMarkdown(docname, path string, content []byte) *doctree.Document {
	doc := &doctree.Document{
		Docname:    docname,
		SourcePath: path,
	}

	lines := strings.Split(string(content), "\n")
	slugs := newSlugger()

	var (
		inFence  bool
		fenceCh  byte
		fenceLen int
	)

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])

		if inFence {
			if isFenceClose(trimmed, fenceCh, fenceLen) {
				inFence = false
			}
			continue
		}

		if ch, length, ok := fenceOpen(trimmed); ok {
			inFence = true
			fenceCh = ch
			fenceLen = length
			continue
		}

		if strings.HasPrefix(trimmed, "<!--") {
			body, consumed, closed := readComment(lines, i)
			if closed {
				if sources, ok := directive.Parse(body); ok {
					doc.Nodes = append(doc.Nodes, &doctree.RedirectDirective{
						Sources: sources,
						Line:    i + 1,
					})
				}
			}
			i += consumed - 1
			continue
		}

		if level, text, ok := parseHeading(lines[i]); ok {
			if doc.Title == "" {
				doc.Title = text
			}
			doc.Nodes = append(doc.Nodes, &doctree.Section{
				ID:    slugs.slug(text),
				Title: text,
				Level: level,
			})
		}
	}

	return doc
}

// parseHeading recognizes an ATX heading: up to three leading spaces, one to
// six '#' characters, then a space (or end of line). A trailing run of '#'
// preceded by a space is a closing sequence and is not part of the text.
func parseHeading(line string) (int, string, bool) {
	indent := 0
	for indent < len(line) && line[indent] == ' ' {
		indent++
	}
	if indent > 3 {
		return 0, "", false
	}

	rest := line[indent:]
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}

	rest = rest[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}

	text := strings.TrimRight(strings.TrimSpace(rest), " \t")

	end := len(text)
	for end > 0 && text[end-1] == '#' {
		end--
	}
	if end == 0 {
		return level, "", true
	}
	if end < len(text) && (text[end-1] == ' ' || text[end-1] == '\t') {
		text = strings.TrimRight(text[:end], " \t")
	}

	return level, text, true
}

// fenceOpen reports whether a trimmed line opens a fenced code block.
func fenceOpen(trimmed string) (byte, int, bool) {
	for _, ch := range []byte{'`', '~'} {
		length := 0
		for length < len(trimmed) && trimmed[length] == ch {
			length++
		}
		if length >= 3 {
			return ch, length, true
		}
	}
	return 0, 0, false
}

// isFenceClose reports whether a trimmed line closes a fence opened with the
// given character and length.
func isFenceClose(trimmed string, ch byte, openLen int) bool {
	length := 0
	for length < len(trimmed) && trimmed[length] == ch {
		length++
	}
	return length >= openLen && strings.TrimRight(trimmed, string(ch)) == ""
}

// readComment collects an HTML comment starting at line index start. It
// returns the comment body, the number of lines consumed and whether the
// comment was terminated before the end of the input.
func readComment(lines []string, start int) (string, int, bool) {
	first := strings.TrimSpace(lines[start])
	rest := strings.TrimPrefix(first, "<!--")

	if idx := strings.Index(rest, "-->"); idx >= 0 {
		return rest[:idx], 1, true
	}

	var body strings.Builder
	body.WriteString(rest)

	for j := start + 1; j < len(lines); j++ {
		if idx := strings.Index(lines[j], "-->"); idx >= 0 {
			body.WriteString("\n")
			body.WriteString(lines[j][:idx])
			return body.String(), j - start + 1, true
		}
		body.WriteString("\n")
		body.WriteString(lines[j])
	}

	return body.String(), len(lines) - start, false
}

// slugger assigns GitHub-style anchors to headings, suffixing repeats with
// -1, -2 and so on. Suffixed anchors can themselves collide with literal
// heading text, so candidates are probed until an unused one is found.
type slugger struct {
	used   map[string]bool
	counts map[string]int
}

func newSlugger() *slugger {
	return &slugger{
		used:   make(map[string]bool),
		counts: make(map[string]int),
	}
}

func (s *slugger) slug(text string) string {
	base := slugify(text)
	if base == "" {
		return ""
	}

	candidate := base
	for s.used[candidate] {
		s.counts[base]++
		candidate = fmt.Sprintf("%s-%d", base, s.counts[base])
	}
	s.used[candidate] = true

	return candidate
}

// slugify lowercases heading text and keeps letters, digits, hyphens and
// underscores, turning spaces into hyphens.
func slugify(text string) string {
	text = inlineLinkPattern.ReplaceAllString(text, "$1")
	text = inlineMarkupReplacer.Replace(text)
	text = strings.ToLower(strings.TrimSpace(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}

	return b.String()
}
