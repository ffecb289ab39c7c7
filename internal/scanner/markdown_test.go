package scanner

import (
	"testing"

	"github.com/neflyte/seoredirect/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionsOf(doc *doctree.Document) []*doctree.Section {
	var sections []*doctree.Section
	for _, node := range doc.Nodes {
		if section, ok := node.(*doctree.Section); ok {
			sections = append(sections, section)
		}
	}
	return sections
}

func directivesOf(doc *doctree.Document) []*doctree.RedirectDirective {
	var directives []*doctree.RedirectDirective
	for _, node := range doc.Nodes {
		if d, ok := node.(*doctree.RedirectDirective); ok {
			directives = append(directives, d)
		}
	}
	return directives
}

func TestParseMarkdownHeadings(t *testing.T) {
	content := `# Installation Guide

Some prose.

## From Source

more prose

### Build Flags

## Binaries
`
	doc := ParseMarkdown("guide/install", "docs/guide/install.md", []byte(content))

	assert.Equal(t, "Installation Guide", doc.Title)

	sections := sectionsOf(doc)
	require.Len(t, sections, 4)

	assert.Equal(t, "installation-guide", sections[0].ID)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, "from-source", sections[1].ID)
	assert.Equal(t, 2, sections[1].Level)
	assert.Equal(t, "build-flags", sections[2].ID)
	assert.Equal(t, 3, sections[2].Level)
	assert.Equal(t, "binaries", sections[3].ID)
}

func TestParseMarkdownSlugDeduplication(t *testing.T) {
	content := "# Usage\n\n## Example\n\n## Example\n\n## Example\n"
	doc := ParseMarkdown("usage", "usage.md", []byte(content))

	sections := sectionsOf(doc)
	require.Len(t, sections, 4)
	assert.Equal(t, "example", sections[1].ID)
	assert.Equal(t, "example-1", sections[2].ID)
	assert.Equal(t, "example-2", sections[3].ID)
}

func TestParseMarkdownSlugInlineMarkup(t *testing.T) {
	testCases := []struct {
		name     string
		heading  string
		expected string
	}{
		{"code span", "# Using `generate`", "using-generate"},
		{"emphasis", "# Really **important** notes", "really-important-notes"},
		{"link", "# See [the docs](https://example.org/)", "see-the-docs"},
		{"image", "# Logo ![alt text](logo.png)", "logo-alt-text"},
		{"underscore kept", "# config_file options", "config_file-options"},
		{"punctuation dropped", "# What's new?", "whats-new"},
		{"unicode letters kept", "# Über uns", "über-uns"},
		{"digits kept", "# Version 2 notes", "version-2-notes"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := ParseMarkdown("page", "page.md", []byte(tc.heading+"\n"))
			sections := sectionsOf(doc)
			require.Len(t, sections, 1)
			assert.Equal(t, tc.expected, sections[0].ID)
		})
	}
}

func TestParseHeadingEdgeCases(t *testing.T) {
	testCases := []struct {
		name      string
		line      string
		isHeading bool
		level     int
		text      string
	}{
		{"plain", "## Section", true, 2, "Section"},
		{"closing sequence", "## Section ##", true, 2, "Section"},
		{"trailing hash kept without space", "# C#", true, 1, "C#"},
		{"only hashes", "###", true, 3, ""},
		{"no space after hashes", "#nospace", false, 0, ""},
		{"seven hashes", "####### Too deep", false, 0, ""},
		{"three space indent", "   # Indented", true, 1, "Indented"},
		{"four space indent is code", "    # Code", false, 0, ""},
		{"not a heading", "plain text", false, 0, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			level, text, ok := parseHeading(tc.line)
			assert.Equal(t, tc.isHeading, ok)
			if tc.isHeading {
				assert.Equal(t, tc.level, level)
				assert.Equal(t, tc.text, text)
			}
		})
	}
}

func TestParseMarkdownDirectiveSingleLine(t *testing.T) {
	content := `# Install

## From Source

<!-- seo-redirect: page.html#old-anchor, other.html -->

text
`
	doc := ParseMarkdown("install", "install.md", []byte(content))

	directives := directivesOf(doc)
	require.Len(t, directives, 1)
	assert.Equal(t, []string{"page.html#old-anchor", "other.html"}, directives[0].Sources)
	assert.Equal(t, 5, directives[0].Line)
}

func TestParseMarkdownDirectiveMultiLine(t *testing.T) {
	content := `# Install

<!--
seo-redirect: first.html
second.html#anchor
third.html
-->
`
	doc := ParseMarkdown("install", "install.md", []byte(content))

	directives := directivesOf(doc)
	require.Len(t, directives, 1)
	assert.Equal(t,
		[]string{"first.html", "second.html#anchor", "third.html"},
		directives[0].Sources)
}

func TestParseMarkdownPlainCommentIgnored(t *testing.T) {
	content := `# Install

<!-- just an editorial note -->
<!--
a longer note
spanning lines
-->
`
	doc := ParseMarkdown("install", "install.md", []byte(content))
	assert.Empty(t, directivesOf(doc))
}

func TestParseMarkdownDirectiveInFencedBlockIgnored(t *testing.T) {
	content := "# Docs\n\n```markdown\n<!-- seo-redirect: example.html -->\n# Not A Section\n```\n\n~~~\n<!-- seo-redirect: other.html -->\n~~~\n\n## Real Section\n"
	doc := ParseMarkdown("docs", "docs.md", []byte(content))

	assert.Empty(t, directivesOf(doc))

	sections := sectionsOf(doc)
	require.Len(t, sections, 2)
	assert.Equal(t, "docs", sections[0].ID)
	assert.Equal(t, "real-section", sections[1].ID)
}

func TestParseMarkdownLongerFenceCloses(t *testing.T) {
	content := "````\n```\n<!-- seo-redirect: inner.html -->\n```\n````\n\n<!-- seo-redirect: outer.html -->\n"
	doc := ParseMarkdown("page", "page.md", []byte(content))

	directives := directivesOf(doc)
	require.Len(t, directives, 1)
	assert.Equal(t, []string{"outer.html"}, directives[0].Sources)
}

func TestParseMarkdownUnterminatedComment(t *testing.T) {
	content := "# Page\n\n<!-- seo-redirect: lost.html\nnever closed\n"
	doc := ParseMarkdown("page", "page.md", []byte(content))

	assert.Empty(t, directivesOf(doc))
}

func TestParseMarkdownTitleFallback(t *testing.T) {
	doc := ParseMarkdown("page", "page.md", []byte("no headings here\n"))
	assert.Empty(t, doc.Title)
	assert.Empty(t, doc.Sections())
}

func TestParseMarkdownDirectivePerSection(t *testing.T) {
	content := `# Guide

<!-- seo-redirect: old-guide.html -->

## Setup

<!-- seo-redirect: old-setup.html -->
`
	doc := ParseMarkdown("guide", "guide.md", []byte(content))

	redirects, orphaned := doctree.HarvestDocument(doc)
	assert.Equal(t, 0, orphaned)
	assert.Equal(t, map[string][]string{
		"old-guide.html": {"guide"},
		"old-setup.html": {"guide#setup"},
	}, redirects)
}
