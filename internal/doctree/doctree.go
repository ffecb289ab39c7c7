// Package doctree models the slice of the host documentation generator's
// document tree that redirect harvesting consumes: section headings with
// their anchor IDs and inline redirect directives. The scanner package
// builds these trees from Markdown sources; hosts with their own parsers
// can construct them directly.
package doctree

// Node is a document tree node. Only the node kinds the walker understands
// are modeled; a sparse visitor ignores everything else.
type Node interface {
	node()
}

// Section is a document heading.
type Section struct {
	// ID is the section's anchor identifier as it appears in rendered
	// fragment URLs.
	ID string
	// Title is the heading text.
	Title string
	// Level is the heading depth, 1 for a document title.
	Level int
}

func (*Section) node() {}

// RedirectDirective carries the source URLs declared by one seo-redirect
// directive. The declared sources should redirect to the section that
// contains the directive.
type RedirectDirective struct {
	// Sources are the declared source URLs, in declaration order.
	Sources []string
	// Line is the 1-based source line of the directive, for diagnostics.
	Line int
}

func (*RedirectDirective) node() {}

// Document is a parsed documentation page.
type Document struct {
	// Docname is the page name relative to the documentation root,
	// without extension, using "/" separators.
	Docname string
	// Title is the page title, normally the first heading.
	Title string
	// SourcePath is the file the document was parsed from, for
	// diagnostics.
	SourcePath string
	// Nodes holds the document's sections and directives in source order.
	Nodes []Node
}

// Visitor receives document nodes in source order.
type Visitor interface {
	VisitSection(*Section)
	VisitRedirectDirective(*RedirectDirective)
}

// Walk dispatches every node of doc to v in order.
func Walk(doc *Document, v Visitor) {
	for _, n := range doc.Nodes {
		switch node := n.(type) {
		case *Section:
			v.VisitSection(node)
		case *RedirectDirective:
			v.VisitRedirectDirective(node)
		}
	}
}

// RemoveDirectives strips all RedirectDirective nodes from the document.
// Harvested directives carry no content of their own and must not leak into
// rendered output.
func (d *Document) RemoveDirectives() {
	kept := d.Nodes[:0]
	for _, n := range d.Nodes {
		if _, ok := n.(*RedirectDirective); ok {
			continue
		}
		kept = append(kept, n)
	}
	d.Nodes = kept
}

// Sections returns the IDs of the document's sections in source order.
func (d *Document) Sections() []string {
	var ids []string
	for _, n := range d.Nodes {
		if section, ok := n.(*Section); ok && section.ID != "" {
			ids = append(ids, section.ID)
		}
	}
	return ids
}
