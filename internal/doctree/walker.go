package doctree

// Walker harvests redirect declarations from a document. It tracks the
// section enclosing each directive; the first section of the document is the
// root section, and sources attached to it resolve to the bare page rather
// than a fragment URL.
type Walker struct {
	sectionRedirects map[string][]string
	sectionOrder     []string
	rootSection      string
	currentSection   string
	orphaned         int
}

// NewWalker returns a walker ready to visit one document.
func NewWalker() *Walker {
	return &Walker{
		sectionRedirects: make(map[string][]string),
	}
}

// VisitSection records the section as the current attachment point. The
// first section with a non-empty ID becomes the root section.
func (w *Walker) VisitSection(s *Section) {
	if s.ID == "" {
		return
	}
	if w.rootSection == "" {
		w.rootSection = s.ID
	}
	w.currentSection = s.ID
}

// VisitRedirectDirective attaches the directive's sources to the current
// section. Directives that appear before any section have no anchor to
// resolve against and are counted as orphaned.
func (w *Walker) VisitRedirectDirective(d *RedirectDirective) {
	sources := make([]string, 0, len(d.Sources))
	for _, source := range d.Sources {
		if source != "" {
			sources = append(sources, source)
		}
	}
	if len(sources) == 0 {
		return
	}
	if w.currentSection == "" {
		w.orphaned += len(sources)
		return
	}
	if _, seen := w.sectionRedirects[w.currentSection]; !seen {
		w.sectionOrder = append(w.sectionOrder, w.currentSection)
	}
	w.sectionRedirects[w.currentSection] = append(w.sectionRedirects[w.currentSection], sources...)
}

// SectionRedirects returns the harvested map of section ID to declared
// sources.
func (w *Walker) SectionRedirects() map[string][]string {
	return w.sectionRedirects
}

// RootSection returns the ID of the document's first section, or "" when
// the document has none.
func (w *Walker) RootSection() string {
	return w.rootSection
}

// Orphaned reports how many declared sources had no enclosing section and
// were dropped.
func (w *Walker) Orphaned() int {
	return w.orphaned
}

// Resolve turns the harvest into redirect declarations for the given page:
// each source maps to the page's section URL, where the root section yields
// the bare docname and any other section yields "docname#sectionID". A
// source declared in several sections keeps all targets, in document order;
// the overlay stage picks the first and warns about the rest.
func (w *Walker) Resolve(docname string) map[string][]string {
	resolved := make(map[string][]string, len(w.sectionRedirects))
	for _, sectionID := range w.sectionOrder {
		target := docname
		if sectionID != w.rootSection {
			target = docname + "#" + sectionID
		}
		for _, source := range w.sectionRedirects[sectionID] {
			resolved[source] = append(resolved[source], target)
		}
	}
	return resolved
}

// HarvestDocument walks doc, strips its directives, and returns the
// resolved source-to-targets map. It is the one-call form used by the
// scanner after parsing each page.
func HarvestDocument(doc *Document) (map[string][]string, int) {
	walker := NewWalker()
	Walk(doc, walker)
	doc.RemoveDirectives()
	return walker.Resolve(doc.Docname), walker.Orphaned()
}
