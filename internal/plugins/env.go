package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/logging"
	"github.com/neflyte/seoredirect/internal/redirect"
	"github.com/neflyte/seoredirect/internal/registry"
)

// BuildEnv is the build environment shared between the builder and its
// plugins. It carries the configuration, the page registry and the state
// plugins accumulate across hook invocations.
//
// Directive-declared redirects are kept per docname so that purging a
// document (when its source changes or disappears) removes exactly that
// document's contribution, and so that merging state from parallel readers
// is idempotent.
type BuildEnv struct {
	Config   *config.Config
	Registry *registry.PageRegistry
	Logger   logging.Logger
	OutDir   string

	mu               sync.RWMutex
	enabled          bool
	doctreeRedirects map[string]map[string][]string
	computed         redirect.Table
	intraPages       []string
	extensionless    []string
	warnings         []redirect.Warning
}

// NewBuildEnv creates a build environment.
func NewBuildEnv(cfg *config.Config, reg *registry.PageRegistry, logger logging.Logger, outDir string) *BuildEnv {
	return &BuildEnv{
		Config:           cfg,
		Registry:         reg,
		Logger:           logger,
		OutDir:           outDir,
		doctreeRedirects: make(map[string]map[string][]string),
	}
}

// SetEnabled records whether redirect processing is active for this build.
func (e *BuildEnv) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// Enabled reports whether redirect processing is active for this build.
func (e *BuildEnv) Enabled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.enabled
}

// SetDoctreeRedirects replaces the directive-declared redirects contributed
// by one document. The map is keyed by redirect source; values are the
// resolved in-document locations ("docname" or "docname#section").
func (e *BuildEnv) SetDoctreeRedirects(docname string, redirects map[string][]string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(redirects) == 0 {
		delete(e.doctreeRedirects, docname)
		return
	}
	e.doctreeRedirects[docname] = redirects
}

// PurgeDoc removes a document's directive redirects, typically because the
// document was deleted or is about to be re-read.
func (e *BuildEnv) PurgeDoc(docname string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.doctreeRedirects, docname)
}

// MergeDoctreeRedirects folds directive redirects collected by another
// environment (a parallel reader) into this one. Entire documents are
// replaced, so re-merging the same reader twice does not duplicate targets.
func (e *BuildEnv) MergeDoctreeRedirects(other map[string]map[string][]string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for docname, redirects := range other {
		copied := make(map[string][]string, len(redirects))
		for source, targets := range redirects {
			copied[source] = append([]string(nil), targets...)
		}
		e.doctreeRedirects[docname] = copied
	}
}

// DoctreeRedirects returns a copy of the per-document directive redirects.
func (e *BuildEnv) DoctreeRedirects() map[string]map[string][]string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make(map[string]map[string][]string, len(e.doctreeRedirects))
	for docname, redirects := range e.doctreeRedirects {
		copied := make(map[string][]string, len(redirects))
		for source, targets := range redirects {
			copied[source] = append([]string(nil), targets...)
		}
		result[docname] = copied
	}
	return result
}

// DirectiveEntries flattens the per-document directive redirects into a
// source-to-target map suitable for table computation. Resolved in-document
// locations become site-absolute URLs. When the same source is declared more
// than once, the first declaration wins, in docname order, and the rest are
// reported as duplicate warnings.
func (e *BuildEnv) DirectiveEntries() (map[string]string, []redirect.Warning) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	docnames := make([]string, 0, len(e.doctreeRedirects))
	for docname := range e.doctreeRedirects {
		docnames = append(docnames, docname)
	}
	sort.Strings(docnames)

	entries := make(map[string]string)
	var warnings []redirect.Warning

	for _, docname := range docnames {
		redirects := e.doctreeRedirects[docname]

		sources := make([]string, 0, len(redirects))
		for source := range redirects {
			sources = append(sources, source)
		}
		sort.Strings(sources)

		for _, source := range sources {
			for _, location := range redirects[source] {
				target := locationURL(location)
				if existing, seen := entries[source]; seen {
					warnings = append(warnings, redirect.Warning{
						Code:   redirect.WarnDuplicateDirective,
						Source: source,
						Detail: fmt.Sprintf("target %s ignored; already redirecting to %s", target, existing),
					})
					continue
				}
				entries[source] = target
			}
		}
	}

	return entries, warnings
}

// locationURL converts a resolved in-document location to a site-absolute
// URL: "guide/install#setup" becomes "/guide/install.html#setup".
func locationURL(location string) string {
	docname, fragment, hasFragment := strings.Cut(location, "#")
	url := "/" + docname + ".html"
	if hasFragment {
		url += "#" + fragment
	}
	return url
}

// SetComputed stores the computed redirect table.
func (e *BuildEnv) SetComputed(table redirect.Table) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.computed = table
}

// Computed returns a deep copy of the computed redirect table.
func (e *BuildEnv) Computed() redirect.Table {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.computed.Clone()
}

// SetIntraPages stores the docnames that are live pages with fragment
// redirects of their own.
func (e *BuildEnv) SetIntraPages(pages []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intraPages = append([]string(nil), pages...)
}

// IntraPages returns the live pages carrying fragment redirects.
func (e *BuildEnv) IntraPages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.intraPages...)
}

// IsIntraPage reports whether a page is a live page with fragment redirects.
func (e *BuildEnv) IsIntraPage(pagename string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, page := range e.intraPages {
		if page == pagename {
			return true
		}
	}
	return false
}

// AddExtensionlessPage queues a page for an extensionless copy after the
// build finishes.
func (e *BuildEnv) AddExtensionlessPage(pagename string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.extensionless = append(e.extensionless, pagename)
}

// ExtensionlessPages returns the pages queued for extensionless copies.
func (e *BuildEnv) ExtensionlessPages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.extensionless...)
}

// AddWarning records a table-computation warning.
func (e *BuildEnv) AddWarning(w redirect.Warning) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.warnings = append(e.warnings, w)
}

// Warnings returns the warnings recorded so far.
func (e *BuildEnv) Warnings() []redirect.Warning {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]redirect.Warning(nil), e.warnings...)
}

// ResetBuildState clears the per-build outputs (computed table, page lists
// and warnings) while keeping the per-document directive bookkeeping. Watch
// mode calls this before each rebuild.
func (e *BuildEnv) ResetBuildState() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.computed = nil
	e.intraPages = nil
	e.extensionless = nil
	e.warnings = nil
}
