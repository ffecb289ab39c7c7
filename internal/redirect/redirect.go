// Package redirect implements the redirect-table computation at the heart of
// seoredirect.
//
// Author-supplied redirect entries map a source URL (optionally carrying a
// fragment) to a target URL. Compute normalizes those entries into a Table:
// a per-page map of fragment keys to target URLs. The computation is a pure,
// synchronous, single pass over the input; malformed entries produce Warnings
// and are skipped, never aborting the build.
package redirect

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPageKey is the fragment-map key that stands for the source page
// itself, i.e. a redirect that applies when no fragment matched.
const DefaultPageKey = "-"

// FragmentRedirectsVar is the JavaScript identifier emitted for the
// client-side fragment redirect map. Themes and the bundled redirect
// template look it up by this exact name.
const FragmentRedirectsVar = "fragment_redirects"

// PageRedirects maps a fragment (or DefaultPageKey) to a target URL for a
// single source page.
type PageRedirects map[string]string

// Table maps a source page name to its fragment redirect map. A Table
// returned by Compute never contains a page with an empty PageRedirects.
type Table map[string]PageRedirects

// Source is a parsed redirect source URL.
type Source struct {
	// Page is the page name with any trailing ".html" removed.
	Page string
	// Fragment is the fragment component with any trailing ".html"
	// removed; empty when the source carries no fragment.
	Fragment string
}

// Warning describes a non-fatal problem with a redirect entry. Warnings are
// reported and the offending entry skipped; they never fail a computation.
type Warning struct {
	Code   WarningCode
	Source string
	Detail string
}

// WarningCode classifies redirect warnings.
type WarningCode string

const (
	// WarnInvalidSource marks a source URL with more than one fragment
	// separator.
	WarnInvalidSource WarningCode = "invalid-source"
	// WarnEmptyPage marks a source URL whose page name is empty.
	WarnEmptyPage WarningCode = "empty-page"
	// WarnEmptyTarget marks an entry whose target URL is empty, possibly
	// after base-URL stripping.
	WarnEmptyTarget WarningCode = "empty-target"
	// WarnShadowedRedirect marks an overlay entry hidden by one already in
	// the table.
	WarnShadowedRedirect WarningCode = "shadowed-redirect"
	// WarnDuplicateDirective marks a source declared by more than one
	// in-document directive.
	WarnDuplicateDirective WarningCode = "duplicate-directive"
	// WarnExtensionlessConflict marks an extensionless page whose target
	// path is already occupied by a directory.
	WarnExtensionlessConflict WarningCode = "extensionless-conflict"
)

// String renders the warning for logs and CLI output.
func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s: %s", w.Code, w.Source)
	}
	return fmt.Sprintf("%s: %s: %s", w.Code, w.Source, w.Detail)
}

// Keys returns the fragment keys of pr in emission order: DefaultPageKey
// first when present, then the remaining fragments sorted. Map iteration
// order is unspecified in Go, so every consumer that writes output goes
// through Keys to stay deterministic.
func (pr PageRedirects) Keys() []string {
	keys := make([]string, 0, len(pr))
	hasDefault := false
	for key := range pr {
		if key == DefaultPageKey {
			hasDefault = true
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if hasDefault {
		keys = append([]string{DefaultPageKey}, keys...)
	}
	return keys
}

// EnsureDefault backfills a DefaultPageKey entry when pr holds exactly one
// redirect and it is fragment-specific. Without the backfill a visitor
// browsing to the bare page would see a blank screen. Returns true if an
// entry was added. Maps with two or more entries are left alone.
func (pr PageRedirects) EnsureDefault() bool {
	if len(pr) != 1 {
		return false
	}
	if _, ok := pr[DefaultPageKey]; ok {
		return false
	}
	for _, target := range pr {
		if target != "" {
			pr[DefaultPageKey] = target
			return true
		}
	}
	return false
}

// FragmentScript builds the JavaScript object literal carrying the fragment
// redirect map for one page:
//
//	const fragment_redirects = Object.freeze({"-":"page","frag":"page#frag2"});
//
// Key order follows PageRedirects.Keys.
func FragmentScript(pr PageRedirects) string {
	var b strings.Builder
	b.WriteString("const ")
	b.WriteString(FragmentRedirectsVar)
	b.WriteString(" = Object.freeze({")
	for i, key := range pr.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%q:%q", key, pr[key])
	}
	b.WriteString("});")
	return b.String()
}

// Pages returns the table's source page names in sorted order.
func (t Table) Pages() []string {
	pages := make([]string, 0, len(t))
	for page := range t {
		pages = append(pages, page)
	}
	sort.Strings(pages)
	return pages
}

// Partition splits the table's pages into those that exist in the built
// documentation (intra) and those that do not (orphan). Intra pages receive
// client-side fragment redirects injected into the real page; orphan pages
// get a generated redirect page. Both slices are sorted.
func (t Table) Partition(exists func(page string) bool) (intra, orphan []string) {
	for _, page := range t.Pages() {
		if exists(page) {
			intra = append(intra, page)
		} else {
			orphan = append(orphan, page)
		}
	}
	return intra, orphan
}

// Overlay merges other into t. Entries already present in t win: a
// conflicting entry from other is dropped with a WarnShadowedRedirect
// warning. Configured redirects overlay directive-harvested ones this way,
// so explicit configuration always takes precedence.
func (t Table) Overlay(other Table, warn func(Warning)) {
	for _, page := range other.Pages() {
		fragments := other[page]
		existing, ok := t[page]
		if !ok {
			existing = make(PageRedirects, len(fragments))
			t[page] = existing
		}
		for _, frag := range fragments.Keys() {
			if shadowing, ok := existing[frag]; ok {
				if warn != nil {
					warn(Warning{
						Code:   WarnShadowedRedirect,
						Source: joinSource(page, frag),
						Detail: fmt.Sprintf("kept %q, dropped %q", shadowing, fragments[frag]),
					})
				}
				continue
			}
			existing[frag] = fragments[frag]
		}
	}
}

// Clone returns a deep copy of the table.
func (t Table) Clone() Table {
	clone := make(Table, len(t))
	for page, fragments := range t {
		pageCopy := make(PageRedirects, len(fragments))
		for frag, target := range fragments {
			pageCopy[frag] = target
		}
		clone[page] = pageCopy
	}
	return clone
}

// joinSource reassembles a display name for a (page, fragment) pair.
func joinSource(page, frag string) string {
	if frag == "" || frag == DefaultPageKey {
		return page
	}
	return page + "#" + frag
}
