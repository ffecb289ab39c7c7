package redirect

import (
	"errors"
	"sort"
	"strings"
)

// Parse errors returned by ParseSource. Compute maps them onto warning codes;
// other callers can test for them with errors.Is.
var (
	// ErrMalformedSource is returned for a source URL with more than one
	// "#" separator.
	ErrMalformedSource = errors.New("malformed redirect source")
	// ErrEmptyPage is returned when the page component of a source URL is
	// empty after normalization.
	ErrEmptyPage = errors.New("empty page name in redirect source")
)

// Options carries the normalization parameters for a computation. Both URLs
// are right-trimmed of "/" before use.
type Options struct {
	// BaseURL is the site's public base URL. Targets carrying it as a
	// prefix are rewritten to site-relative form so intra-site redirects
	// keep working when the site moves.
	BaseURL string
	// PathPrefix is prepended to targets that start with "/". It lets a
	// site served under a sub-path (e.g. "/docs") declare root-relative
	// targets.
	PathPrefix string
}

// ParseSource splits a raw source URL into page and fragment components.
// A trailing ".html" is stripped from both components so authors may write
// either "old/page" or "old/page.html".
func ParseSource(raw string) (Source, error) {
	tokens := strings.Split(raw, "#")
	switch len(tokens) {
	case 1:
		src := Source{Page: strings.TrimSuffix(tokens[0], ".html")}
		if src.Page == "" {
			return Source{}, ErrEmptyPage
		}
		return src, nil
	case 2:
		src := Source{
			Page:     strings.TrimSuffix(tokens[0], ".html"),
			Fragment: strings.TrimSuffix(tokens[1], ".html"),
		}
		if src.Page == "" {
			return Source{}, ErrEmptyPage
		}
		return src, nil
	default:
		return Source{}, ErrMalformedSource
	}
}

// Compute normalizes raw redirect entries into a Table. It is a single
// synchronous pass over entries, processed in sorted source order so the
// returned warnings are deterministic.
//
// Per entry:
//   - the source is parsed with ParseSource; malformed or page-less sources
//     are skipped with a warning
//   - the target is stripped of opts.BaseURL when it carries that prefix
//   - an empty target (originally, or after stripping) is skipped with a
//     warning
//   - opts.PathPrefix is prepended to targets starting with "/"
//   - a fragmentless source stores its target under DefaultPageKey
//
// Pages whose fragment map ends up empty are pruned from the result.
func Compute(opts Options, entries map[string]string) (Table, []Warning) {
	table := make(Table, len(entries))
	var warnings []Warning

	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	pathPrefix := strings.TrimSuffix(opts.PathPrefix, "/")

	sources := make([]string, 0, len(entries))
	for source := range entries {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		src, err := ParseSource(source)
		switch {
		case errors.Is(err, ErrMalformedSource):
			warnings = append(warnings, Warning{Code: WarnInvalidSource, Source: source})
			continue
		case errors.Is(err, ErrEmptyPage):
			warnings = append(warnings, Warning{Code: WarnEmptyPage, Source: source})
			continue
		}

		if _, ok := table[src.Page]; !ok {
			table[src.Page] = make(PageRedirects)
		}

		target := entries[source]
		if baseURL != "" {
			target = strings.TrimPrefix(target, baseURL)
		}
		if target == "" {
			warnings = append(warnings, Warning{Code: WarnEmptyTarget, Source: source})
			continue
		}
		if pathPrefix != "" && strings.HasPrefix(target, "/") {
			target = pathPrefix + target
		}

		if src.Fragment == "" {
			table[src.Page][DefaultPageKey] = target
			continue
		}
		table[src.Page][src.Fragment] = target
	}

	// Entries skipped after their page key was created can leave empty maps
	// behind; a Table never exposes those.
	for page, fragments := range table {
		if len(fragments) == 0 {
			delete(table, page)
		}
	}

	return table, warnings
}
