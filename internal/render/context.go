package render

import (
	"html/template"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SimplePage is the template context for SimpleTemplate.
type SimplePage struct {
	Title string
	ToURI string
}

// FragmentPage is the template context for FragmentTemplate. The
// FragmentRedirects value is a complete JavaScript declaration and is
// inserted into the page unescaped.
type FragmentPage struct {
	Title             string
	FragmentRedirects template.JS
}

// PageTitle derives a human-readable title for a redirect page from its
// docname: "guide/old-install" becomes "Old Install". A fresh caser is built
// per call; cases.Caser is not safe for concurrent use.
func PageTitle(docname string) string {
	base := path.Base(strings.TrimSuffix(docname, "/"))
	if base == "." || base == "/" || base == "" {
		return "Redirect"
	}

	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	base = strings.Join(strings.Fields(base), " ")
	if base == "" {
		return "Redirect"
	}

	return cases.Title(language.English).String(base)
}
