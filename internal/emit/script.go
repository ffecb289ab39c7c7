package emit

import "strings"

// SidecarScript wraps a fragment-redirect table declaration in a resolver
// suitable for inclusion on a live page. Unlike the generated redirect
// pages, a live page only forwards visitors whose URL fragment matches a
// moved anchor; everyone else stays on the page.
func SidecarScript(declaration string) string {
	var b strings.Builder
	b.WriteString(declaration)
	b.WriteString("\n")
	b.WriteString("(function () {\n")
	b.WriteString("  var fragment = window.location.hash.replace(/^#/, \"\");\n")
	b.WriteString("  if (fragment === \"\") {\n")
	b.WriteString("    return;\n")
	b.WriteString("  }\n")
	b.WriteString("  var target = fragment_redirects[fragment];\n")
	b.WriteString("  if (target !== undefined) {\n")
	b.WriteString("    window.location.replace(target);\n")
	b.WriteString("  }\n")
	b.WriteString("})();\n")
	return b.String()
}
