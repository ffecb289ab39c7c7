package emit

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// PageCheck is the result of inspecting a written redirect page.
type PageCheck struct {
	HasMetaRefresh bool
	HasScript      bool
	HasCanonical   bool
	Title          string
}

// Redirects reports whether the page carries at least one working redirect
// mechanism.
func (c PageCheck) Redirects() bool {
	return c.HasMetaRefresh || c.HasScript
}

// CheckRedirectPage parses a redirect page and reports which redirect
// mechanisms it carries. Used by build verification to catch template
// overrides that render pages going nowhere.
func CheckRedirectPage(r io.Reader) (PageCheck, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return PageCheck{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var check PageCheck

	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta":
				if attrValue(n, "http-equiv") == "refresh" {
					check.HasMetaRefresh = true
				}
			case "script":
				if scriptRedirects(n) {
					check.HasScript = true
				}
			case "link":
				if attrValue(n, "rel") == "canonical" {
					check.HasCanonical = true
				}
			case "title":
				if check.Title == "" {
					check.Title = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	return check, nil
}

// VerifyPage opens the written page for docname and fails when it has no
// redirect mechanism at all.
func (w *Writer) VerifyPage(docname string) error {
	path, err := w.artifactPath(docname + ".html")
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening redirect page for verification: %w", err)
	}
	defer func() { _ = f.Close() }()

	check, err := CheckRedirectPage(f)
	if err != nil {
		return fmt.Errorf("verifying %s: %w", path, err)
	}

	if !check.Redirects() {
		return fmt.Errorf("redirect page %s has neither a meta refresh nor a redirect script", path)
	}

	return nil
}

func attrValue(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, name) {
			return strings.ToLower(attr.Val)
		}
	}
	return ""
}

func scriptRedirects(n *html.Node) bool {
	body := textContent(n)
	return strings.Contains(body, "window.location.replace") ||
		strings.Contains(body, "window.location.href")
}

func textContent(n *html.Node) string {
	var text strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return text.String()
}
