// Package render turns redirect tables into HTML pages. It provides a small
// template engine over html/template with embedded default templates and
// support for author-supplied override files.
package render

import (
	"context"
	"io"
)

// Engine defines the template engine interface
type Engine interface {
	// Render renders a template with the given data
	Render(ctx context.Context, templateName string, data interface{}) (string, error)

	// RenderToWriter renders a template to a writer
	RenderToWriter(ctx context.Context, w io.Writer, templateName string, data interface{}) error

	// Parse parses a template from string
	Parse(templateName, templateContent string) error

	// ParseFile parses a template from file
	ParseFile(templateName, filename string) error

	// Exists checks if a template exists
	Exists(templateName string) bool

	// List returns all available template names
	List() []string
}
