package render

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

const (
	// SimpleTemplate renders a page with a single whole-page redirect.
	SimpleTemplate = "simpleredirect.html"
	// FragmentTemplate renders a page that resolves its target from the
	// URL fragment at load time.
	FragmentTemplate = "redirect.html"
)

//go:embed templates/*.html
var defaultTemplates embed.FS

// HTMLEngine is an Engine over html/template. The embedded default templates
// are loaded at construction; override files replace them by name.
type HTMLEngine struct {
	mu        sync.RWMutex
	templates map[string]*template.Template
}

// NewHTMLEngine creates an engine preloaded with the default redirect
// templates.
func NewHTMLEngine() (*HTMLEngine, error) {
	engine := &HTMLEngine{
		templates: make(map[string]*template.Template),
	}

	entries, err := defaultTemplates.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("reading embedded templates: %w", err)
	}

	for _, entry := range entries {
		content, err := defaultTemplates.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading embedded template %s: %w", entry.Name(), err)
		}
		if err := engine.Parse(entry.Name(), string(content)); err != nil {
			return nil, err
		}
	}

	return engine, nil
}

// LoadOverrides replaces the default templates with author-supplied files.
// Empty paths keep the embedded defaults.
func (e *HTMLEngine) LoadOverrides(simplePath, fragmentPath string) error {
	if simplePath != "" {
		if err := e.ParseFile(SimpleTemplate, simplePath); err != nil {
			return err
		}
	}
	if fragmentPath != "" {
		if err := e.ParseFile(FragmentTemplate, fragmentPath); err != nil {
			return err
		}
	}
	return nil
}

// Render renders a template with the given data
func (e *HTMLEngine) Render(ctx context.Context, templateName string, data interface{}) (string, error) {
	var b strings.Builder
	if err := e.RenderToWriter(ctx, &b, templateName, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RenderToWriter renders a template to a writer
func (e *HTMLEngine) RenderToWriter(ctx context.Context, w io.Writer, templateName string, data interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.RLock()
	tmpl, exists := e.templates[templateName]
	e.mu.RUnlock()

	if !exists {
		return fmt.Errorf("template %q not found", templateName)
	}

	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("rendering template %q: %w", templateName, err)
	}

	return nil
}

// Parse parses a template from string
func (e *HTMLEngine) Parse(templateName, templateContent string) error {
	tmpl, err := template.New(templateName).Parse(templateContent)
	if err != nil {
		return fmt.Errorf("parsing template %q: %w", templateName, err)
	}

	e.mu.Lock()
	e.templates[templateName] = tmpl
	e.mu.Unlock()

	return nil
}

// ParseFile parses a template from file
func (e *HTMLEngine) ParseFile(templateName, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading template file %s: %w", filename, err)
	}
	return e.Parse(templateName, string(content))
}

// Exists checks if a template exists
func (e *HTMLEngine) Exists(templateName string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, exists := e.templates[templateName]
	return exists
}

// List returns all available template names in sorted order
func (e *HTMLEngine) List() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.templates))
	for name := range e.templates {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
