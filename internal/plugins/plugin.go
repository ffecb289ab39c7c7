// Package plugins defines the build-event hooks a documentation build fires
// while generating a site, and the redirect plugin that subscribes to them.
//
// The hook set mirrors a conventional static-site build: the builder starts,
// each document tree is resolved, the environment is updated once all
// documents are read, per-page HTML context is assembled, extra pages are
// collected, and the build finishes. Hook interfaces are optional; a plugin
// implements the ones it needs and the manager dispatches accordingly.
package plugins

import (
	"context"

	"github.com/neflyte/seoredirect/internal/doctree"
)

// Plugin is the base interface every build plugin implements.
type Plugin interface {
	// Name returns the unique name of the plugin
	Name() string

	// Version returns the version of the plugin
	Version() string

	// Description returns a description of what the plugin does
	Description() string

	// Initialize initializes the plugin with the given context and configuration
	Initialize(ctx context.Context, config PluginConfig) error

	// Shutdown gracefully shuts down the plugin
	Shutdown(ctx context.Context) error
}

// BuilderInitedHook runs when the builder starts, before any document is
// read.
type BuilderInitedHook interface {
	Plugin

	BuilderInited(ctx context.Context, env *BuildEnv) error
}

// DoctreeResolvedHook runs once per document after its tree is fully
// resolved.
type DoctreeResolvedHook interface {
	Plugin

	DoctreeResolved(ctx context.Context, env *BuildEnv, doc *doctree.Document) error
}

// EnvUpdatedHook runs after every document has been read and the build
// environment is complete.
type EnvUpdatedHook interface {
	Plugin

	EnvUpdated(ctx context.Context, env *BuildEnv) error
}

// PageContextHook runs for each page about to be rendered and may add values
// to the page's template context.
type PageContextHook interface {
	Plugin

	PageContext(ctx context.Context, env *BuildEnv, pagename string, pageCtx map[string]interface{}) error
}

// CollectPagesHook contributes extra pages, beyond the scanned documents, for
// the builder to write.
type CollectPagesHook interface {
	Plugin

	CollectPages(ctx context.Context, env *BuildEnv) ([]RedirectPage, error)
}

// BuildFinishedHook runs after all pages are written. buildErr carries the
// build failure, if any; hooks should skip output work when it is non-nil.
type BuildFinishedHook interface {
	Plugin

	BuildFinished(ctx context.Context, env *BuildEnv, buildErr error) error
}

// PluginConfig contains configuration for a plugin
type PluginConfig struct {
	// Name of the plugin
	Name string `json:"name"`

	// Configuration data specific to the plugin
	Config map[string]interface{} `json:"config"`

	// Whether the plugin is enabled
	Enabled bool `json:"enabled"`
}

// RedirectPage describes one page for the builder to write: the docname it
// is written under, the template to render it with and the template context.
type RedirectPage struct {
	Docname  string
	Template string
	Context  interface{}
}

// Template context keys a PageContext hook may set.
const (
	// CtxHasFragmentRedirects marks a live page that needs the
	// fragment-redirect script.
	CtxHasFragmentRedirects = "has_fragment_redirects"
	// CtxFragmentRedirects holds the JavaScript fragment-redirect
	// declaration for a live page.
	CtxFragmentRedirects = "fragment_redirects"
)
