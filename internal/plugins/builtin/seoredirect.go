// Package builtin contains the redirect plugins bundled with seoredirect.
package builtin

import (
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/neflyte/seoredirect/internal/doctree"
	"github.com/neflyte/seoredirect/internal/emit"
	"github.com/neflyte/seoredirect/internal/logging"
	"github.com/neflyte/seoredirect/internal/plugins"
	"github.com/neflyte/seoredirect/internal/redirect"
	"github.com/neflyte/seoredirect/internal/render"
	"github.com/neflyte/seoredirect/internal/version"
)

// SEORedirectPlugin turns configured and in-document redirect declarations
// into redirect pages. It subscribes to every build hook: configuration is
// loaded when the builder starts, directives are harvested per document,
// the redirect table is computed once all documents are read, live pages
// receive fragment-redirect context, redirect pages are collected for
// rendering, and extensionless copies are written after a successful build.
type SEORedirectPlugin struct {
	config  plugins.PluginConfig
	logger  logging.Logger
	mutex   sync.RWMutex
	entries map[string]string
}

// NewSEORedirectPlugin creates the redirect plugin.
func NewSEORedirectPlugin(logger logging.Logger) *SEORedirectPlugin {
	if logger != nil {
		logger = logger.WithComponent("seo-redirect")
	}
	return &SEORedirectPlugin{
		logger:  logger,
		entries: make(map[string]string),
	}
}

// Name returns the plugin name
func (srp *SEORedirectPlugin) Name() string {
	return "seo-redirect"
}

// Version returns the plugin version
func (srp *SEORedirectPlugin) Version() string {
	return version.GetVersion()
}

// Description returns the plugin description
func (srp *SEORedirectPlugin) Description() string {
	return "Generates SEO-friendly redirect pages for moved documents and anchors"
}

// Initialize initializes the plugin with the given configuration
func (srp *SEORedirectPlugin) Initialize(ctx context.Context, config plugins.PluginConfig) error {
	srp.config = config
	return nil
}

// Shutdown gracefully shuts down the plugin
func (srp *SEORedirectPlugin) Shutdown(ctx context.Context) error {
	return nil
}

// BuilderInited loads the configured redirect entries. The plugin disables
// itself only when the configuration explicitly turns it off; an empty
// redirect map keeps the build hooks live because directives may still
// declare redirects inside documents.
func (srp *SEORedirectPlugin) BuilderInited(ctx context.Context, env *plugins.BuildEnv) error {
	if env.Config.Disabled {
		env.SetEnabled(false)
		srp.info(ctx, "redirect generation disabled by configuration")
		return nil
	}

	entries, err := env.Config.MergedRedirects()
	if err != nil {
		return fmt.Errorf("loading configured redirects: %w", err)
	}

	srp.mutex.Lock()
	srp.entries = entries
	srp.mutex.Unlock()

	env.SetEnabled(true)

	if len(entries) == 0 {
		srp.info(ctx, "no redirects configured; in-document directives may still declare some")
	} else {
		srp.debug(ctx, "loaded configured redirects", "count", len(entries))
	}
	return nil
}

// DoctreeResolved harvests redirect directives from a resolved document and
// records them against the document so incremental rebuilds can replace them
// wholesale. Harvesting strips the directives; they must not appear in
// rendered output.
func (srp *SEORedirectPlugin) DoctreeResolved(ctx context.Context, env *plugins.BuildEnv, doc *doctree.Document) error {
	if !env.Enabled() {
		return nil
	}

	resolved, orphaned := doctree.HarvestDocument(doc)
	if orphaned > 0 {
		srp.warn(ctx, "redirect sources declared before any section heading", "docname", doc.Docname, "count", orphaned)
	}

	env.SetDoctreeRedirects(doc.Docname, resolved)

	if len(resolved) > 0 {
		srp.debug(ctx, "harvested redirect directives", "docname", doc.Docname, "sources", len(resolved))
	}
	return nil
}

// EnvUpdated computes the final redirect table once every document has been
// read. Configured redirects and directive-declared redirects are normalized
// separately with the same site options, then merged with configuration
// taking precedence. An empty result disables the remaining hooks for this
// build.
func (srp *SEORedirectPlugin) EnvUpdated(ctx context.Context, env *plugins.BuildEnv) error {
	if !env.Enabled() {
		return nil
	}

	opts := redirect.Options{
		BaseURL:    env.Config.Site.BaseURL,
		PathPrefix: env.Config.Site.URLPathPrefix,
	}

	srp.mutex.RLock()
	entries := make(map[string]string, len(srp.entries))
	for source, target := range srp.entries {
		entries[source] = target
	}
	srp.mutex.RUnlock()

	table, warnings := redirect.Compute(opts, entries)

	directiveEntries, directiveWarnings := env.DirectiveEntries()
	warnings = append(warnings, directiveWarnings...)

	directiveTable, computeWarnings := redirect.Compute(opts, directiveEntries)
	warnings = append(warnings, computeWarnings...)

	table.Overlay(directiveTable, func(w redirect.Warning) {
		warnings = append(warnings, w)
	})

	for _, w := range warnings {
		env.AddWarning(w)
		srp.warn(ctx, w.String())
	}

	if len(table) == 0 {
		env.SetEnabled(false)
		srp.info(ctx, "no redirects to process")
		return nil
	}

	env.SetComputed(table)

	intra, orphan := table.Partition(env.Registry.Has)
	env.SetIntraPages(intra)

	srp.debug(ctx, "computed redirect table",
		"pages", len(table), "live", len(intra), "generated", len(orphan))
	return nil
}

// PageContext injects the fragment-redirect script into the template context
// of live pages whose anchors moved. Every page gets the has-redirects flag
// so templates can test it unconditionally.
func (srp *SEORedirectPlugin) PageContext(ctx context.Context, env *plugins.BuildEnv, pagename string, pageCtx map[string]interface{}) error {
	if !env.Enabled() {
		return nil
	}

	pageCtx[plugins.CtxHasFragmentRedirects] = false
	if !env.IsIntraPage(pagename) {
		return nil
	}

	fragments := env.Computed()[pagename]
	if len(fragments) == 0 {
		return nil
	}

	pageCtx[plugins.CtxFragmentRedirects] = redirect.FragmentScript(fragments)
	pageCtx[plugins.CtxHasFragmentRedirects] = true
	return nil
}

// CollectPages emits one redirect page per table entry whose source page does
// not exist in the built documentation. A page with a single whole-page
// redirect becomes a static meta-refresh page; everything else becomes a
// fragment-dispatch page, backfilling a whole-page entry first when only a
// single fragment redirect exists.
func (srp *SEORedirectPlugin) CollectPages(ctx context.Context, env *plugins.BuildEnv) ([]plugins.RedirectPage, error) {
	if !env.Enabled() {
		return nil, nil
	}

	table := env.Computed()
	extensionless := env.Config.Output.Extensionless

	var pages []plugins.RedirectPage
	for _, docname := range table.Pages() {
		if env.Registry.Has(docname) {
			srp.debug(ctx, "source page exists; redirecting via page context", "docname", docname)
			continue
		}

		fragments := table[docname]
		title := render.PageTitle(docname)

		if target, ok := fragments[redirect.DefaultPageKey]; ok && len(fragments) == 1 {
			pages = append(pages, plugins.RedirectPage{
				Docname:  docname,
				Template: render.SimpleTemplate,
				Context:  render.SimplePage{Title: title, ToURI: target},
			})
			if extensionless {
				env.AddExtensionlessPage(docname)
			}
			continue
		}

		if fragments.EnsureDefault() {
			srp.debug(ctx, "backfilled whole-page redirect", "docname", docname,
				"target", fragments[redirect.DefaultPageKey])
		}

		pages = append(pages, plugins.RedirectPage{
			Docname:  docname,
			Template: render.FragmentTemplate,
			Context: render.FragmentPage{
				Title:             title,
				FragmentRedirects: template.JS(redirect.FragmentScript(fragments)),
			},
		})
		if extensionless {
			env.AddExtensionlessPage(docname)
		}
	}

	// Persist default-entry backfills so later hooks see the same table.
	env.SetComputed(table)

	srp.debug(ctx, "collected redirect pages", "count", len(pages))
	return pages, nil
}

// BuildFinished copies generated redirect pages to extensionless filenames
// after a successful build, for servers that map clean URLs straight onto
// files. Nothing is copied when the build failed.
func (srp *SEORedirectPlugin) BuildFinished(ctx context.Context, env *plugins.BuildEnv, buildErr error) error {
	if !env.Enabled() || buildErr != nil {
		return nil
	}
	if !env.Config.Output.Extensionless {
		return nil
	}

	pages := env.ExtensionlessPages()
	if len(pages) == 0 {
		return nil
	}

	writer := emit.NewWriter(env.OutDir, srp.logger)
	copied, err := writer.CopyExtensionless(ctx, pages, nil)
	if err != nil {
		return fmt.Errorf("copying extensionless redirect pages: %w", err)
	}

	srp.debug(ctx, "copied extensionless redirect pages", "count", copied)
	return nil
}

func (srp *SEORedirectPlugin) debug(ctx context.Context, msg string, fields ...interface{}) {
	if srp.logger != nil {
		srp.logger.Debug(ctx, msg, fields...)
	}
}

func (srp *SEORedirectPlugin) info(ctx context.Context, msg string, fields ...interface{}) {
	if srp.logger != nil {
		srp.logger.Info(ctx, msg, fields...)
	}
}

func (srp *SEORedirectPlugin) warn(ctx context.Context, msg string, fields ...interface{}) {
	if srp.logger != nil {
		srp.logger.Warn(ctx, nil, msg, fields...)
	}
}

// Ensure SEORedirectPlugin implements the required interfaces
var _ plugins.Plugin = (*SEORedirectPlugin)(nil)
var _ plugins.BuilderInitedHook = (*SEORedirectPlugin)(nil)
var _ plugins.DoctreeResolvedHook = (*SEORedirectPlugin)(nil)
var _ plugins.EnvUpdatedHook = (*SEORedirectPlugin)(nil)
var _ plugins.PageContextHook = (*SEORedirectPlugin)(nil)
var _ plugins.CollectPagesHook = (*SEORedirectPlugin)(nil)
var _ plugins.BuildFinishedHook = (*SEORedirectPlugin)(nil)
