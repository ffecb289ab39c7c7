// Package build orchestrates a complete redirect-generation run: scanning
// the documentation sources, firing the build hooks in order, rendering the
// collected redirect pages and writing everything to the output directory.
package build

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/emit"
	rerrors "github.com/neflyte/seoredirect/internal/errors"
	"github.com/neflyte/seoredirect/internal/logging"
	"github.com/neflyte/seoredirect/internal/plugins"
	"github.com/neflyte/seoredirect/internal/plugins/builtin"
	"github.com/neflyte/seoredirect/internal/redirect"
	"github.com/neflyte/seoredirect/internal/registry"
	"github.com/neflyte/seoredirect/internal/render"
	"github.com/neflyte/seoredirect/internal/scanner"
)

// Options configures one build run.
type Options struct {
	// OutDir is the output directory; empty falls back to the configured
	// output directory.
	OutDir string
	// DryRun computes and reports without writing any file.
	DryRun bool
	// Strict fails the build when any redirect warning was produced.
	Strict bool
	// Verify re-parses every written redirect page and fails the build if
	// one carries no redirect mechanism.
	Verify bool
	// Progress receives per-page status lines; nil disables them.
	Progress io.Writer
}

// Result summarizes a build run.
type Result struct {
	Documents     int
	PagesWritten  []string
	Sidecars      []string
	Extensionless int
	Warnings      []redirect.Warning
	Duration      time.Duration
	DryRun        bool
}

// Builder wires the scanner, the plugin manager and the output writer into
// a reusable build driver. A Builder can run repeatedly; watch mode reuses
// one across rebuilds.
type Builder struct {
	config    *config.Config
	options   Options
	logger    logging.Logger
	registry  *registry.PageRegistry
	scanner   *scanner.DocumentScanner
	engine    render.Engine
	writer    *emit.Writer
	manager   *plugins.PluginManager
	env       *plugins.BuildEnv
	collector *rerrors.ErrorCollector
}

// NewBuilder creates a build driver for the given configuration.
func NewBuilder(cfg *config.Config, options Options, logger logging.Logger) (*Builder, error) {
	if options.OutDir == "" {
		options.OutDir = cfg.Output.Dir
	}

	engine, err := render.NewHTMLEngine()
	if err != nil {
		return nil, fmt.Errorf("loading default templates: %w", err)
	}
	if err := engine.LoadOverrides(cfg.Templates.Simple, cfg.Templates.Fragment); err != nil {
		return nil, fmt.Errorf("loading template overrides: %w", err)
	}

	reg := registry.NewPageRegistry()
	docScanner := scanner.NewDocumentScanner(reg, cfg.Docs.Extensions, cfg.Docs.ExcludePatterns)

	manager := plugins.NewPluginManager(logger)
	plugin := builtin.NewSEORedirectPlugin(logger)
	if err := manager.RegisterPlugin(plugin, plugins.PluginConfig{Name: plugin.Name(), Enabled: true}); err != nil {
		return nil, fmt.Errorf("registering redirect plugin: %w", err)
	}

	return &Builder{
		config:    cfg,
		options:   options,
		logger:    logger,
		registry:  reg,
		scanner:   docScanner,
		engine:    engine,
		writer:    emit.NewWriter(options.OutDir, logger),
		manager:   manager,
		env:       plugins.NewBuildEnv(cfg, reg, logger, options.OutDir),
		collector: rerrors.NewErrorCollector(),
	}, nil
}

// Env exposes the build environment, primarily for inspection commands.
func (b *Builder) Env() *plugins.BuildEnv {
	return b.env
}

// RemoveDocument purges a deleted source document from the scanner, the
// registry and the directive bookkeeping. Watch mode calls this on file
// deletion before rebuilding.
func (b *Builder) RemoveDocument(docname string) {
	b.scanner.RemoveDocument(docname)
	b.env.PurgeDoc(docname)
}

// Clean removes the output directory before a fresh build.
func (b *Builder) Clean() error {
	return b.writer.Clean()
}

// Close releases the builder's resources.
func (b *Builder) Close() error {
	if err := b.scanner.Close(); err != nil {
		return err
	}
	return b.manager.Shutdown()
}

// Run executes one complete build. The hook order mirrors a documentation
// build: builder-inited, doctree-resolved per document, env-updated,
// page-context per page, collect-pages, build-finished.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	started := time.Now()
	op := logging.StartOperation(b.logger, "build")

	b.env.ResetBuildState()
	b.collector.Clear()

	result := &Result{DryRun: b.options.DryRun}

	runErr := b.run(ctx, result)

	result.Warnings = b.env.Warnings()
	for _, w := range result.Warnings {
		b.collector.Add(rerrors.BuildError{
			Message:  w.String(),
			Severity: rerrors.ErrorSeverityWarning,
		})
	}

	if runErr == nil && b.options.Strict && len(result.Warnings) > 0 {
		runErr = rerrors.NewBuildError("strict_warnings",
			fmt.Sprintf("strict mode: %d redirect warning(s)", len(result.Warnings)), nil)
	}

	// The finished hook fires even for failed builds so plugins can clean
	// up, but not for dry runs, whose contract is to touch nothing.
	if !b.options.DryRun {
		if err := b.manager.BuildFinished(ctx, b.env, runErr); err != nil && runErr == nil {
			runErr = err
		}
	}

	result.Extensionless = len(b.env.ExtensionlessPages())
	result.Duration = time.Since(started)

	if runErr != nil {
		op.EndWithError(ctx, runErr)
		return result, runErr
	}
	op.End(ctx)
	return result, nil
}

func (b *Builder) run(ctx context.Context, result *Result) error {
	if err := b.scanner.ScanRoots(b.config.Docs.SourcePaths); err != nil {
		return fmt.Errorf("scanning documentation sources: %w", err)
	}

	documents := b.scanner.Documents()
	result.Documents = len(documents)

	if err := b.manager.BuilderInited(ctx, b.env); err != nil {
		return err
	}

	docnames := make([]string, 0, len(documents))
	for docname := range documents {
		docnames = append(docnames, docname)
	}
	sort.Strings(docnames)

	for _, docname := range docnames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.manager.DoctreeResolved(ctx, b.env, documents[docname]); err != nil {
			return err
		}
	}

	if err := b.manager.EnvUpdated(ctx, b.env); err != nil {
		return err
	}

	if err := b.writeSidecars(ctx, result); err != nil {
		return err
	}

	return b.writeRedirectPages(ctx, result)
}

// writeSidecars runs the page-context hook for every scanned page and writes
// a fragment-redirect script next to each live page whose anchors moved.
func (b *Builder) writeSidecars(ctx context.Context, result *Result) error {
	for _, docname := range b.registry.Docnames() {
		pageCtx := make(map[string]interface{})
		if err := b.manager.PageContext(ctx, b.env, docname, pageCtx); err != nil {
			return err
		}

		has, _ := pageCtx[plugins.CtxHasFragmentRedirects].(bool)
		if !has {
			continue
		}
		declaration, _ := pageCtx[plugins.CtxFragmentRedirects].(string)
		if declaration == "" {
			continue
		}

		result.Sidecars = append(result.Sidecars, docname)
		if b.options.DryRun {
			continue
		}
		if _, err := b.writer.WriteSidecar(docname, emit.SidecarScript(declaration)); err != nil {
			b.addPageError(docname, err)
			return err
		}
	}
	return nil
}

// writeRedirectPages collects, renders and writes the generated redirect
// pages.
func (b *Builder) writeRedirectPages(ctx context.Context, result *Result) error {
	pages, err := b.manager.CollectPages(ctx, b.env)
	if err != nil {
		return err
	}

	progress := emit.NewProgress(b.options.Progress, "writing redirect pages...", len(pages))
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		progress.Step(page.Docname)

		html, err := b.engine.Render(ctx, page.Template, page.Context)
		if err != nil {
			b.addPageError(page.Docname, err)
			return fmt.Errorf("rendering redirect page %s: %w", page.Docname, err)
		}

		result.PagesWritten = append(result.PagesWritten, page.Docname)
		if b.options.DryRun {
			continue
		}

		if _, err := b.writer.WritePage(page.Docname, []byte(html)); err != nil {
			b.addPageError(page.Docname, err)
			return err
		}

		if b.options.Verify {
			if err := b.writer.VerifyPage(page.Docname); err != nil {
				b.addPageError(page.Docname, err)
				return err
			}
		}
	}
	progress.Done()

	return nil
}

func (b *Builder) addPageError(docname string, err error) {
	b.collector.Add(rerrors.BuildError{
		Docname:  docname,
		Message:  err.Error(),
		Severity: rerrors.ErrorSeverityError,
	})
}

// Errors returns the build errors and warnings collected by the last run.
func (b *Builder) Errors() *rerrors.ErrorCollector {
	return b.collector
}
