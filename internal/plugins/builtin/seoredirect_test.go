package builtin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/doctree"
	"github.com/neflyte/seoredirect/internal/logging"
	"github.com/neflyte/seoredirect/internal/plugins"
	"github.com/neflyte/seoredirect/internal/redirect"
	"github.com/neflyte/seoredirect/internal/render"
	"github.com/neflyte/seoredirect/internal/registry"
)

func newHookEnv(t *testing.T, cfg *config.Config, livePages ...string) *plugins.BuildEnv {
	t.Helper()
	reg := registry.NewPageRegistry()
	for _, page := range livePages {
		reg.Register(&registry.PageInfo{Docname: page})
	}
	return plugins.NewBuildEnv(cfg, reg, logging.NewLogger(logging.DefaultConfig()), t.TempDir())
}

func newHookPlugin() *SEORedirectPlugin {
	return NewSEORedirectPlugin(logging.NewLogger(logging.DefaultConfig()))
}

// runThrough fires the builder-inited and env-updated hooks, which every
// later hook depends on.
func runThrough(t *testing.T, srp *SEORedirectPlugin, env *plugins.BuildEnv) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, srp.BuilderInited(ctx, env))
	require.NoError(t, srp.EnvUpdated(ctx, env))
}

func TestPluginIdentity(t *testing.T) {
	srp := newHookPlugin()
	assert.Equal(t, "seo-redirect", srp.Name())
	assert.NotEmpty(t, srp.Version())
	assert.NotEmpty(t, srp.Description())
}

func TestBuilderInited_DisabledByConfig(t *testing.T) {
	cfg := &config.Config{
		Disabled:  true,
		Redirects: map[string]string{"foo": "bar"},
	}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()

	require.NoError(t, srp.BuilderInited(context.Background(), env))
	assert.False(t, env.Enabled())
}

func TestBuilderInited_EmptyConfigStaysEnabled(t *testing.T) {
	env := newHookEnv(t, &config.Config{})
	srp := newHookPlugin()

	require.NoError(t, srp.BuilderInited(context.Background(), env))
	assert.True(t, env.Enabled(), "directives may still declare redirects later")
}

func TestBuilderInited_BadRedirectFile(t *testing.T) {
	cfg := &config.Config{
		RedirectFiles: []string{filepath.Join(t.TempDir(), "missing.yml")},
	}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()

	assert.Error(t, srp.BuilderInited(context.Background(), env))
}

func TestEnvUpdated_LivePageBecomesIntra(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"foo": "bar"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()

	runThrough(t, srp, env)

	assert.Equal(t, []string{"foo"}, env.IntraPages())
	assert.True(t, env.Enabled())
}

func TestEnvUpdated_MissingPageNotIntra(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"narf": "fnord"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()

	runThrough(t, srp, env)

	assert.Empty(t, env.IntraPages())
	assert.Contains(t, env.Computed(), "narf")
}

func TestEnvUpdated_AllEntriesInvalidDisables(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"": "fnord"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()

	runThrough(t, srp, env)

	assert.False(t, env.Enabled())
	assert.Empty(t, env.IntraPages())

	warnings := env.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, redirect.WarnEmptyPage, warnings[0].Code)
}

func TestEnvUpdated_ConfigWinsOverDirective(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"old-page": "config-target.html"}}
	env := newHookEnv(t, cfg)
	env.SetDoctreeRedirects("guide", map[string][]string{
		"old-page": {"guide"},
	})
	srp := newHookPlugin()

	runThrough(t, srp, env)

	table := env.Computed()
	assert.Equal(t, "config-target.html", table["old-page"][redirect.DefaultPageKey])

	var shadowed bool
	for _, w := range env.Warnings() {
		if w.Code == redirect.WarnShadowedRedirect {
			shadowed = true
		}
	}
	assert.True(t, shadowed, "dropped directive target must be reported")
}

func TestEnvUpdated_DirectiveOnly(t *testing.T) {
	env := newHookEnv(t, &config.Config{})
	env.SetDoctreeRedirects("guide/install", map[string][]string{
		"old-install.html": {"guide/install"},
		"old-setup.html":   {"guide/install#setup"},
	})
	srp := newHookPlugin()

	runThrough(t, srp, env)

	table := env.Computed()
	assert.Equal(t, "/guide/install.html", table["old-install"][redirect.DefaultPageKey])
	assert.Equal(t, "/guide/install.html#setup", table["old-setup"][redirect.DefaultPageKey])
	assert.True(t, env.Enabled())
}

func TestEnvUpdated_PathPrefixAppliesToDirectives(t *testing.T) {
	cfg := &config.Config{Site: config.SiteConfig{URLPathPrefix: "/docs"}}
	env := newHookEnv(t, cfg)
	env.SetDoctreeRedirects("guide", map[string][]string{
		"old-setup": {"guide#setup"},
	})
	srp := newHookPlugin()

	runThrough(t, srp, env)

	table := env.Computed()
	assert.Equal(t, "/docs/guide.html#setup", table["old-setup"][redirect.DefaultPageKey])
}

func TestEnvUpdated_BaseURLStripped(t *testing.T) {
	cfg := &config.Config{
		Site:      config.SiteConfig{BaseURL: "https://docs.example.com"},
		Redirects: map[string]string{"old-page": "https://docs.example.com/new-page.html"},
	}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()

	runThrough(t, srp, env)

	table := env.Computed()
	assert.Equal(t, "/new-page.html", table["old-page"][redirect.DefaultPageKey])
}

func TestDoctreeResolved_HarvestsAndStrips(t *testing.T) {
	env := newHookEnv(t, &config.Config{})
	srp := newHookPlugin()
	require.NoError(t, srp.BuilderInited(context.Background(), env))

	doc := &doctree.Document{
		Docname: "guide/install",
		Nodes: []doctree.Node{
			&doctree.Section{ID: "guide-install", Title: "Install", Level: 1},
			&doctree.RedirectDirective{Sources: []string{"old-install.html"}, Line: 3},
			&doctree.Section{ID: "setup", Title: "Setup", Level: 2},
			&doctree.RedirectDirective{Sources: []string{"old-setup.html"}, Line: 7},
		},
	}

	require.NoError(t, srp.DoctreeResolved(context.Background(), env, doc))

	harvested := env.DoctreeRedirects()["guide/install"]
	assert.Equal(t, []string{"guide/install"}, harvested["old-install.html"])
	assert.Equal(t, []string{"guide/install#setup"}, harvested["old-setup.html"])

	for _, n := range doc.Nodes {
		_, isDirective := n.(*doctree.RedirectDirective)
		assert.False(t, isDirective, "directives must not survive into rendering")
	}
}

func TestDoctreeResolved_RereadReplacesEarlierHarvest(t *testing.T) {
	env := newHookEnv(t, &config.Config{})
	srp := newHookPlugin()
	require.NoError(t, srp.BuilderInited(context.Background(), env))

	first := &doctree.Document{
		Docname: "guide",
		Nodes: []doctree.Node{
			&doctree.Section{ID: "guide", Level: 1},
			&doctree.RedirectDirective{Sources: []string{"old-a"}},
		},
	}
	require.NoError(t, srp.DoctreeResolved(context.Background(), env, first))

	// The document changed: the directive moved to a different source.
	second := &doctree.Document{
		Docname: "guide",
		Nodes: []doctree.Node{
			&doctree.Section{ID: "guide", Level: 1},
			&doctree.RedirectDirective{Sources: []string{"old-b"}},
		},
	}
	require.NoError(t, srp.DoctreeResolved(context.Background(), env, second))

	harvested := env.DoctreeRedirects()["guide"]
	assert.NotContains(t, harvested, "old-a")
	assert.Contains(t, harvested, "old-b")
}

func TestPageContext_LivePageGetsScript(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"foo": "bar"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pageCtx := map[string]interface{}{}
	require.NoError(t, srp.PageContext(context.Background(), env, "foo", pageCtx))

	require.Len(t, pageCtx, 2)
	assert.Equal(t, true, pageCtx[plugins.CtxHasFragmentRedirects])
	assert.Equal(t,
		`const fragment_redirects = Object.freeze({"-":"bar"});`,
		pageCtx[plugins.CtxFragmentRedirects])
}

func TestPageContext_PageWithoutRedirects(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"narf": "fnord"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pageCtx := map[string]interface{}{}
	require.NoError(t, srp.PageContext(context.Background(), env, "foo", pageCtx))

	require.Len(t, pageCtx, 1)
	assert.Equal(t, false, pageCtx[plugins.CtxHasFragmentRedirects])
}

func TestPageContext_DisabledLeavesContextAlone(t *testing.T) {
	cfg := &config.Config{Disabled: true}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()
	require.NoError(t, srp.BuilderInited(context.Background(), env))

	pageCtx := map[string]interface{}{}
	require.NoError(t, srp.PageContext(context.Background(), env, "foo", pageCtx))
	assert.Empty(t, pageCtx)
}

func TestCollectPages_SimpleRedirect(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"foo": "bar"}}
	env := newHookEnv(t, cfg, "narf")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pages, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, "foo", pages[0].Docname)
	assert.Equal(t, render.SimpleTemplate, pages[0].Template)

	pageCtx, ok := pages[0].Context.(render.SimplePage)
	require.True(t, ok)
	assert.Equal(t, "bar", pageCtx.ToURI)
	assert.Equal(t, "Foo", pageCtx.Title)
}

func TestCollectPages_FragmentRedirect(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{
		"foo":       "bar",
		"foo#frag1": "bar#frag2",
	}}
	env := newHookEnv(t, cfg, "bar")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pages, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Equal(t, "foo", pages[0].Docname)
	assert.Equal(t, render.FragmentTemplate, pages[0].Template)

	pageCtx, ok := pages[0].Context.(render.FragmentPage)
	require.True(t, ok)
	assert.Equal(t,
		`const fragment_redirects = Object.freeze({"-":"bar","frag1":"bar#frag2"});`,
		string(pageCtx.FragmentRedirects))
}

func TestCollectPages_SingleFragmentBackfillsDefault(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"foo#frag1": "bar#frag2"}}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pages, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, render.FragmentTemplate, pages[0].Template)

	pageCtx, ok := pages[0].Context.(render.FragmentPage)
	require.True(t, ok)
	assert.Equal(t,
		`const fragment_redirects = Object.freeze({"-":"bar#frag2","frag1":"bar#frag2"});`,
		string(pageCtx.FragmentRedirects))

	// The backfilled entry persists for later hooks.
	assert.Equal(t, "bar#frag2", env.Computed()["foo"][redirect.DefaultPageKey])
}

func TestCollectPages_LivePagesSkipped(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"foo": "bar"}}
	env := newHookEnv(t, cfg, "foo")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	pages, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestCollectPages_QueuesExtensionlessCopies(t *testing.T) {
	cfg := &config.Config{
		Redirects: map[string]string{"foo": "bar", "live-page": "elsewhere"},
		Output:    config.OutputConfig{Extensionless: true},
	}
	env := newHookEnv(t, cfg, "live-page")
	srp := newHookPlugin()
	runThrough(t, srp, env)

	_, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo"}, env.ExtensionlessPages(),
		"only generated pages get extensionless copies")
}

func TestBuildFinished_CopiesExtensionlessPages(t *testing.T) {
	cfg := &config.Config{
		Redirects: map[string]string{"old-page": "new-page.html"},
		Output:    config.OutputConfig{Extensionless: true},
	}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()
	runThrough(t, srp, env)

	_, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)

	// Simulate the builder having written the rendered page.
	require.NoError(t, os.WriteFile(filepath.Join(env.OutDir, "old-page.html"), []byte("<html>moved</html>"), 0644))

	require.NoError(t, srp.BuildFinished(context.Background(), env, nil))

	content, err := os.ReadFile(filepath.Join(env.OutDir, "old-page"))
	require.NoError(t, err)
	assert.Equal(t, "<html>moved</html>", string(content))
}

func TestBuildFinished_SkipsOnBuildError(t *testing.T) {
	cfg := &config.Config{
		Redirects: map[string]string{"old-page": "new-page.html"},
		Output:    config.OutputConfig{Extensionless: true},
	}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()
	runThrough(t, srp, env)

	_, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(env.OutDir, "old-page.html"), []byte("x"), 0644))

	require.NoError(t, srp.BuildFinished(context.Background(), env, assert.AnError))

	_, err = os.Stat(filepath.Join(env.OutDir, "old-page"))
	assert.True(t, os.IsNotExist(err))
}

func TestBuildFinished_SkipsWithoutExtensionless(t *testing.T) {
	cfg := &config.Config{Redirects: map[string]string{"old-page": "new-page.html"}}
	env := newHookEnv(t, cfg)
	srp := newHookPlugin()
	runThrough(t, srp, env)

	_, err := srp.CollectPages(context.Background(), env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(env.OutDir, "old-page.html"), []byte("x"), 0644))

	require.NoError(t, srp.BuildFinished(context.Background(), env, nil))

	_, err = os.Stat(filepath.Join(env.OutDir, "old-page"))
	assert.True(t, os.IsNotExist(err))
}
