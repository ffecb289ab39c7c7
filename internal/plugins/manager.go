package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/neflyte/seoredirect/internal/doctree"
	"github.com/neflyte/seoredirect/internal/logging"
)

// shutdownTimeout bounds how long a plugin may take to shut down.
const shutdownTimeout = 30 * time.Second

// PluginManager registers plugins and dispatches build events to whichever
// hooks they implement. Dispatch order is registration order.
type PluginManager struct {
	plugins map[string]Plugin
	configs map[string]PluginConfig

	builderInitedHooks   []BuilderInitedHook
	doctreeResolvedHooks []DoctreeResolvedHook
	envUpdatedHooks      []EnvUpdatedHook
	pageContextHooks     []PageContextHook
	collectPagesHooks    []CollectPagesHook
	buildFinishedHooks   []BuildFinishedHook

	logger logging.Logger
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewPluginManager creates a new plugin manager
func NewPluginManager(logger logging.Logger) *PluginManager {
	ctx, cancel := context.WithCancel(context.Background())

	return &PluginManager{
		plugins: make(map[string]Plugin),
		configs: make(map[string]PluginConfig),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// RegisterPlugin registers a new plugin and subscribes it to the build hooks
// it implements.
func (pm *PluginManager) RegisterPlugin(plugin Plugin, config PluginConfig) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	name := plugin.Name()
	if _, exists := pm.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}

	if err := plugin.Initialize(pm.ctx, config); err != nil {
		return fmt.Errorf("failed to initialize plugin %s: %w", name, err)
	}

	pm.plugins[name] = plugin
	pm.configs[name] = config

	// Categorize the plugin by the hooks it implements
	if h, ok := plugin.(BuilderInitedHook); ok {
		pm.builderInitedHooks = append(pm.builderInitedHooks, h)
	}
	if h, ok := plugin.(DoctreeResolvedHook); ok {
		pm.doctreeResolvedHooks = append(pm.doctreeResolvedHooks, h)
	}
	if h, ok := plugin.(EnvUpdatedHook); ok {
		pm.envUpdatedHooks = append(pm.envUpdatedHooks, h)
	}
	if h, ok := plugin.(PageContextHook); ok {
		pm.pageContextHooks = append(pm.pageContextHooks, h)
	}
	if h, ok := plugin.(CollectPagesHook); ok {
		pm.collectPagesHooks = append(pm.collectPagesHooks, h)
	}
	if h, ok := plugin.(BuildFinishedHook); ok {
		pm.buildFinishedHooks = append(pm.buildFinishedHooks, h)
	}

	if pm.logger != nil {
		pm.logger.Debug(pm.ctx, "plugin registered", "plugin", name, "version", plugin.Version())
	}
	return nil
}

// UnregisterPlugin shuts a plugin down and removes it from all hook lists.
func (pm *PluginManager) UnregisterPlugin(name string) error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	plugin, exists := pm.plugins[name]
	if !exists {
		return fmt.Errorf("plugin %s not found", name)
	}

	shutdownCtx, cancel := context.WithTimeout(pm.ctx, shutdownTimeout)
	defer cancel()

	if err := plugin.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown plugin %s: %w", name, err)
	}

	delete(pm.plugins, name)
	delete(pm.configs, name)

	pm.builderInitedHooks = removeBuilderInitedHook(pm.builderInitedHooks, plugin)
	pm.doctreeResolvedHooks = removeDoctreeResolvedHook(pm.doctreeResolvedHooks, plugin)
	pm.envUpdatedHooks = removeEnvUpdatedHook(pm.envUpdatedHooks, plugin)
	pm.pageContextHooks = removePageContextHook(pm.pageContextHooks, plugin)
	pm.collectPagesHooks = removeCollectPagesHook(pm.collectPagesHooks, plugin)
	pm.buildFinishedHooks = removeBuildFinishedHook(pm.buildFinishedHooks, plugin)

	return nil
}

// GetPlugin retrieves a plugin by name
func (pm *PluginManager) GetPlugin(name string) (Plugin, error) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	plugin, exists := pm.plugins[name]
	if !exists {
		return nil, fmt.Errorf("plugin %s not found", name)
	}

	return plugin, nil
}

// PluginInfo contains information about a plugin
type PluginInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// ListPlugins returns all registered plugins sorted by name.
func (pm *PluginManager) ListPlugins() []PluginInfo {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	infos := make([]PluginInfo, 0, len(pm.plugins))
	for name, plugin := range pm.plugins {
		config := pm.configs[name]

		infos = append(infos, PluginInfo{
			Name:        name,
			Version:     plugin.Version(),
			Description: plugin.Description(),
			Enabled:     config.Enabled,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// BuilderInited dispatches the builder-inited event. The first hook error
// aborts the build.
func (pm *PluginManager) BuilderInited(ctx context.Context, env *BuildEnv) error {
	for _, hook := range pm.snapshotBuilderInited() {
		if err := hook.BuilderInited(ctx, env); err != nil {
			return fmt.Errorf("plugin %s failed on builder-inited: %w", hook.Name(), err)
		}
	}
	return nil
}

// DoctreeResolved dispatches a resolved document to all subscribers.
func (pm *PluginManager) DoctreeResolved(ctx context.Context, env *BuildEnv, doc *doctree.Document) error {
	for _, hook := range pm.snapshotDoctreeResolved() {
		if err := hook.DoctreeResolved(ctx, env, doc); err != nil {
			return fmt.Errorf("plugin %s failed on doctree-resolved: %w", hook.Name(), err)
		}
	}
	return nil
}

// EnvUpdated dispatches the env-updated event fired once every document has
// been read.
func (pm *PluginManager) EnvUpdated(ctx context.Context, env *BuildEnv) error {
	for _, hook := range pm.snapshotEnvUpdated() {
		if err := hook.EnvUpdated(ctx, env); err != nil {
			return fmt.Errorf("plugin %s failed on env-updated: %w", hook.Name(), err)
		}
	}
	return nil
}

// PageContext lets every subscriber decorate a page's template context.
func (pm *PluginManager) PageContext(ctx context.Context, env *BuildEnv, pagename string, pageCtx map[string]interface{}) error {
	for _, hook := range pm.snapshotPageContext() {
		if err := hook.PageContext(ctx, env, pagename, pageCtx); err != nil {
			return fmt.Errorf("plugin %s failed on page-context: %w", hook.Name(), err)
		}
	}
	return nil
}

// CollectPages gathers the extra pages every subscriber wants rendered,
// concatenated in registration order.
func (pm *PluginManager) CollectPages(ctx context.Context, env *BuildEnv) ([]RedirectPage, error) {
	var pages []RedirectPage
	for _, hook := range pm.snapshotCollectPages() {
		collected, err := hook.CollectPages(ctx, env)
		if err != nil {
			return nil, fmt.Errorf("plugin %s failed on collect-pages: %w", hook.Name(), err)
		}
		pages = append(pages, collected...)
	}
	return pages, nil
}

// BuildFinished dispatches the build-finished event. Unlike the other
// events every subscriber runs even when one fails, since these hooks act
// as finalizers; errors are reported but do not stop the remaining hooks.
func (pm *PluginManager) BuildFinished(ctx context.Context, env *BuildEnv, buildErr error) error {
	var firstErr error
	for _, hook := range pm.snapshotBuildFinished() {
		if err := hook.BuildFinished(ctx, env, buildErr); err != nil {
			wrapped := fmt.Errorf("plugin %s failed on build-finished: %w", hook.Name(), err)
			if firstErr == nil {
				firstErr = wrapped
			}
			if pm.logger != nil {
				pm.logger.Error(ctx, err, "build-finished hook failed", "plugin", hook.Name())
			}
		}
	}
	return firstErr
}

// Shutdown shuts down all registered plugins.
func (pm *PluginManager) Shutdown() error {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	var errs []error
	for name, plugin := range pm.plugins {
		shutdownCtx, cancel := context.WithTimeout(pm.ctx, shutdownTimeout)
		if err := plugin.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("failed to shutdown plugin %s: %w", name, err))
		}
		cancel()
	}

	pm.cancel()

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

func (pm *PluginManager) snapshotBuilderInited() []BuilderInitedHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]BuilderInitedHook, len(pm.builderInitedHooks))
	copy(hooks, pm.builderInitedHooks)
	return hooks
}

func (pm *PluginManager) snapshotDoctreeResolved() []DoctreeResolvedHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]DoctreeResolvedHook, len(pm.doctreeResolvedHooks))
	copy(hooks, pm.doctreeResolvedHooks)
	return hooks
}

func (pm *PluginManager) snapshotEnvUpdated() []EnvUpdatedHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]EnvUpdatedHook, len(pm.envUpdatedHooks))
	copy(hooks, pm.envUpdatedHooks)
	return hooks
}

func (pm *PluginManager) snapshotPageContext() []PageContextHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]PageContextHook, len(pm.pageContextHooks))
	copy(hooks, pm.pageContextHooks)
	return hooks
}

func (pm *PluginManager) snapshotCollectPages() []CollectPagesHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]CollectPagesHook, len(pm.collectPagesHooks))
	copy(hooks, pm.collectPagesHooks)
	return hooks
}

func (pm *PluginManager) snapshotBuildFinished() []BuildFinishedHook {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	hooks := make([]BuildFinishedHook, len(pm.buildFinishedHooks))
	copy(hooks, pm.buildFinishedHooks)
	return hooks
}

func removeBuilderInitedHook(hooks []BuilderInitedHook, target Plugin) []BuilderInitedHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func removeDoctreeResolvedHook(hooks []DoctreeResolvedHook, target Plugin) []DoctreeResolvedHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func removeEnvUpdatedHook(hooks []EnvUpdatedHook, target Plugin) []EnvUpdatedHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func removePageContextHook(hooks []PageContextHook, target Plugin) []PageContextHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func removeCollectPagesHook(hooks []CollectPagesHook, target Plugin) []CollectPagesHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}

func removeBuildFinishedHook(hooks []BuildFinishedHook, target Plugin) []BuildFinishedHook {
	for i, hook := range hooks {
		if hook.Name() == target.Name() {
			return append(hooks[:i], hooks[i+1:]...)
		}
	}
	return hooks
}
