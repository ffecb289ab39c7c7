package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/neflyte/seoredirect/internal/build"
	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/logging"
	"github.com/neflyte/seoredirect/internal/scanner"
	"github.com/neflyte/seoredirect/internal/watcher"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate redirect pages for the documentation site",
	Long: `Generate static redirect pages from the configured redirects and the
redirect directives found in the documentation sources.

Pages whose fragments moved but that still exist get a fragment-redirect
sidecar script instead of a full redirect page. With extensionless output
enabled, every redirect page is also copied without its .html suffix.

In watch mode, edits to documentation sources, redirect declaration files
and template overrides trigger a rebuild. Changes to the main configuration
file require a restart.

Examples:
  seoredirect generate                 # Generate into the configured output directory
  seoredirect generate --output site   # Generate into a specific directory
  seoredirect generate --dry-run       # Compute and report without writing
  seoredirect generate --strict        # Fail when any redirect warning is produced
  seoredirect generate --verify        # Re-parse written pages for a redirect mechanism
  seoredirect generate --watch         # Rebuild when sources or redirects change`,
	RunE: runGenerate,
}

var (
	generateOutput string
	generateDryRun bool
	generateStrict bool
	generateVerify bool
	generateWatch  bool
	generateClean  bool
)

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Output directory")
	generateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Compute and report without writing files")
	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "Treat redirect warnings as errors")
	generateCmd.Flags().BoolVar(&generateVerify, "verify", false, "Re-parse written pages and fail if one lacks a redirect")
	generateCmd.Flags().BoolVar(&generateWatch, "watch", false, "Watch sources and regenerate on change")
	generateCmd.Flags().BoolVar(&generateClean, "clean", false, "Remove the output directory before generating")

	AddFlagValidation(generateCmd, "output", ValidateOutputPath)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Disabled {
		fmt.Println("ℹ️  Redirect generation is disabled by configuration")
		return nil
	}

	if generateClean && generateDryRun {
		return errors.New("--clean cannot be combined with --dry-run")
	}

	logger, closeLogs, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	builder, err := build.NewBuilder(cfg, build.Options{
		OutDir:   generateOutput,
		DryRun:   generateDryRun,
		Strict:   generateStrict,
		Verify:   generateVerify,
		Progress: os.Stdout,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up build: %w", err)
	}
	defer builder.Close()

	if generateClean {
		fmt.Println("🧹 Cleaning output directory...")
		if err := builder.Clean(); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
	}

	if err := generateOnce(builder); err != nil {
		if !generateWatch {
			return err
		}
		// Watch mode keeps going; the next change may fix the build
		fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
	}

	if generateWatch {
		return watchAndRegenerate(cfg, builder, logger)
	}
	return nil
}

// generateOnce runs a single build and prints its summary.
func generateOnce(builder *build.Builder) error {
	fmt.Println("🔨 Generating redirect pages...")

	result, err := builder.Run(context.Background())

	for _, warning := range result.Warnings {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", warning)
	}
	if err != nil {
		return err
	}

	duration := result.Duration.Round(time.Millisecond)

	if result.DryRun {
		fmt.Printf("✅ Dry run finished in %v\n", duration)
		fmt.Printf("   - %d document(s) scanned\n", result.Documents)
		fmt.Printf("   - %d redirect page(s) computed\n", len(result.PagesWritten))
		if len(result.Sidecars) > 0 {
			fmt.Printf("   - %d fragment sidecar(s) computed\n", len(result.Sidecars))
		}
		return nil
	}

	fmt.Printf("✅ Generation completed in %v\n", duration)
	fmt.Printf("   - %d document(s) scanned\n", result.Documents)
	fmt.Printf("   - %d redirect page(s) written\n", len(result.PagesWritten))
	if len(result.Sidecars) > 0 {
		fmt.Printf("   - %d fragment sidecar(s) written\n", len(result.Sidecars))
	}
	if result.Extensionless > 0 {
		fmt.Printf("   - %d extensionless page(s) copied\n", result.Extensionless)
	}

	return nil
}

// watchAndRegenerate rebuilds whenever documentation sources, redirect
// declaration files or template overrides change. It blocks until SIGINT or
// SIGTERM.
func watchAndRegenerate(cfg *config.Config, builder *build.Builder, logger logging.Logger) error {
	fileWatcher, err := watcher.NewFileWatcher(300*time.Millisecond, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	extensions := cfg.Docs.Extensions
	if len(extensions) == 0 {
		extensions = scanner.DefaultExtensions
	}

	fileWatcher.AddFilter(watcher.AnyFilter(
		watcher.SourceFilter(extensions),
		watcher.RedirectConfigFilter,
		watcher.TemplateFilter,
	))
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.ExcludeFilter(cfg.Docs.ExcludePatterns))

	fileWatcher.AddHandler(func(events []watcher.ChangeEvent) error {
		fmt.Printf("📁 %d file(s) changed\n", len(events))
		for _, event := range events {
			if event.Type != watcher.EventTypeDeleted && event.Type != watcher.EventTypeRenamed {
				continue
			}
			if docname, ok := docnameForPath(cfg, event.Path); ok {
				builder.RemoveDocument(docname)
			}
		}
		if err := generateOnce(builder); err != nil {
			fmt.Fprintf(os.Stderr, "Rebuild failed: %v\n", err)
		}
		return nil
	})

	fmt.Println("🔍 Setting up file watching...")
	for _, path := range cfg.Docs.SourcePaths {
		if err := fileWatcher.AddRecursive(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch path %s: %v\n", path, err)
		} else {
			fmt.Printf("   - Watching: %s\n", path)
		}
	}
	for _, path := range watchableFiles(cfg) {
		if err := fileWatcher.AddPath(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to watch file %s: %v\n", path, err)
		} else {
			fmt.Printf("   - Watching: %s\n", path)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	fmt.Println("👀 Watching for changes... (Press Ctrl+C to stop)")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	fmt.Println("\n🛑 Stopping file watcher...")
	cancel()

	return nil
}

// watchableFiles lists the standalone files whose edits retrigger a build:
// the redirect declaration files and template overrides the configuration
// names.
func watchableFiles(cfg *config.Config) []string {
	files := make([]string, 0, len(cfg.RedirectFiles)+3)
	if used := viper.ConfigFileUsed(); used != "" {
		files = append(files, used)
	}
	files = append(files, cfg.RedirectFiles...)
	if cfg.Templates.Simple != "" {
		files = append(files, cfg.Templates.Simple)
	}
	if cfg.Templates.Fragment != "" {
		files = append(files, cfg.Templates.Fragment)
	}
	return files
}

// docnameForPath maps a changed file back to its document name by locating
// the source root it lives under.
func docnameForPath(cfg *config.Config, path string) (string, bool) {
	for _, root := range cfg.Docs.SourcePaths {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		docname, err := scanner.Docname(root, path)
		if err != nil {
			continue
		}
		return docname, true
	}
	return "", false
}
