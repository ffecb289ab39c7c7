// Package seoredirect provides build-time redirect page generation for
// documentation sites.
//
// Seoredirect keeps moved documentation reachable: authors declare that an
// old page or page-section URL now resolves elsewhere, and a build pass
// computes a per-page redirect table and writes static redirect pages plus
// fragment-redirect scripts for live pages whose anchors moved.
//
// # Key Features
//
//   - Redirect Declarations: Inline configuration entries, YAML redirect
//     files, and seo-redirect directives inside documentation pages
//   - Generated Pages: Static meta-refresh pages for sources that no longer
//     exist, fragment-dispatch pages for sources with moved anchors
//   - Fragment Sidecars: A small script per live page mapping old anchors to
//     their new locations
//   - Watch Mode: Automatic regeneration while documentation is edited
//   - Verification: Written pages are re-parsed to confirm they redirect
//
// # Quick Start
//
//	// Generate redirect pages
//	seoredirect generate
//
//	// Preview without writing anything
//	seoredirect generate --dry-run
//
//	// Regenerate on every documentation change
//	seoredirect generate --watch
//
//	// Gate a CI pipeline on clean redirect declarations
//	seoredirect validate --strict
//
//	// Show the computed redirect table
//	seoredirect inspect --format yaml
//
// # Architecture
//
// The module is organized into several core components:
//
//   - CLI Commands (cmd/): Cobra-based command interface
//   - Redirect Table (internal/redirect/): Pure computation of the mapping
//   - Document Scanning (internal/scanner/): Markdown parsing into doctrees
//   - Build Hooks (internal/plugins/): The build-event pipeline
//   - Build Driver (internal/build/): One-shot and watch-mode builds
//   - Output (internal/emit/): Page writing, sidecars, and verification
//   - Configuration (internal/config/): Viper-based configuration management
//
// # Redirect Declarations
//
// A directive is an HTML comment inside a documentation page:
//
//	<!-- seo-redirect: old/page.html, old/page2#section -->
//
// The declared sources redirect to the section containing the comment.
// Configuration entries map sources to explicit targets:
//
//	redirects:
//	  old/page: new/page
//	  old/page2#sec: new/page2#sec2
//
// # Configuration
//
// Seoredirect supports configuration through multiple sources:
//
//   - Configuration file (.seoredirect.yml)
//   - Environment variables (SEOREDIRECT_*)
//   - Command-line flags
//
// Example configuration:
//
//	site:
//	  base_url: https://docs.example.com
//	  url_path_prefix: /docs
//
//	docs:
//	  source_paths:
//	    - docs
//	  exclude_patterns:
//	    - "*_draft.md"
//
//	redirect_files:
//	  - redirects.yml
//
//	output:
//	  dir: public
//	  extensionless: true
//
// # Testing
//
// The module includes comprehensive test coverage:
//
//   - Unit tests for individual components
//   - Property tests for the redirect-table computation
//   - Fuzz tests for source and markdown parsing
//   - End-to-end tests for complete build runs
//
// For more information, see the individual package documentation.
package docs
