// Package internal contains the core implementation packages for seoredirect.
//
// This package follows Go's internal package convention, making these
// packages unavailable for import by external modules while providing
// all the core functionality for the seoredirect CLI tool.
//
// # Package Organization
//
// The internal packages are organized by functional domain:
//
//   - redirect: Pure redirect-table computation and fragment scripts
//   - directive: Parsing of seo-redirect declarations in documentation
//   - doctree: Document tree model and directive-harvesting walker
//   - scanner: Markdown discovery and parsing with worker pools
//   - registry: Page registry and event broadcasting system
//   - plugins: Build hooks, build environment, and the redirect plugin
//   - render: Template engine with embedded defaults and overrides
//   - emit: Artifact writing, verification, and progress reporting
//   - build: Build driver wiring scanning, hooks, and output together
//   - config: Configuration management with validation and security
//   - watcher: File system monitoring with debouncing
//   - logging: Structured logging over log/slog
//   - errors: Typed errors and build-warning collection
//   - version: Build-time version information
//
// # Inter-Package Communication
//
// Packages communicate through well-defined interfaces:
//
//   - Registry acts as the central record of discovered pages
//   - Scanner processes files and populates the registry
//   - Plugins consume scanned documents and compute the redirect table
//   - Build drives the hook sequence and hands pages to emit
//   - Watcher monitors file systems and triggers rebuilds
//
// # Security Considerations
//
// Security is implemented at multiple layers:
//
//   - Config package validates all configuration inputs
//   - Scanner package validates file paths and prevents traversal attacks
//   - Emit package confines written artifacts to the output directory
//
// # Testing Strategy
//
// Each package includes comprehensive test coverage:
//
//   - Unit tests for individual functions and methods
//   - Property tests for the core computation behind the property tag
//   - Fuzz tests for source parsing and markdown slugs
//   - Performance benchmarks for critical code paths
//
// For detailed documentation, see the individual package documentation.
package internal
