// Package cmd provides the command-line interface for seoredirect.
//
// This package implements all CLI commands using the Cobra framework,
// covering the full redirect-generation workflow for a documentation site.
//
// # Available Commands
//
//   - generate: Scan documentation sources and write redirect pages
//   - validate: Compute the redirect table and report warnings without writing
//   - inspect: Print the computed redirect table in text, JSON or YAML
//   - doctor: Diagnose configuration and environment issues
//   - version: Show version and build information
//
// # Command Examples
//
//	// Generate redirect pages into the configured output directory
//	seoredirect generate
//
//	// Rebuild automatically while documentation is edited
//	seoredirect generate --watch
//
//	// Treat redirect warnings as failures (for CI)
//	seoredirect validate --strict
//
//	// Inspect the computed table as JSON
//	seoredirect inspect --format json
//
//	// Diagnose the environment
//	seoredirect doctor --format yaml
//
// # Security Considerations
//
// All commands implement input hardening:
//
//   - Path traversal protection for configured source and output paths
//   - Redirect sources and docnames validated before any file is written
//   - Output confined to the output directory
//
// # Configuration Integration
//
// Commands respect configuration from multiple sources in order of precedence:
//
//  1. Command-line flags (highest priority)
//  2. Environment variables (SEOREDIRECT_*)
//  3. Configuration file (.seoredirect.yml)
//  4. Default values (lowest priority)
//
// # Error Handling
//
// All commands provide structured error reporting with:
//
//   - Clear error messages for common issues
//   - Detailed logging in debug mode
//   - Exit codes following Unix conventions
//   - Graceful handling of interrupts (Ctrl+C)
//
// For detailed usage of individual commands, see their respective documentation.
package cmd
