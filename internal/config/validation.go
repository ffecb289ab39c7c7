package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate checks configuration values for security and correctness.
func Validate(config *Config) error {
	if err := validateSiteConfig(&config.Site); err != nil {
		return fmt.Errorf("site config: %w", err)
	}

	if err := validateDocsConfig(&config.Docs); err != nil {
		return fmt.Errorf("docs config: %w", err)
	}

	if err := validateOutputConfig(&config.Output); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	for _, file := range config.RedirectFiles {
		if err := validatePath(file); err != nil {
			return fmt.Errorf("invalid redirect file '%s': %w", file, err)
		}
	}

	return nil
}

// validateSiteConfig validates the site URL settings
func validateSiteConfig(config *SiteConfig) error {
	if config.BaseURL != "" {
		parsed, err := url.Parse(config.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url is not a valid URL: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("base_url must use http or https, got %q", config.BaseURL)
		}
		if parsed.Host == "" {
			return fmt.Errorf("base_url has no host: %q", config.BaseURL)
		}
	}

	if config.URLPathPrefix != "" {
		if !strings.HasPrefix(config.URLPathPrefix, "/") {
			return fmt.Errorf("url_path_prefix must start with '/', got %q", config.URLPathPrefix)
		}
		if strings.ContainsAny(config.URLPathPrefix, " \t#?") {
			return fmt.Errorf("url_path_prefix contains invalid characters: %q", config.URLPathPrefix)
		}
	}

	return nil
}

// validateDocsConfig validates the documentation scan settings
func validateDocsConfig(config *DocsConfig) error {
	for _, path := range config.SourcePaths {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid source path '%s': %w", path, err)
		}
	}

	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}

	return nil
}

// validateOutputConfig validates the output settings
func validateOutputConfig(config *OutputConfig) error {
	if config.Dir != "" {
		cleanPath := filepath.Clean(config.Dir)

		// Reject path traversal attempts
		if strings.Contains(cleanPath, "..") {
			return fmt.Errorf("output dir contains path traversal: %s", config.Dir)
		}
	}

	return nil
}

// validateTemplatesConfig validates template override paths
func validateTemplatesConfig(config *TemplatesConfig) error {
	for name, path := range map[string]string{
		"simple":   config.Simple,
		"fragment": config.Fragment,
	} {
		if path == "" {
			continue
		}
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid %s template path '%s': %w", name, path, err)
		}
	}

	return nil
}

// validateLogConfig validates the logging settings
func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "", "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("unknown log level: %q", config.Level)
	}

	switch config.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q (expected text or json)", config.Format)
	}

	if config.Dir != "" {
		if err := validatePath(config.Dir); err != nil {
			return fmt.Errorf("invalid log dir '%s': %w", config.Dir, err)
		}
	}

	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
