// Package config provides configuration management for redirect generation
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with SEOREDIRECT_ prefix, validation, and security checks. It manages site
// URL settings, documentation scan paths, the redirect map, template
// overrides, and output options.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Site          SiteConfig        `yaml:"site"`
	Docs          DocsConfig        `yaml:"docs"`
	Redirects     map[string]string `yaml:"redirects"`
	RedirectFiles []string          `yaml:"redirect_files"`
	Templates     TemplatesConfig   `yaml:"templates"`
	Output        OutputConfig      `yaml:"output"`
	Log           LogConfig         `yaml:"log"`
	Disabled      bool              `yaml:"disabled"`
}

// SiteConfig describes the published site the redirects point into.
type SiteConfig struct {
	// BaseURL is the absolute URL the site is served under. Redirect targets
	// carrying this prefix are stored site-relative.
	BaseURL string `yaml:"base_url"`
	// URLPathPrefix is prepended to site-absolute redirect targets, for sites
	// hosted under a subpath.
	URLPathPrefix string `yaml:"url_path_prefix"`
}

type DocsConfig struct {
	SourcePaths     []string `yaml:"source_paths"`
	Extensions      []string `yaml:"extensions"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// TemplatesConfig holds optional template override files. Empty values select
// the embedded defaults.
type TemplatesConfig struct {
	Simple   string `yaml:"simple"`
	Fragment string `yaml:"fragment"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
	// Extensionless also writes each redirect page without its .html suffix,
	// for servers that serve clean URLs from plain files.
	Extensionless bool `yaml:"extensionless"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Underscored keys do not match field names during Unmarshal, so pull
	// them from viper directly.
	if viper.IsSet("site.base_url") && config.Site.BaseURL == "" {
		config.Site.BaseURL = viper.GetString("site.base_url")
	}
	if viper.IsSet("site.url_path_prefix") && config.Site.URLPathPrefix == "" {
		config.Site.URLPathPrefix = viper.GetString("site.url_path_prefix")
	}

	// Handle source_paths set via viper (workaround for viper slice handling)
	if viper.IsSet("docs.source_paths") && len(config.Docs.SourcePaths) == 0 {
		sourcePaths := viper.GetStringSlice("docs.source_paths")
		if len(sourcePaths) > 0 {
			config.Docs.SourcePaths = sourcePaths
		}
	}

	if viper.IsSet("docs.extensions") && len(config.Docs.Extensions) == 0 {
		extensions := viper.GetStringSlice("docs.extensions")
		if len(extensions) > 0 {
			config.Docs.Extensions = extensions
		}
	}

	if viper.IsSet("docs.exclude_patterns") && len(config.Docs.ExcludePatterns) == 0 {
		excludePatterns := viper.GetStringSlice("docs.exclude_patterns")
		if len(excludePatterns) > 0 {
			config.Docs.ExcludePatterns = excludePatterns
		}
	}

	if viper.IsSet("redirect_files") && len(config.RedirectFiles) == 0 {
		redirectFiles := viper.GetStringSlice("redirect_files")
		if len(redirectFiles) > 0 {
			config.RedirectFiles = redirectFiles
		}
	}

	// Handle redirects set via viper (workaround for viper map handling)
	if viper.IsSet("redirects") && len(config.Redirects) == 0 {
		redirects := viper.GetStringMapString("redirects")
		if len(redirects) > 0 {
			config.Redirects = redirects
		}
	}

	// Handle booleans set via viper (workaround for viper bool handling)
	if viper.IsSet("output.extensionless") {
		config.Output.Extensionless = viper.GetBool("output.extensionless")
	}
	if viper.IsSet("disabled") {
		config.Disabled = viper.GetBool("disabled")
	}

	// Apply default values for DocsConfig if not set
	if len(config.Docs.SourcePaths) == 0 {
		config.Docs.SourcePaths = []string{"docs"}
	}
	if len(config.Docs.Extensions) == 0 {
		config.Docs.Extensions = []string{".md", ".markdown"}
	}
	if len(config.Docs.ExcludePatterns) == 0 {
		config.Docs.ExcludePatterns = []string{"node_modules", ".git"}
	}

	// Apply default values for OutputConfig if not set
	if config.Output.Dir == "" {
		config.Output.Dir = "public"
	}

	// Apply default values for LogConfig if not set
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if config.Redirects == nil {
		config.Redirects = make(map[string]string)
	}

	// Validate configuration values
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}
