package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MergedRedirects returns the complete author-supplied redirect map: the
// entries from every redirect_files YAML file, overlaid by the inline
// redirects map. Inline entries win when a source appears in both places.
//
// Redirect files are flat YAML maps of source to target:
//
//	old-page.html#anchor: new-page.html#anchor
//	removed-page: other-page.html
func (c *Config) MergedRedirects() (map[string]string, error) {
	merged := make(map[string]string)

	for _, file := range c.RedirectFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading redirect file %s: %w", file, err)
		}

		var entries map[string]string
		if err := yaml.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parsing redirect file %s: %w", file, err)
		}

		for source, target := range entries {
			merged[source] = target
		}
	}

	for source, target := range c.Redirects {
		merged[source] = target
	}

	return merged, nil
}
