package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:     "init [name]",
	Aliases: []string{"i"},
	Short:   "Initialize redirect configuration for a documentation site",
	Long: `Initialize a documentation site for redirect generation by creating the
configuration file, a redirect declarations file and the documentation
directory. If no name is provided, initializes in the current directory.

Examples:
  seoredirect init                 # Initialize in current directory with an example doc
  seoredirect init my-docs         # Initialize in new directory 'my-docs'
  seoredirect init --minimal       # Configuration and redirects file only
  seoredirect init --docs-dir src  # Scan 'src' instead of 'docs' for documentation`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var (
	initMinimal bool
	initExample bool
	initDocsDir string
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initMinimal, "minimal", false, "Skip the example documentation page")
	initCmd.Flags().BoolVar(&initExample, "example", false, "Include an example documentation page")
	initCmd.Flags().StringVar(&initDocsDir, "docs-dir", "docs", "Documentation source directory")

	AddFlagValidation(initCmd, "docs-dir", ValidateOutputPath)
}

func runInit(cmd *cobra.Command, args []string) error {
	var projectDir string

	if len(args) == 0 {
		// Initialize in current directory
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		projectDir = cwd
	} else {
		// Create new directory
		projectDir = args[0]
		if err := os.MkdirAll(projectDir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	fmt.Printf("Initializing seoredirect in %s\n", projectDir)

	if err := createDocsStructure(projectDir); err != nil {
		return fmt.Errorf("failed to create directory structure: %w", err)
	}

	if err := createConfigFile(projectDir); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	if err := createRedirectsFile(projectDir); err != nil {
		return fmt.Errorf("failed to create redirects file: %w", err)
	}

	if initExample || !initMinimal {
		if err := createExampleDoc(projectDir); err != nil {
			return fmt.Errorf("failed to create example documentation: %w", err)
		}
	}

	fmt.Println("✓ Project initialized successfully!")
	fmt.Println("\nNext steps:")
	step := 1
	if len(args) > 0 {
		fmt.Printf("  %d. cd %s\n", step, projectDir)
		step++
	}
	fmt.Printf("  %d. Declare moved pages in redirects.yml or with <!-- seo-redirect: --> comments\n", step)
	fmt.Printf("  %d. seoredirect generate --dry-run\n", step+1)
	fmt.Printf("  %d. seoredirect generate\n", step+2)

	return nil
}

func createDocsStructure(projectDir string) error {
	dirPath := filepath.Join(projectDir, initDocsDir)
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", initDocsDir, err)
	}

	return nil
}

func createConfigFile(projectDir string) error {
	configPath := filepath.Join(projectDir, ".seoredirect.yml")

	// Don't overwrite existing config
	if _, err := os.Stat(configPath); err == nil {
		fmt.Println("⚠ Configuration file already exists, skipping")
		return nil
	}

	configContent := fmt.Sprintf(`# Seoredirect configuration file
site:
  # Absolute URL the site is served under, e.g. https://docs.example.com.
  # Redirect targets carrying this prefix are stored site-relative.
  base_url: ""
  # Path prefix for sites hosted under a subpath, e.g. /docs
  url_path_prefix: ""

docs:
  source_paths:
    - %q
  extensions:
    - ".md"
    - ".markdown"
  exclude_patterns:
    - "node_modules"
    - ".git"

redirect_files:
  - "redirects.yml"

# Inline redirect declarations. Keys are the old paths, values the new
# targets. Inline entries win over redirect_files entries.
# redirects:
#   old/page.html: new/page.html

output:
  dir: "public"
  # Also write each redirect page without its .html suffix, for servers
  # that serve clean URLs from plain files.
  extensionless: false

log:
  level: "info"
  format: "text"
`, initDocsDir)

	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Println("✓ Created .seoredirect.yml configuration file")
	return nil
}

func createRedirectsFile(projectDir string) error {
	redirectsPath := filepath.Join(projectDir, "redirects.yml")

	// Don't overwrite existing declarations
	if _, err := os.Stat(redirectsPath); err == nil {
		fmt.Println("⚠ Redirects file already exists, skipping")
		return nil
	}

	redirectsContent := `# Redirect declarations for pages that moved.
#
# Keys are the old paths, values are the new targets. A target may carry
# a #fragment to land on a section of the new page.
#
# old/getting-started.html: getting-started.html
# old/api.html: reference/api.html#endpoints
`

	if err := os.WriteFile(redirectsPath, []byte(redirectsContent), 0644); err != nil {
		return fmt.Errorf("failed to write redirects file: %w", err)
	}

	fmt.Println("✓ Created redirects.yml declarations file")
	return nil
}

func createExampleDoc(projectDir string) error {
	docPath := filepath.Join(projectDir, initDocsDir, "getting-started.md")

	// Don't overwrite existing documentation
	if _, err := os.Stat(docPath); err == nil {
		return nil
	}

	docContent := `# Getting Started

Welcome to your documentation site.

<!-- seo-redirect: old/getting-started.html -->

## Installation

Describe how to install your project here. The comment below redirects an
old page straight to this section.

<!-- seo-redirect: old/install.html -->

## Usage

Describe how to use your project here.
`

	if err := os.WriteFile(docPath, []byte(docContent), 0644); err != nil {
		return fmt.Errorf("failed to create example documentation: %w", err)
	}

	fmt.Println("✓ Created example documentation page")
	return nil
}
