package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGuideDoc(t *testing.T) {
	t.Helper()

	err := os.MkdirAll("docs", 0755)
	require.NoError(t, err)

	content := `# Guide

Welcome to the guide.

## Install

Installation steps.
`
	err = os.WriteFile(filepath.Join("docs", "guide.md"), []byte(content), 0644)
	require.NoError(t, err)
}

func resetGenerateFlags() {
	generateOutput = ""
	generateDryRun = false
	generateStrict = false
	generateVerify = false
	generateWatch = false
	generateClean = false
}

func resetInitFlags() {
	initMinimal = false
	initExample = false
	initDocsDir = "docs"
}

func TestInitCommand(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Reset flags
	resetInitFlags()

	// Test init command
	err = runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	assert.FileExists(t, ".seoredirect.yml")
	assert.FileExists(t, "redirects.yml")
	assert.FileExists(t, filepath.Join("docs", "getting-started.md"))

	data, err := os.ReadFile(".seoredirect.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "redirects.yml")
	assert.Contains(t, string(data), "source_paths")
}

func TestInitCommandMinimal(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Reset flags
	resetInitFlags()
	initMinimal = true

	err = runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	assert.FileExists(t, ".seoredirect.yml")
	assert.FileExists(t, "redirects.yml")
	assert.DirExists(t, "docs")
	assert.NoFileExists(t, filepath.Join("docs", "getting-started.md"))
}

func TestInitCommandNamedDirectory(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Reset flags
	resetInitFlags()

	err = runInit(&cobra.Command{}, []string{"my-docs"})
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join("my-docs", ".seoredirect.yml"))
	assert.FileExists(t, filepath.Join("my-docs", "redirects.yml"))
	assert.DirExists(t, filepath.Join("my-docs", "docs"))
}

func TestInitCommandExistingConfig(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Reset flags
	resetInitFlags()

	existing := "site:\n  base_url: \"https://docs.example.com\"\n"
	err = os.WriteFile(".seoredirect.yml", []byte(existing), 0644)
	require.NoError(t, err)

	err = runInit(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Existing configuration is preserved
	data, err := os.ReadFile(".seoredirect.yml")
	require.NoError(t, err)
	assert.Equal(t, existing, string(data))
}

func TestGenerateCommand(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Reset flags
	resetGenerateFlags()

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that the redirect page was written
	assert.FileExists(t, filepath.Join("public", "old", "page.html"))

	content, err := os.ReadFile(filepath.Join("public", "old", "page.html"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "docs/guide")
}

func TestGenerateCommandDryRun(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set dry-run flag
	resetGenerateFlags()
	generateDryRun = true

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that nothing was written
	assert.NoDirExists(t, "public")
}

func TestGenerateCommandDisabled(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration with generation disabled
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})
	viper.Set("disabled", true)

	// Reset flags
	resetGenerateFlags()

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that nothing was written
	assert.NoDirExists(t, "public")
}

func TestGenerateCommandCleanWithDryRun(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Set up viper configuration
	viper.Reset()

	// Set conflicting flags
	resetGenerateFlags()
	generateClean = true
	generateDryRun = true

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--clean")
}

func TestGenerateCommandStrict(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration with an invalid redirect source
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page#a#b": "docs/guide.html",
	})

	// Set strict flag
	resetGenerateFlags()
	generateStrict = true

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict mode")
}

func TestGenerateCommandDirectives(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Create a document with redirect directives
	err = os.MkdirAll("docs", 0755)
	require.NoError(t, err)

	content := `# Guide

## Install

<!-- seo-redirect: old/install.html, guide#setup -->

Installation steps.
`
	err = os.WriteFile(filepath.Join("docs", "guide.md"), []byte(content), 0644)
	require.NoError(t, err)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})

	// Reset flags
	resetGenerateFlags()

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// The orphaned source becomes a generated redirect page
	assert.FileExists(t, filepath.Join("public", "old", "install.html"))

	// The moved anchor on the live page becomes a fragment sidecar
	assert.FileExists(t, filepath.Join("public", "guide.redirects.js"))

	sidecar, err := os.ReadFile(filepath.Join("public", "guide.redirects.js"))
	require.NoError(t, err)
	assert.Contains(t, string(sidecar), "setup")
}

func TestGenerateCommandExtensionless(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration with extensionless copies
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})
	viper.Set("output.extensionless", true)

	// Reset flags
	resetGenerateFlags()

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that both the page and its extensionless copy were written
	assert.FileExists(t, filepath.Join("public", "old", "page.html"))
	assert.FileExists(t, filepath.Join("public", "old", "page"))
}

func TestGenerateCommandCustomOutput(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set output flag
	resetGenerateFlags()
	generateOutput = filepath.Join("build", "redirects")

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that the flag overrode the configured output directory
	assert.FileExists(t, filepath.Join("build", "redirects", "old", "page.html"))
	assert.NoDirExists(t, "public")
}

func TestGenerateCommandClean(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Create a stale artifact in the output directory
	err = os.MkdirAll("public", 0755)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join("public", "stale.html"), []byte("stale"), 0644)
	require.NoError(t, err)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set clean flag
	resetGenerateFlags()
	generateClean = true

	// Test generate command
	err = runGenerate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Check that the stale artifact is gone and the new page exists
	assert.NoFileExists(t, filepath.Join("public", "stale.html"))
	assert.FileExists(t, filepath.Join("public", "old", "page.html"))
}

func TestValidateCommand(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Reset flags
	validateStrict = false
	validateFormat = "text"

	// Test validate command
	err = runValidate(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Validation is a dry run and must not write anything
	assert.NoDirExists(t, "public")
}

func TestValidateCommandJSON(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set flags
	validateStrict = false
	validateFormat = "json"

	// Test validate command
	err = runValidate(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestValidateCommandStrict(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration with an invalid redirect source
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page#a#b": "docs/guide.html",
	})

	// Set flags
	validateStrict = true
	validateFormat = "text"

	// Test validate command
	err = runValidate(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidateCommandUnsupportedFormat(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set flags
	validateStrict = false
	validateFormat = "xml"

	// Test validate command
	err = runValidate(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestInspectCommand(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html":         "docs/guide.html",
		"old/page.html#section": "docs/guide.html#install",
	})

	// Reset flags
	inspectFormat = "table"

	// Test inspect command
	err = runInspect(&cobra.Command{}, []string{})
	require.NoError(t, err)

	// Inspection is a dry run and must not write anything
	assert.NoDirExists(t, "public")
}

func TestInspectCommandJSON(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set flags
	inspectFormat = "json"

	// Test inspect command
	err = runInspect(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestInspectCommandYAML(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})
	viper.Set("redirects", map[string]string{
		"old/page.html": "docs/guide.html",
	})

	// Set flags
	inspectFormat = "yaml"

	// Test inspect command
	err = runInspect(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestInspectCommandEmpty(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration without redirects
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})

	// Reset flags
	inspectFormat = "table"

	// Test inspect command
	err = runInspect(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestDoctorCommand(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	// Set up viper configuration
	viper.Reset()

	// Reset flags
	doctorVerbose = false
	doctorFormat = "table"

	// Test doctor command
	err = runDoctor(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestDoctorCommandJSON(t *testing.T) {
	// Create a temporary directory
	tempDir := t.TempDir()

	// Change to temp directory
	oldDir, err := os.Getwd()
	require.NoError(t, err)
	defer os.Chdir(oldDir)

	err = os.Chdir(tempDir)
	require.NoError(t, err)

	writeGuideDoc(t)

	// Set up viper configuration
	viper.Reset()
	viper.Set("docs.source_paths", []string{"docs"})

	// Set flags
	doctorVerbose = true
	doctorFormat = "json"

	// Test doctor command
	err = runDoctor(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestVersionCommand(t *testing.T) {
	// Reset flags
	versionFormat = "text"
	versionShort = false

	// Test version command
	err := runVersionCommand(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestVersionCommandShort(t *testing.T) {
	// Set flags
	versionFormat = "text"
	versionShort = true

	// Test version command
	err := runVersionCommand(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestVersionCommandJSON(t *testing.T) {
	// Set flags
	versionFormat = "json"
	versionShort = false

	// Test version command
	err := runVersionCommand(&cobra.Command{}, []string{})
	require.NoError(t, err)
}

func TestVersionCommandUnsupportedFormat(t *testing.T) {
	// Set flags
	versionFormat = "xml"
	versionShort = false

	// Test version command
	err := runVersionCommand(&cobra.Command{}, []string{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}
