package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	yamlv2 "gopkg.in/yaml.v2"

	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/render"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose configuration and environment issues",
	Long: `Diagnose the seoredirect setup and report anything that would break or
degrade a generate run. The doctor checks:

- Configuration file presence and validity
- Redirect declaration files (existence and YAML shape)
- Template overrides (existence and parseability)
- Documentation source paths
- Output directory writability
- Site URL settings

Examples:
  seoredirect doctor                # Full diagnosis
  seoredirect doctor --verbose      # Include detailed diagnostic output
  seoredirect doctor --format json  # Output as JSON for tooling`,
	RunE: runDoctor,
}

var (
	doctorVerbose bool
	doctorFormat  string
)

// DiagnosticResult represents the result of a diagnostic check
type DiagnosticResult struct {
	Name       string                 `json:"name" yaml:"name"`
	Category   string                 `json:"category" yaml:"category"`
	Status     string                 `json:"status" yaml:"status"` // "ok", "warning", "error", "info"
	Message    string                 `json:"message" yaml:"message"`
	Suggestion string                 `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorReport represents the complete diagnostic report
type DoctorReport struct {
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	Environment map[string]string  `json:"environment" yaml:"environment"`
	Results     []DiagnosticResult `json:"results" yaml:"results"`
	Summary     ReportSummary      `json:"summary" yaml:"summary"`
}

// ReportSummary provides an overview of diagnostic results
type ReportSummary struct {
	Total    int `json:"total" yaml:"total"`
	OK       int `json:"ok" yaml:"ok"`
	Warnings int `json:"warnings" yaml:"warnings"`
	Errors   int `json:"errors" yaml:"errors"`
	Info     int `json:"info" yaml:"info"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().BoolVarP(&doctorVerbose, "verbose", "v", false, "Show verbose diagnostic information")
	doctorCmd.Flags().StringVarP(&doctorFormat, "format", "f", "table", "Output format (table|json|yaml)")

	AddFlagValidation(doctorCmd, "format", ValidateChoice("table", "json", "yaml"))
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	fmt.Println("🔍 Seoredirect Doctor")
	fmt.Println("=====================")
	fmt.Println()

	report := &DoctorReport{
		Timestamp:   time.Now(),
		Environment: gatherEnvironmentInfo(),
		Results:     []DiagnosticResult{},
	}

	checks := []func(context.Context, *DoctorReport) DiagnosticResult{
		checkConfiguration,
		checkRedirectDeclarations,
		checkTemplateOverrides,
		checkDocumentationSources,
		checkOutputDirectory,
		checkSiteURL,
		checkFileSystemPermissions,
	}

	for _, check := range checks {
		result := check(ctx, report)
		report.Results = append(report.Results, result)

		if !doctorVerbose && result.Status == "info" {
			continue
		}

		displayResult(result)
	}

	report.Summary = calculateSummary(report.Results)

	fmt.Println("\n📊 Summary")
	fmt.Println("==========")
	displaySummary(report.Summary)

	if doctorFormat != "table" {
		fmt.Println("\n📋 Detailed Report")
		fmt.Println("==================")
		if err := outputReport(report, doctorFormat); err != nil {
			return fmt.Errorf("failed to output report: %w", err)
		}
	}

	provideFinalRecommendations(report)

	return nil
}

func gatherEnvironmentInfo() map[string]string {
	env := map[string]string{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"go_version": runtime.Version(),
		"user":       os.Getenv("USER"),
		"shell":      os.Getenv("SHELL"),
	}

	if wd, err := os.Getwd(); err == nil {
		env["working_dir"] = wd
	}
	if used := viper.ConfigFileUsed(); used != "" {
		env["config_file"] = used
	}

	return env
}

func checkConfiguration(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Configuration",
		Category: "Configuration",
		Status:   "ok",
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		result.Status = "warning"
		result.Message = "No configuration file found; running on defaults"
		result.Suggestion = "Create .seoredirect.yml or point SEOREDIRECT_CONFIG_FILE at your configuration"
		return result
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Configuration file exists but has errors: %v", err)
		result.Suggestion = "Fix the reported configuration error in " + configFile
		return result
	}

	result.Message = "Configuration file is valid"
	result.Details = map[string]interface{}{
		"config_file":    configFile,
		"source_paths":   cfg.Docs.SourcePaths,
		"output_dir":     cfg.Output.Dir,
		"redirects":      len(cfg.Redirects),
		"redirect_files": len(cfg.RedirectFiles),
		"extensionless":  cfg.Output.Extensionless,
	}

	if cfg.Disabled {
		result.Status = "warning"
		result.Message = "Redirect generation is disabled in the configuration"
		result.Suggestion = "Remove 'disabled: true' from " + configFile + " to generate redirect pages"
		return result
	}

	if len(cfg.Redirects) == 0 && len(cfg.RedirectFiles) == 0 {
		result.Status = "info"
		result.Message = "No redirects configured; in-document directives may still declare some"
	}

	return result
}

func checkRedirectDeclarations(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Redirect Declarations",
		Category: "Configuration",
		Status:   "ok",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: configuration did not load"
		return result
	}

	if len(cfg.RedirectFiles) == 0 {
		result.Status = "info"
		result.Message = "No redirect declaration files configured"
		return result
	}

	entriesPerFile := map[string]interface{}{}
	for _, file := range cfg.RedirectFiles {
		data, err := os.ReadFile(file)
		if err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Cannot read redirect file %s: %v", file, err)
			result.Suggestion = "Fix the redirect_files entry in the configuration or create the file"
			return result
		}

		var entries map[string]string
		if err := yamlv2.Unmarshal(data, &entries); err != nil {
			result.Status = "error"
			result.Message = fmt.Sprintf("Redirect file %s is not a flat YAML map: %v", file, err)
			result.Suggestion = "Redirect files map one source URL to one target per line, e.g. 'old-page.html: new-page.html'"
			return result
		}
		entriesPerFile[file] = len(entries)
	}

	result.Message = fmt.Sprintf("%d redirect file(s) parse cleanly", len(cfg.RedirectFiles))
	result.Details = entriesPerFile

	return result
}

func checkTemplateOverrides(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Template Overrides",
		Category: "Templates",
		Status:   "ok",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: configuration did not load"
		return result
	}

	if cfg.Templates.Simple == "" && cfg.Templates.Fragment == "" {
		result.Status = "info"
		result.Message = "No template overrides configured; using the embedded defaults"
		return result
	}

	engine, err := render.NewHTMLEngine()
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Embedded templates failed to load: %v", err)
		return result
	}

	if err := engine.LoadOverrides(cfg.Templates.Simple, cfg.Templates.Fragment); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Template override failed to parse: %v", err)
		result.Suggestion = "Check the templates.simple and templates.fragment paths and their html/template syntax"
		return result
	}

	result.Message = "Template overrides parse cleanly"
	result.Details = map[string]interface{}{
		"simple":   cfg.Templates.Simple,
		"fragment": cfg.Templates.Fragment,
	}

	return result
}

func checkDocumentationSources(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Documentation Sources",
		Category: "Sources",
		Status:   "ok",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: configuration did not load"
		return result
	}

	missing := []string{}
	notDir := []string{}
	for _, path := range cfg.Docs.SourcePaths {
		info, err := os.Stat(path)
		switch {
		case os.IsNotExist(err):
			missing = append(missing, path)
		case err != nil:
			missing = append(missing, path)
		case !info.IsDir():
			notDir = append(notDir, path)
		}
	}

	result.Details = map[string]interface{}{
		"source_paths": cfg.Docs.SourcePaths,
		"extensions":   cfg.Docs.Extensions,
	}

	if len(missing) > 0 {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Source path(s) not found: %v", missing)
		result.Suggestion = "Fix docs.source_paths in the configuration or create the directories"
		return result
	}
	if len(notDir) > 0 {
		result.Status = "error"
		result.Message = fmt.Sprintf("Source path(s) are not directories: %v", notDir)
		result.Suggestion = "docs.source_paths entries must be directories"
		return result
	}

	result.Message = fmt.Sprintf("All %d source path(s) exist", len(cfg.Docs.SourcePaths))

	return result
}

func checkOutputDirectory(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Output Directory",
		Category: "Output",
		Status:   "ok",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: configuration did not load"
		return result
	}

	outDir := cfg.Output.Dir
	info, err := os.Stat(outDir)
	if os.IsNotExist(err) {
		result.Status = "info"
		result.Message = fmt.Sprintf("Output directory %s does not exist yet; it is created on the first generate", outDir)
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot stat output directory %s: %v", outDir, err)
		return result
	}
	if !info.IsDir() {
		result.Status = "error"
		result.Message = fmt.Sprintf("Output path %s exists but is not a directory", outDir)
		result.Suggestion = "Remove the file or change output.dir in the configuration"
		return result
	}

	probe := filepath.Join(outDir, ".seoredirect-permission-test")
	if err := os.WriteFile(probe, []byte("test"), 0644); err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Output directory %s is not writable: %v", outDir, err)
		result.Suggestion = "Fix the directory permissions or change output.dir"
		return result
	}
	os.Remove(probe) // Clean up

	result.Message = fmt.Sprintf("Output directory %s is writable", outDir)

	return result
}

func checkSiteURL(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "Site URL",
		Category: "Site",
		Status:   "ok",
	}

	cfg, err := config.Load()
	if err != nil {
		result.Status = "info"
		result.Message = "Skipped: configuration did not load"
		return result
	}

	if cfg.Site.BaseURL == "" {
		result.Status = "info"
		result.Message = "No base URL configured; redirect targets are kept as written"
		return result
	}

	parsed, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		// Load validates the URL, so this is unreachable in practice
		result.Status = "error"
		result.Message = fmt.Sprintf("Base URL does not parse: %v", err)
		return result
	}

	result.Message = fmt.Sprintf("Targets under %s are stored site-relative", parsed.Host)
	result.Details = map[string]interface{}{
		"base_url":        cfg.Site.BaseURL,
		"url_path_prefix": cfg.Site.URLPathPrefix,
	}

	if cfg.Site.URLPathPrefix != "" && strings.HasSuffix(cfg.Site.URLPathPrefix, "/") {
		result.Status = "warning"
		result.Message = fmt.Sprintf("url_path_prefix %q ends with '/'; prefixed targets will carry a double slash", cfg.Site.URLPathPrefix)
		result.Suggestion = "Drop the trailing slash from site.url_path_prefix"
	}

	return result
}

func checkFileSystemPermissions(ctx context.Context, report *DoctorReport) DiagnosticResult {
	result := DiagnosticResult{
		Name:     "File System Permissions",
		Category: "System",
		Status:   "ok",
	}

	testFile := ".seoredirect-permission-test"
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		result.Status = "error"
		result.Message = "Cannot write to current directory"
		result.Suggestion = "Check directory permissions or change to a writable directory"
		return result
	}
	os.Remove(testFile) // Clean up

	result.Message = "File system permissions are adequate"
	return result
}

func displayResult(result DiagnosticResult) {
	var icon string
	switch result.Status {
	case "ok":
		icon = "✅"
	case "warning":
		icon = "⚠️"
	case "error":
		icon = "❌"
	case "info":
		icon = "ℹ️"
	default:
		icon = "•"
	}

	fmt.Printf("%s [%s] %s: %s\n", icon, strings.ToUpper(result.Category), result.Name, result.Message)

	if result.Suggestion != "" {
		fmt.Printf("   💡 %s\n", result.Suggestion)
	}

	if doctorVerbose && result.Details != nil && len(result.Details) > 0 {
		fmt.Printf("   📋 Details: %+v\n", result.Details)
	}

	fmt.Println()
}

func calculateSummary(results []DiagnosticResult) ReportSummary {
	summary := ReportSummary{
		Total: len(results),
	}

	for _, result := range results {
		switch result.Status {
		case "ok":
			summary.OK++
		case "warning":
			summary.Warnings++
		case "error":
			summary.Errors++
		case "info":
			summary.Info++
		}
	}

	return summary
}

func displaySummary(summary ReportSummary) {
	fmt.Printf("Total Checks: %d\n", summary.Total)
	fmt.Printf("✅ OK: %d\n", summary.OK)
	fmt.Printf("⚠️  Warnings: %d\n", summary.Warnings)
	fmt.Printf("❌ Errors: %d\n", summary.Errors)
	fmt.Printf("ℹ️  Info: %d\n", summary.Info)

	// Calculate health score
	healthScore := float64(summary.OK) / float64(summary.Total) * 100
	fmt.Printf("\n🎯 Setup Health Score: %.0f%%\n", healthScore)
}

func outputReport(report *DoctorReport, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case "yaml":
		encoder := yamlv2.NewEncoder(os.Stdout)
		return encoder.Encode(report)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func provideFinalRecommendations(report *DoctorReport) {
	fmt.Println("\n🚀 Final Recommendations")
	fmt.Println("========================")

	hasErrors := report.Summary.Errors > 0
	hasWarnings := report.Summary.Warnings > 0

	if hasErrors {
		fmt.Println("❌ Critical Issues Detected:")
		fmt.Println("   Address the errors above before generating redirect pages")
		fmt.Println()
	}

	if hasWarnings {
		fmt.Println("⚠️  Configuration Opportunities:")
		fmt.Println("   Review warnings above; they usually mean missing or skipped redirects")
		fmt.Println()
	}

	if !hasErrors && !hasWarnings {
		fmt.Println("🎉 Your setup looks great!")
		fmt.Println("   seoredirect is ready to generate redirect pages")
		fmt.Println()
	}

	fmt.Println("📝 Next Steps:")
	fmt.Println("   1. Run 'seoredirect generate --dry-run' to preview the build")
	fmt.Println("   2. Add 'seoredirect validate --strict' to your CI pipeline")
	fmt.Println("   3. Visit https://github.com/neflyte/seoredirect for documentation")
	fmt.Println()
}
