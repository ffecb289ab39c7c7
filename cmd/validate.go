package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neflyte/seoredirect/internal/build"
	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/redirect"
)

var (
	validateStrict bool
	validateFormat string
)

// validateCmd represents the validate command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate redirect declarations without writing files",
	Long: `Validate the configured redirects and the redirect directives found in the
documentation sources. The redirect table is computed exactly as a generate
run would compute it, but nothing is written.

Problems reported include:

- Source URLs with more than one '#' separator
- Sources whose page name is empty
- Entries whose target is empty
- In-document directives shadowed by configured redirects
- The same source declared by more than one directive

Examples:
  seoredirect validate                # Report warnings, exit zero
  seoredirect validate --strict       # Exit non-zero when any warning is produced
  seoredirect validate --format json  # Output results as JSON`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat redirect warnings as errors")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")

	AddFlagValidation(validateCmd, "format", ValidateChoice("text", "json"))
}

type RedirectWarning struct {
	Code   string `json:"code"`
	Source string `json:"source"`
	Detail string `json:"detail,omitempty"`
}

type ValidationSummary struct {
	Documents     int               `json:"documents"`
	RedirectPages int               `json:"redirect_pages"`
	Sidecars      int               `json:"sidecars"`
	Entries       int               `json:"entries"`
	Valid         bool              `json:"valid"`
	Warnings      []RedirectWarning `json:"warnings"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Disabled {
		fmt.Println("ℹ️  Redirect generation is disabled by configuration")
		return nil
	}

	logger, closeLogs, err := newCommandLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLogs()

	builder, err := build.NewBuilder(cfg, build.Options{DryRun: true}, logger)
	if err != nil {
		return fmt.Errorf("failed to set up validation: %w", err)
	}
	defer builder.Close()

	result, err := builder.Run(context.Background())
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}

	table := builder.Env().Computed()

	summary := ValidationSummary{
		Documents:     result.Documents,
		RedirectPages: len(result.PagesWritten),
		Sidecars:      len(result.Sidecars),
		Entries:       countRedirectEntries(table),
		Valid:         len(result.Warnings) == 0,
		Warnings:      make([]RedirectWarning, 0, len(result.Warnings)),
	}
	for _, warning := range result.Warnings {
		summary.Warnings = append(summary.Warnings, RedirectWarning{
			Code:   string(warning.Code),
			Source: warning.Source,
			Detail: warning.Detail,
		})
	}

	switch validateFormat {
	case "json":
		if err := outputValidationJSON(summary); err != nil {
			return err
		}
	case "text":
		outputValidationText(summary)
	default:
		return fmt.Errorf("unsupported format: %s", validateFormat)
	}

	if validateStrict && !summary.Valid {
		return fmt.Errorf("validation failed: %d redirect warning(s)", len(summary.Warnings))
	}
	return nil
}

func countRedirectEntries(table redirect.Table) int {
	total := 0
	for _, fragments := range table {
		total += len(fragments)
	}
	return total
}

func outputValidationText(summary ValidationSummary) {
	fmt.Printf("Validation Summary:\n")
	fmt.Printf("  Documents scanned: %d\n", summary.Documents)
	fmt.Printf("  Redirect pages: %d\n", summary.RedirectPages)
	fmt.Printf("  Fragment sidecars: %d\n", summary.Sidecars)
	fmt.Printf("  Redirect entries: %d\n", summary.Entries)
	fmt.Printf("  Warnings: %d\n", len(summary.Warnings))
	fmt.Println()

	for _, warning := range summary.Warnings {
		if warning.Detail != "" {
			fmt.Printf("⚠️  %s: %s: %s\n", warning.Code, warning.Source, warning.Detail)
		} else {
			fmt.Printf("⚠️  %s: %s\n", warning.Code, warning.Source)
		}
	}
	if len(summary.Warnings) > 0 {
		fmt.Println()
	}

	if summary.Valid {
		fmt.Println("✅ All redirect declarations are valid!")
	} else {
		fmt.Printf("❌ %d redirect warning(s) found\n", len(summary.Warnings))
	}
}

func outputValidationJSON(summary ValidationSummary) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(summary)
}
