package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neflyte/seoredirect/internal/build"
	"github.com/neflyte/seoredirect/internal/config"
	"github.com/neflyte/seoredirect/internal/plugins"
	"github.com/neflyte/seoredirect/internal/redirect"
)

var inspectFormat string

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"i"},
	Short:   "Print the computed redirect table",
	Long: `Print the redirect table a generate run would work from, with every
source page, its fragment keys and their targets. Pages that still exist
are marked as sidecar pages; they receive a fragment-redirect script
instead of a full redirect page.

The '-' fragment stands for the page itself, i.e. the redirect that
applies when no fragment matched.

Examples:
  seoredirect inspect                 # Print the table
  seoredirect inspect -f json         # Output as JSON
  seoredirect inspect --format yaml   # Output as YAML`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectFormat, "format", "f", "text", "Output format (text, json, yaml)")

	AddFlagValidation(inspectCmd, "format", ValidateChoice("text", "table", "json", "yaml"))
}

// PageInspection describes one source page of the computed redirect table.
type PageInspection struct {
	Page      string            `json:"page" yaml:"page"`
	Sidecar   bool              `json:"sidecar" yaml:"sidecar"`
	Redirects map[string]string `json:"redirects" yaml:"redirects"`
}

func runInspect(cmd *cobra.Command, args []string) error {
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
		return fmt.Errorf("failed to set up inspection: %w", err)
	}
	defer builder.Close()

	if _, err := builder.Run(context.Background()); err != nil {
		return fmt.Errorf("inspection run failed: %w", err)
	}

	env := builder.Env()
	table := env.Computed()

	if len(table) == 0 {
		fmt.Println("No redirects configured.")
		return nil
	}

	switch strings.ToLower(inspectFormat) {
	case "json":
		return outputInspectJSON(table, env)
	case "yaml":
		return outputInspectYAML(table, env)
	case "text", "table":
		return outputInspectTable(table, env)
	default:
		return fmt.Errorf("unsupported format: %s", inspectFormat)
	}
}

func inspectedPages(table redirect.Table, env *plugins.BuildEnv) []PageInspection {
	pages := make([]PageInspection, 0, len(table))
	for _, page := range table.Pages() {
		fragments := table[page]
		redirects := make(map[string]string, len(fragments))
		for _, key := range fragments.Keys() {
			redirects[key] = fragments[key]
		}
		pages = append(pages, PageInspection{
			Page:      page,
			Sidecar:   env.IsIntraPage(page),
			Redirects: redirects,
		})
	}
	return pages
}

func outputInspectJSON(table redirect.Table, env *plugins.BuildEnv) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(inspectedPages(table, env))
}

func outputInspectYAML(table redirect.Table, env *plugins.BuildEnv) error {
	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()

	return encoder.Encode(inspectedPages(table, env))
}

func outputInspectTable(table redirect.Table, env *plugins.BuildEnv) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "SOURCE\tFRAGMENT\tTARGET\tOUTPUT")
	fmt.Fprintln(w, strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 8)+"\t"+strings.Repeat("-", 6)+"\t"+strings.Repeat("-", 6))

	entries := 0
	for _, page := range table.Pages() {
		output := "redirect page"
		if env.IsIntraPage(page) {
			output = "fragment sidecar"
		}

		fragments := table[page]
		for _, key := range fragments.Keys() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", page, key, fragments[key], output)
			entries++
		}
	}

	fmt.Fprintf(w, "\nTotal: %d pages, %d redirect entries\n", len(table), entries)

	return nil
}
