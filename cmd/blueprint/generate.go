package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/config"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/format"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/generator"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/logging"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

var generateFlags struct {
	publisher             string
	solutionIDs           []string
	includeSystemEntities bool
	excludeSystemFields   bool
	outputFormat          string
	outputDir             string
	schemaDelay           time.Duration
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a blueprint for a publisher prefix or solution set",
	Example: `  blueprint generate --publisher contoso
  blueprint generate --solutions 8d3a2f1e-...,b4c9e7a2-... --format json
  blueprint generate --publisher new --include-system-entities --out ./docs`,
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVar(&generateFlags.publisher, "publisher", "", "publisher customization prefix to scope by")
	f.StringSliceVar(&generateFlags.solutionIDs, "solutions", nil, "solution ids to scope by (takes precedence over --publisher)")
	f.BoolVar(&generateFlags.includeSystemEntities, "include-system-entities", false, "also document system entities referenced by the scope")
	f.BoolVar(&generateFlags.excludeSystemFields, "exclude-system-fields", true, "drop framework bookkeeping fields from attribute lists")
	f.StringVar(&generateFlags.outputFormat, "format", "", "output format: markdown, json or yaml (default from config)")
	f.StringVar(&generateFlags.outputDir, "out", "", "directory to write the blueprint to (default from config)")
	f.DurationVar(&generateFlags.schemaDelay, "delay", 0, "spacing between per-entity schema fetches (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	scope := resolveScope(cmd, cfg)
	if err := scope.Validate(); err != nil {
		return err
	}
	if err := cfg.ValidateDataverse(); err != nil {
		return err
	}

	client, err := dataverse.NewWebAPIClient(dataverse.Config{
		URL:          cfg.Dataverse.URL,
		TenantID:     cfg.Dataverse.TenantID,
		ClientID:     cfg.Dataverse.ClientID,
		ClientSecret: cfg.Dataverse.ClientSecret,
	})
	if err != nil {
		return fmt.Errorf("connect to environment: %w", err)
	}

	formatName := cfg.Output.Format
	if generateFlags.outputFormat != "" {
		formatName = generateFlags.outputFormat
	}
	writer, ext, err := format.ByName(formatName)
	if err != nil {
		return err
	}

	delay := cfg.SchemaDelay()
	if cmd.Flags().Changed("delay") {
		delay = generateFlags.schemaDelay
	}

	// Interrupts cancel the run; the pipeline notices at the next phase or
	// entity boundary.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gen := generator.New(client, logger, generator.Options{
		SchemaDelay: delay,
		OnProgress:  printProgress,
	})

	bp, err := gen.Generate(ctx, scope)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("generation cancelled")
		}
		return err
	}

	outDir := cfg.Output.Dir
	if generateFlags.outputDir != "" {
		outDir = generateFlags.outputDir
	}
	path := filepath.Join(outDir, fmt.Sprintf("blueprint-%s.%s", bp.GeneratedAt.Format("20060102-150405"), ext))
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := writer(out, bp); err != nil {
		out.Close()
		return fmt.Errorf("write blueprint: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("write blueprint: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Blueprint written to %s\n", path)
	return nil
}

// resolveScope merges scope flags over the configured defaults. Flags that
// were set win; --solutions wins over --publisher.
func resolveScope(cmd *cobra.Command, cfg *config.Config) blueprint.Scope {
	scope := cfg.Scope()
	if cmd.Flags().Changed("include-system-entities") {
		scope.IncludeSystemEntities = generateFlags.includeSystemEntities
	}
	if cmd.Flags().Changed("exclude-system-fields") {
		scope.ExcludeSystemFields = generateFlags.excludeSystemFields
	}
	if len(generateFlags.solutionIDs) > 0 {
		scope.Kind = blueprint.ScopeKindSolutions
		scope.SolutionIDs = generateFlags.solutionIDs
		scope.PublisherPrefix = ""
		return scope
	}
	if generateFlags.publisher != "" {
		scope.Kind = blueprint.ScopeKindPublisher
		scope.PublisherPrefix = generateFlags.publisher
		scope.SolutionIDs = nil
	}
	return scope
}

// printProgress renders pipeline snapshots on stderr, keeping stdout for the
// result path.
func printProgress(p blueprint.Progress) {
	if p.EntityName != "" {
		fmt.Fprintf(os.Stderr, "  [%s] (%d/%d) %s\n", p.Phase, p.Current, p.Total, p.EntityName)
		return
	}
	fmt.Fprintf(os.Stderr, "[%s] %s\n", p.Phase, p.Message)
}
