package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/config"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
)

var solutionsCmd = &cobra.Command{
	Use:   "solutions",
	Short: "List the installed solutions of the connected environment",
	RunE:  runSolutions,
}

func runSolutions(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
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

	solutions, err := client.ListSolutions(cmd.Context())
	if err != nil {
		return fmt.Errorf("list solutions: %w", err)
	}
	if len(solutions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No solutions visible in this environment.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIQUE NAME\tVERSION\tPREFIX\tID")
	for _, s := range solutions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.UniqueName, s.Version, s.Prefix, s.ID)
	}
	return w.Flush()
}
