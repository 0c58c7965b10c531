// Command blueprint generates solution blueprints from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "blueprint",
	Short: "Document a solution's data model and automation",
	Long: `blueprint connects to an environment's metadata service, discovers the
components owned by a publisher or a set of solutions, and assembles a
cross-referenced document of entities, attributes, triggers, flows,
business rules, legacy workflows, guided processes, files and forms.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (default: ./config.yaml)")
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(solutionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
