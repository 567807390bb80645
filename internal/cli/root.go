// Package cli implements the csv2pg command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "csv2pg",
	Short: "CSV to PostgreSQL import pipeline with AI-assisted schema inference",
	Long: `csv2pg prepares PostgreSQL imports from CSV files.

It samples the CSV, infers a typed schema (heuristically or through the
Gemini API), and generates a pgloader configuration plus an executable
import script. The import itself is performed by pgloader, outside this
tool.

Exit codes:
  0   success
  1   general error
  2   usage error
  3   internal panic
  10  invalid configuration or parameters
  11  CSV file missing, empty, or unreadable
  12  type inference failed
  13  output file generation failed
  14  state file missing, corrupt, or stale`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("verbose", false, "enable verbose output")
	rootCmd.PersistentFlags().String("config", "", "path to csv2pg.yaml (default: ./csv2pg.yaml if present)")
}

// Execute runs the root command and returns the resulting error, if any.
// The caller maps the error to an exit code.
func Execute() error {
	return rootCmd.Execute()
}

func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return false
	}
	return verbose
}

func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return ""
	}
	return path
}

func printError(cmd *cobra.Command, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
}
