package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/csv2pg/internal/logging"
	"github.com/vvka-141/csv2pg/internal/sampler"
	"github.com/vvka-141/csv2pg/internal/tui"
)

const (
	validateSampleRows  = 10
	validateHeaderLimit = 20
	validatePreviewRows = 5
	validatePreviewCols = 10
)

var validateShowSample bool

var validateCmd = &cobra.Command{
	Use:   "validate <csv-file>",
	Short: "Check CSV structure, encoding, and delimiter detection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runValidate(cmd, args[0])
		if err != nil {
			printError(cmd, err)
		}
		return err
	},
}

func init() {
	validateCmd.Flags().BoolVarP(&validateShowSample, "show-sample", "s", false, "display sample data rows")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, csvPath string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating CSV: %s\n\n", csvPath)

	sample, err := sampler.New(logger).Sample(csvPath, sampler.Options{Rows: validateSampleRows})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s Encoding:  %s\n", tui.SymbolCheck, sample.Properties.Encoding)
	fmt.Fprintf(out, "%s Delimiter: %q\n", tui.SymbolCheck, sample.Properties.Delimiter)
	fmt.Fprintf(out, "%s Columns:   %d\n", tui.SymbolCheck, sample.Properties.ColumnCount)

	fmt.Fprintln(out, "\nHeaders:")
	for i, header := range sample.Headers {
		if i == validateHeaderLimit {
			fmt.Fprintf(out, "  ... and %d more\n", len(sample.Headers)-validateHeaderLimit)
			break
		}
		fmt.Fprintf(out, "  %d. %s\n", i+1, header)
	}

	if validateShowSample {
		fmt.Fprintf(out, "\nSample data (first %d rows):\n", validatePreviewRows)
		printSampleRows(cmd, sample.Headers, sample.Rows)
	}

	fmt.Fprintln(out, "\n"+tui.SuccessStyle.Render(tui.SymbolCheck+" CSV validation complete"))
	return nil
}

func printSampleRows(cmd *cobra.Command, headers []string, rows []map[string]*string) {
	out := cmd.OutOrStdout()

	cols := headers
	if len(cols) > validatePreviewCols {
		cols = cols[:validatePreviewCols]
	}

	for i, row := range rows {
		if i == validatePreviewRows {
			break
		}
		fmt.Fprintf(out, "  row %d:\n", i+1)
		for _, h := range cols {
			value := "<null>"
			if v, ok := row[h]; ok && v != nil {
				value = *v
			}
			fmt.Fprintf(out, "    %s = %s\n", h, value)
		}
	}

	if len(headers) > validatePreviewCols {
		fmt.Fprintf(out, "  (showing %d of %d columns)\n", validatePreviewCols, len(headers))
	}
}
