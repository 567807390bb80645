package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vvka-141/csv2pg/internal/checksum"
	"github.com/vvka-141/csv2pg/internal/logging"
	"github.com/vvka-141/csv2pg/internal/state"
	"github.com/vvka-141/csv2pg/internal/tui"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <state-file>",
	Short: "Inspect a saved import state and check whether it can continue",
	Long: `Resume loads a state file written by a previous import run, verifies the
source CSV is unchanged, and reports whether the import can continue.

Re-run the import command to continue; completed phases are cheap to
repeat, and the generated artifacts are deterministic for an unchanged
CSV.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runResume(cmd, args[0])
		if err != nil {
			printError(cmd, err)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, stateFile string) error {
	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	out := cmd.OutOrStdout()

	manager := state.NewManager(stateFile, checksum.SHA256{}, logger)
	st, err := manager.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "CSV:    %s\n", st.CSVPath)
	fmt.Fprintf(out, "Table:  %s\n", st.TableName)
	fmt.Fprintf(out, "Status: %s\n", st.Status)
	fmt.Fprintf(out, "Phase:  %s\n", st.Phase)
	if st.Error != "" {
		fmt.Fprintf(out, "Error:  %s\n", st.Error)
	}
	fmt.Fprintln(out)

	ok, reason := manager.CanResume(st, st.CSVPath)
	if !ok {
		fmt.Fprintln(out, tui.ErrorStyle.Render(tui.SymbolCross+" Cannot resume: "+reason))
		if strings.Contains(reason, "checksum") {
			return fmt.Errorf("cannot resume: %w", csv2pg.ErrChecksumMismatch)
		}
		return fmt.Errorf("cannot resume: %s", reason)
	}

	fmt.Fprintln(out, tui.SuccessStyle.Render(tui.SymbolCheck+" "+reason))
	fmt.Fprintf(out, "\nRe-run the import to continue:\n  csv2pg import %s --table-name %s --force\n",
		st.CSVPath, st.TableName)
	return nil
}
