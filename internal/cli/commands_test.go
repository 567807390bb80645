package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// executeCommand runs the root command with the given args and captures its
// output. Flag state is reset first so tests do not leak into each other.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	for _, cmd := range rootCmd.Commands() {
		resetFlags(cmd)
	}
	importOpts = importFlags{}
	validateShowSample = false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	cmd.PersistentFlags().Visit(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const usersCSV = "id,name,active,created_at\n" +
	"1,Alice,true,2024-01-15\n" +
	"2,Bob,false,2024-02-20\n" +
	"3,Carol,true,2024-03-25\n"

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "csv2pg dev")
	assert.Contains(t, out, "commit:")
}

func TestValidateCommand(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)

	out, err := executeCommand(t, "validate", csvPath)

	require.NoError(t, err)
	assert.Contains(t, out, "Encoding:  utf-8")
	assert.Contains(t, out, `Delimiter: ','`)
	assert.Contains(t, out, "Columns:   4")
	assert.Contains(t, out, "1. id")
	assert.Contains(t, out, "4. created_at")
	assert.Contains(t, out, "validation complete")
}

func TestValidateCommand_ShowSample(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)

	out, err := executeCommand(t, "validate", csvPath, "--show-sample")

	require.NoError(t, err)
	assert.Contains(t, out, "Sample data")
	assert.Contains(t, out, "name = Alice")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "nope.csv"))

	require.Error(t, err)
	assert.ErrorIs(t, err, csv2pg.ErrCSVNotFound)
	assert.Equal(t, csv2pg.ExitCSVError, csv2pg.ExitCodeForError(err))
}

func TestImportCommand_HeuristicOnly(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)
	outDir := t.TempDir()

	out, err := executeCommand(t, "import", csvPath,
		"--no-llm",
		"--db-url", "postgresql://localhost/test",
		"--output-dir", outDir)

	require.NoError(t, err)
	assert.Contains(t, out, "Table: users")
	assert.Contains(t, out, "integer")
	assert.Contains(t, out, "boolean")
	assert.Contains(t, out, "primary key: id")

	assert.FileExists(t, filepath.Join(outDir, "users.load"))
	assert.FileExists(t, filepath.Join(outDir, "users_import.sh"))
	assert.FileExists(t, filepath.Join(outDir, "users_state.json"))
}

func TestImportCommand_DryRun(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)
	outDir := t.TempDir()

	out, err := executeCommand(t, "import", csvPath,
		"--no-llm", "--dry-run",
		"--db-url", "postgresql://localhost/test",
		"--output-dir", outDir)

	require.NoError(t, err)
	assert.Contains(t, out, "dry run")
	assert.NoFileExists(t, filepath.Join(outDir, "users.load"))
	assert.NoFileExists(t, filepath.Join(outDir, "users_import.sh"))
}

func TestImportCommand_MissingDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	csvPath := writeCSV(t, "users.csv", usersCSV)

	_, err := executeCommand(t, "import", csvPath,
		"--no-llm", "--output-dir", t.TempDir())

	require.Error(t, err)
	assert.ErrorIs(t, err, csv2pg.ErrInvalidConfig)
	assert.Equal(t, csv2pg.ExitConfigError, csv2pg.ExitCodeForError(err))
}

func TestImportCommand_TableNameOverride(t *testing.T) {
	csvPath := writeCSV(t, "Messy File-Name.csv", usersCSV)
	outDir := t.TempDir()

	_, err := executeCommand(t, "import", csvPath,
		"--no-llm",
		"--db-url", "postgresql://localhost/test",
		"--table-name", "accounts",
		"--output-dir", outDir)

	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "accounts.load"))
	assert.FileExists(t, filepath.Join(outDir, "accounts_state.json"))
}

func TestImportCommand_ExistingOutputNeedsForce(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "users.load"), []byte("old"), 0o644))

	_, err := executeCommand(t, "import", csvPath,
		"--no-llm",
		"--db-url", "postgresql://localhost/test",
		"--output-dir", outDir)

	require.Error(t, err)
	assert.ErrorIs(t, err, csv2pg.ErrOutputExists)

	_, err = executeCommand(t, "import", csvPath,
		"--no-llm", "--force",
		"--db-url", "postgresql://localhost/test",
		"--output-dir", outDir)
	require.NoError(t, err)
}

func TestResumeCommand_AfterCompletedImport(t *testing.T) {
	csvPath := writeCSV(t, "users.csv", usersCSV)
	outDir := t.TempDir()

	_, err := executeCommand(t, "import", csvPath,
		"--no-llm",
		"--db-url", "postgresql://localhost/test",
		"--output-dir", outDir)
	require.NoError(t, err)

	out, err := executeCommand(t, "resume", filepath.Join(outDir, "users_state.json"))

	require.Error(t, err)
	assert.Contains(t, out, "Status: completed")
	assert.Contains(t, out, "already completed")
}

func TestResumeCommand_MissingStateFile(t *testing.T) {
	_, err := executeCommand(t, "resume", filepath.Join(t.TempDir(), "gone.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, csv2pg.ErrStateNotFound)
	assert.Equal(t, csv2pg.ExitStateError, csv2pg.ExitCodeForError(err))
}

func TestFlagDelimiter(t *testing.T) {
	importOpts.delimiter = ""
	assert.Equal(t, rune(0), flagDelimiter())

	importOpts.delimiter = ";"
	assert.Equal(t, ';', flagDelimiter())

	importOpts.delimiter = `\t`
	assert.Equal(t, '\t', flagDelimiter())
}
