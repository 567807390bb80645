package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/csv2pg/internal/checksum"
	"github.com/vvka-141/csv2pg/internal/config"
	"github.com/vvka-141/csv2pg/internal/generator"
	"github.com/vvka-141/csv2pg/internal/inference"
	"github.com/vvka-141/csv2pg/internal/llm"
	"github.com/vvka-141/csv2pg/internal/logging"
	"github.com/vvka-141/csv2pg/internal/retry"
	"github.com/vvka-141/csv2pg/internal/sampler"
	"github.com/vvka-141/csv2pg/internal/sanitize"
	"github.com/vvka-141/csv2pg/internal/state"
	"github.com/vvka-141/csv2pg/internal/tui"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

type importFlags struct {
	sampleRows    int
	chunkSize     int
	dbURL         string
	tableName     string
	outputDir     string
	encoding      string
	delimiter     string
	model         string
	dryRun        bool
	force         bool
	noLLM         bool
	fixedChunking bool
	noFallback    bool
}

var importOpts importFlags

var importCmd = &cobra.Command{
	Use:   "import <csv-file>",
	Short: "Infer a schema and generate pgloader import artifacts",
	Long: `Import samples the CSV file, infers PostgreSQL column types, and writes
a pgloader configuration plus an executable import script to the output
directory. Run the generated script to perform the actual load.

Type inference uses the Gemini API when GEMINI_API_KEY is set, falling
back to heuristic classification otherwise (or with --no-llm).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := runImport(cmd, args[0])
		if err != nil {
			printError(cmd, err)
		}
		return err
	},
}

func init() {
	importCmd.Flags().IntVarP(&importOpts.sampleRows, "sample-rows", "n", csv2pg.DefaultSampleRows, "number of rows to sample")
	importCmd.Flags().IntVarP(&importOpts.chunkSize, "chunk-size", "c", csv2pg.DefaultChunkSize, "columns per inference request")
	importCmd.Flags().StringVarP(&importOpts.dbURL, "db-url", "d", "", "PostgreSQL connection URL (default: DATABASE_URL env)")
	importCmd.Flags().StringVarP(&importOpts.tableName, "table-name", "t", "", "target table name (default: derived from the CSV filename)")
	importCmd.Flags().StringVarP(&importOpts.outputDir, "output-dir", "o", "", "output directory (default: ./output)")
	importCmd.Flags().StringVar(&importOpts.encoding, "encoding", "", "override encoding detection (utf-8, latin-1, ...)")
	importCmd.Flags().StringVar(&importOpts.delimiter, "delimiter", "", "override delimiter detection")
	importCmd.Flags().StringVar(&importOpts.model, "model", "", "Gemini model name")
	importCmd.Flags().BoolVar(&importOpts.dryRun, "dry-run", false, "render artifacts without writing files")
	importCmd.Flags().BoolVarP(&importOpts.force, "force", "f", false, "overwrite existing output files")
	importCmd.Flags().BoolVar(&importOpts.noLLM, "no-llm", false, "skip the LLM, use heuristic inference only")
	importCmd.Flags().BoolVar(&importOpts.fixedChunking, "fixed-chunking", false, "disable prefix-based column grouping")
	importCmd.Flags().BoolVar(&importOpts.noFallback, "no-fallback", false, "fail instead of reclassifying failed chunks heuristically")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, csvPath string) error {
	// Best effort; a missing .env file is not an error.
	_ = godotenv.Load()

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))

	cfg, err := loadImportConfig(cmd)
	if err != nil {
		return err
	}

	dbURL := importOpts.dbURL
	if dbURL == "" {
		dbURL = cfg.DatabaseURL
	}
	if dbURL == "" {
		return fmt.Errorf("database URL not provided, use --db-url or set DATABASE_URL: %w", csv2pg.ErrInvalidConfig)
	}

	tableName := importOpts.tableName
	if tableName == "" {
		tableName = sanitize.TableName(csvPath)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "CSV file:   %s\n", csvPath)
	fmt.Fprintf(out, "Table name: %s\n", tableName)
	fmt.Fprintf(out, "Output dir: %s\n", cfg.Output.Directory)
	if cfg.Output.DryRun {
		fmt.Fprintln(out, tui.WarningStyle.Render("Mode: dry run"))
	}
	fmt.Fprintln(out)

	stateFile := filepath.Join(cfg.Output.Directory, tableName+"_state.json")
	manager := state.NewManager(stateFile, checksum.SHA256{}, logger)

	st, err := manager.CreateInitial(csvPath, tableName)
	if err != nil {
		return err
	}

	var sample csv2pg.CSVSample
	err = tui.RunWithSpinner("Sampling CSV file", func() error {
		var sampleErr error
		sample, sampleErr = sampler.New(logger).Sample(csvPath, sampler.Options{
			Rows:      cfg.Sampling.Rows,
			Encoding:  cfg.Sampling.Encoding,
			Delimiter: flagDelimiter(),
		})
		return sampleErr
	})
	if err != nil {
		return failImport(manager, st, err)
	}
	logger.Info("sampled %d rows, %d columns", sample.SampleSize, len(sample.Headers))
	if err := markPhase(manager, st, state.PhaseSampled); err != nil {
		return err
	}

	engine, err := buildEngine(cfg, logger)
	if err != nil {
		return failImport(manager, st, err)
	}

	var schema csv2pg.TableSchema
	err = tui.RunWithSpinner("Inferring PostgreSQL types", func() error {
		var inferErr error
		schema, inferErr = engine.Infer(cmd.Context(), sample)
		return inferErr
	})
	if err != nil {
		return failImport(manager, st, err)
	}
	schema.TableName = tableName
	if err := markPhase(manager, st, state.PhaseInferred); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprint(out, tui.RenderSchema(schema))
	fmt.Fprintln(out)

	gen, err := generator.New(logger)
	if err != nil {
		return failImport(manager, st, err)
	}
	result, err := gen.Generate(schema, csvPath, generator.Options{
		OutputDir:   cfg.Output.Directory,
		DatabaseURL: dbURL,
		Delimiter:   sample.Properties.Delimiter,
		DryRun:      cfg.Output.DryRun,
		Force:       importOpts.force,
	})
	if err != nil {
		return failImport(manager, st, err)
	}
	if err := markPhase(manager, st, state.PhaseGenerated); err != nil {
		return err
	}

	fmt.Fprint(out, tui.RenderGenerationResult(result, cfg.Output.DryRun))

	if err := manager.MarkCompleted(st); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}

	if cfg.Output.DryRun {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Review the generated files")
	fmt.Fprintln(out, "  2. Verify the database connection URL")
	fmt.Fprintf(out, "  3. Run the import: bash %s\n", result.ScriptPath)

	return nil
}

// loadImportConfig merges the config file, environment, and CLI flags.
// Flags win over everything when explicitly set.
func loadImportConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(getConfigFlag(cmd))
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("sample-rows") {
		cfg.Sampling.Rows = importOpts.sampleRows
	}
	if flags.Changed("chunk-size") {
		cfg.Chunking.ColumnsPerChunk = importOpts.chunkSize
	}
	if flags.Changed("fixed-chunking") {
		cfg.Chunking.Smart = !importOpts.fixedChunking
	}
	if flags.Changed("output-dir") {
		cfg.Output.Directory = importOpts.outputDir
	}
	if flags.Changed("dry-run") {
		cfg.Output.DryRun = importOpts.dryRun
	}
	if flags.Changed("encoding") {
		cfg.Sampling.Encoding = importOpts.encoding
	}
	if flags.Changed("model") {
		cfg.LLM.Model = importOpts.model
	}
	return cfg, nil
}

// buildEngine wires the inference engine, with a Gemini provider when one
// is usable and heuristic-only inference otherwise.
func buildEngine(cfg *config.Config, logger csv2pg.Logger) (*inference.Engine, error) {
	inferCfg := csv2pg.InferenceConfig{
		ChunkSize:     cfg.Chunking.ColumnsPerChunk,
		SmartChunking: cfg.Chunking.Smart,
		UseFallback:   !importOpts.noFallback,
		Timeout:       time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	}

	var provider csv2pg.TypeProvider
	switch {
	case importOpts.noLLM:
		logger.Verbose("LLM inference disabled, using heuristics only")
	case cfg.GeminiAPIKey == "":
		logger.Error("GEMINI_API_KEY not set, falling back to heuristic inference")
	default:
		backoff := retry.NewExponentialBackoff(cfg.LLM.RetryAttempts,
			retry.WithInitialDelay(time.Duration(cfg.LLM.RetryDelaySec)*time.Second))
		executor := retry.NewExecutor(retry.NewAPIErrorClassifier(), backoff)

		gemini, err := llm.NewGeminiProvider(llm.Config{
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.GeminiAPIKey,
			Timeout:  time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		}, executor, logger)
		if err != nil {
			return nil, err
		}
		provider = gemini
	}

	return inference.NewEngine(provider, inferCfg, logger)
}

func flagDelimiter() rune {
	if importOpts.delimiter == "" {
		return 0
	}
	if importOpts.delimiter == `\t` {
		return '\t'
	}
	return []rune(importOpts.delimiter)[0]
}

func markPhase(m *state.Manager, st *state.ImportState, phase state.Phase) error {
	if err := m.MarkPhaseComplete(st, phase); err != nil {
		return fmt.Errorf("persisting state: %w", err)
	}
	return nil
}

func failImport(m *state.Manager, st *state.ImportState, cause error) error {
	if err := m.MarkFailed(st, cause.Error()); err != nil {
		// The original failure matters more than the bookkeeping one.
		return cause
	}
	return cause
}
