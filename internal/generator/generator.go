// Package generator renders a table schema into the deployable import
// artifacts: a pgloader load configuration and an executable import script.
package generator

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

//go:embed templates
var templatesFS embed.FS

// Options control artifact generation.
type Options struct {
	// OutputDir receives all generated files. Created if missing.
	OutputDir string

	// DatabaseURL is the PostgreSQL connection string rendered into the
	// load configuration.
	DatabaseURL string

	// Delimiter is the CSV field delimiter. Zero means comma.
	Delimiter rune

	// Performance overrides auto-detected pgloader tuning when non-nil.
	Performance *PerformanceConfig

	// DryRun renders everything but writes nothing.
	DryRun bool

	// Force overwrites existing output files.
	Force bool
}

// Generator renders import artifacts from a schema.
type Generator struct {
	templates *template.Template
	logger    csv2pg.Logger
}

// New creates a generator with the embedded templates parsed.
func New(logger csv2pg.Logger) (*Generator, error) {
	tmpl, err := template.New("generator").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Generator{templates: tmpl, logger: logger}, nil
}

// loadContext feeds the pgloader template.
type loadContext struct {
	GeneratedAt string
	CSVPath     string
	DatabaseURL string
	TableName   string
	Delimiter   string
	ColumnDefs  []string
	CastRules   []string
	PrimaryKey  string
	Perf        PerformanceConfig
}

// scriptContext feeds the import script template.
type scriptContext struct {
	GeneratedAt string
	CSVPath     string
	ConfigFile  string
	StateFile   string
	LogFile     string
	TableName   string
}

// Generate renders the pgloader config and import script for the schema.
//
// Output paths are fixed relative to OutputDir: <table>.load,
// <table>_import.sh, <table>_state.json and <table>_import.log. Existing
// artifacts fail with ErrOutputExists unless Force is set.
func (g *Generator) Generate(schema csv2pg.TableSchema, csvPath string, opts Options) (csv2pg.GenerationResult, error) {
	if err := schema.Validate(); err != nil {
		return csv2pg.GenerationResult{}, err
	}
	if opts.OutputDir == "" {
		return csv2pg.GenerationResult{}, fmt.Errorf("output directory is required: %w", csv2pg.ErrInvalidConfig)
	}

	absCSV, err := filepath.Abs(csvPath)
	if err != nil {
		return csv2pg.GenerationResult{}, fmt.Errorf("resolve CSV path: %w", err)
	}

	result := csv2pg.GenerationResult{
		ConfigPath: filepath.Join(opts.OutputDir, schema.TableName+".load"),
		ScriptPath: filepath.Join(opts.OutputDir, schema.TableName+"_import.sh"),
		StatePath:  filepath.Join(opts.OutputDir, schema.TableName+"_state.json"),
		LogPath:    filepath.Join(opts.OutputDir, schema.TableName+"_import.log"),
	}

	if !opts.Force {
		for _, p := range []string{result.ConfigPath, result.ScriptPath} {
			if _, err := os.Stat(p); err == nil {
				return csv2pg.GenerationResult{}, fmt.Errorf("%w: %s (use --force to overwrite)", csv2pg.ErrOutputExists, p)
			}
		}
	}

	perf := g.resolvePerformance(absCSV, opts)
	generatedAt := time.Now().Format("2006-01-02 15:04:05")

	configContent, err := g.render("pgloader.load.tmpl", loadContext{
		GeneratedAt: generatedAt,
		CSVPath:     absCSV,
		DatabaseURL: opts.DatabaseURL,
		TableName:   schema.TableName,
		Delimiter:   delimiterString(opts.Delimiter),
		ColumnDefs:  columnDefs(schema),
		CastRules:   castRules(schema),
		PrimaryKey:  schema.PrimaryKey,
		Perf:        perf,
	})
	if err != nil {
		return csv2pg.GenerationResult{}, err
	}

	absConfig, err := filepath.Abs(result.ConfigPath)
	if err != nil {
		return csv2pg.GenerationResult{}, fmt.Errorf("resolve config path: %w", err)
	}
	absState, _ := filepath.Abs(result.StatePath)
	absLog, _ := filepath.Abs(result.LogPath)

	scriptContent, err := g.render("import.sh.tmpl", scriptContext{
		GeneratedAt: generatedAt,
		CSVPath:     absCSV,
		ConfigFile:  absConfig,
		StateFile:   absState,
		LogFile:     absLog,
		TableName:   schema.TableName,
	})
	if err != nil {
		return csv2pg.GenerationResult{}, err
	}

	if opts.DryRun {
		g.logger.Info("[DRY RUN] would generate: %s", result.ConfigPath)
		g.logger.Info("[DRY RUN] would generate: %s", result.ScriptPath)
		return result, nil
	}

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return csv2pg.GenerationResult{}, fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(result.ConfigPath, []byte(configContent), 0o644); err != nil {
		return csv2pg.GenerationResult{}, fmt.Errorf("write pgloader config: %w", err)
	}
	g.logger.Info("generated pgloader config: %s", result.ConfigPath)

	if err := os.WriteFile(result.ScriptPath, []byte(scriptContent), 0o755); err != nil {
		return csv2pg.GenerationResult{}, fmt.Errorf("write import script: %w", err)
	}
	g.logger.Info("generated import script: %s", result.ScriptPath)

	return result, nil
}

func (g *Generator) render(name string, data any) (string, error) {
	var b strings.Builder
	if err := g.templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return b.String(), nil
}

func (g *Generator) resolvePerformance(csvPath string, opts Options) PerformanceConfig {
	if opts.Performance != nil {
		return *opts.Performance
	}

	var size int64
	if info, err := os.Stat(csvPath); err == nil {
		size = info.Size()
	}
	perf := AutoDetectPerformance(size)
	g.logger.Verbose("auto-detected performance config: workers=%d, concurrency=%d",
		perf.Workers, perf.Concurrency)
	return perf
}

// columnDefs renders each column as "name type [NOT NULL]".
func columnDefs(schema csv2pg.TableSchema) []string {
	defs := make([]string, 0, len(schema.Columns))
	for _, col := range schema.Columns {
		def := col.Name + " " + col.PgType
		if !col.Nullable {
			def += " NOT NULL"
		}
		defs = append(defs, def)
	}
	return defs
}

// castRules renders pgloader cast directives for columns carrying one.
func castRules(schema csv2pg.TableSchema) []string {
	var rules []string
	for _, col := range schema.Columns {
		if !col.NeedsCast() {
			continue
		}
		rules = append(rules, fmt.Sprintf("column %s.%s to %s using %s",
			schema.TableName, col.Name, col.PgType, col.CastRule))
	}
	return rules
}

func delimiterString(d rune) string {
	if d == 0 {
		return ","
	}
	if d == '\t' {
		return "\\t"
	}
	return string(d)
}
