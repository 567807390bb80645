// Package config loads tool configuration from an optional YAML file with
// environment variable overrides layered on top.
//
// Precedence, lowest to highest: built-in defaults, csv2pg.yaml, CSV2PG_*
// environment variables. CLI flags override all of these at the call site.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// ErrConfigNotFound is returned when an explicitly requested config file
// does not exist. Callers can check for this with errors.Is.
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the default config file looked up in the working
// directory.
const ConfigFileName = "csv2pg.yaml"

type SamplingConfig struct {
	Rows     int    `yaml:"rows"`
	Encoding string `yaml:"encoding,omitempty"`
}

type ChunkingConfig struct {
	ColumnsPerChunk int  `yaml:"columns_per_chunk"`
	Smart           bool `yaml:"smart"`
}

type LLMConfig struct {
	Provider      string `yaml:"provider"`
	Model         string `yaml:"model"`
	Endpoint      string `yaml:"endpoint,omitempty"`
	TimeoutSec    int    `yaml:"timeout"`
	RetryAttempts int    `yaml:"retry_attempts"`
	RetryDelaySec int    `yaml:"retry_delay"`
}

type OutputConfig struct {
	Directory string `yaml:"directory"`
	DryRun    bool   `yaml:"dry_run"`
}

// Config is the merged tool configuration.
type Config struct {
	Sampling SamplingConfig `yaml:"sampling"`
	Chunking ChunkingConfig `yaml:"chunking"`
	LLM      LLMConfig      `yaml:"llm"`
	Output   OutputConfig   `yaml:"output"`

	// Secrets come from the environment only, never from YAML.
	GeminiAPIKey string `yaml:"-"`
	DatabaseURL  string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Rows: csv2pg.DefaultSampleRows,
		},
		Chunking: ChunkingConfig{
			ColumnsPerChunk: csv2pg.DefaultChunkSize,
			Smart:           true,
		},
		LLM: LLMConfig{
			Provider:      "gemini",
			Model:         csv2pg.DefaultModel,
			TimeoutSec:    int(csv2pg.DefaultProviderTimeout.Seconds()),
			RetryAttempts: csv2pg.DefaultRetryAttempts,
			RetryDelaySec: int(csv2pg.DefaultRetryInitialDelay.Seconds()),
		},
		Output: OutputConfig{
			Directory: csv2pg.DefaultOutputDir,
		},
	}
}

// Load builds the configuration for the given config file path.
//
// An empty path means "use csv2pg.yaml if present, defaults otherwise"; a
// non-empty path must exist. Environment overrides are always applied last.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = ConfigFileName
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		if explicit {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv layers CSV2PG_* variables and secrets over the current values.
func (c *Config) applyEnv() {
	setInt(&c.Sampling.Rows, "CSV2PG_SAMPLING_ROWS")
	setString(&c.Sampling.Encoding, "CSV2PG_SAMPLING_ENCODING")

	setInt(&c.Chunking.ColumnsPerChunk, "CSV2PG_CHUNKING_COLUMNS_PER_CHUNK")
	setBool(&c.Chunking.Smart, "CSV2PG_CHUNKING_SMART")

	setString(&c.LLM.Provider, "CSV2PG_LLM_PROVIDER")
	setString(&c.LLM.Model, "CSV2PG_LLM_MODEL")
	setString(&c.LLM.Endpoint, "CSV2PG_LLM_ENDPOINT")
	setInt(&c.LLM.TimeoutSec, "CSV2PG_LLM_TIMEOUT")
	setInt(&c.LLM.RetryAttempts, "CSV2PG_LLM_RETRY_ATTEMPTS")
	setInt(&c.LLM.RetryDelaySec, "CSV2PG_LLM_RETRY_DELAY")

	setString(&c.Output.Directory, "CSV2PG_OUTPUT_DIRECTORY")
	setBool(&c.Output.DryRun, "CSV2PG_OUTPUT_DRY_RUN")

	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.DatabaseURL, "DATABASE_URL")
}

func (c *Config) validate() error {
	if c.Sampling.Rows < 1 || c.Sampling.Rows > 10000 {
		return fmt.Errorf("sampling.rows must be between 1 and 10000, got %d: %w",
			c.Sampling.Rows, csv2pg.ErrInvalidConfig)
	}
	if c.Chunking.ColumnsPerChunk < 1 || c.Chunking.ColumnsPerChunk > 200 {
		return fmt.Errorf("chunking.columns_per_chunk must be between 1 and 200, got %d: %w",
			c.Chunking.ColumnsPerChunk, csv2pg.ErrInvalidConfig)
	}
	if c.LLM.TimeoutSec < 1 || c.LLM.TimeoutSec > 300 {
		return fmt.Errorf("llm.timeout must be between 1 and 300 seconds, got %d: %w",
			c.LLM.TimeoutSec, csv2pg.ErrInvalidConfig)
	}
	if c.LLM.RetryAttempts < 0 || c.LLM.RetryAttempts > 10 {
		return fmt.Errorf("llm.retry_attempts must be between 0 and 10, got %d: %w",
			c.LLM.RetryAttempts, csv2pg.ErrInvalidConfig)
	}
	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty: %w", csv2pg.ErrInvalidConfig)
	}
	return nil
}

// StatePath returns the import state file location under the output
// directory.
func (c *Config) StatePath() string {
	return filepath.Join(c.Output.Directory, "import_state.json")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
