// Package inference orchestrates schema inference over a sampled CSV: it
// chunks the columns, fans requests out to a type provider, patches failed
// chunks with the heuristic classifier, and assembles the final table schema.
package inference

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/vvka-141/csv2pg/internal/chunker"
	"github.com/vvka-141/csv2pg/internal/heuristic"
	"github.com/vvka-141/csv2pg/internal/sanitize"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// phase labels the orchestrator's progress through one Infer call. Phases
// exist for the duration of a single run only and are surfaced through the
// logger, never persisted.
type phase string

const (
	phaseChunking    phase = "CHUNKING"
	phaseDispatching phase = "DISPATCHING"
	phaseMerging     phase = "MERGING"
	phaseFinalizing  phase = "FINALIZING"
	phaseDone        phase = "DONE"
	phaseFailed      phase = "FAILED"
)

// chunkResult is the tagged outcome of one chunk's inference request.
type chunkResult struct {
	chunk csv2pg.ColumnChunk
	types []csv2pg.InferredType
	err   error
}

// Engine drives schema inference. A nil provider runs heuristic-only.
//
// The engine holds no mutable state across calls; Infer is re-entrant.
type Engine struct {
	provider csv2pg.TypeProvider
	cfg      csv2pg.InferenceConfig
	logger   csv2pg.Logger
}

// NewEngine creates an inference engine. provider may be nil for
// heuristic-only operation.
func NewEngine(provider csv2pg.TypeProvider, cfg csv2pg.InferenceConfig, logger csv2pg.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required: %w", csv2pg.ErrInvalidConfig)
	}
	return &Engine{
		provider: provider,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

// Infer produces a table schema for the sampled CSV.
//
// All chunks are dispatched concurrently and joined before merging. Chunks
// whose requests fail are reclassified heuristically when fallback is
// enabled; with fallback disabled, per-chunk failures yield a schema short
// of those columns, while a failure of every chunk aborts the run.
func (e *Engine) Infer(ctx context.Context, sample csv2pg.CSVSample) (csv2pg.TableSchema, error) {
	e.logPhase(phaseChunking)

	chunks, err := e.chunk(sample)
	if err != nil {
		e.logPhase(phaseFailed)
		return csv2pg.TableSchema{}, err
	}
	e.logger.Info("processing %d columns in %d chunks", len(sample.Headers), len(chunks))

	samples := BuildColumnSamples(sample)
	sampleByName := make(map[string]csv2pg.ColumnSample, len(samples))
	for _, cs := range samples {
		sampleByName[cs.Name] = cs
	}

	// resolved maps raw header name to its inferred type.
	resolved := make(map[string]csv2pg.InferredType, len(sample.Headers))

	if e.provider == nil {
		e.logger.Verbose("no provider configured, classifying heuristically")
		for _, cs := range samples {
			resolved[cs.Name] = heuristic.Classify(cs)
		}
		return e.finalize(sample, resolved)
	}

	e.logPhase(phaseDispatching)
	results := e.dispatch(ctx, chunks)

	e.logPhase(phaseMerging)

	var failed []csv2pg.ColumnChunk
	for _, r := range results {
		if r.err != nil {
			e.logger.Error("chunk %d/%d failed: %v", r.chunk.ChunkID+1, r.chunk.TotalChunks, r.err)
			failed = append(failed, r.chunk)
			continue
		}
		mergeChunkTypes(resolved, r.chunk, r.types)
	}

	if len(failed) == len(chunks) {
		// Every chunk failed: the provider is unusable for this run.
		if !e.cfg.UseFallback {
			e.logPhase(phaseFailed)
			return csv2pg.TableSchema{}, fmt.Errorf("%w: all %d chunks failed: %v",
				csv2pg.ErrProviderUnavailable, len(chunks), results[0].err)
		}
		e.logger.Info("provider unusable, falling back to heuristic inference for all columns")
		for _, cs := range samples {
			resolved[cs.Name] = heuristic.Classify(cs)
		}
		return e.finalize(sample, resolved)
	}

	if len(failed) > 0 {
		if e.cfg.UseFallback {
			e.logger.Info("using heuristic fallback for %d failed chunks", len(failed))
			for _, chunk := range failed {
				for _, col := range chunk.Columns {
					if cs, ok := sampleByName[col]; ok {
						resolved[col] = heuristic.Classify(cs)
					}
				}
			}
		} else {
			e.logger.Error("fallback disabled, schema will be missing columns from %d failed chunks", len(failed))
		}
	}

	return e.finalize(sample, resolved)
}

// chunk applies the configured chunking strategy.
func (e *Engine) chunk(sample csv2pg.CSVSample) ([]csv2pg.ColumnChunk, error) {
	if e.cfg.SmartChunking {
		return chunker.ChunkSmart(sample, e.cfg.ChunkSize)
	}
	return chunker.Chunk(sample, e.cfg.ChunkSize)
}

// dispatch fans one request per chunk out to the provider and joins on all
// of them. Results come back indexed by chunk, success or failure tagged.
func (e *Engine) dispatch(ctx context.Context, chunks []csv2pg.ColumnChunk) []chunkResult {
	results := make([]chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk csv2pg.ColumnChunk) {
			defer wg.Done()
			types, err := e.provider.InferTypes(ctx, chunk)
			results[i] = chunkResult{chunk: chunk, types: types, err: err}
			if err == nil {
				e.logger.Verbose("chunk %d/%d resolved %d columns", chunk.ChunkID+1, chunk.TotalChunks, len(types))
			}
		}(i, chunk)
	}
	wg.Wait()

	return results
}

// mergeChunkTypes records one successful chunk's types under the chunk's raw
// header names. Provider output is matched to raw headers directly, then by
// sanitized name, since models sometimes echo a normalized spelling.
func mergeChunkTypes(resolved map[string]csv2pg.InferredType, chunk csv2pg.ColumnChunk, types []csv2pg.InferredType) {
	rawByName := make(map[string]string, len(chunk.Columns))
	for _, raw := range chunk.Columns {
		rawByName[raw] = raw
		rawByName[sanitize.Sanitize(raw)] = raw
	}

	for _, t := range types {
		raw, ok := rawByName[t.ColumnName]
		if !ok {
			raw, ok = rawByName[sanitize.Sanitize(t.ColumnName)]
		}
		if !ok {
			continue
		}
		resolved[raw] = t
	}
}

// finalize maps resolved types into the final schema: collision-free
// sanitized column names in original header order, primary key selection,
// and the table name derived from the source file.
func (e *Engine) finalize(sample csv2pg.CSVSample, resolved map[string]csv2pg.InferredType) (csv2pg.TableSchema, error) {
	e.logPhase(phaseFinalizing)

	var rawNames []string
	for _, h := range sample.Headers {
		if _, ok := resolved[h]; ok {
			rawNames = append(rawNames, h)
		}
	}
	if len(rawNames) == 0 {
		e.logPhase(phaseFailed)
		return csv2pg.TableSchema{}, fmt.Errorf("no columns resolved: %w", csv2pg.ErrNoColumns)
	}
	if len(rawNames) < len(sample.Headers) {
		e.logger.Error("schema is incomplete: %d of %d columns resolved", len(rawNames), len(sample.Headers))
	}

	uniqueNames := sanitize.UniqueColumns(rawNames)

	columns := make([]csv2pg.ColumnSchema, 0, len(rawNames))
	for i, raw := range rawNames {
		t := resolved[raw]
		columns = append(columns, csv2pg.ColumnSchema{
			Name:        uniqueNames[i],
			PgType:      t.PgType,
			Nullable:    t.Nullable,
			Constraints: t.Constraints,
			CastRule:    t.CastRule,
		})
	}

	schema := csv2pg.TableSchema{
		TableName:  sanitize.TableName(sample.Path),
		Columns:    columns,
		PrimaryKey: selectPrimaryKey(columns),
	}

	if err := schema.Validate(); err != nil {
		e.logPhase(phaseFailed)
		return csv2pg.TableSchema{}, err
	}

	e.logPhase(phaseDone)
	e.logger.Info("schema inference complete: %d columns, primary_key=%s",
		len(columns), orNone(schema.PrimaryKey))
	return schema, nil
}

// selectPrimaryKey scores every column as a primary key candidate and picks
// the globally best (lowest) score, first column winning ties. The winner's
// constraints are left untouched; key enforcement happens post-load.
func selectPrimaryKey(columns []csv2pg.ColumnSchema) string {
	best := ""
	bestScore := -1

	for _, col := range columns {
		score, ok := primaryKeyScore(col)
		if !ok {
			continue
		}
		if bestScore == -1 || score < bestScore {
			best = col.Name
			bestScore = score
		}
	}

	return best
}

// primaryKeyScore ranks a column as a primary key candidate, lower is better.
func primaryKeyScore(col csv2pg.ColumnSchema) (int, bool) {
	name := strings.ToLower(col.Name)
	baseType := strings.ToLower(strings.SplitN(col.PgType, "(", 2)[0])
	isUUID := baseType == "uuid"

	switch {
	case strings.Contains(name, "identifier") && strings.Contains(name, "uuid") && isUUID:
		return 0, true
	case name == "uuid" && isUUID:
		return 1, true
	case strings.Contains(name, "uuid") && isUUID:
		return 2, true
	case name == "id":
		return 3, true
	case strings.HasSuffix(name, "_id") && (baseType == "integer" || baseType == "bigint"):
		return 4, true
	}
	return 0, false
}

// BuildColumnSamples pivots the row-wise sample into per-column samples.
// Cells that are missing, nil, or blank after trimming count as nulls.
func BuildColumnSamples(sample csv2pg.CSVSample) []csv2pg.ColumnSample {
	out := make([]csv2pg.ColumnSample, 0, len(sample.Headers))

	for _, name := range sample.Headers {
		values := make([]*string, 0, len(sample.Rows))
		nulls := 0
		for _, row := range sample.Rows {
			v := row[name]
			if v == nil || strings.TrimSpace(*v) == "" {
				nulls++
			}
			values = append(values, v)
		}
		out = append(out, csv2pg.ColumnSample{
			Name:       name,
			Values:     values,
			NullCount:  nulls,
			TotalCount: len(values),
		})
	}

	return out
}

func (e *Engine) logPhase(p phase) {
	e.logger.Verbose("inference phase: %s", string(p))
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
