// Package chunker partitions a CSV sample's columns into bounded-size groups
// for batched type inference.
//
// Two interchangeable strategies are provided. Fixed chunking splits the
// header list at fixed offsets. Smart chunking groups columns that share a
// naming prefix (address_street, address_city) so one inference request sees
// related columns together, trading strict size uniformity for semantic
// locality.
//
// Both strategies guarantee that every input column lands in exactly one
// chunk and that every chunk carries the final chunk count.
package chunker

import (
	"fmt"
	"strings"

	"github.com/vvka-141/csv2pg/internal/sanitize"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// Chunk splits the sample's columns into consecutive groups of at most size
// columns. The last chunk may be smaller.
func Chunk(sample csv2pg.CSVSample, size int) ([]csv2pg.ColumnChunk, error) {
	if err := validate(sample, size); err != nil {
		return nil, err
	}

	total := len(sample.Headers)
	totalChunks := (total + size - 1) / size

	chunks := make([]csv2pg.ColumnChunk, 0, totalChunks)
	for i := 0; i < totalChunks; i++ {
		start := i * size
		end := start + size
		if end > total {
			end = total
		}

		columns := sample.Headers[start:end]
		chunks = append(chunks, csv2pg.ColumnChunk{
			ChunkID:     i,
			TotalChunks: totalChunks,
			Columns:     columns,
			SampleData:  projectRows(sample.Rows, columns),
		})
	}

	return chunks, nil
}

// ChunkSmart splits the sample's columns into chunks of at most size columns
// while keeping prefix-related columns together when they fit.
//
// Columns are grouped by the sanitized-name prefix before the first
// underscore ("other" for prefixless names), preserving first-seen group
// order. Whole groups are packed greedily into the running chunk; a group
// that would overflow closes the current chunk first, and a group larger
// than size is split into consecutive sub-chunks of exactly size (except
// possibly the last).
func ChunkSmart(sample csv2pg.CSVSample, size int) ([]csv2pg.ColumnChunk, error) {
	if err := validate(sample, size); err != nil {
		return nil, err
	}

	// Group columns by prefix, preserving first-seen order.
	var order []string
	groups := make(map[string][]string)
	for _, col := range sample.Headers {
		prefix := groupPrefix(col)
		if _, seen := groups[prefix]; !seen {
			order = append(order, prefix)
		}
		groups[prefix] = append(groups[prefix], col)
	}

	var batches [][]string
	var current []string

	for _, prefix := range order {
		group := groups[prefix]

		if len(current)+len(group) > size {
			if len(current) > 0 {
				batches = append(batches, current)
				current = nil
			}

			if len(group) > size {
				for start := 0; start < len(group); start += size {
					end := start + size
					if end > len(group) {
						end = len(group)
					}
					batches = append(batches, group[start:end])
				}
			} else {
				current = append([]string(nil), group...)
			}
			continue
		}

		current = append(current, group...)
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}

	totalChunks := len(batches)
	chunks := make([]csv2pg.ColumnChunk, 0, totalChunks)
	for i, columns := range batches {
		chunks = append(chunks, csv2pg.ColumnChunk{
			ChunkID:     i,
			TotalChunks: totalChunks,
			Columns:     columns,
			SampleData:  projectRows(sample.Rows, columns),
		})
	}

	return chunks, nil
}

func validate(sample csv2pg.CSVSample, size int) error {
	if len(sample.Headers) == 0 {
		return csv2pg.ErrNoColumns
	}
	if size < 1 {
		return fmt.Errorf("chunk size must be at least 1: %w", csv2pg.ErrInvalidConfig)
	}
	return nil
}

// groupPrefix returns the grouping key for a raw header: the sanitized-name
// fragment before the first underscore, or "other" when there is none.
// Sanitizing first lets "Address Street" and "address_city" share a group.
func groupPrefix(rawName string) string {
	s := sanitize.Sanitize(rawName)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return "other"
}

// projectRows restricts each sampled row to the given columns, capped at
// csv2pg.PreviewRows. Cells absent from a row are omitted, not null-filled.
func projectRows(rows []map[string]*string, columns []string) []map[string]*string {
	limit := len(rows)
	if limit > csv2pg.PreviewRows {
		limit = csv2pg.PreviewRows
	}

	out := make([]map[string]*string, 0, limit)
	for _, row := range rows[:limit] {
		projected := make(map[string]*string, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				projected[col] = v
			}
		}
		out = append(out, projected)
	}
	return out
}
