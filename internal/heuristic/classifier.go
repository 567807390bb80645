// Package heuristic implements deterministic, pattern-based PostgreSQL type
// classification for sampled CSV columns.
//
// Classification is best-effort and total: every column resolves to a usable
// type. Pattern mismatches and parse failures fall through to the next test,
// never out of the classifier.
package heuristic

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/vvka-141/csv2pg/internal/sanitize"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

var (
	datePattern      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}`)
	emailPattern     = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// booleanTokens are the accepted boolean-like values, lowercase.
var booleanTokens = map[string]bool{
	"true": true, "false": true, "t": true, "f": true,
	"yes": true, "no": true, "y": true, "n": true,
	"1": true, "0": true,
}

// currencyHints are sanitized-name fragments that mark a numeric column as
// money-like, raising confidence on the numeric verdict.
var currencyHints = []string{
	"usd", "price", "value", "amount", "total", "funding", "valuation",
}

// Classify derives a best-guess PostgreSQL type for one column sample.
//
// Patterns are tested in priority order; the first pattern matched by every
// sampled value wins. At most csv2pg.MaxPatternValues non-null values are
// inspected. The returned type always carries the sanitized column name.
func Classify(column csv2pg.ColumnSample) csv2pg.InferredType {
	name := sanitize.Sanitize(column.Name)

	values := nonNullValues(column.Values)
	if len(values) == 0 {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "text",
			Confidence: csv2pg.ConfidenceLow,
			Reasoning:  "All values are null, defaulting to text",
			Nullable:   true,
		}
	}
	if len(values) > csv2pg.MaxPatternValues {
		values = values[:csv2pg.MaxPatternValues]
	}

	nullable := column.NullPercentage() > 0

	if allCanonicalUUIDs(values) {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "uuid",
			Confidence: csv2pg.ConfidenceHigh,
			Reasoning:  "All values match UUID pattern",
			Nullable:   nullable,
		}
	}

	if allBooleanTokens(values) {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "boolean",
			Confidence: csv2pg.ConfidenceHigh,
			Reasoning:  "All values are boolean-like",
			Nullable:   nullable,
		}
	}

	if minVal, maxVal, ok := integerRange(values); ok {
		pgType := "integer"
		if minVal < csv2pg.MinInt32 || maxVal > csv2pg.MaxInt32 {
			pgType = "bigint"
		}
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     pgType,
			Confidence: csv2pg.ConfidenceHigh,
			Reasoning:  fmt.Sprintf("All values are integers (range: %d to %d)", minVal, maxVal),
			Nullable:   nullable,
		}
	}

	if fractional, ok := allFloats(values); ok {
		confidence := csv2pg.ConfidenceMedium
		reasoning := "All values are numeric"
		switch {
		case hasCurrencyHint(name):
			confidence = csv2pg.ConfidenceHigh
			reasoning = "Currency-like column name with numeric values"
		case fractional:
			confidence = csv2pg.ConfidenceHigh
			reasoning = "All values are numeric with decimal fractions"
		}
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "numeric",
			Confidence: confidence,
			Reasoning:  reasoning,
			Nullable:   nullable,
		}
	}

	if allMatch(values, datePattern) {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "date",
			Confidence: csv2pg.ConfidenceHigh,
			Reasoning:  "All values match date pattern (YYYY-MM-DD)",
			Nullable:   nullable,
		}
	}

	if allMatch(values, timestampPattern) {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "timestamptz",
			Confidence: csv2pg.ConfidenceHigh,
			Reasoning:  "All values match timestamp pattern",
			Nullable:   nullable,
		}
	}

	if allMatch(values, emailPattern) {
		return csv2pg.InferredType{
			ColumnName: name,
			PgType:     "text",
			Confidence: csv2pg.ConfidenceMedium,
			Reasoning:  "All values match email pattern",
			Nullable:   nullable,
		}
	}

	maxLen := 0
	for _, v := range values {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}

	pgType := "text"
	if maxLen < csv2pg.VarcharThreshold {
		pgType = fmt.Sprintf("varchar(%d)", maxLen+csv2pg.VarcharBuffer)
	}
	return csv2pg.InferredType{
		ColumnName: name,
		PgType:     pgType,
		Confidence: csv2pg.ConfidenceMedium,
		Reasoning:  fmt.Sprintf("String values with max length %d", maxLen),
		Nullable:   nullable,
	}
}

// nonNullValues returns the trimmed, non-null, non-blank values in order.
func nonNullValues(values []*string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func allCanonicalUUIDs(values []string) bool {
	for _, v := range values {
		// Canonical 8-4-4-4-12 form only. uuid.Parse also accepts braced,
		// URN, and bare-hex forms, so the length gate is required.
		if len(v) != 36 {
			return false
		}
		if _, err := uuid.Parse(v); err != nil {
			return false
		}
	}
	return true
}

func allBooleanTokens(values []string) bool {
	for _, v := range values {
		if !booleanTokens[strings.ToLower(v)] {
			return false
		}
	}
	return true
}

// integerRange parses every value as a signed 64-bit integer, returning the
// observed range. ok is false as soon as any value fails to parse.
func integerRange(values []string) (minVal, maxVal int64, ok bool) {
	for i, v := range values {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		if i == 0 || n < minVal {
			minVal = n
		}
		if i == 0 || n > maxVal {
			maxVal = n
		}
	}
	return minVal, maxVal, true
}

// allFloats reports whether every value parses as a float, and whether any
// parsed value carries a non-integral fractional part.
func allFloats(values []string) (fractional, ok bool) {
	for _, v := range values {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return false, false
		}
		if math.Trunc(f) != f {
			fractional = true
		}
	}
	return fractional, true
}

func hasCurrencyHint(sanitizedName string) bool {
	for _, hint := range currencyHints {
		if strings.Contains(sanitizedName, hint) {
			return true
		}
	}
	return false
}

func allMatch(values []string, pattern *regexp.Regexp) bool {
	for _, v := range values {
		if !pattern.MatchString(v) {
			return false
		}
	}
	return true
}
