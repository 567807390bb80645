package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

func sample(name string, values ...string) csv2pg.ColumnSample {
	ptrs := make([]*string, len(values))
	nulls := 0
	for i := range values {
		v := values[i]
		if v == "" {
			nulls++
			continue
		}
		ptrs[i] = &v
	}
	return csv2pg.ColumnSample{
		Name:       name,
		Values:     ptrs,
		NullCount:  nulls,
		TotalCount: len(values),
	}
}

func TestClassify_TypePriority(t *testing.T) {
	tests := []struct {
		name           string
		column         csv2pg.ColumnSample
		wantType       string
		wantConfidence csv2pg.Confidence
	}{
		{
			name:           "uuid",
			column:         sample("id", "550e8400-e29b-41d4-a716-446655440000"),
			wantType:       "uuid",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "uuid uppercase",
			column:         sample("id", "550E8400-E29B-41D4-A716-446655440000"),
			wantType:       "uuid",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "boolean tokens",
			column:         sample("active", "true", "false", "t"),
			wantType:       "boolean",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "boolean digit tokens take priority over integer",
			column:         sample("flag", "1", "0", "1"),
			wantType:       "boolean",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "integer",
			column:         sample("count", "1", "2", "3"),
			wantType:       "integer",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "negative integers within int32",
			column:         sample("delta", "-2147483648", "2147483647"),
			wantType:       "integer",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "bigint from int64 max",
			column:         sample("big", "9223372036854775807"),
			wantType:       "bigint",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "bigint from value just past int32",
			column:         sample("big", "2147483648"),
			wantType:       "bigint",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "numeric currency name",
			column:         sample("price", "123.45", "67.0"),
			wantType:       "numeric",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "numeric fractional values",
			column:         sample("ratio", "0.25", "0.75"),
			wantType:       "numeric",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "numeric whole floats plain name",
			column:         sample("score", "1.0", "2.0"),
			wantType:       "numeric",
			wantConfidence: csv2pg.ConfidenceMedium,
		},
		{
			name:           "date",
			column:         sample("created", "2024-01-15", "2023-12-31"),
			wantType:       "date",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "timestamptz",
			column:         sample("updated_at", "2024-01-15T10:30:00Z", "2024-01-15 10:30:00"),
			wantType:       "timestamptz",
			wantConfidence: csv2pg.ConfidenceHigh,
		},
		{
			name:           "email stored as text",
			column:         sample("contact", "a@example.com", "b.c@test.org"),
			wantType:       "text",
			wantConfidence: csv2pg.ConfidenceMedium,
		},
		{
			name:           "short strings get varchar with buffer",
			column:         sample("city", "Oslo", "Lisbon"),
			wantType:       "varchar(56)",
			wantConfidence: csv2pg.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.column)
			assert.Equal(t, tt.wantType, got.PgType)
			assert.Equal(t, tt.wantConfidence, got.Confidence)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestClassify_AllNull(t *testing.T) {
	got := Classify(sample("notes", "", "", ""))

	assert.Equal(t, "text", got.PgType)
	assert.Equal(t, csv2pg.ConfidenceLow, got.Confidence)
	assert.True(t, got.Nullable)
}

func TestClassify_LongStringsBecomeText(t *testing.T) {
	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	got := Classify(sample("description", string(long)))

	assert.Equal(t, "text", got.PgType)
	assert.Equal(t, csv2pg.ConfidenceMedium, got.Confidence)
}

func TestClassify_Nullability(t *testing.T) {
	noNulls := Classify(sample("n", "1", "2"))
	assert.False(t, noNulls.Nullable)

	withNulls := Classify(sample("n", "1", ""))
	assert.True(t, withNulls.Nullable)
}

func TestClassify_SanitizesColumnName(t *testing.T) {
	got := Classify(sample("Total (USD)", "10.5", "11.5"))

	assert.Equal(t, "total_usd", got.ColumnName)
	// The sanitized name carries the currency hint.
	assert.Equal(t, "numeric", got.PgType)
	assert.Equal(t, csv2pg.ConfidenceHigh, got.Confidence)
}

func TestClassify_MixedValuesFallThrough(t *testing.T) {
	// One non-numeric value defeats the numeric patterns.
	got := Classify(sample("mixed", "1", "2", "abc"))

	assert.Equal(t, "varchar(53)", got.PgType)
}

func TestClassify_Deterministic(t *testing.T) {
	column := sample("price", "10.50", "22.10", "", "7.00")

	first := Classify(column)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(column))
	}
}

func TestClassify_NonCanonicalUUIDRejected(t *testing.T) {
	// Bare-hex form parses as a UUID but is not the canonical 8-4-4-4-12.
	got := Classify(sample("id", "550e8400e29b41d4a716446655440000"))

	assert.NotEqual(t, "uuid", got.PgType)
}
