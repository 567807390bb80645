package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/csv2pg/internal/logging"
	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

const validArray = `[
  {
    "column_name": "id",
    "postgresql_type": "uuid",
    "confidence": "high",
    "reasoning": "UUID pattern",
    "nullable": false,
    "constraints": ["PRIMARY KEY"],
    "cast_rule": null
  },
  {
    "column_name": "amount",
    "postgresql_type": "numeric(12,2)",
    "confidence": "medium",
    "reasoning": "monetary values",
    "nullable": true,
    "constraints": [],
    "cast_rule": null
  }
]`

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{
			name:     "bare array",
			response: `[{"a": 1}]`,
			want:     `[{"a": 1}]`,
		},
		{
			name:     "markdown fenced",
			response: "```json\n[{\"a\": 1}]\n```",
			want:     `[{"a": 1}]`,
		},
		{
			name:     "surrounded by prose",
			response: "Here are the types:\n[{\"a\": 1}]\nLet me know if you need more.",
			want:     `[{"a": 1}]`,
		},
		{
			name:     "nested brackets inside strings",
			response: `[{"reasoning": "values like [1,2] and \"x\""}]`,
			want:     `[{"reasoning": "values like [1,2] and \"x\""}]`,
		},
		{
			name:     "object before array picks array element context",
			response: `{"a": 1}`,
			want:     `{"a": 1}`,
		},
		{
			name:     "no json at all",
			response: "I cannot help with that.",
			wantErr:  true,
		},
		{
			name:     "truncated array",
			response: `[{"a": 1}, {"b":`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, csv2pg.ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponse_ValidArray(t *testing.T) {
	types, err := parseResponse(validArray, logging.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "id", types[0].ColumnName)
	assert.Equal(t, "uuid", types[0].PgType)
	assert.Equal(t, csv2pg.ConfidenceHigh, types[0].Confidence)
	assert.False(t, types[0].Nullable)
	assert.Equal(t, []string{"PRIMARY KEY"}, types[0].Constraints)

	assert.Equal(t, "numeric(12,2)", types[1].PgType)
	assert.True(t, types[1].Nullable)
}

func TestParseResponse_FencedWithProse(t *testing.T) {
	response := "Sure! Here is the analysis:\n\n```json\n" + validArray + "\n```\n\nHope that helps."

	types, err := parseResponse(response, logging.NewNullLogger())
	require.NoError(t, err)
	assert.Len(t, types, 2)
}

func TestParseResponse_DropsInvalidItems(t *testing.T) {
	response := `[
	  {"column_name": "good", "postgresql_type": "text", "confidence": "high", "reasoning": "r"},
	  {"column_name": "bad_type", "postgresql_type": "hyperfloat", "confidence": "high", "reasoning": "r"},
	  {"postgresql_type": "text", "confidence": "high", "reasoning": "missing name"}
	]`

	types, err := parseResponse(response, logging.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "good", types[0].ColumnName)
}

func TestParseResponse_FieldNameVariants(t *testing.T) {
	response := `[{"name": "alt", "pg_type": "integer", "confidence": "low", "reasoning": "r"}]`

	types, err := parseResponse(response, logging.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "alt", types[0].ColumnName)
	assert.Equal(t, "integer", types[0].PgType)
	assert.Equal(t, csv2pg.ConfidenceLow, types[0].Confidence)
}

func TestParseResponse_DefaultsApplied(t *testing.T) {
	// Unknown confidence falls back to medium; absent nullable defaults true.
	response := `[{"column_name": "c", "postgresql_type": "text", "confidence": "certain", "reasoning": "r"}]`

	types, err := parseResponse(response, logging.NewNullLogger())
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, csv2pg.ConfidenceMedium, types[0].Confidence)
	assert.True(t, types[0].Nullable)
}

func TestParseResponse_NonArrayIsMalformed(t *testing.T) {
	_, err := parseResponse(`{"column_name": "x"}`, logging.NewNullLogger())
	assert.ErrorIs(t, err, csv2pg.ErrMalformedResponse)
}

func TestParseResponse_ParameterizedTypesValidateByBase(t *testing.T) {
	response := `[
	  {"column_name": "a", "postgresql_type": "varchar(255)", "confidence": "high", "reasoning": "r"},
	  {"column_name": "b", "postgresql_type": "NUMERIC(10, 2)", "confidence": "high", "reasoning": "r"},
	  {"column_name": "c", "postgresql_type": "timestamp with time zone", "confidence": "high", "reasoning": "r"}
	]`

	types, err := parseResponse(response, logging.NewNullLogger())
	require.NoError(t, err)
	assert.Len(t, types, 3)
}
