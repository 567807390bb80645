package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// buildPrompt renders the type inference request for one column chunk: the
// column list, a JSON preview of the sampled rows, and the response contract
// the parser expects.
func buildPrompt(chunk csv2pg.ColumnChunk) (string, error) {
	rows := chunk.SampleData
	if len(rows) > csv2pg.PreviewRows {
		rows = rows[:csv2pg.PreviewRows]
	}

	sampleJSON, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal sample rows: %w", err)
	}

	var b strings.Builder
	b.WriteString("You are a PostgreSQL database schema expert. Analyze these CSV columns and suggest optimal PostgreSQL data types.\n\n")
	fmt.Fprintf(&b, "Columns to analyze: %s\n\n", strings.Join(chunk.Columns, ", "))
	fmt.Fprintf(&b, "Sample data (first %d rows):\n%s\n\n", csv2pg.PreviewRows, sampleJSON)
	b.WriteString(`For each column, analyze the data and determine:
1. The most appropriate PostgreSQL type
2. Whether the column should be nullable
3. Any constraints (PRIMARY KEY, UNIQUE, etc.)
4. Your reasoning

Return a JSON array with this exact structure:
[
  {
    "column_name": "column_name_here",
    "postgresql_type": "postgresql_type_here",
    "confidence": "high|medium|low",
    "reasoning": "brief explanation",
    "nullable": true|false,
    "constraints": ["CONSTRAINT1", "CONSTRAINT2"],
    "cast_rule": null
  }
]

PostgreSQL type guidelines:
- Use INTEGER for small whole numbers, BIGINT for large ones
- Use NUMERIC(precision, scale) for decimals requiring exact precision
- Use REAL or DOUBLE PRECISION for floating point
- Use VARCHAR(n) for bounded strings, TEXT for unbounded
- Use TIMESTAMP WITH TIME ZONE (timestamptz) for timestamps
- Use DATE for dates without time
- Use UUID for UUID patterns
- Use BOOLEAN for true/false values
- Use JSONB for JSON data
- Consider NULL percentage when setting nullable

Respond ONLY with the JSON array, no additional text.`)

	return b.String(), nil
}
