package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// validBaseTypes are the PostgreSQL types accepted from model output.
// Parameterized forms like varchar(255) and numeric(10,2) validate by their
// base name.
var validBaseTypes = map[string]bool{
	"smallint": true, "integer": true, "int": true, "bigint": true,
	"decimal": true, "numeric": true, "real": true, "double precision": true,
	"smallserial": true, "serial": true, "bigserial": true,
	"money":   true,
	"varchar": true, "char": true, "text": true,
	"bytea":     true,
	"timestamp": true, "timestamptz": true,
	"timestamp with time zone": true, "timestamp without time zone": true,
	"date": true, "time": true, "timetz": true, "interval": true,
	"boolean": true, "bool": true,
	"cidr": true, "inet": true, "macaddr": true,
	"uuid": true,
	"json": true, "jsonb": true,
	"xml": true,
}

// responseItem mirrors the JSON contract the prompt asks for, tolerating the
// field-name variants models sometimes substitute.
type responseItem struct {
	ColumnName     string   `json:"column_name"`
	Name           string   `json:"name"`
	PostgresqlType string   `json:"postgresql_type"`
	PgType         string   `json:"pg_type"`
	Confidence     string   `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	Nullable       *bool    `json:"nullable"`
	Constraints    []string `json:"constraints"`
	CastRule       *string  `json:"cast_rule"`
}

// ExtractJSON extracts the first balanced JSON value from model output that
// may be wrapped in markdown code fences or surrounding prose.
func ExtractJSON(response string) (string, error) {
	objStart := strings.IndexByte(response, '{')
	arrStart := strings.IndexByte(response, '[')

	// Arrays first: the inference contract is an array, and a leading
	// object is usually one of its elements leaking through a truncation.
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if jsonStr, ok := extractBalanced(response, '[', ']'); ok && json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}

	if objStart >= 0 {
		if jsonStr, ok := extractBalanced(response, '{', '}'); ok && json.Valid([]byte(jsonStr)) {
			return jsonStr, nil
		}
	}

	trimmed := strings.TrimSpace(response)
	if json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no valid JSON found in response: %w", csv2pg.ErrMalformedResponse)
}

// extractBalanced finds the first balanced structure opened by openChar,
// counting bracket depth and skipping string literals.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if c == openChar {
			depth++
		} else if c == closeChar {
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// parseResponse decodes and validates model output into inferred types.
//
// The response as a whole must be a JSON array; individual items that fail
// validation are logged and dropped, never fatal.
func parseResponse(content string, logger csv2pg.Logger) ([]csv2pg.InferredType, error) {
	jsonStr, err := ExtractJSON(content)
	if err != nil {
		return nil, err
	}

	var items []responseItem
	if err := json.Unmarshal([]byte(jsonStr), &items); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %v: %w", err, csv2pg.ErrMalformedResponse)
	}

	types := make([]csv2pg.InferredType, 0, len(items))
	for _, item := range items {
		t, err := item.toInferredType()
		if err != nil {
			logger.Verbose("dropping invalid type for column %q: %v", item.columnName(), err)
			continue
		}
		types = append(types, t)
	}

	return types, nil
}

func (r responseItem) columnName() string {
	if r.ColumnName != "" {
		return r.ColumnName
	}
	return r.Name
}

func (r responseItem) pgType() string {
	if r.PostgresqlType != "" {
		return r.PostgresqlType
	}
	return r.PgType
}

func (r responseItem) toInferredType() (csv2pg.InferredType, error) {
	name := r.columnName()
	if name == "" {
		return csv2pg.InferredType{}, fmt.Errorf("missing column name")
	}

	pgType := strings.TrimSpace(r.pgType())
	if pgType == "" {
		return csv2pg.InferredType{}, fmt.Errorf("missing postgresql type")
	}
	baseType := strings.ToLower(strings.TrimSpace(strings.SplitN(pgType, "(", 2)[0]))
	if !validBaseTypes[baseType] {
		return csv2pg.InferredType{}, fmt.Errorf("unknown postgresql type %q", pgType)
	}

	confidence := csv2pg.Confidence(strings.ToLower(r.Confidence))
	if !confidence.IsValid() {
		confidence = csv2pg.ConfidenceMedium
	}

	// Columns default to nullable when the model stays silent.
	nullable := true
	if r.Nullable != nil {
		nullable = *r.Nullable
	}

	castRule := ""
	if r.CastRule != nil {
		castRule = *r.CastRule
	}

	return csv2pg.InferredType{
		ColumnName:  name,
		PgType:      pgType,
		Confidence:  confidence,
		Reasoning:   r.Reasoning,
		Nullable:    nullable,
		Constraints: r.Constraints,
		CastRule:    castRule,
	}, nil
}
