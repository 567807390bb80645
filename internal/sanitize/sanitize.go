// Package sanitize normalizes raw CSV headers and file names into valid,
// keyword-safe PostgreSQL identifiers.
package sanitize

import (
	"fmt"
	"path/filepath"
	"strings"
)

// reservedKeywords are SQL keywords that cannot be used as bare identifiers.
// Matching is case-insensitive; sanitized names colliding with an entry get
// a "_col" suffix.
var reservedKeywords = map[string]bool{
	"all": true, "alter": true, "and": true, "any": true, "array": true,
	"as": true, "asc": true, "between": true, "both": true, "by": true,
	"case": true, "cast": true, "check": true, "collate": true, "column": true,
	"constraint": true, "create": true, "cross": true, "current_date": true,
	"current_time": true, "current_timestamp": true, "default": true,
	"delete": true, "desc": true, "distinct": true, "do": true, "drop": true,
	"else": true, "end": true, "except": true, "exists": true, "false": true,
	"for": true, "foreign": true, "from": true, "full": true, "grant": true,
	"group": true, "having": true, "in": true, "index": true, "inner": true,
	"insert": true, "intersect": true, "into": true, "is": true, "join": true,
	"leading": true, "left": true, "like": true, "limit": true, "not": true,
	"null": true, "offset": true, "on": true, "or": true, "order": true,
	"outer": true, "primary": true, "references": true, "right": true,
	"select": true, "table": true, "then": true, "to": true, "trailing": true,
	"true": true, "union": true, "unique": true, "update": true, "user": true,
	"using": true, "values": true, "when": true, "where": true, "with": true,
}

// Sanitize normalizes a raw header string into a valid PostgreSQL identifier.
//
// It is total (never fails), deterministic, and idempotent:
// Sanitize(Sanitize(x)) == Sanitize(x).
//
// Sanitization is not injective — distinct inputs can map to the same
// identifier. Use UniqueColumns to resolve collisions across a header set.
func Sanitize(name string) string {
	s := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(s))

	lastUnderscore := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		// Everything else, underscore included, collapses to a single '_'.
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}

	out := strings.Trim(b.String(), "_")

	if out != "" && out[0] >= '0' && out[0] <= '9' {
		out = "col_" + out
	}

	if out == "" {
		return "unnamed_column"
	}

	if reservedKeywords[out] {
		out += "_col"
	}

	return out
}

// TableName derives a sanitized table name from a CSV file path,
// using the base name without extension.
func TableName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return Sanitize(base)
}

// UniqueColumns sanitizes every name in order and resolves collisions by
// appending a numeric suffix: the first occurrence keeps the bare name,
// repeats become name_2, name_3, and so on. Suffixed names that themselves
// collide keep incrementing until free.
func UniqueColumns(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]int, len(names))

	for _, name := range names {
		s := Sanitize(name)
		count := seen[s]
		seen[s] = count + 1

		if count == 0 {
			out = append(out, s)
			continue
		}

		candidate := fmt.Sprintf("%s_%d", s, count+1)
		for seen[candidate] > 0 {
			count++
			seen[s] = count + 1
			candidate = fmt.Sprintf("%s_%d", s, count+1)
		}
		seen[candidate] = 1
		out = append(out, candidate)
	}

	return out
}

// IsReserved reports whether the given identifier (case-insensitive) is a
// reserved SQL keyword.
func IsReserved(name string) bool {
	return reservedKeywords[strings.ToLower(name)]
}
