package tui

import (
	"fmt"
	"strings"

	"github.com/vvka-141/csv2pg/pkg/csv2pg"
)

// RenderSchema formats an inferred table schema as an aligned column table
// for terminal display.
func RenderSchema(schema csv2pg.TableSchema) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("Table: %s", schema.TableName)))
	b.WriteString("\n")

	nameWidth := len("COLUMN")
	typeWidth := len("TYPE")
	for _, col := range schema.Columns {
		if len(col.Name) > nameWidth {
			nameWidth = len(col.Name)
		}
		if len(col.PgType) > typeWidth {
			typeWidth = len(col.PgType)
		}
	}

	b.WriteString(HeaderStyle.Render(fmt.Sprintf("  %-*s  %-*s  %-8s  %s",
		nameWidth, "COLUMN", typeWidth, "TYPE", "NULLABLE", "KEY")))
	b.WriteString("\n")

	for _, col := range schema.Columns {
		nullable := "no"
		if col.Nullable {
			nullable = "yes"
		}
		key := ""
		if schema.PrimaryKey == col.Name {
			key = SymbolKey + " primary"
		}

		b.WriteString(fmt.Sprintf("  %-*s  %s  %-8s  %s\n",
			nameWidth, col.Name,
			TypeStyle.Render(fmt.Sprintf("%-*s", typeWidth, col.PgType)),
			nullable, key))
	}

	summary := fmt.Sprintf("%d columns", len(schema.Columns))
	if schema.PrimaryKey != "" {
		summary += fmt.Sprintf(", primary key: %s", schema.PrimaryKey)
	} else {
		summary += ", no primary key"
	}
	b.WriteString(MutedStyle.Render("  " + summary))
	b.WriteString("\n")

	return b.String()
}

// RenderGenerationResult lists the generated artifact paths.
func RenderGenerationResult(result csv2pg.GenerationResult, dryRun bool) string {
	var b strings.Builder

	if dryRun {
		b.WriteString(WarningStyle.Render("Dry run: no files were written."))
		b.WriteString("\n")
	}

	rows := []struct{ label, path string }{
		{"pgloader config", result.ConfigPath},
		{"import script", result.ScriptPath},
		{"state file", result.StatePath},
		{"import log", result.LogPath},
	}
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s %-16s %s\n", SymbolBullet, row.label, row.path))
	}

	return b.String()
}
